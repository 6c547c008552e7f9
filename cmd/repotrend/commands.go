package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/repotrend/internal/adapter/driven/trending"
	"github.com/ericfisherdev/repotrend/internal/application"
	"github.com/ericfisherdev/repotrend/internal/config"
	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// withApp opens the app for the duration of fn.
func (c *cli) withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), c.cfg, c.noColor)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// dayFlag parses an optional YYYY-MM-DD flag. ok is false when unset.
func dayFlag(cmd *cobra.Command, name string) (time.Time, bool, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return time.Time{}, false, nil
	}
	d, err := model.ParseDay(s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("--%s: %w", name, err)
	}
	return d, true, nil
}

func newBackfillCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Collect and label a historical range from the event archive",
		Long: `Backfill collects every day of a range from the event archive, nominating
the top-N repositories by star velocity each day, then labels every slot
whose lookback window is complete. The default range is --days days ending
lookback-days before today.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end := application.BackfillRange(model.Day(time.Now()), c.cfg.BackfillDays, c.cfg.LookbackDays)
			if d, ok, err := dayFlag(cmd, "start"); err != nil {
				return err
			} else if ok {
				start = d
			}
			if d, ok, err := dayFlag(cmd, "end"); err != nil {
				return err
			} else if ok {
				end = d
			}

			return c.withApp(cmd, func(a *app) error {
				summary, err := a.backfillPipeline().Run(cmd.Context(), start, end)
				summary.Log()
				if renderErr := a.renderer.Summary(summary); renderErr != nil {
					slog.Warn("render summary", "error", renderErr)
				}
				return err
			})
		},
	}

	cmd.Flags().Int("days", 30, "Number of days to backfill")
	cmd.Flags().Int("top-n", application.DefaultTopN, "Candidates nominated per day")
	cmd.Flags().String("start", "", "First day to collect (YYYY-MM-DD), overrides --days")
	cmd.Flags().String("end", "", "Last day to collect (YYYY-MM-DD)")
	mustBindAs(c.v, config.KeyBackfillDays, cmd.Flags(), "days")
	mustBindAs(c.v, config.KeyTopN, cmd.Flags(), "top-n")

	return cmd
}

func newDailyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Collect today's trending listing and label every closed slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(a *app) error {
				summary, err := a.dailyPipeline().Run(cmd.Context())
				summary.Log()
				if renderErr := a.renderer.Summary(summary); renderErr != nil {
					slog.Warn("render summary", "error", renderErr)
				}
				return err
			})
		},
	}

	cmd.Flags().String(config.KeyTrendingURL, trending.DefaultURL, "Live trending page URL")
	mustBind(c.v, cmd.Flags(), config.KeyTrendingURL)

	return cmd
}

func newLabelCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label collected slots whose lookback window has closed",
		Long: `Label runs the labeling sweep on its own, without collecting. With --date it
labels only that slot and fails if its window is incomplete.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, single, err := dayFlag(cmd, "date")
			if err != nil {
				return err
			}

			return c.withApp(cmd, func(a *app) error {
				if single {
					res, err := a.labeler.LabelSlot(cmd.Context(), d)
					if err != nil {
						return err
					}
					return a.renderer.Label(res)
				}

				began := time.Now()
				sweep, err := a.labeler.LabelClosed(cmd.Context())
				summary := application.RunSummary{Mode: "label"}
				summary.AddSweep(sweep)
				summary.Duration = time.Since(began)
				summary.Log()
				if renderErr := a.renderer.Summary(summary); renderErr != nil {
					slog.Warn("render summary", "error", renderErr)
				}
				return err
			})
		},
	}

	cmd.Flags().String("date", "", "Label only this collection date (YYYY-MM-DD)")

	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show collected slots awaiting labels and recent candidate history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			historyDays, _ := cmd.Flags().GetInt("history-days")
			if historyDays < 1 {
				return fmt.Errorf("--history-days must be at least 1, got %d", historyDays)
			}

			return c.withApp(cmd, func(a *app) error {
				svc := a.statusService()

				slots, err := svc.Slots(cmd.Context())
				if err != nil {
					return err
				}
				if err := a.renderer.Slots(slots); err != nil {
					return err
				}

				today := model.Day(time.Now())
				days, err := svc.History(cmd.Context(), today, historyDays)
				if err != nil {
					return err
				}
				return a.renderer.History(days, model.AddDays(today, -(historyDays-1)), today)
			})
		},
	}

	cmd.Flags().Int("history-days", 14, "Days of candidate history to show")

	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the labeled feature store to a Parquet file",
		Long: `Export writes every labeled row to a Parquet training dataset. With --date it
instead writes every row collected on that day, placeholders included, for
scoring before the label exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("--out must not be empty")
			}
			d, single, err := dayFlag(cmd, "date")
			if err != nil {
				return err
			}

			return c.withApp(cmd, func(a *app) error {
				var n int
				if single {
					n, err = a.exportService().ExportDay(cmd.Context(), d, out)
				} else {
					n, err = a.exportService().Export(cmd.Context(), out)
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", n, out)
				return err
			})
		},
	}

	cmd.Flags().String("out", "dataset.parquet", "Output Parquet file")
	cmd.Flags().String("date", "", "Export every row collected on this day instead (YYYY-MM-DD)")

	return cmd
}
