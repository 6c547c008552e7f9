package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ericfisherdev/repotrend/internal/adapter/driven/gharchive"
	"github.com/ericfisherdev/repotrend/internal/config"
)

// Set by the release build.
var version = "dev"

// cli carries state shared by every subcommand once flags are parsed.
type cli struct {
	v       *viper.Viper
	cfg     *config.Config
	noColor bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "repotrend",
		Short: "Collect GitHub repository features and label them as trending after the fact.",
		Long: `repotrend builds a supervised dataset for trending prediction. Each
collection day records repository features; seven days later the row is
labeled by whether the repository appeared on a trending list in between.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
			slog.Debug("config loaded",
				"command", cmd.Name(),
				"db_path", cfg.DBPath,
				"sampled_hours", cfg.SampledHours,
				"lookback_days", cfg.LookbackDays,
				"github_token", cfg.HasGitHubToken(),
			)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String(config.KeyConfigFile, "", "Path to a YAML config file (default .repotrend.yaml in . or $HOME)")
	flags.String(config.KeyDBPath, "repotrend.db", "SQLite database file")
	flags.String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error")
	flags.Int(config.KeyMaxRetries, 3, "Retries for rate-limited or flaky upstream calls")
	flags.String(config.KeySampledHours, "12,23", "Comma-separated UTC hours sampled from the event archive")
	flags.Int(config.KeyLookbackDays, 7, "Days after collection that decide the label")
	flags.String(config.KeyArchiveURL, gharchive.DefaultBaseURL, "Event archive base URL")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored table output")
	mustBind(c.v, flags,
		config.KeyConfigFile,
		config.KeyDBPath,
		config.KeyLogLevel,
		config.KeyMaxRetries,
		config.KeySampledHours,
		config.KeyLookbackDays,
		config.KeyArchiveURL,
	)

	root.AddCommand(
		newBackfillCmd(c),
		newDailyCmd(c),
		newLabelCmd(c),
		newStatusCmd(c),
		newExportCmd(c),
	)

	return root
}

// mustBind binds each named flag to the viper key of the same name.
func mustBind(v *viper.Viper, flags *pflag.FlagSet, names ...string) {
	for _, name := range names {
		mustBindAs(v, name, flags, name)
	}
}

// mustBindAs binds flag to key. A missing flag is a programming error.
func mustBindAs(v *viper.Viper, key string, flags *pflag.FlagSet, flag string) {
	if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}
