package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// ErrNothingCollected is returned by BackfillPipeline.Run when every day of
// the range failed.
var ErrNothingCollected = errors.New("no day of the range could be collected")

// BackfillPipeline bootstraps labeled history from the event archive: for
// each day of a range it caches the archive, nominates candidates, enriches
// them and saves the day as Collected. Labeling runs once after the range.
type BackfillPipeline struct {
	cache     *ArchiveCache
	source    CandidateSource
	enricher  *FeatureEnricher
	unlabeled driven.UnlabeledStore
	history   driven.TrendingHistoryStore
	labeler   *TrendingLabeler
}

// NewBackfillPipeline wires a BackfillPipeline. source normally reads from
// the same cache the pipeline populates.
func NewBackfillPipeline(
	cache *ArchiveCache,
	source CandidateSource,
	enricher *FeatureEnricher,
	unlabeled driven.UnlabeledStore,
	history driven.TrendingHistoryStore,
	labeler *TrendingLabeler,
) *BackfillPipeline {
	return &BackfillPipeline{
		cache:     cache,
		source:    source,
		enricher:  enricher,
		unlabeled: unlabeled,
		history:   history,
		labeler:   labeler,
	}
}

// BackfillRange returns the default range [end-days, end] where end is
// lookback days before today. Both ends are inclusive, so the range spans
// days+1 days.
func BackfillRange(today time.Time, days, lookback int) (time.Time, time.Time) {
	end := model.AddDays(today, -lookback)
	return model.AddDays(end, -days), end
}

// Run collects every day in [start, end] in order, then labels every slot
// whose window has closed. A day whose archive is unavailable is counted
// as failed and skipped; any other failure aborts the run.
func (p *BackfillPipeline) Run(ctx context.Context, start, end time.Time) (RunSummary, error) {
	began := time.Now()
	summary := RunSummary{Mode: "backfill"}

	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return summary, fmt.Errorf("backfill range %s..%s is empty", model.FormatDay(start), model.FormatDay(end))
	}

	total := int(end.Sub(start).Hours()/24) + 1
	slog.Info("backfill starting",
		"start", model.FormatDay(start),
		"end", model.FormatDay(end),
		"days", total,
		"source", p.source.Name(),
	)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		day := model.AddDays(start, i)
		slog.Info("processing day", "day", model.FormatDay(day), "index", i+1, "of", total)

		collected, dropped, err := p.collectDay(ctx, day)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			if !errors.Is(err, driven.ErrSourceUnavailable) {
				summary.Duration = time.Since(began)
				return summary, fmt.Errorf("backfill %s: %w", model.FormatDay(day), err)
			}
			slog.Error("day skipped", "day", model.FormatDay(day), "error", err)
			summary.DaysFailed++
			continue
		}

		summary.DaysProcessed++
		summary.RowsCollected += collected
		summary.ReposDropped += dropped
	}

	if summary.DaysProcessed == 0 {
		summary.Duration = time.Since(began)
		return summary, ErrNothingCollected
	}

	sweep, err := p.labeler.LabelClosed(ctx)
	summary.AddSweep(sweep)
	summary.Duration = time.Since(began)
	if err != nil {
		return summary, fmt.Errorf("label backfilled slots: %w", err)
	}

	return summary, nil
}

// collectDay runs one day with the archive snapshot held only for its
// duration.
func (p *BackfillPipeline) collectDay(ctx context.Context, day time.Time) (int, int, error) {
	defer p.cache.Release()

	snap, err := p.cache.Populate(ctx, day)
	if err != nil {
		return 0, 0, err
	}

	candidates, err := p.source.ListCandidates(ctx, day)
	if err != nil {
		return 0, 0, err
	}
	// An empty ranking from an available archive is still a valid history day.
	if err := p.history.Record(ctx, day, p.source.Name(), CandidateNames(candidates)); err != nil {
		return 0, 0, fmt.Errorf("record history: %w", err)
	}
	if len(candidates) == 0 {
		slog.Warn("no candidates for day", "day", model.FormatDay(day))
		return 0, 0, nil
	}

	res, err := p.enricher.EnrichBatch(ctx, candidates, snap)
	if err != nil {
		return 0, 0, err
	}

	if len(res.Rows) == 0 {
		slog.Warn("no rows enriched for day", "day", model.FormatDay(day))
		return 0, len(res.Dropped), nil
	}

	if err := p.unlabeled.Save(ctx, day, res.Rows); err != nil {
		return 0, 0, fmt.Errorf("save collected slot: %w", err)
	}

	return len(res.Rows), len(res.Dropped), nil
}
