package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// DailyPipeline runs once per scheduled invocation: it collects today's
// live trending candidates, publishes them unlabeled for same-day
// inference, and labels every Collected slot whose window has closed.
type DailyPipeline struct {
	cache     *ArchiveCache
	source    CandidateSource
	enricher  *FeatureEnricher
	unlabeled driven.UnlabeledStore
	history   driven.TrendingHistoryStore
	sink      driven.FeatureStoreSink
	labeler   *TrendingLabeler
	now       func() time.Time
}

// NewDailyPipeline wires a DailyPipeline.
func NewDailyPipeline(
	cache *ArchiveCache,
	source CandidateSource,
	enricher *FeatureEnricher,
	unlabeled driven.UnlabeledStore,
	history driven.TrendingHistoryStore,
	sink driven.FeatureStoreSink,
	labeler *TrendingLabeler,
) *DailyPipeline {
	return &DailyPipeline{
		cache:     cache,
		source:    source,
		enricher:  enricher,
		unlabeled: unlabeled,
		history:   history,
		sink:      sink,
		labeler:   labeler,
		now:       time.Now,
	}
}

// WithClock overrides the pipeline's notion of now.
func (p *DailyPipeline) WithClock(now func() time.Time) *DailyPipeline {
	p.now = now
	return p
}

// Run collects today and then sweeps labeling. A day-level failure (the
// live listing or the archive is unavailable) halts the run before any
// slot is written and skips the labeling sweep.
func (p *DailyPipeline) Run(ctx context.Context) (RunSummary, error) {
	began := time.Now()
	summary := RunSummary{Mode: "daily"}
	today := model.Day(p.now())

	slog.Info("daily run starting", "day", model.FormatDay(today), "source", p.source.Name())

	collected, dropped, err := p.collectToday(ctx, today)
	if err != nil {
		summary.DaysFailed = 1
		summary.Duration = time.Since(began)
		return summary, fmt.Errorf("daily %s: %w", model.FormatDay(today), err)
	}
	summary.DaysProcessed = 1
	summary.RowsCollected = collected
	summary.ReposDropped = dropped

	sweep, err := p.labeler.LabelClosed(ctx)
	summary.AddSweep(sweep)
	summary.Duration = time.Since(began)
	if err != nil {
		return summary, fmt.Errorf("label closed slots: %w", err)
	}

	if len(sweep.Labeled) == 0 {
		slog.Info("no slot ready for labeling",
			"next_labelable", model.FormatDay(model.AddDays(today, -p.labeler.LookbackDays())),
		)
	}

	return summary, nil
}

// collectToday nominates, records, enriches, saves and publishes today's
// rows. Velocity comes from the previous complete archive day because the
// current day's sampled hours are not yet published.
func (p *DailyPipeline) collectToday(ctx context.Context, today time.Time) (int, int, error) {
	candidates, err := p.source.ListCandidates(ctx, today)
	if err != nil {
		return 0, 0, err
	}
	if len(candidates) == 0 {
		slog.Warn("live trending listing is empty, nothing collected", "day", model.FormatDay(today))
		return 0, 0, nil
	}

	if err := p.history.Record(ctx, today, p.source.Name(), CandidateNames(candidates)); err != nil {
		return 0, 0, fmt.Errorf("record history: %w", err)
	}

	defer p.cache.Release()
	snap, err := p.cache.Populate(ctx, model.AddDays(today, -1))
	if err != nil {
		return 0, 0, err
	}

	res, err := p.enricher.EnrichBatch(ctx, candidates, snap)
	if err != nil {
		return 0, 0, err
	}
	p.cache.Release()

	if len(res.Rows) == 0 {
		slog.Warn("no rows enriched today", "day", model.FormatDay(today), "dropped", len(res.Dropped))
		return 0, len(res.Dropped), nil
	}

	if err := p.unlabeled.Save(ctx, today, res.Rows); err != nil {
		return 0, 0, fmt.Errorf("save collected slot: %w", err)
	}

	if err := p.sink.Upload(ctx, res.Rows, false); err != nil {
		return 0, 0, fmt.Errorf("upload unlabeled rows: %w", err)
	}

	slog.Info("today collected",
		"day", model.FormatDay(today),
		"rows", len(res.Rows),
		"dropped", len(res.Dropped),
	)

	return len(res.Rows), len(res.Dropped), nil
}
