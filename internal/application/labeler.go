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

// DefaultLookbackDays is the length of the forward window used to label a
// collection date.
const DefaultLookbackDays = 7

// LabelResult describes one slot moved from Collected to Labeled.
type LabelResult struct {
	CollectionDate time.Time
	Rows           int
	Trending       int
	NotTrending    int
}

// SweepResult is the outcome of labeling every Collected slot.
type SweepResult struct {
	Labeled  []LabelResult
	Deferred []time.Time
}

// TrendingLabeler moves Collected slots to Labeled once their whole
// lookback window [D+1, D+lookback] has candidate history.
type TrendingLabeler struct {
	store        driven.UnlabeledStore
	oracle       driven.CandidateOracle
	sink         driven.FeatureStoreSink
	lookbackDays int
}

// NewTrendingLabeler creates a TrendingLabeler.
func NewTrendingLabeler(store driven.UnlabeledStore, oracle driven.CandidateOracle, sink driven.FeatureStoreSink, lookbackDays int) *TrendingLabeler {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &TrendingLabeler{
		store:        store,
		oracle:       oracle,
		sink:         sink,
		lookbackDays: lookbackDays,
	}
}

// LookbackDays returns the configured window length.
func (l *TrendingLabeler) LookbackDays() int { return l.lookbackDays }

// WindowEnd returns the last day of the lookback window of collectionDate.
func (l *TrendingLabeler) WindowEnd(collectionDate time.Time) time.Time {
	return model.AddDays(collectionDate, l.lookbackDays)
}

// WindowAvailability counts how many days of collectionDate's window have
// an obtainable candidate list.
func (l *TrendingLabeler) WindowAvailability(ctx context.Context, collectionDate time.Time) (int, error) {
	available := 0
	for i := 1; i <= l.lookbackDays; i++ {
		_, err := l.oracle.CandidatesOn(ctx, model.AddDays(collectionDate, i))
		if errors.Is(err, driven.ErrNoCandidateHistory) {
			continue
		}
		if err != nil {
			return 0, err
		}
		available++
	}
	return available, nil
}

// windowCandidates collects the union of candidate lists over the whole
// window. Any missing day fails the call before anything is written.
func (l *TrendingLabeler) windowCandidates(ctx context.Context, collectionDate time.Time) (map[string]bool, error) {
	union := make(map[string]bool)
	for i := 1; i <= l.lookbackDays; i++ {
		day := model.AddDays(collectionDate, i)
		repos, err := l.oracle.CandidatesOn(ctx, day)
		if errors.Is(err, driven.ErrNoCandidateHistory) {
			return nil, fmt.Errorf("%s missing %s: %w", model.FormatDay(collectionDate), model.FormatDay(day), driven.ErrIncompleteLookbackWindow)
		}
		if err != nil {
			return nil, fmt.Errorf("candidates on %s: %w", model.FormatDay(day), err)
		}
		for _, r := range repos {
			union[r] = true
		}
	}
	return union, nil
}

// LabelSlot labels every row collected on collectionDate, uploads them as
// labeled and deletes the unlabeled slot. It returns an error wrapping
// driven.ErrIncompleteLookbackWindow, without any write, when the window is not
// fully available.
func (l *TrendingLabeler) LabelSlot(ctx context.Context, collectionDate time.Time) (LabelResult, error) {
	collectionDate = model.Day(collectionDate)
	result := LabelResult{CollectionDate: collectionDate}

	trending, err := l.windowCandidates(ctx, collectionDate)
	if err != nil {
		return result, err
	}

	rows, err := l.store.Load(ctx, collectionDate)
	if err != nil {
		return result, fmt.Errorf("load slot %s: %w", model.FormatDay(collectionDate), err)
	}

	for i := range rows {
		if err := rows[i].ApplyLabel(trending[rows[i].RepoName]); err != nil {
			return result, fmt.Errorf("label %s on %s: %w", rows[i].RepoName, model.FormatDay(collectionDate), err)
		}
		if rows[i].IsTrending == model.LabelTrending {
			result.Trending++
		} else {
			result.NotTrending++
		}
	}
	result.Rows = len(rows)

	if len(rows) > 0 {
		if err := l.sink.Upload(ctx, rows, true); err != nil {
			return result, fmt.Errorf("upload labeled %s: %w", model.FormatDay(collectionDate), err)
		}
	}

	if err := l.store.Delete(ctx, collectionDate); err != nil {
		return result, fmt.Errorf("delete slot %s: %w", model.FormatDay(collectionDate), err)
	}

	slog.Info("slot labeled",
		"collection_date", model.FormatDay(collectionDate),
		"rows", result.Rows,
		"trending", result.Trending,
		"not_trending", result.NotTrending,
	)

	return result, nil
}

// LabelClosed attempts LabelSlot for every Collected slot, oldest first.
// Slots with an incomplete window are deferred; any other failure stops
// the sweep.
func (l *TrendingLabeler) LabelClosed(ctx context.Context) (SweepResult, error) {
	var sweep SweepResult

	dates, err := l.store.ListDates(ctx)
	if err != nil {
		return sweep, fmt.Errorf("list collected slots: %w", err)
	}

	for _, d := range dates {
		if err := ctx.Err(); err != nil {
			return sweep, err
		}

		res, err := l.LabelSlot(ctx, d)
		if errors.Is(err, driven.ErrIncompleteLookbackWindow) {
			slog.Info("labeling deferred",
				"collection_date", model.FormatDay(d),
				"window_end", model.FormatDay(l.WindowEnd(d)),
				"reason", err,
			)
			sweep.Deferred = append(sweep.Deferred, d)
			continue
		}
		if err != nil {
			return sweep, err
		}
		sweep.Labeled = append(sweep.Labeled, res)
	}

	return sweep, nil
}
