package application

import (
	"log/slog"
	"time"
)

// RunSummary aggregates the outcome of one pipeline invocation.
type RunSummary struct {
	Mode          string
	DaysProcessed int
	DaysFailed    int
	RowsCollected int
	ReposDropped  int
	SlotsLabeled  int
	SlotsDeferred int
	Trending      int
	NotTrending   int
	Duration      time.Duration
}

// AddSweep folds a labeling sweep into the summary.
func (s *RunSummary) AddSweep(sweep SweepResult) {
	s.SlotsLabeled += len(sweep.Labeled)
	s.SlotsDeferred += len(sweep.Deferred)
	for _, r := range sweep.Labeled {
		s.Trending += r.Trending
		s.NotTrending += r.NotTrending
	}
}

// Log writes the summary as one structured record.
func (s RunSummary) Log() {
	slog.Info("pipeline summary",
		"mode", s.Mode,
		"days_processed", s.DaysProcessed,
		"days_failed", s.DaysFailed,
		"rows_collected", s.RowsCollected,
		"repos_dropped", s.ReposDropped,
		"slots_labeled", s.SlotsLabeled,
		"slots_deferred", s.SlotsDeferred,
		"trending", s.Trending,
		"not_trending", s.NotTrending,
		"duration", s.Duration.Round(time.Millisecond),
	)
}
