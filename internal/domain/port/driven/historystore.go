package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// CandidateOracle answers which repositories were trending candidates on a
// day. CandidatesOn returns ErrNoCandidateHistory when the day's list is not
// obtainable.
type CandidateOracle interface {
	CandidatesOn(ctx context.Context, day time.Time) ([]string, error)
}

// TrendingHistoryStore records every candidate list a source produced.
// Record replaces any list previously recorded for the day.
type TrendingHistoryStore interface {
	CandidateOracle
	Record(ctx context.Context, day time.Time, source string, repos []string) error
}

// HistoryLister summarizes recorded candidate history for reporting.
type HistoryLister interface {
	ListDays(ctx context.Context, from, to time.Time) ([]model.HistoryDay, error)
}
