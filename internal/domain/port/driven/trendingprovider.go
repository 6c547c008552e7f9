package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// LiveTrendingProvider returns the live trending listing in its published
// order. The listing always reflects "now"; day is informational.
// Fetch fails with ErrSourceUnavailable when the listing cannot be retrieved.
type LiveTrendingProvider interface {
	Fetch(ctx context.Context, day time.Time) ([]model.TrendingEntry, error)
}
