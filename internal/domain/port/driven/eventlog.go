package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// BulkEventLogProvider fetches the archived public event log for a day.
// Only the listed hours of the day are fetched. Fetch fails with
// ErrSourceUnavailable when any requested hour cannot be obtained.
type BulkEventLogProvider interface {
	Fetch(ctx context.Context, day time.Time, hours []int) ([]model.ArchiveEvent, error)
}
