package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// UnlabeledStore persists collected, not-yet-labeled rows. There is one slot
// per collection date. Save overwrites an existing slot. Load returns
// ErrSlotNotFound if the slot does not exist.
type UnlabeledStore interface {
	Save(ctx context.Context, collectionDate time.Time, rows []model.FeatureRow) error
	Load(ctx context.Context, collectionDate time.Time) ([]model.FeatureRow, error)
	Delete(ctx context.Context, collectionDate time.Time) error
	// ListDates returns every collection date with a slot, oldest first.
	ListDates(ctx context.Context) ([]time.Time, error)
}
