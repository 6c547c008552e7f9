package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// ErrLabelMismatch is returned by FeatureStoreSink.Upload when a row's label
// state contradicts the labeled flag of the upload.
var ErrLabelMismatch = errors.New("row label does not match upload kind")

// FeatureStoreSink is the append-only feature store. Uploads are idempotent
// by (repo_name, collection_date): re-uploading a row replaces it.
// When labeled is true every row must carry a resolved label; when false
// every row must carry the placeholder label.
type FeatureStoreSink interface {
	Upload(ctx context.Context, rows []model.FeatureRow, labeled bool) error
}

// FeatureReader reads rows back from the feature store.
type FeatureReader interface {
	ListLabeled(ctx context.Context) ([]model.FeatureRow, error)
	// ListByDate returns every row collected on day, whatever its label.
	ListByDate(ctx context.Context, day time.Time) ([]model.FeatureRow, error)
}
