package driven

import (
	"context"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// RepoMetadataProvider fetches live repository metadata.
// Fetch returns ErrNotFound for deleted or unknown repositories and
// ErrRateLimited when the API quota is exhausted.
type RepoMetadataProvider interface {
	Fetch(ctx context.Context, repoFullName string) (*model.RepoMetadata, error)
}
