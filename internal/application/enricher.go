package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
	"github.com/ericfisherdev/repotrend/internal/retry"
)

// EnrichResult is the outcome of enriching one day's candidates.
type EnrichResult struct {
	Rows    []model.FeatureRow
	Dropped []string // Candidates whose metadata could not be fetched.
}

// FeatureEnricher joins live repository metadata with archive velocity into
// feature rows.
type FeatureEnricher struct {
	metadata driven.RepoMetadataProvider
	retry    retry.Policy
}

// NewFeatureEnricher creates a FeatureEnricher. Rate-limited metadata calls
// are retried under policy.
func NewFeatureEnricher(metadata driven.RepoMetadataProvider, policy retry.Policy) *FeatureEnricher {
	return &FeatureEnricher{metadata: metadata, retry: policy}
}

// Enrich builds the unlabeled row for one candidate. The error wraps
// driven.ErrNotFound or driven.ErrRateLimited when metadata is unobtainable.
func (e *FeatureEnricher) Enrich(ctx context.Context, candidate model.CandidateRepo, snap *ArchiveSnapshot) (model.FeatureRow, error) {
	meta, err := e.fetchMetadata(ctx, candidate.RepoName)
	if err != nil {
		return model.FeatureRow{}, err
	}

	var v model.Velocity
	if snap != nil {
		v = snap.Velocity(candidate.RepoName)
	}

	// The candidate name is the row identity; labels are matched against
	// candidate lists, not against the API's canonical name.
	meta.FullName = candidate.RepoName

	return model.NewFeatureRow(candidate.Day, *meta, v), nil
}

// EnrichBatch enriches every candidate sequentially. A candidate whose
// metadata fetch fails is dropped and the batch continues. Only context
// cancellation aborts the batch.
func (e *FeatureEnricher) EnrichBatch(ctx context.Context, candidates []model.CandidateRepo, snap *ArchiveSnapshot) (EnrichResult, error) {
	start := time.Now()
	result := EnrichResult{Rows: make([]model.FeatureRow, 0, len(candidates))}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := e.Enrich(ctx, c, snap)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			slog.Warn("dropping candidate", "repo", c.RepoName, "error", err)
			result.Dropped = append(result.Dropped, c.RepoName)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	slog.Info("enrichment complete",
		"candidates", len(candidates),
		"enriched", len(result.Rows),
		"dropped", len(result.Dropped),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return result, nil
}

// fetchMetadata retries rate-limited fetches; every other failure is final.
func (e *FeatureEnricher) fetchMetadata(ctx context.Context, repoName string) (*model.RepoMetadata, error) {
	var meta *model.RepoMetadata
	err := e.retry.Do(ctx, "fetch metadata "+repoName, func() error {
		m, err := e.metadata.Fetch(ctx, repoName)
		if err != nil {
			if errors.Is(err, driven.ErrRateLimited) {
				return err
			}
			return retry.Permanent(err)
		}
		if m == nil {
			return retry.Permanent(driven.ErrNotFound)
		}
		meta = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("metadata for %s: %w", repoName, err)
	}
	return meta, nil
}
