package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// DefaultTopN is the number of candidates BackfillSource nominates per day.
const DefaultTopN = 50

// Source names recorded alongside candidate history.
const (
	SourceBackfill = "backfill"
	SourceDaily    = "daily"
)

// CandidateSource nominates the trending candidates for a day. The list is
// ordered by the source's own rank and is empty, not an error, when the
// source has no data for the day.
type CandidateSource interface {
	Name() string
	ListCandidates(ctx context.Context, day time.Time) ([]model.CandidateRepo, error)
}

// Compile-time interface satisfaction checks.
var (
	_ CandidateSource = (*BackfillSource)(nil)
	_ CandidateSource = (*DailySource)(nil)
)

// BackfillSource ranks the repositories of the day's archive snapshot by
// star velocity and nominates the top N. The snapshot must already be held
// by the cache.
type BackfillSource struct {
	cache *ArchiveCache
	topN  int
}

// NewBackfillSource creates a BackfillSource reading from cache.
func NewBackfillSource(cache *ArchiveCache, topN int) *BackfillSource {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &BackfillSource{cache: cache, topN: topN}
}

// Name implements CandidateSource.
func (s *BackfillSource) Name() string { return SourceBackfill }

// ListCandidates returns the top N repositories by star velocity, ties
// broken by repository name so identical snapshots rank identically.
func (s *BackfillSource) ListCandidates(_ context.Context, day time.Time) ([]model.CandidateRepo, error) {
	snap, err := s.cache.Current(day)
	if err != nil {
		return nil, fmt.Errorf("backfill candidates: %w", err)
	}

	return RankByVelocity(snap, s.topN), nil
}

// RankByVelocity orders every repository in snap by star velocity
// descending, then by name ascending, and keeps the first n.
func RankByVelocity(snap *ArchiveSnapshot, n int) []model.CandidateRepo {
	type scored struct {
		name     string
		velocity int
	}

	repos := snap.Repos()
	all := make([]scored, 0, len(repos))
	for _, name := range repos {
		all = append(all, scored{name: name, velocity: snap.Velocity(name).StarVelocity})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].velocity != all[j].velocity {
			return all[i].velocity > all[j].velocity
		}
		return all[i].name < all[j].name
	})

	if len(all) > n {
		all = all[:n]
	}

	candidates := make([]model.CandidateRepo, 0, len(all))
	for i, sc := range all {
		candidates = append(candidates, model.CandidateRepo{
			RepoName: sc.name,
			Day:      snap.Day(),
			Rank:     i + 1,
		})
	}
	return candidates
}

// DailySource nominates the repositories on the live trending listing in
// their published order.
type DailySource struct {
	provider driven.LiveTrendingProvider
}

// NewDailySource creates a DailySource backed by provider.
func NewDailySource(provider driven.LiveTrendingProvider) *DailySource {
	return &DailySource{provider: provider}
}

// Name implements CandidateSource.
func (s *DailySource) Name() string { return SourceDaily }

// ListCandidates returns the live listing. Entries without a valid
// owner/name identity and duplicates are skipped.
func (s *DailySource) ListCandidates(ctx context.Context, day time.Time) ([]model.CandidateRepo, error) {
	entries, err := s.provider.Fetch(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("daily candidates: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	candidates := make([]model.CandidateRepo, 0, len(entries))
	for _, e := range entries {
		if e.Owner == "" || e.Name == "" || strings.Contains(e.Name, "/") {
			slog.Debug("skipping malformed trending entry", "owner", e.Owner, "name", e.Name)
			continue
		}
		name := e.FullName()
		if seen[name] {
			continue
		}
		seen[name] = true
		candidates = append(candidates, model.CandidateRepo{
			RepoName: name,
			Day:      model.Day(day),
			Rank:     len(candidates) + 1,
		})
	}

	return candidates, nil
}

// CandidateNames extracts the repository identities in order.
func CandidateNames(candidates []model.CandidateRepo) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.RepoName
	}
	return names
}
