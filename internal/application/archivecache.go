// Package application contains the feature-collection and delayed-labeling
// use cases: archive caching, candidate selection, enrichment, labeling and
// the backfill and daily orchestrators.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// DefaultSampledHours are the UTC hours fetched from the archive per day.
var DefaultSampledHours = []int{12, 23}

// ErrNoSnapshot is returned when no archive snapshot is held for the
// requested day.
var ErrNoSnapshot = errors.New("no archive snapshot for day")

// ArchiveSnapshot is one day's archive indexed by repository. It is built by
// a single fetch and answers every lookup for that day from memory.
type ArchiveSnapshot struct {
	day    time.Time
	hours  []int
	counts map[string]model.RawCounts
}

// Day returns the calendar day the snapshot covers.
func (s *ArchiveSnapshot) Day() time.Time { return s.day }

// SampledHours returns a copy of the hours the snapshot was built from.
func (s *ArchiveSnapshot) SampledHours() []int { return slices.Clone(s.hours) }

// Len returns the number of repositories with star or commit activity.
func (s *ArchiveSnapshot) Len() int { return len(s.counts) }

// Lookup returns the per-hour counts for a repository.
func (s *ArchiveSnapshot) Lookup(repoName string) (model.RawCounts, bool) {
	rc, ok := s.counts[repoName]
	return rc, ok
}

// Velocity extrapolates the repository's sampled counts to a 24h estimate.
// Repositories absent from the snapshot have zero velocity.
func (s *ArchiveSnapshot) Velocity(repoName string) model.Velocity {
	rc, _ := s.Lookup(repoName)
	return ExtractVelocity(rc, s.hours, DefaultTotalHours)
}

// Repos returns every repository in the snapshot in lexical order.
func (s *ArchiveSnapshot) Repos() []string {
	names := make([]string, 0, len(s.counts))
	for name := range s.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewArchiveSnapshot indexes events for day, keeping only the sampled hours.
func NewArchiveSnapshot(day time.Time, hours []int, events []model.ArchiveEvent) *ArchiveSnapshot {
	snap := &ArchiveSnapshot{
		day:    model.Day(day),
		hours:  slices.Clone(hours),
		counts: make(map[string]model.RawCounts),
	}
	for _, ev := range events {
		if ev.RepoName == "" || !slices.Contains(hours, ev.Hour) {
			continue
		}
		if ev.Type != model.EventTypeStar && ev.Type != model.EventTypeCommit {
			continue
		}
		rc, ok := snap.counts[ev.RepoName]
		if !ok {
			rc = make(model.RawCounts)
			snap.counts[ev.RepoName] = rc
		}
		rc.Add(ev.Hour, ev.Type)
	}
	return snap
}

// ArchiveCache owns at most one ArchiveSnapshot at a time. Populate fetches
// a day once; every repository queried that day is answered from the held
// snapshot. Callers release it before advancing to the next day.
type ArchiveCache struct {
	provider driven.BulkEventLogProvider
	hours    []int
	current  *ArchiveSnapshot
}

// NewArchiveCache creates a cache that samples the given hours from provider.
func NewArchiveCache(provider driven.BulkEventLogProvider, hours []int) *ArchiveCache {
	if len(hours) == 0 {
		hours = DefaultSampledHours
	}
	return &ArchiveCache{
		provider: provider,
		hours:    slices.Clone(hours),
	}
}

// Populate fetches the archive for day and makes it the held snapshot,
// replacing any previous one. A fetch failure is returned wrapped with
// driven.ErrSourceUnavailable and leaves the cache empty.
func (c *ArchiveCache) Populate(ctx context.Context, day time.Time) (*ArchiveSnapshot, error) {
	c.Release()

	day = model.Day(day)
	start := time.Now()

	events, err := c.provider.Fetch(ctx, day, c.hours)
	if err != nil {
		if errors.Is(err, driven.ErrSourceUnavailable) {
			return nil, fmt.Errorf("populate archive for %s: %w", model.FormatDay(day), err)
		}
		return nil, fmt.Errorf("populate archive for %s: %w: %w", model.FormatDay(day), driven.ErrSourceUnavailable, err)
	}

	c.current = NewArchiveSnapshot(day, c.hours, events)

	slog.Info("archive cached",
		"day", model.FormatDay(day),
		"hours", c.hours,
		"events", len(events),
		"repos", c.current.Len(),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return c.current, nil
}

// Current returns the held snapshot if it covers day.
func (c *ArchiveCache) Current(day time.Time) (*ArchiveSnapshot, error) {
	if c.current == nil || !c.current.day.Equal(model.Day(day)) {
		return nil, fmt.Errorf("%s: %w", model.FormatDay(day), ErrNoSnapshot)
	}
	return c.current, nil
}

// Release drops the held snapshot.
func (c *ArchiveCache) Release() {
	c.current = nil
}

// SampledHours returns the hours this cache fetches per day.
func (c *ArchiveCache) SampledHours() []int {
	return slices.Clone(c.hours)
}
