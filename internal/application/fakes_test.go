package application_test

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockEventLog struct {
	events map[string][]model.ArchiveEvent // keyed by YYYY-MM-DD
	fail   map[string]bool
	calls  []string
}

func newMockEventLog() *mockEventLog {
	return &mockEventLog{
		events: make(map[string][]model.ArchiveEvent),
		fail:   make(map[string]bool),
	}
}

// addStars appends n star events for repo, spread round-robin over hours.
func (m *mockEventLog) addStars(day time.Time, repo string, n int, hours []int) {
	key := model.FormatDay(day)
	for i := 0; i < n; i++ {
		m.events[key] = append(m.events[key], model.ArchiveEvent{
			RepoName: repo,
			Type:     model.EventTypeStar,
			Hour:     hours[i%len(hours)],
		})
	}
}

func (m *mockEventLog) addCommits(day time.Time, repo string, n int, hour int) {
	key := model.FormatDay(day)
	for i := 0; i < n; i++ {
		m.events[key] = append(m.events[key], model.ArchiveEvent{
			RepoName: repo,
			Type:     model.EventTypeCommit,
			Hour:     hour,
		})
	}
}

func (m *mockEventLog) Fetch(_ context.Context, day time.Time, _ []int) ([]model.ArchiveEvent, error) {
	key := model.FormatDay(day)
	m.calls = append(m.calls, key)
	if m.fail[key] {
		return nil, fmt.Errorf("hour file for %s: %w", key, driven.ErrSourceUnavailable)
	}
	return m.events[key], nil
}

type mockMetadata struct {
	meta  map[string]model.RepoMetadata
	errs  map[string][]error // consumed one per call, then meta is returned
	calls map[string]int
}

func newMockMetadata() *mockMetadata {
	return &mockMetadata{
		meta:  make(map[string]model.RepoMetadata),
		errs:  make(map[string][]error),
		calls: make(map[string]int),
	}
}

func (m *mockMetadata) set(repo string, stars, forks int, lang string, created time.Time) {
	m.meta[repo] = model.RepoMetadata{
		FullName:   repo,
		StarsTotal: stars,
		ForksTotal: forks,
		Language:   lang,
		CreatedAt:  created,
	}
}

func (m *mockMetadata) Fetch(_ context.Context, repo string) (*model.RepoMetadata, error) {
	m.calls[repo]++
	if errs := m.errs[repo]; len(errs) > 0 {
		m.errs[repo] = errs[1:]
		return nil, errs[0]
	}
	meta, ok := m.meta[repo]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", repo, driven.ErrNotFound)
	}
	return &meta, nil
}

type mockTrending struct {
	entries []model.TrendingEntry
	err     error
}

func (m *mockTrending) Fetch(_ context.Context, _ time.Time) ([]model.TrendingEntry, error) {
	return m.entries, m.err
}

func trendingEntries(names ...string) []model.TrendingEntry {
	entries := make([]model.TrendingEntry, 0, len(names))
	for _, n := range names {
		owner, name, _ := strings.Cut(n, "/")
		entries = append(entries, model.TrendingEntry{Owner: owner, Name: name})
	}
	return entries
}

type mockUnlabeledStore struct {
	slots   map[string][]model.FeatureRow
	deletes []string
}

func newMockUnlabeledStore() *mockUnlabeledStore {
	return &mockUnlabeledStore{slots: make(map[string][]model.FeatureRow)}
}

func (m *mockUnlabeledStore) Save(_ context.Context, d time.Time, rows []model.FeatureRow) error {
	m.slots[model.FormatDay(d)] = slices.Clone(rows)
	return nil
}

func (m *mockUnlabeledStore) Load(_ context.Context, d time.Time) ([]model.FeatureRow, error) {
	rows, ok := m.slots[model.FormatDay(d)]
	if !ok {
		return nil, driven.ErrSlotNotFound
	}
	return slices.Clone(rows), nil
}

func (m *mockUnlabeledStore) Delete(_ context.Context, d time.Time) error {
	key := model.FormatDay(d)
	delete(m.slots, key)
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *mockUnlabeledStore) ListDates(_ context.Context) ([]time.Time, error) {
	keys := make([]string, 0, len(m.slots))
	for k := range m.slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	dates := make([]time.Time, 0, len(keys))
	for _, k := range keys {
		d, err := model.ParseDay(k)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

type mockHistory struct {
	lists   map[string][]string
	sources map[string]string
}

func newMockHistory() *mockHistory {
	return &mockHistory{
		lists:   make(map[string][]string),
		sources: make(map[string]string),
	}
}

func (m *mockHistory) Record(_ context.Context, d time.Time, source string, repos []string) error {
	m.lists[model.FormatDay(d)] = slices.Clone(repos)
	m.sources[model.FormatDay(d)] = source
	return nil
}

func (m *mockHistory) CandidatesOn(_ context.Context, d time.Time) ([]string, error) {
	repos, ok := m.lists[model.FormatDay(d)]
	if !ok {
		return nil, driven.ErrNoCandidateHistory
	}
	return repos, nil
}

func (m *mockHistory) ListDays(_ context.Context, from, to time.Time) ([]model.HistoryDay, error) {
	var days []model.HistoryDay
	for key, repos := range m.lists {
		d, err := model.ParseDay(key)
		if err != nil {
			return nil, err
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		days = append(days, model.HistoryDay{Day: d, Source: m.sources[key], Candidates: len(repos)})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

type uploadCall struct {
	Rows    []model.FeatureRow
	Labeled bool
}

type mockSink struct {
	uploads []uploadCall
}

func (m *mockSink) Upload(_ context.Context, rows []model.FeatureRow, labeled bool) error {
	m.uploads = append(m.uploads, uploadCall{Rows: slices.Clone(rows), Labeled: labeled})
	return nil
}

func (m *mockSink) labeledRows() []model.FeatureRow {
	var out []model.FeatureRow
	for _, u := range m.uploads {
		if u.Labeled {
			out = append(out, u.Rows...)
		}
	}
	return out
}

// --- Helpers ---

func day(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func findRow(rows []model.FeatureRow, repo string) (model.FeatureRow, bool) {
	for _, r := range rows {
		if r.RepoName == repo {
			return r, true
		}
	}
	return model.FeatureRow{}, false
}
