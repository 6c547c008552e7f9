package application_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repotrend/internal/application"
	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
	"github.com/ericfisherdev/repotrend/internal/retry"
)

type dailyFixture struct {
	log      *mockEventLog
	meta     *mockMetadata
	trending *mockTrending
	store    *mockUnlabeledStore
	history  *mockHistory
	sink     *mockSink
	pipeline *application.DailyPipeline
}

func newDailyFixture(now time.Time) *dailyFixture {
	f := &dailyFixture{
		log:      newMockEventLog(),
		meta:     newMockMetadata(),
		trending: &mockTrending{},
		store:    newMockUnlabeledStore(),
		history:  newMockHistory(),
		sink:     &mockSink{},
	}
	labeler := application.NewTrendingLabeler(f.store, f.history, f.sink, 7)
	f.pipeline = application.NewDailyPipeline(
		application.NewArchiveCache(f.log, []int{12, 23}),
		application.NewDailySource(f.trending),
		application.NewFeatureEnricher(f.meta, retry.Immediate(1)),
		f.store,
		f.history,
		f.sink,
		labeler,
	).WithClock(func() time.Time { return now })
	return f
}

func TestDailyPipeline_CollectsAndLabelsClosedSlot(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	today, old := day("2026-03-10"), day("2026-03-03")
	f := newDailyFixture(now)

	f.trending.entries = trendingEntries("x/a", "x/b")
	f.log.addStars(day("2026-03-09"), "x/a", 2, []int{12, 23})
	f.meta.set("x/a", 100, 10, "Go", today.AddDate(0, 0, -10))
	f.meta.set("x/b", 200, 20, "Zig", today.AddDate(0, 0, -20))

	require.NoError(t, f.store.Save(context.Background(), old, []model.FeatureRow{placeholderRow(old, "x/b")}))
	for i := 1; i <= 6; i++ {
		_ = f.history.Record(context.Background(), model.AddDays(old, i), application.SourceDaily, []string{"y/other"})
	}

	summary, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "daily", summary.Mode)
	assert.Equal(t, 1, summary.DaysProcessed)
	assert.Equal(t, 2, summary.RowsCollected)
	assert.Equal(t, 1, summary.SlotsLabeled)
	assert.Equal(t, 1, summary.SlotsDeferred)
	assert.Equal(t, 1, summary.Trending, "x/b is on today's listing, which closes the old window")

	// Velocity is read from yesterday's archive.
	assert.Equal(t, []string{"2026-03-09"}, f.log.calls)
	assert.Equal(t, []string{"x/a", "x/b"}, f.history.lists["2026-03-10"])

	require.Len(t, f.sink.uploads, 2)
	unlabeled := f.sink.uploads[0]
	assert.False(t, unlabeled.Labeled)
	require.Len(t, unlabeled.Rows, 2)
	a, _ := findRow(unlabeled.Rows, "x/a")
	assert.Equal(t, 24, a.StarVelocity)
	assert.Equal(t, model.LabelPlaceholder, a.IsTrending)
	assert.True(t, a.CollectionDate.Equal(today))

	labeled := f.sink.uploads[1]
	assert.True(t, labeled.Labeled)
	require.Len(t, labeled.Rows, 1)
	assert.Equal(t, model.LabelTrending, labeled.Rows[0].IsTrending)

	_, err = f.store.Load(context.Background(), today)
	require.NoError(t, err, "today's slot stays collected")
}

func TestDailyPipeline_TrendingUnavailableHalts(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	old := day("2026-03-03")
	f := newDailyFixture(now)
	f.trending.err = fmt.Errorf("trending page: %w", driven.ErrSourceUnavailable)

	require.NoError(t, f.store.Save(context.Background(), old, []model.FeatureRow{placeholderRow(old, "x/b")}))
	for i := 1; i <= 7; i++ {
		_ = f.history.Record(context.Background(), model.AddDays(old, i), application.SourceDaily, nil)
	}

	summary, err := f.pipeline.Run(context.Background())
	require.ErrorIs(t, err, driven.ErrSourceUnavailable)
	assert.Equal(t, 1, summary.DaysFailed)
	assert.Empty(t, f.sink.uploads, "labeling is skipped")
	assert.Len(t, f.store.slots, 1)
}

func TestDailyPipeline_ArchiveUnavailableWritesNoSlot(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	f := newDailyFixture(now)
	f.trending.entries = trendingEntries("x/a")
	f.meta.set("x/a", 1, 0, "Go", now)
	f.log.fail["2026-03-09"] = true

	_, err := f.pipeline.Run(context.Background())
	require.ErrorIs(t, err, driven.ErrSourceUnavailable)
	assert.Empty(t, f.store.slots)
	assert.Empty(t, f.sink.uploads)
}

func TestDailyPipeline_EmptyListing(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f := newDailyFixture(now)

	summary, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.RowsCollected)
	assert.Empty(t, f.log.calls)

	_, err = f.history.CandidatesOn(context.Background(), day("2026-03-10"))
	require.ErrorIs(t, err, driven.ErrNoCandidateHistory, "an empty live page records no history")
}
