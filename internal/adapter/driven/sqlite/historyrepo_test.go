package sqlite

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

func TestHistoryRepo_RecordAndRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")

	require.NoError(t, repo.Record(ctx, d, "backfill", []string{"acme/a", "acme/b"}))

	got, err := repo.CandidatesOn(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/a", "acme/b"}, got)
}

func TestHistoryRepo_RecordReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")

	require.NoError(t, repo.Record(ctx, d, "backfill", []string{"acme/a"}))
	require.NoError(t, repo.Record(ctx, d, "daily", []string{"acme/c"}))

	got, err := repo.CandidatesOn(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/c"}, got)
}

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestHistoryRepo_WarnsWhenSourceChanges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")
	logs := captureLogs(t)

	require.NoError(t, repo.Record(ctx, d, "daily", []string{"acme/a"}))
	require.NoError(t, repo.Record(ctx, d, "daily", []string{"acme/b"}))
	assert.Empty(t, logs.String(), "same-source rewrite is silent")

	require.NoError(t, repo.Record(ctx, d, "backfill", []string{"acme/c"}))
	assert.Contains(t, logs.String(), "replacing candidate history")
	assert.Contains(t, logs.String(), "previous_source=daily")
	assert.Contains(t, logs.String(), "source=backfill")

	days, err := repo.ListDays(ctx, d, d)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "backfill", days[0].Source)
}

func TestHistoryRepo_EmptyListIsRecorded(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")

	require.NoError(t, repo.Record(ctx, d, "backfill", nil))

	got, err := repo.CandidatesOn(ctx, d)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryRepo_MissingDay(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepo(db)

	_, err := repo.CandidatesOn(context.Background(), testDay("2026-03-01"))
	require.ErrorIs(t, err, driven.ErrNoCandidateHistory)
}

func TestHistoryRepo_ListDays(t *testing.T) {
	db := setupTestDB(t)
	repo := NewHistoryRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, testDay("2026-03-01"), "backfill", []string{"a/a", "b/b", "c/c"}))
	require.NoError(t, repo.Record(ctx, testDay("2026-03-03"), "daily", []string{"a/a"}))
	require.NoError(t, repo.Record(ctx, testDay("2026-03-09"), "daily", []string{"a/a"}))

	days, err := repo.ListDays(ctx, testDay("2026-03-01"), testDay("2026-03-05"))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "backfill", days[0].Source)
	assert.Equal(t, 3, days[0].Candidates)
	assert.Equal(t, "daily", days[1].Source)
}
