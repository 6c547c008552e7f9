package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

func TestUnlabeledRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUnlabeledRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")

	rows := []model.FeatureRow{
		makeRow("zed/b", "2026-03-01", 100, 10, 24),
		makeRow("acme/a", "2026-03-01", 500, 50, 120),
	}
	require.NoError(t, repo.Save(ctx, d, rows))

	got, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "acme/a", got[0].RepoName)
	assert.Equal(t, rows[1], got[0], "row survives the round trip")
	assert.Equal(t, model.LabelPlaceholder, got[1].IsTrending)
}

func TestUnlabeledRepo_SaveOverwritesSlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUnlabeledRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")

	require.NoError(t, repo.Save(ctx, d, []model.FeatureRow{
		makeRow("acme/a", "2026-03-01", 1, 0, 0),
		makeRow("acme/b", "2026-03-01", 1, 0, 0),
	}))
	require.NoError(t, repo.Save(ctx, d, []model.FeatureRow{
		makeRow("acme/a", "2026-03-01", 9, 1, 12),
	}))

	got, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].StarsTotal)
}

func TestUnlabeledRepo_EmptySlotExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUnlabeledRepo(db)
	ctx := context.Background()
	d := testDay("2026-03-01")

	require.NoError(t, repo.Save(ctx, d, nil))

	got, err := repo.Load(ctx, d)
	require.NoError(t, err)
	assert.Empty(t, got)

	dates, err := repo.ListDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 1)
}

func TestUnlabeledRepo_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUnlabeledRepo(db)

	_, err := repo.Load(context.Background(), testDay("2026-03-01"))
	require.ErrorIs(t, err, driven.ErrSlotNotFound)
}

func TestUnlabeledRepo_DeleteAndListDates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUnlabeledRepo(db)
	ctx := context.Background()

	for _, s := range []string{"2026-03-03", "2026-03-01", "2026-03-02"} {
		require.NoError(t, repo.Save(ctx, testDay(s), []model.FeatureRow{makeRow("acme/a", s, 1, 0, 0)}))
	}

	dates, err := repo.ListDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2026-03-01", model.FormatDay(dates[0]))
	assert.Equal(t, "2026-03-03", model.FormatDay(dates[2]))

	require.NoError(t, repo.Delete(ctx, testDay("2026-03-02")))
	require.NoError(t, repo.Delete(ctx, testDay("2026-03-02")), "deleting twice is a no-op")

	_, err = repo.Load(ctx, testDay("2026-03-02"))
	require.ErrorIs(t, err, driven.ErrSlotNotFound)

	var orphans int
	require.NoError(t, db.Reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unlabeled_rows WHERE collection_date = '2026-03-02'`).Scan(&orphans))
	assert.Zero(t, orphans, "rows are removed with their slot")

	dates, err = repo.ListDates(ctx)
	require.NoError(t, err)
	assert.Len(t, dates, 2)
}
