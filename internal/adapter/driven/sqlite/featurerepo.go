package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.FeatureStoreSink = (*FeatureRepo)(nil)
	_ driven.FeatureReader    = (*FeatureRepo)(nil)
)

// FeatureRepo is the SQLite feature store. Rows are keyed by
// (repo_name, collection_date); a resolved label is never replaced by a
// placeholder.
type FeatureRepo struct {
	db *DB
}

// NewFeatureRepo creates a new FeatureRepo backed by the given DB.
func NewFeatureRepo(db *DB) *FeatureRepo {
	return &FeatureRepo{db: db}
}

// Upload upserts rows in one transaction. Every row must match the upload
// kind; otherwise nothing is written and driven.ErrLabelMismatch is returned.
func (r *FeatureRepo) Upload(ctx context.Context, rows []model.FeatureRow, labeled bool) error {
	for _, row := range rows {
		if row.IsTrending.IsResolved() != labeled {
			return fmt.Errorf("%s on %s has label %s: %w",
				row.RepoName, model.FormatDay(row.CollectionDate), row.IsTrending, driven.ErrLabelMismatch)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	const query = `
		INSERT INTO features (` + featureColumns + `, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_name, collection_date) DO UPDATE SET
			language = excluded.language,
			stars_total = excluded.stars_total,
			forks_total = excluded.forks_total,
			star_velocity = excluded.star_velocity,
			commit_frequency = excluded.commit_frequency,
			hn_buzz_score = excluded.hn_buzz_score,
			days_old = excluded.days_old,
			fork_rate = excluded.fork_rate,
			popularity_score = excluded.popularity_score,
			stars_per_day = excluded.stars_per_day,
			is_trending = excluded.is_trending,
			uploaded_at = excluded.uploaded_at
		WHERE excluded.is_trending != -1 OR features.is_trending = -1
	`

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upload: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upload: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, row := range rows {
		args := append(featureArgs(row), now)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert feature %s on %s: %w", row.RepoName, model.FormatDay(row.CollectionDate), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upload: %w", err)
	}

	return nil
}

// ListLabeled returns every labeled row ordered by collection date, then
// repository name.
func (r *FeatureRepo) ListLabeled(ctx context.Context) ([]model.FeatureRow, error) {
	const query = `SELECT ` + featureColumns + `
		FROM features
		WHERE is_trending != -1
		ORDER BY collection_date, repo_name`

	return r.query(ctx, query)
}

// ListByDate returns every row, labeled or not, collected on day.
func (r *FeatureRepo) ListByDate(ctx context.Context, day time.Time) ([]model.FeatureRow, error) {
	const query = `SELECT ` + featureColumns + `
		FROM features
		WHERE collection_date = ?
		ORDER BY repo_name`

	return r.query(ctx, query, model.FormatDay(day))
}

func (r *FeatureRepo) query(ctx context.Context, query string, args ...any) ([]model.FeatureRow, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var result []model.FeatureRow
	for rows.Next() {
		row, err := scanFeatureRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}

	return result, nil
}
