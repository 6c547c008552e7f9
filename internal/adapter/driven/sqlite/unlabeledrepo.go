package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UnlabeledStore = (*UnlabeledRepo)(nil)

// UnlabeledRepo is the SQLite implementation of the UnlabeledStore port.
// A slot is a collected_slots row plus its unlabeled_rows, so an empty
// collection day still exists as a slot.
type UnlabeledRepo struct {
	db *DB
}

// NewUnlabeledRepo creates a new UnlabeledRepo backed by the given DB.
func NewUnlabeledRepo(db *DB) *UnlabeledRepo {
	return &UnlabeledRepo{db: db}
}

// Save replaces the slot for collectionDate with rows in one transaction.
func (r *UnlabeledRepo) Save(ctx context.Context, collectionDate time.Time, rows []model.FeatureRow) error {
	key := model.FormatDay(collectionDate)

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save slot %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Deleting the slot cascades to its rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM collected_slots WHERE collection_date = ?`, key); err != nil {
		return fmt.Errorf("clear slot %s: %w", key, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collected_slots (collection_date, saved_at) VALUES (?, ?)`,
		key, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("create slot %s: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO unlabeled_rows (`+featureColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare slot insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		// The slot key is authoritative for the row's collection date.
		row.CollectionDate = model.Day(collectionDate)
		if _, err := stmt.ExecContext(ctx, featureArgs(row)...); err != nil {
			return fmt.Errorf("insert %s into slot %s: %w", row.RepoName, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot %s: %w", key, err)
	}

	return nil
}

// Load returns the rows of the slot ordered by repository name. It returns
// driven.ErrSlotNotFound when no slot exists for collectionDate.
func (r *UnlabeledRepo) Load(ctx context.Context, collectionDate time.Time) ([]model.FeatureRow, error) {
	key := model.FormatDay(collectionDate)

	var exists int
	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT 1 FROM collected_slots WHERE collection_date = ?`, key,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slot %s: %w", key, driven.ErrSlotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("check slot %s: %w", key, err)
	}

	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT `+featureColumns+` FROM unlabeled_rows WHERE collection_date = ? ORDER BY repo_name`, key)
	if err != nil {
		return nil, fmt.Errorf("query slot %s: %w", key, err)
	}
	defer rows.Close()

	result := []model.FeatureRow{}
	for rows.Next() {
		row, err := scanFeatureRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot %s: %w", key, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot %s: %w", key, err)
	}

	return result, nil
}

// Delete removes the slot and its rows. Deleting a missing slot is a no-op.
func (r *UnlabeledRepo) Delete(ctx context.Context, collectionDate time.Time) error {
	key := model.FormatDay(collectionDate)
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM collected_slots WHERE collection_date = ?`, key); err != nil {
		return fmt.Errorf("delete slot %s: %w", key, err)
	}
	return nil
}

// ListDates returns every slot's collection date, oldest first.
func (r *UnlabeledRepo) ListDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.Reader.QueryContext(ctx, `SELECT collection_date FROM collected_slots ORDER BY collection_date`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan slot date: %w", err)
		}
		d, err := model.ParseDay(key)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return dates, nil
}
