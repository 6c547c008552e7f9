package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.TrendingHistoryStore = (*HistoryRepo)(nil)
	_ driven.HistoryLister        = (*HistoryRepo)(nil)
)

// HistoryRepo is the SQLite implementation of TrendingHistoryStore. Each
// day's candidate list is stored as a JSON array in the repos column.
type HistoryRepo struct {
	db *DB
}

// NewHistoryRepo creates a new HistoryRepo backed by the given DB.
func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Record inserts or replaces the candidate list for day. There is one list
// per day, so replacing a list recorded by another source is logged: slots
// waiting on that day will be labeled against the new list.
func (r *HistoryRepo) Record(ctx context.Context, day time.Time, source string, repos []string) error {
	const query = `
		INSERT INTO trending_history (day, source, repos, recorded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			source = excluded.source,
			repos = excluded.repos,
			recorded_at = excluded.recorded_at
	`

	if repos == nil {
		repos = []string{}
	}
	reposJSON, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}

	key := model.FormatDay(day)

	var previous string
	err = r.db.Writer.QueryRowContext(ctx, `SELECT source FROM trending_history WHERE day = ?`, key).Scan(&previous)
	switch {
	case err == nil && previous != source:
		slog.Warn("replacing candidate history from another source",
			"day", key,
			"previous_source", previous,
			"source", source,
		)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read history %s: %w", key, err)
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, key, source, string(reposJSON), time.Now().UTC()); err != nil {
		return fmt.Errorf("record history %s: %w", key, err)
	}

	return nil
}

// CandidatesOn returns the list recorded for day, or
// driven.ErrNoCandidateHistory when nothing was recorded.
func (r *HistoryRepo) CandidatesOn(ctx context.Context, day time.Time) ([]string, error) {
	key := model.FormatDay(day)

	var reposJSON string
	err := r.db.Reader.QueryRowContext(ctx, `SELECT repos FROM trending_history WHERE day = ?`, key).Scan(&reposJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, driven.ErrNoCandidateHistory)
	}
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", key, err)
	}

	var repos []string
	if err := json.Unmarshal([]byte(reposJSON), &repos); err != nil {
		return nil, fmt.Errorf("unmarshal history %s: %w", key, err)
	}

	return repos, nil
}

// ListDays returns every recorded day in [from, to], oldest first.
func (r *HistoryRepo) ListDays(ctx context.Context, from, to time.Time) ([]model.HistoryDay, error) {
	const query = `
		SELECT day, source, json_array_length(repos)
		FROM trending_history
		WHERE day BETWEEN ? AND ?
		ORDER BY day
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, model.FormatDay(from), model.FormatDay(to))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var days []model.HistoryDay
	for rows.Next() {
		var (
			h   model.HistoryDay
			key string
		)
		if err := rows.Scan(&key, &h.Source, &h.Candidates); err != nil {
			return nil, fmt.Errorf("scan history day: %w", err)
		}
		if h.Day, err = model.ParseDay(key); err != nil {
			return nil, err
		}
		days = append(days, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return days, nil
}
