package sqlite

import (
	"fmt"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// featureColumns is the column order shared by unlabeled_rows and features.
const featureColumns = `repo_name, collection_date, language, stars_total, forks_total,
	star_velocity, commit_frequency, hn_buzz_score, days_old, fork_rate,
	popularity_score, stars_per_day, is_trending`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// featureArgs returns the values for featureColumns in order.
func featureArgs(r model.FeatureRow) []any {
	return []any{
		r.RepoName, model.FormatDay(r.CollectionDate), r.Language, r.StarsTotal, r.ForksTotal,
		r.StarVelocity, r.CommitFrequency, r.HNBuzzScore, r.DaysOld, r.ForkRate,
		r.PopularityScore, r.StarsPerDay, int(r.IsTrending),
	}
}

func scanFeatureRow(s scanner) (model.FeatureRow, error) {
	var (
		r     model.FeatureRow
		day   string
		label int
	)

	err := s.Scan(
		&r.RepoName, &day, &r.Language, &r.StarsTotal, &r.ForksTotal,
		&r.StarVelocity, &r.CommitFrequency, &r.HNBuzzScore, &r.DaysOld, &r.ForkRate,
		&r.PopularityScore, &r.StarsPerDay, &label,
	)
	if err != nil {
		return model.FeatureRow{}, err
	}

	r.CollectionDate, err = model.ParseDay(day)
	if err != nil {
		return model.FeatureRow{}, fmt.Errorf("row %s: %w", r.RepoName, err)
	}
	r.IsTrending = model.Label(label)

	return r, nil
}
