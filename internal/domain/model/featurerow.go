package model

import (
	"errors"
	"math"
	"time"
)

// ErrAlreadyLabeled is returned when a label is applied to a row whose label
// has already been resolved.
var ErrAlreadyLabeled = errors.New("feature row already labeled")

// Popularity score weights. popularity_score keeps its raw components next
// to it in the row even though it is fully derived from them.
const (
	popularityVelocityWeight = 0.5
	popularityStarsWeight    = 0.3
	popularityForksWeight    = 0.2
)

// FeatureRow is one repository's feature snapshot for one collection date.
// The primary identity is (RepoName, CollectionDate).
type FeatureRow struct {
	RepoName        string
	CollectionDate  time.Time
	Language        string
	StarsTotal      int
	ForksTotal      int
	StarVelocity    int
	CommitFrequency int
	HNBuzzScore     float64 // Disabled signal, always 0.0.
	DaysOld         int
	ForkRate        float64
	PopularityScore float64
	StarsPerDay     float64
	IsTrending      Label
}

// NewFeatureRow builds an unlabeled row from metadata and velocity and
// computes every derived column.
func NewFeatureRow(day time.Time, meta RepoMetadata, v Velocity) FeatureRow {
	lang := meta.Language
	if lang == "" {
		lang = UnknownLanguage
	}

	row := FeatureRow{
		RepoName:        meta.FullName,
		CollectionDate:  Day(day),
		Language:        lang,
		StarsTotal:      meta.StarsTotal,
		ForksTotal:      meta.ForksTotal,
		StarVelocity:    v.StarVelocity,
		CommitFrequency: v.CommitFrequency,
		HNBuzzScore:     0.0,
		DaysOld:         meta.DaysOldAt(Day(day)),
		IsTrending:      LabelPlaceholder,
	}
	row.Derive()
	return row
}

// Derive recomputes fork_rate, popularity_score and stars_per_day from the
// raw columns.
func (r *FeatureRow) Derive() {
	r.ForkRate = ForkRate(r.ForksTotal, r.StarsTotal)
	r.PopularityScore = PopularityScore(r.StarVelocity, r.StarsTotal, r.ForksTotal)
	r.StarsPerDay = float64(r.StarsTotal) / float64(max(r.DaysOld, 1))
}

// DerivedConsistent reports whether the stored derived columns match a
// fresh derivation within tol.
func (r FeatureRow) DerivedConsistent(tol float64) bool {
	fresh := r
	fresh.Derive()
	return math.Abs(fresh.ForkRate-r.ForkRate) <= tol &&
		math.Abs(fresh.PopularityScore-r.PopularityScore) <= tol &&
		math.Abs(fresh.StarsPerDay-r.StarsPerDay) <= tol
}

// ApplyLabel resolves the row's label. It fails with ErrAlreadyLabeled if
// the label was resolved before.
func (r *FeatureRow) ApplyLabel(trending bool) error {
	if r.IsTrending.IsResolved() {
		return ErrAlreadyLabeled
	}
	if trending {
		r.IsTrending = LabelTrending
	} else {
		r.IsTrending = LabelNotTrending
	}
	return nil
}

// ForkRate is forks / max(stars, 1).
func ForkRate(forks, stars int) float64 {
	return float64(forks) / float64(max(stars, 1))
}

// PopularityScore is 0.5*velocity + 0.3*stars + 0.2*forks.
func PopularityScore(starVelocity, stars, forks int) float64 {
	return popularityVelocityWeight*float64(starVelocity) +
		popularityStarsWeight*float64(stars) +
		popularityForksWeight*float64(forks)
}
