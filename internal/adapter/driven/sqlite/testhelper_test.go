package sqlite

import (
	"net/url"
	"testing"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
)

// setupTestDB opens a migrated in-memory database private to the test.
// The name is derived from t.Name() so parallel tests never share state.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Escaped so the test name cannot leak into the DSN query string.
	safeName := url.PathEscape(t.Name())

	db, err := open(buildDSN(safeName, true), safeName)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func testDay(s string) time.Time {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func makeRow(repo, day string, stars, forks, velocity int) model.FeatureRow {
	d := testDay(day)
	return model.NewFeatureRow(d, model.RepoMetadata{
		FullName:   repo,
		StarsTotal: stars,
		ForksTotal: forks,
		Language:   "Go",
		CreatedAt:  d.AddDate(0, 0, -30),
	}, model.Velocity{StarVelocity: velocity, CommitFrequency: velocity / 2})
}
