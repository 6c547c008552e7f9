package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/ericfisherdev/repotrend/internal/adapter/driven/gharchive"
	githubadapter "github.com/ericfisherdev/repotrend/internal/adapter/driven/github"
	parquetadapter "github.com/ericfisherdev/repotrend/internal/adapter/driven/parquet"
	sqliteadapter "github.com/ericfisherdev/repotrend/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/repotrend/internal/adapter/driven/trending"
	clirender "github.com/ericfisherdev/repotrend/internal/adapter/driving/cli"
	"github.com/ericfisherdev/repotrend/internal/application"
	"github.com/ericfisherdev/repotrend/internal/config"
	"github.com/ericfisherdev/repotrend/internal/retry"
)

// app is the composition root for one command invocation.
type app struct {
	cfg       *config.Config
	db        *sqliteadapter.DB
	unlabeled *sqliteadapter.UnlabeledRepo
	history   *sqliteadapter.HistoryRepo
	features  *sqliteadapter.FeatureRepo
	labeler   *application.TrendingLabeler
	renderer  *clirender.Renderer
}

// openApp opens and migrates the database and wires the stores every
// command shares.
func openApp(_ context.Context, cfg *config.Config, noColor bool) (*app, error) {
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Debug("database opened", "path", db.Path())

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		db:        db,
		unlabeled: sqliteadapter.NewUnlabeledRepo(db),
		history:   sqliteadapter.NewHistoryRepo(db),
		features:  sqliteadapter.NewFeatureRepo(db),
		renderer:  clirender.NewRenderer(os.Stdout, !noColor && !color.NoColor),
	}
	a.labeler = application.NewTrendingLabeler(a.unlabeled, a.history, a.features, cfg.LookbackDays)

	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func (a *app) retryPolicy() retry.Policy {
	return retry.Default(uint64(a.cfg.MaxRetries))
}

func (a *app) archiveCache() *application.ArchiveCache {
	provider := gharchive.NewClient(nil, a.cfg.ArchiveBaseURL, a.retryPolicy())
	return application.NewArchiveCache(provider, a.cfg.SampledHours)
}

func (a *app) enricher() *application.FeatureEnricher {
	return application.NewFeatureEnricher(githubadapter.NewClient(a.cfg.GitHubToken), a.retryPolicy())
}

func (a *app) backfillPipeline() *application.BackfillPipeline {
	cache := a.archiveCache()
	return application.NewBackfillPipeline(
		cache,
		application.NewBackfillSource(cache, a.cfg.TopN),
		a.enricher(),
		a.unlabeled,
		a.history,
		a.labeler,
	)
}

func (a *app) dailyPipeline() *application.DailyPipeline {
	scraper := trending.NewScraper(nil, a.cfg.TrendingURL, a.retryPolicy())
	return application.NewDailyPipeline(
		a.archiveCache(),
		application.NewDailySource(scraper),
		a.enricher(),
		a.unlabeled,
		a.history,
		a.features,
		a.labeler,
	)
}

func (a *app) statusService() *application.StatusService {
	return application.NewStatusService(a.unlabeled, a.labeler, a.history)
}

func (a *app) exportService() *application.ExportService {
	return application.NewExportService(a.features, parquetadapter.NewWriter())
}
