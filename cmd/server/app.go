package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/analysis"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/config"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/events"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/postgres"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/sqlite"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/websocket"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/service"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/task"
)

// application holds all the dependencies for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	diaryStore   store.DiaryStore
	diaryService service.DiaryService
	eventEmitter *events.InMemoryEventEmitter
	hub          *websocket.Hub
	pipeline     *task.Pipeline
}

// newDiaryStore builds the store implementation for the configured driver.
func newDiaryStore(driver string, db *sql.DB, logger *slog.Logger) (store.DiaryStore, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.NewPostgresDiaryStore(db, logger), nil
	case config.DriverSQLite:
		return sqlite.NewSQLiteDiaryStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// newApplication wires the store, the analysis pipeline and the services.
// The pipeline is created but not started; Run starts it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.diaryStore, err = newDiaryStore(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	app.hub = websocket.NewHub(websocket.DefaultSendBuffer, logger)

	sink, err := service.NewAnalysisResultSink(app.diaryStore, app.hub, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create result sink: %w", err)
	}

	client, err := analysis.NewClient(cfg.Analysis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}
	logger.Info("Analysis client initialized",
		"base_url", cfg.Analysis.BaseURL,
		"timeout", cfg.Analysis.Timeout)

	app.pipeline, err = task.NewPipeline(pipelineConfig(cfg.Pipeline), client, sink, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis pipeline: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewAnalysisEventHandler(app.pipeline, logger))

	repo := service.NewDiaryRepositoryAdapter(app.diaryStore, db)
	app.diaryService, err = service.NewDiaryService(repo, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create diary service: %w", err)
	}

	logger.InfoContext(ctx, "Application initialized successfully")
	return app, nil
}

// pipelineConfig converts the loaded settings to the pipeline's own config type.
func pipelineConfig(cfg config.PipelineConfig) task.PipelineConfig {
	return task.PipelineConfig{
		QueueCapacity: cfg.QueueCapacity,
		TickPeriod:    cfg.TickPeriod,
		MaxRetryCount: cfg.MaxRetryCount,
		WorkerCount:   cfg.WorkerCount,
		WorkerBacklog: cfg.WorkerBacklog,
	}
}

// start launches the pipeline and, when configured, resubmits diaries left
// pending by a previous run. The pipeline outlives ctx so that in-flight
// work is stopped by cleanup, after the HTTP server has drained.
func (app *application) start(ctx context.Context) error {
	if err := app.pipeline.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to start analysis pipeline: %w", err)
	}

	if app.config.Pipeline.RecoverOnStart {
		n, err := app.pipeline.Recover(ctx, app.diaryStore)
		if err != nil {
			// Recovery is best effort; the diaries stay pending.
			app.logger.WarnContext(ctx, "Pending diary recovery failed", "error", err)
		} else {
			app.logger.InfoContext(ctx, "Pending diaries resubmitted", "count", n)
		}
	}
	return nil
}

// Run starts the pipeline and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.start(ctx); err != nil {
		app.cleanup()
		return err
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops components in dependency order: the pipeline first so no
// outcome is written after the hub or database go away.
func (app *application) cleanup() {
	if app.pipeline != nil {
		app.pipeline.Stop()
	}
	if app.hub != nil {
		app.hub.Close()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
