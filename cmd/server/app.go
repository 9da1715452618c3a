package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockpix/stockpix/internal/api"
	"github.com/stockpix/stockpix/internal/config"
	"github.com/stockpix/stockpix/internal/platform/gemini"
	"github.com/stockpix/stockpix/internal/platform/logger"
	"github.com/stockpix/stockpix/internal/platform/openai"
	"github.com/stockpix/stockpix/internal/platform/s3"
	"github.com/stockpix/stockpix/internal/processor"
	"github.com/stockpix/stockpix/internal/service"
	"github.com/stockpix/stockpix/internal/store"
	"github.com/stockpix/stockpix/internal/task"
)

// application holds the wired dependencies of the review server.
type application struct {
	config *config.Config
	logger *slog.Logger

	objects   *s3.Client
	manifests store.ManifestStore
	history   store.HistoryStore

	runService         *service.RunService
	curationService    *service.CurationService
	fulfillmentService *service.FulfillmentService

	taskRunner   *task.TaskRunner
	taskRegistry *task.Registry
}

// initializeApp loads configuration and builds every component of the
// server.
func initializeApp(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"bucket", cfg.Storage.Bucket)

	objects, err := s3.New(ctx, s3.Options{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Prefix:   cfg.Storage.Prefix,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}

	manifests := store.NewManifestStore(objects, log)
	history := store.NewHistoryStore(objects)

	textGen, err := gemini.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	imageGen, err := openai.NewImageClient(cfg.ImageGen, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create image client: %w", err)
	}
	upscaler, err := processor.NewUpscaler(objects, cfg.Pipeline.UpscaleFactor, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create upscaler: %w", err)
	}

	runService, err := service.NewRunService(textGen, textGen, imageGen, objects, manifests, history, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create run service: %w", err)
	}
	locks := service.NewRunLocks()
	curationService, err := service.NewCurationService(manifests, locks, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create curation service: %w", err)
	}
	fulfillmentService, err := service.NewFulfillmentService(
		manifests,
		objects,
		upscaler,
		textGen,
		locks,
		cfg.Pipeline.WorkerCount,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fulfillment service: %w", err)
	}

	registry := task.NewRegistry()
	runner := task.NewTaskRunner(registry, task.TaskRunnerConfig{
		WorkerCount: cfg.Pipeline.WorkerCount,
		QueueSize:   cfg.Pipeline.QueueSize,
	}, log)

	return &application{
		config:             cfg,
		logger:             log,
		objects:            objects,
		manifests:          manifests,
		history:            history,
		runService:         runService,
		curationService:    curationService,
		fulfillmentService: fulfillmentService,
		taskRunner:         runner,
		taskRegistry:       registry,
	}, nil
}

// run starts the task runner and the HTTP server, blocking until
// shutdown.
func (app *application) run(ctx context.Context) error {
	app.taskRunner.Start()
	defer app.taskRunner.Stop()

	return app.startHTTPServer(ctx, app.setupRouter())
}

// presignTTL returns the configured gallery URL lifetime.
func (app *application) presignTTL() time.Duration {
	return time.Duration(app.config.Pipeline.PresignTTLSeconds) * time.Second
}

// runDefaults returns the generation parameters applied when a request
// leaves them unset.
func (app *application) runDefaults() api.RunDefaults {
	return api.RunDefaults{
		Model:   app.config.ImageGen.Model,
		Size:    app.config.ImageGen.Size,
		Quality: app.config.ImageGen.Quality,
	}
}
