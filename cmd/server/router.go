package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stockpix/stockpix/internal/api"
	apiMiddleware "github.com/stockpix/stockpix/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	runHandler := api.NewRunHandler(
		app.runService,
		app.taskRunner,
		app.taskRegistry,
		app.curationService,
		app.runDefaults(),
		app.logger,
	)
	galleryHandler := api.NewGalleryHandler(app.curationService, app.objects, app.presignTTL(), app.logger)
	batchHandler := api.NewBatchHandler(app.curationService, app.fulfillmentService, app.logger)
	exportHandler := api.NewExportHandler(app.fulfillmentService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/runs", runHandler.CreateRun)
		r.Get("/runs", runHandler.ListRuns)
		r.Get("/tasks/{id}", runHandler.GetTask)

		r.Route("/runs/{runID}", func(r chi.Router) {
			r.Get("/", runHandler.GetRun)
			r.Get("/images", galleryHandler.ListImages)
			r.Post("/batch", batchHandler.SubmitBatch)
			r.Get("/export", exportHandler.Export)
		})
	})

	r.Get("/health", api.HealthCheck)

	return r
}
