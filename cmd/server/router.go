package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/labelwise/labelwise-api/internal/api"
	apiMiddleware "github.com/labelwise/labelwise-api/internal/api/middleware"
)

// setupRouter builds the HTTP routing table over the application's services.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.annotatorService, app.logger)
	projectHandler := api.NewProjectHandler(app.projectService, app.feedbackService, app.logger)
	taskHandler := api.NewTaskHandler(app.reviewService, app.logger)
	feedbackHandler := api.NewFeedbackHandler(app.feedbackService, app.logger)
	queueHandler := api.NewQueueHandler(app.queue, app.config.Queue.Name, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Client feedback is public: clients are external parties without
		// annotator accounts.
		r.Post("/projects/{id}/tasks/{taskID}/feedback", feedbackHandler.SubmitFeedback)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Project endpoints
			r.Post("/projects", projectHandler.CreateProject)
			r.Get("/projects", projectHandler.ListProjects)
			r.Get("/projects/{id}", projectHandler.GetProject)
			r.Post("/projects/{id}/tasks", projectHandler.UploadTasks)
			r.Post("/projects/{id}/label", projectHandler.StartLabeling)
			r.Get("/projects/{id}/stats", projectHandler.GetStats)
			r.Get("/projects/{id}/feedback", projectHandler.ListFeedback)

			// Review endpoints
			r.Get("/projects/{id}/review", taskHandler.ListPendingReview)
			r.Get("/projects/{id}/training-stats", taskHandler.GetCorrectionStats)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Post("/tasks/{id}/review", taskHandler.SubmitReview)

			// Operational endpoints
			r.Get("/queue/status", queueHandler.GetStatus)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
