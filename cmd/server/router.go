package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pulseprep/pulseprep-api/internal/api"
	apiMiddleware "github.com/pulseprep/pulseprep-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	adminHandler := api.NewAdminHandler(app.orchestrator, app.logger)
	answerHandler := api.NewAnswerHandler(app.orchestrator, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/distribute", adminHandler.Distribute)
		r.Post("/admin/users/{id}/deliver", adminHandler.DeliverToUser)
		r.Post("/webhook/answers", answerHandler.SubmitAnswer)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
