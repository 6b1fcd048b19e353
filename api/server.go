/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for dashboards

SECURITY NOTE:
  Only non-dry-run remittance generation is gated (bearer admin token,
  see handlers.go). Everything else is open; front it with a gateway in
  production.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/{id}", h.GetTask)
		})

		r.Route("/worklogs", func(r chi.Router) {
			r.Get("/", h.ListWorkLogs)
			r.Post("/", h.CreateWorkLog)
			r.Get("/{id}", h.GetWorkLog)
			r.Delete("/{id}", h.DeleteWorkLog)
			r.Post("/{id}/segments", h.CreateSegment)
			r.Post("/{id}/adjustments", h.CreateAdjustment)
		})

		r.Route("/segments", func(r chi.Router) {
			r.Put("/{id}/status", h.UpdateSegmentStatus)
		})

		r.Route("/remittances", func(r chi.Router) {
			r.Get("/", h.ListRemittances)
			r.Get("/{id}", h.GetRemittance)
			r.Post("/generate", h.GenerateRemittances)
		})
	})

	return r
}
