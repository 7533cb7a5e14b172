/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zap logger: Structured request logging
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/clients/*        Client management
  /api/projects/*       Projects, their milestones/tasks/entries/invoices,
                        and the budget report
  /api/milestones/*     Milestone payment and completion actions
  /api/tasks/*          Task status and billed toggling
  /api/invoices/*       Invoice payment actions
  /api/hours            Hour entry creation
  /api/currencies       Rate table introspection

SECURITY NOTE:
  No authentication middleware. The dashboard is single-user.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
		})

		// Project routes
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Get("/{id}/report", h.GetReport)
			r.Get("/{id}/milestones", h.ListMilestones)
			r.Post("/{id}/milestones", h.CreateMilestone)
			r.Get("/{id}/tasks", h.ListTasks)
			r.Post("/{id}/tasks", h.CreateTask)
			r.Get("/{id}/hours", h.ListHourEntries)
			r.Get("/{id}/invoices", h.ListInvoices)
			r.Post("/{id}/invoices", h.CreateInvoice)
		})

		// Milestone actions
		r.Route("/milestones", func(r chi.Router) {
			r.Post("/{id}/paid", h.MarkMilestonePaid)
			r.Post("/{id}/payment", h.SetMilestonePayment)
			r.Post("/{id}/status", h.SetMilestoneStatus)
			r.Post("/{id}/completion", h.SetMilestoneCompletion)
		})

		// Task actions
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/{id}/status", h.UpdateTaskStatus)
			r.Post("/{id}/billed", h.ToggleTaskBilled)
		})

		// Invoice actions
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/{id}/paid", h.MarkInvoicePaid)
		})

		// Hour entry creation (project ID in the body)
		r.Post("/hours", h.CreateHourEntry)

		// Rate table introspection
		r.Get("/currencies", h.ListCurrencies)
	})

	return r
}

// requestLogger logs one line per request with method, path, status and
// latency. Uses chi's WrapResponseWriter so the status is observable.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
