// Package api exposes the advisor session operations over HTTP.
package api

import (
	"context"
	"net/http"

	"plan_advisor/src/model"
	"plan_advisor/src/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Advisor is the session surface served by the API
type Advisor interface {
	Create(ctx context.Context) (string, error)
	Discover(ctx context.Context, id, message string) (session.DiscoveryResult, error)
	Ask(ctx context.Context, id, question string) (session.AskResult, error)
	Status(ctx context.Context, id string) (session.Status, error)
	Recommend(ctx context.Context, id string) (model.Recommendation, error)
	Delete(ctx context.Context, id string) error
}

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

// NewRouter creates the chi router with all routes and middleware.
// checks are keyed by dependency name and run on every GET /healthz.
func NewRouter(advisor Advisor, checks map[string]HealthCheck) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(recoverer)

	h := &handler{advisor: advisor}

	r.Get("/healthz", healthz(checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.status)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/discovery", h.discovery)
		r.Post("/{id}/chat", h.chat)
		r.Post("/{id}/analysis", h.analysis)
	})

	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		writeJSON(w, status, resp)
	}
}
