// Package httpapi assembles the public HTTP surface: platform middleware,
// health and metrics endpoints, and every domain handler behind auth.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lekha/pkg/platform/middleware/auth"
	"lekha/pkg/platform/middleware/requestid"
	"lekha/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router mounts.
type Deps struct {
	Validator auth.JWTValidator
	Logger    *slog.Logger

	// Domain handlers, mounted behind auth. Nil entries are skipped so
	// partial wiring (tests, tools) stays possible.
	Handlers []Registrar

	// Ready reports readiness of downstream dependencies. Nil means
	// always ready.
	Ready func() error
}

// NewRouter builds the full API router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		for _, h := range deps.Handlers {
			if h != nil {
				h.Register(r)
			}
		}
	})

	return r
}
