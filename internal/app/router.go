package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botica-pos/botica/internal/auth"
	"github.com/botica-pos/botica/internal/observability"
	"github.com/botica-pos/botica/internal/syncer"
	"github.com/botica-pos/botica/jobs"
)

// RouterParams aggregates the handlers mounted on the HTTP surface.
type RouterParams struct {
	Config      *Config
	Metrics     *observability.Metrics
	AuthService *auth.Service
	AuthHandler *auth.Handler
	SyncHandler *syncer.Handler
	JobHandler  *jobs.Handler
	Middlewares []func(http.Handler) http.Handler
}

// NewRouter assembles the chi router. Sync routes sit behind bearer auth;
// health and metrics stay open for probes and scrapers.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range p.Middlewares {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	if p.AuthHandler != nil {
		r.Route("/auth", func(ar chi.Router) {
			p.AuthHandler.MountRoutes(ar)
		})
	}

	if p.SyncHandler != nil {
		r.Route("/sync", func(sr chi.Router) {
			if p.AuthService != nil {
				sr.Use(p.AuthService.RequireAuth)
			}
			p.SyncHandler.MountRoutes(sr)
		})
	}

	if p.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			p.JobHandler.MountRoutes(jr)
		})
	}

	return r
}
