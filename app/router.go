package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/flag-hunt/app/shared/httpmw"
	"github.com/Black-And-White-Club/flag-hunt/db/bundb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter builds the root router and returns the /api group and the
// actor-guarded /api/admin group for modules to mount on.
func newRouter(logger *slog.Logger, registry *prometheus.Registry, db *bundb.DBService) (chi.Router, chi.Router, chi.Router) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if err := db.GetDB().PingContext(req.Context()); err != nil {
			logger.WarnContext(req.Context(), "Health check failed", slog.Any("error", err))
			status = http.StatusServiceUnavailable
			body["status"] = "database unavailable"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	var publicAPI, adminAPI chi.Router
	r.Route("/api", func(api chi.Router) {
		publicAPI = api
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmw.RequireActor)
			adminAPI = admin
		})
	})
	return r, publicAPI, adminAPI
}
