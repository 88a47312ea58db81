// Package server exposes the operational HTTP listener of the daemon:
// liveness against the database and the Prometheus scrape endpoint.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	DB       Pinger
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(SentryMiddleware)
	r.Use(AccessLog(cfg.Logger))

	r.Get("/healthz", healthHandler(cfg.DB))

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK

		if db == nil {
			resp.Database = "unconfigured"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				resp.Status = "unavailable"
				resp.Database = "down"
				resp.Error = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
