// internal/server/router.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shoe-recommender/internal/common/logger"
)

// NewRouter wires the HTTP surface. Order matters: recover before request-ID
// before logging so every line carries an ID and panics are always caught.
func NewRouter(handler *RecommendationHandler, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recover(log))
	r.Use(RequestID())
	r.Use(Logging(log))

	r.Get("/healthz", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/recommendations", handler.ServeHTTP)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
