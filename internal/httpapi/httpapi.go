// Package httpapi serves the read-only map endpoints (spec.md §6.1) plus
// health and metrics, using julienschmidt/httprouter the way
// Seednode-partybox wires its static web server.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scotlandyard/server/internal/mapmodel"
	"github.com/scotlandyard/server/internal/metrics"
)

// New builds the HTTP handler for the map/health/metrics surface; the
// websocket upgrade route is registered separately by cmd/server since it
// does not go through httprouter's named-param matching.
func New(m *mapmodel.Map, met *metrics.Metrics) http.Handler {
	router := httprouter.New()

	router.GET("/map/stations", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, m.AllStations())
	})
	router.GET("/map/connections", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, m.AllEdges())
	})
	router.GET("/map/rounds", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, m.Rounds())
	})
	router.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	if met != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(met.Registry, promhttp.HandlerOpts{}))
	}

	return router
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
