package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"surveybench/internal/websocket"
)

// MetricsHandler exposes the Prometheus scrape endpoint and websocket hub
// statistics.
type MetricsHandler struct {
	prometheus http.Handler
	hub        *websocket.Hub
}

// NewMetricsHandler creates a new metrics handler. The prometheus handler
// may be nil when metrics are disabled.
func NewMetricsHandler(prometheus http.Handler, hub *websocket.Hub) *MetricsHandler {
	return &MetricsHandler{
		prometheus: prometheus,
		hub:        hub,
	}
}

// Prometheus handles GET /metrics.
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "metrics disabled"})
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// RegisterRoutes registers the websocket statistics route.
func (h *MetricsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics/websocket", h.WebSocketStats)
}

// WebSocketStats handles GET /api/metrics/websocket.
func (h *MetricsHandler) WebSocketStats(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "websocket hub disabled"})
		return
	}
	render.JSON(w, r, h.hub.GetHubMetrics())
}
