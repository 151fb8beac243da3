package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/regdesk-api/internal/service"
)

type deskCounter interface {
	Count() int
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	desks   deskCounter
	backend string
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, desks deskCounter, backend string) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, desks: desks, backend: backend}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "backend": h.backend}
	if h.desks != nil {
		body["open_desks"] = h.desks.Count()
	}
	c.JSON(http.StatusOK, body)
}
