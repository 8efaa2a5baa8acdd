package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-scheduler/internal/dto"
	"github.com/noah-isme/tutoring-scheduler/internal/service"
	"github.com/noah-isme/tutoring-scheduler/pkg/response"
)

type statisticsSource interface {
	GetStatistics() dto.Statistics
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	session statisticsSource
}

// NewMetricsHandler constructs a metrics handler. session may be nil.
func NewMetricsHandler(metrics *service.MetricsService, session *service.AdjustmentService) *MetricsHandler {
	h := &MetricsHandler{metrics: metrics}
	if session != nil {
		h.session = session
	}
	return h
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Process counters in JSON
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health responds with liveness plus the open conflict count.
func (h *MetricsHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.session != nil {
		stats := h.session.GetStatistics()
		body["open_conflicts"] = stats.Pending + stats.InProgress
	}
	c.JSON(http.StatusOK, body)
}
