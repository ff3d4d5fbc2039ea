package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/geodb/internal/geo"
)

// Readiness reports whether the first dataset build has finished.
type Readiness interface {
	Ready() bool
}

// Handler manages health check endpoints
type Handler struct {
	gate    Readiness
	dataset *geo.Dataset
}

// NewHandler creates a new health check handler.  dataset may be nil.
func NewHandler(gate Readiness, dataset *geo.Dataset) *Handler {
	return &Handler{gate: gate, dataset: dataset}
}

// Health is the liveness probe endpoint
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready is the readiness probe endpoint.  It fails until the dataset has been
// built once and never fails afterwards.
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if !h.gate.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "initializing",
		})
		return
	}

	resp := gin.H{"status": "ready"}
	if h.dataset != nil {
		if s := h.dataset.Snapshot(); s != nil {
			resp["generation"] = s.Generation
		}
	}
	c.JSON(http.StatusOK, resp)
}
