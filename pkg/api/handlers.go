package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantkit/option-engine/internal/engine"
	"github.com/quantkit/option-engine/internal/stream"
	"github.com/quantkit/option-engine/pkg/models"
	"github.com/quantkit/option-engine/pkg/utils/errors"
	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	engine *engine.Engine
	hub    *stream.Hub
	log    *logger.Logger
}

// CreateHandlers creates new API handlers. hub may be nil when the server
// runs without the streaming feed.
func CreateHandlers(eng *engine.Engine, hub *stream.Hub) *Handlers {
	return &Handlers{
		engine: eng,
		hub:    hub,
		log:    logger.GetLogger("api.handlers"),
	}
}

// HealthCheckHandler handles health check requests
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

// PriceBatchHandler prices a batch of options
func (h *Handlers) PriceBatchHandler(c *gin.Context) {
	var req models.PriceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	kind, in, err := req.ToBatchInput()
	if err != nil {
		h.writeError(c, err)
		return
	}

	start := time.Now()
	res, err := h.engine.PriceBatch(c.Request.Context(), kind, in, req.Greeks)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastSummary(stream.BatchSummary{
			Model:     kind.String(),
			Mode:      res.Mode,
			Rows:      in.Len(),
			Failures:  res.FailureCount,
			LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
			Timestamp: time.Now(),
		})
	}

	c.JSON(http.StatusOK, models.PriceBatchResponse{
		ID:     req.ID,
		Model:  kind.String(),
		Result: res,
	})
}

// ImpliedVolHandler recovers implied volatilities for a batch of prices
func (h *Handlers) ImpliedVolHandler(c *gin.Context) {
	var req models.IVBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	kind, in, err := req.ToBatchInput()
	if err != nil {
		h.writeError(c, err)
		return
	}

	start := time.Now()
	res, err := h.engine.ImpliedVolBatch(c.Request.Context(), kind, in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastSummary(stream.BatchSummary{
			Model:     "iv-" + kind.String(),
			Mode:      res.Mode,
			Rows:      in.Len(),
			Failures:  res.FailureCount,
			LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
			Timestamp: time.Now(),
		})
	}

	c.JSON(http.StatusOK, models.IVBatchResponse{
		ID:     req.ID,
		Model:  kind.String(),
		Result: res.WireSafe(),
	})
}

// writeError maps typed application errors to HTTP responses. Validation
// errors carry the offending field and row so the client can point at the
// exact input.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case errors.ErrorTypeValidation:
			body := gin.H{"error": appErr.Message}
			if appErr.Field != "" {
				body["field"] = appErr.Field
			}
			if appErr.Row >= 0 {
				body["row"] = appErr.Row
			}
			c.JSON(http.StatusBadRequest, body)
			return
		case errors.ErrorTypeUnsupported:
			c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message})
			return
		}
	}
	h.log.Errorf("Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
