package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats handles GET /api/stats - dashboard counters for the current user
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Stats.Compute(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "", "")
		return
	}
	respond(c, http.StatusOK, stats)
}
