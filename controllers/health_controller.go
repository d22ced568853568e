package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "SmartAssist API is running",
	})
}

// DatabaseStatus handles GET /api/database/status
func (h *Handler) DatabaseStatus(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.Log.WithError(err).Error("database ping failed")
		respondErrorDetails(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "Database is not reachable", err.Error())
		return
	}
	respond(c, http.StatusOK, gin.H{"database": "connected"})
}
