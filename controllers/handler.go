package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/middleware"
	"github.com/smartassist/smartassist-api/services"
	"github.com/smartassist/smartassist-api/store"
)

// Handler carries the dependencies shared by every route handler
type Handler struct {
	Store    store.Store
	AI       services.AIService
	Payments services.PaymentService
	Images   services.ImageService
	Stats    *services.StatsService
	Config   *config.Config
	Log      *logrus.Logger
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondErrorDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func validationError(c *gin.Context, err error) {
	respondErrorDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// storeError maps a gateway error: ErrNotFound becomes 404 with notFoundCode,
// anything else a 500.
func (h *Handler) storeError(c *gin.Context, err error, notFoundCode, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, notFoundCode, notFoundMessage)
		return
	}
	h.Log.WithError(err).WithField("path", c.FullPath()).Error("database operation failed")
	respondErrorDetails(c, http.StatusInternalServerError, "DATABASE_ERROR", "Database operation failed", err.Error())
}

func currentUser(c *gin.Context) string {
	return middleware.CurrentUserID(c)
}
