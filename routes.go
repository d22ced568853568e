package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/controllers"
	"github.com/smartassist/smartassist-api/metrics"
	"github.com/smartassist/smartassist-api/middleware"
	"github.com/smartassist/smartassist-api/querycache"
)

// Cache prefixes evicted by mutating routes
const (
	appliancesPrefix  = "/api/appliances"
	diagnosesPrefix   = "/api/diagnoses"
	bookingsPrefix    = "/api/bookings"
	techniciansPrefix = "/api/technicians"
	statsPrefix       = "/api/stats"
	usersPrefix       = "/api/users"
)

// SetupRouter builds the HTTP router. qc may be nil to disable response caching.
func SetupRouter(cfg *config.Config, log *logrus.Logger, h *controllers.Handler, resolver middleware.UserResolver, qc *querycache.QueryCache) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.WithError(err).Warn("invalid TRUSTED_PROXIES, trusting no proxies")
		router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), middleware.RequestLogger(log), metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/database/status", h.DatabaseStatus)
		api.GET("/uploads/:filename", h.GetUploadedImage)
	}

	protected := api.Group("")
	if cfg.AuthEnabled() {
		protected.Use(middleware.EnsureValidToken(cfg))
	}
	protected.Use(middleware.ResolveUser(cfg, resolver), middleware.Cache(qc))

	invalidate := func(prefixes ...string) gin.HandlerFunc {
		return middleware.Invalidates(qc, prefixes...)
	}
	aiLimit := middleware.RateLimiter(rate.Limit(cfg.AIRateLimitPerSec), cfg.AIRateLimitBurst)

	{
		protected.GET("/users/me", h.GetMyProfile)
		protected.PATCH("/users/me", invalidate(usersPrefix), h.UpdateMyProfile)

		protected.GET("/appliances", h.ListAppliances)
		protected.GET("/appliances/:id", h.GetAppliance)
		protected.POST("/appliances", invalidate(appliancesPrefix, statsPrefix), h.CreateAppliance)
		protected.PATCH("/appliances/:id", invalidate(appliancesPrefix), h.UpdateAppliance)
		protected.DELETE("/appliances/:id",
			invalidate(appliancesPrefix, diagnosesPrefix, bookingsPrefix, techniciansPrefix, statsPrefix),
			h.DeleteAppliance)

		protected.GET("/diagnoses", h.ListDiagnoses)
		protected.GET("/diagnoses/:id", h.GetDiagnosis)
		protected.PATCH("/diagnoses/:id", invalidate(diagnosesPrefix, statsPrefix), h.UpdateDiagnosis)
		protected.POST("/diagnose", aiLimit, invalidate(diagnosesPrefix, statsPrefix), h.Diagnose)
		protected.POST("/analyze-image", aiLimit, middleware.LimitBody(controllers.MaxImageRequestBytes), invalidate(diagnosesPrefix, statsPrefix), h.AnalyzeImage)

		protected.GET("/technicians", h.ListTechnicians)
		protected.GET("/technicians/:id", h.GetTechnician)
		protected.GET("/technicians/:id/reviews", h.ListTechnicianReviews)
		protected.GET("/technicians/:id/bookings", h.ListTechnicianBookings)

		protected.GET("/bookings", h.ListBookings)
		protected.GET("/bookings/:id", h.GetBooking)
		protected.POST("/bookings", invalidate(bookingsPrefix, techniciansPrefix, statsPrefix), h.CreateBooking)
		protected.PATCH("/bookings/:id", invalidate(bookingsPrefix, techniciansPrefix, statsPrefix), h.UpdateBooking)
		protected.POST("/bookings/:id/payment-status", invalidate(bookingsPrefix, techniciansPrefix), h.RefreshPaymentStatus)

		protected.POST("/reviews", invalidate(techniciansPrefix), h.CreateReview)
		protected.POST("/create-payment-intent", invalidate(bookingsPrefix, techniciansPrefix), h.CreatePaymentIntent)

		protected.GET("/stats", h.GetStats)
	}

	router.NoRoute(spaFallback(cfg.StaticDir))
	return router
}

// spaFallback serves files from the built frontend and index.html for client-side
// routes. Unknown /api paths always get a JSON 404.
func spaFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if staticDir == "" || strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Route not found",
				},
			})
			return
		}

		file := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
