package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/controllers"
	"github.com/smartassist/smartassist-api/querycache"
	"github.com/smartassist/smartassist-api/services"
	"github.com/smartassist/smartassist-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := config.NewLogger(cfg)
	log.Info("Starting SmartAssist API server...")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed successfully")

	st := store.NewGormStore(db)
	if cfg.SeedDatabase {
		if err := st.Seed(context.Background(), cfg.PlaceholderUserID); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	images, err := newImageService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	var qc *querycache.QueryCache
	if cfg.QueryCacheTTL > 0 {
		qc = querycache.New(cfg.QueryCacheTTL)
	}

	h := &controllers.Handler{
		Store:    st,
		AI:       services.NewOpenAIService(cfg),
		Payments: services.NewPaymentService(cfg),
		Images:   images,
		Stats:    services.NewStatsService(st),
		Config:   cfg,
		Log:      log,
	}
	accounts := services.NewAccountService(st, services.NewAuth0Client(cfg))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: SetupRouter(cfg, log, h, accounts, qc),
	}

	go func() {
		log.Infof("Server is running on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server Shutdown: %v", err)
	}
	log.Info("Server gracefully stopped")
}

// newImageService stores photos in S3 when a bucket is configured, on local disk otherwise
func newImageService(cfg *config.Config) (services.ImageService, error) {
	if !cfg.UseS3() {
		return services.NewLocalImageService(cfg.UploadDir), nil
	}
	bucket, err := services.NewS3Store(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return services.NewBucketImageService(bucket), nil
}
