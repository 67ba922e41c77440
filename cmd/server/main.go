package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abupet/reco-engine/internal/cache"
	"github.com/abupet/reco-engine/internal/config"
	"github.com/abupet/reco-engine/internal/dao"
	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/engine"
	"github.com/abupet/reco-engine/internal/router"
	"github.com/abupet/reco-engine/internal/service"
	"github.com/abupet/reco-engine/internal/tagclient"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Recommendation Engine Server...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level from config
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
	}).Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.Initialize(&cfg.Database.Reco, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	// Verify database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}

	logger.Info("Database connection established successfully")

	// Initialize DAOs
	consentDAO := dao.NewConsentDAO(db)
	consentAuditDAO := dao.NewConsentAuditDAO(db)
	tagDAO := dao.NewTagDAO(db)
	candidateDAO := dao.NewCandidateDAO(db)
	impressionDAO := dao.NewImpressionDAO(db)
	vetFlagDAO := dao.NewVetFlagDAO(db)

	logger.Info("DAOs initialized successfully")

	// Initialize shortlist cache. The engine works without it; selections
	// simply never come from the AI path.
	var shortlists engine.ShortlistStore
	shortlistCache, err := cache.NewShortlistCache(&cfg.Redis, logger)
	if err != nil {
		logger.WithError(err).Warn("Shortlist cache unavailable, continuing without it")
	} else {
		shortlists = shortlistCache
		defer shortlistCache.Close()
	}

	// Initialize tag computation client
	var tagComputer engine.TagComputer
	if cfg.TagService.Enabled {
		tagComputer = tagclient.NewTagClient(&cfg.TagService, logger)
		logger.WithField("base_url", cfg.TagService.BaseURL).Info("Tag service client initialized")
	}

	// Initialize selection engine
	eng := engine.NewEngine(
		consentDAO,
		tagDAO,
		tagComputer,
		candidateDAO,
		impressionDAO,
		vetFlagDAO,
		shortlists,
		logger,
	)

	// Initialize services
	recommendationService := service.NewRecommendationService(eng, impressionDAO, logger)
	consentService := service.NewConsentService(consentDAO, consentAuditDAO, db, logger)

	logger.Info("Services initialized successfully")

	// Setup router
	ginRouter := router.SetupRouter(cfg, db, recommendationService, consentService)

	// Configure HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("✓ Server is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited gracefully")
}
