package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abupet/reco-engine/internal/config"
	"github.com/abupet/reco-engine/internal/database"
	"github.com/abupet/reco-engine/internal/handlers"
	"github.com/abupet/reco-engine/internal/service"
)

// SetupRouter configures all API routes
func SetupRouter(
	cfg *config.Config,
	db *database.DB,
	recommendationService *service.RecommendationService,
	consentService *service.ConsentService,
) *gin.Engine {
	router := gin.Default()

	if cfg.CORS.Enabled {
		router.Use(corsMiddleware(&cfg.CORS))
	}

	// Health checks
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	router.GET("/health/db", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create handlers
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	consentHandler := handlers.NewConsentHandler(consentService)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/recommendations", recommendationHandler.GetRecommendation)
		v1.POST("/impressions", recommendationHandler.CreateImpression)

		// Owner consent routes
		owners := v1.Group("/owners/:ownerId")
		{
			owners.PUT("/consents", consentHandler.UpsertConsent)
			owners.GET("/consents", consentHandler.ListConsents)
			owners.GET("/consents/audit", consentHandler.ListConsentAudit)
		}
	}

	// Operator-only routes
	internal := router.Group("/internal/api/v1")
	if cfg.Security.BasicAuth.Enabled {
		accounts := gin.Accounts{}
		for _, user := range cfg.Security.BasicAuth.Users {
			accounts[user.Username] = user.Password
		}
		internal.Use(gin.BasicAuth(accounts))
	}
	{
		internal.GET("/recommendations/preview", recommendationHandler.PreviewRecommendation)
	}

	return router
}

func corsMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(cfg.AllowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			if cfg.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == "OPTIONS" {
			c.Header("Access-Control-Allow-Methods", joinValues(cfg.AllowedMethods, "GET, POST, PUT, DELETE, OPTIONS"))
			c.Header("Access-Control-Allow-Headers", joinValues(cfg.AllowedHeaders, "Content-Type, Authorization"))
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func joinValues(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}
