package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smoketrack/smoketrack/internal/auth"
	"github.com/smoketrack/smoketrack/internal/config"
	"github.com/smoketrack/smoketrack/internal/handlers"
	"github.com/smoketrack/smoketrack/internal/purchases"
	"github.com/smoketrack/smoketrack/internal/service"
	"github.com/smoketrack/smoketrack/internal/store"
)

// NewRouter wires public endpoints and the (optionally) API-key-gated app
// routes.
// Public: /health, /ready
// App: /logs, /stats/*, /subscription/*
func NewRouter(cfg config.Config, st *store.SQLiteStore, statsSvc *service.StatsService, purchasesSvc *purchases.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the embedded database is usable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// App routes share the single-key gate; an empty key leaves them open.
	app := r.Group("/")
	app.Use(auth.APIKeyMiddleware(cfg.APIKey))

	handlers.RegisterLogRoutes(app, st, time.Now)
	handlers.RegisterStatsRoutes(app, statsSvc)
	handlers.RegisterSubscriptionRoutes(app, purchasesSvc)

	return r
}
