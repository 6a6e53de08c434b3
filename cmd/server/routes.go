// Package main provides the health bot server entry point.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/chiaheng/health-linebot-go/internal/account"
	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/qrcode"
	"github.com/chiaheng/health-linebot-go/internal/state"
	"github.com/chiaheng/health-linebot-go/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	webhookHandler *webhook.Handler,
	store state.Store,
	accountClient *account.Client,
	qrManager *qrcode.Manager,
	registry *prometheus.Registry,
) {
	// Root endpoint - redirect to the project page
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/chiaheng/health-linebot-go")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - only confirms the process is serving requests,
	// never checks dependencies
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - full dependency check
	readyHandler := func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		// Quick reachability check against the account service
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		accountAvailable := accountClient.Ping(checkCtx) == nil

		conversations, _ := store.Count(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":          "ready",
			"store":           "connected",
			"account_service": accountAvailable,
			"conversations":   conversations,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// LINE webhook callback endpoint
	router.POST(cfg.WebhookPath, webhookHandler.Handle)

	// Prometheus metrics endpoint, Basic Auth when a password is configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.HasMetricsAuth() {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}

	// Current check-in QR code as PNG
	if qrManager != nil {
		router.GET("/qrcode", func(c *gin.Context) {
			c.Header("Cache-Control", "no-store")
			c.Data(http.StatusOK, "image/png", qrManager.PNG())
		})
	}
}
