// Package main provides the health bot server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chiaheng/health-linebot-go/internal/account"
	"github.com/chiaheng/health-linebot-go/internal/bot"
	"github.com/chiaheng/health-linebot-go/internal/buildinfo"
	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
	"github.com/chiaheng/health-linebot-go/internal/qrcode"
	"github.com/chiaheng/health-linebot-go/internal/ratelimit"
	"github.com/chiaheng/health-linebot-go/internal/replies"
	"github.com/chiaheng/health-linebot-go/internal/sentry"
	"github.com/chiaheng/health-linebot-go/internal/state"
	"github.com/chiaheng/health-linebot-go/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.WithField("version", buildinfo.Version).Info("Starting health bot server")

	// Initialize Sentry (no-op when no DSN is configured)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Version,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error reporting disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry initialized")
	}

	// Create Prometheus registry with Go and process collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Open the conversation store
	var store state.Store
	if cfg.EnableDB {
		sqliteStore, err := state.NewSQLite(cfg.SQLitePath())
		if err != nil {
			log.WithError(err).Fatal("Failed to open conversation database")
		}
		sqliteStore.SetMetrics(m)
		store = sqliteStore
		log.WithField("path", cfg.SQLitePath()).Info("Conversation database opened")
	} else {
		store = state.NewMemory()
		log.Warn("Database disabled, conversation state is in-memory only")
	}
	defer func() { _ = store.Close() }()

	// Load the canned-reply table
	catalog := replies.Empty()
	if cfg.RepliesPath != "" {
		catalog, err = replies.Load(cfg.RepliesPath)
		if err != nil {
			log.WithError(err).WithField("path", cfg.RepliesPath).Fatal("Failed to load reply table")
		}
		log.WithField("entries", catalog.Len()).Info("Reply table loaded")
	}

	// Create the account service client
	accountClient := account.NewClient(cfg.AccountBaseURL, cfg.AccountTimeout, log, m)
	log.WithField("base_url", cfg.AccountBaseURL).Info("Account service client created")

	// Create the rotating check-in QR code manager (optional)
	var qrManager *qrcode.Manager
	if cfg.QREnabled {
		qrManager, err = qrcode.NewManager(log, m)
		if err != nil {
			log.WithError(err).Fatal("Failed to create QR code manager")
		}
		log.WithField("rotate_interval", cfg.QRRotateInterval).Info("QR code manager created")
	}

	// Per-user inbound rate limiter
	userLimiter := ratelimit.NewUserLimiter(cfg.Bot.UserRateLimitBurst, cfg.Bot.UserRateLimitRefillPerSec, m)
	defer userLimiter.Stop()

	// Conversation dispatcher
	dispatcher := bot.New(bot.Config{
		Store:   store,
		Account: accountClient,
		Replies: catalog,
		Logger:  log,
		Metrics: m,
	})

	// Webhook handler
	webhookHandler, err := webhook.NewHandler(webhook.HandlerConfig{
		ChannelSecret: cfg.LineChannelSecret,
		ChannelToken:  cfg.LineChannelToken,
		Store:         store,
		Dispatcher:    dispatcher,
		UserLimiter:   userLimiter,
		BotConfig:     &cfg.Bot,
		Metrics:       m,
		Logger:        log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create webhook handler")
	}
	log.Info("Webhook handler created")

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	if sentry.IsEnabled() {
		router.Use(sentryMiddleware())
	}

	setupRoutes(router, cfg, webhookHandler, store, accountClient, qrManager, registry)

	// HTTP server with timeouts sized for LINE webhook handling
	// See internal/config/timeouts.go for detailed explanations
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  config.WebhookHTTPRead,
		WriteTimeout: config.WebhookHTTPWrite,
		IdleTimeout:  config.WebhookHTTPIdle,
	}

	// Start background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	jobs, jobCtx := errgroup.WithContext(jobCtx)
	jobs.Go(func() error {
		updateConversationMetrics(jobCtx, store, userLimiter, m, log)
		return nil
	})
	if qrManager != nil {
		jobs.Go(func() error {
			rotateQRCode(jobCtx, qrManager, cfg.QRRotateInterval, log)
			return nil
		})
	}

	// Start server in goroutine
	go func() {
		log.WithFields(map[string]any{
			"addr": cfg.Addr(),
			"path": cfg.WebhookPath,
			"tls":  cfg.HasTLS(),
		}).Info("Server starting")

		var err error
		if cfg.HasTLS() {
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Drain in-flight webhook event processing
	if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Timeout waiting for webhook events to drain")
	}

	// Stop background jobs
	cancelJobs()
	_ = jobs.Wait()

	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close conversation store")
	}

	sentry.Flush(2 * time.Second)
	log.Info("Server stopped")
}
