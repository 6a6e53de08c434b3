// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, timeouts, storage, and the account service client.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken  string
	LineChannelSecret string

	// Account Service Configuration
	AccountBaseURL string        // Base URL of the member account service
	AccountTimeout time.Duration // HTTP client timeout for account service calls

	// Server Configuration
	Host            string // Listen host (empty = all interfaces)
	Port            string
	WebhookPath     string // HTTP path for the LINE webhook callback
	TLSCertPath     string // PEM certificate path (empty = plain HTTP)
	TLSKeyPath      string // PEM key path
	LogLevel        string
	LogFormat       string // "json" (default) or "console"
	ShutdownTimeout time.Duration

	// Data Configuration
	EnableDB bool   // true = SQLite-backed conversation store, false = in-memory
	DataDir  string // Data directory for SQLite database

	// Reply Configuration
	RepliesPath string // Optional JSON file overriding canned reply texts

	// QR Ticket Configuration
	QREnabled        bool          // Enable rotating QR redemption tickets
	QRRotateInterval time.Duration // How often the redemption ticket rotates

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds bot-specific configuration
type BotConfig struct {
	// Timeouts
	WebhookTimeout time.Duration // Timeout for webhook bot processing (see config/timeouts.go)

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per user (default: 15)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.5 = 1 per 2s)
	GlobalRateRPS             float64 // Outbound LINE API calls per second (default: 50)

	// LINE API Constraints
	MaxMessagesPerReply int // Maximum messages per reply (LINE API limit: 5)
	MaxEventsPerWebhook int // Maximum events per webhook (default: 100)
	MinReplyTokenLength int // Minimum reply token length (default: 10)
	MaxPostbackDataSize int // Maximum postback data size (LINE API limit: 300)
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LINE Bot Configuration
		LineChannelToken:  getEnv(EnvLineChannelAccessToken, ""),
		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),

		// Account Service Configuration
		AccountBaseURL: getEnv(EnvAccountBaseURL, ""),
		AccountTimeout: getDurationEnv(EnvAccountTimeout, AccountRequest),

		// Server Configuration
		Host:            getEnv(EnvHost, ""),
		Port:            getEnv(EnvPort, "10000"),
		WebhookPath:     getEnv(EnvWebhookPath, "/callback"),
		TLSCertPath:     getEnv(EnvTLSCertPath, ""),
		TLSKeyPath:      getEnv(EnvTLSKeyPath, ""),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		LogFormat:       getEnv(EnvLogFormat, "json"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		EnableDB: getBoolEnv(EnvEnableDB, true),
		DataDir:  getEnv(EnvDataDir, getDefaultDataDir()),

		// Reply Configuration
		RepliesPath: getEnv(EnvRepliesPath, ""),

		// QR Ticket Configuration
		QREnabled:        getBoolEnv(EnvQREnabled, false),
		QRRotateInterval: getDurationEnv(EnvQRRotateInterval, QRTicketRotation),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		// Sentry Configuration
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		// Bot Configuration
		Bot: BotConfig{
			WebhookTimeout:            getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
			UserRateLimitBurst:        getFloatEnv(EnvUserRateBurst, 15.0),
			UserRateLimitRefillPerSec: getFloatEnv(EnvUserRateRefill, 0.5), // 1 per 2s
			GlobalRateRPS:             getFloatEnv(EnvGlobalRateRPS, 50.0),
			MaxMessagesPerReply:       LINEMaxMessagesPerReply,
			MaxEventsPerWebhook:       100,
			MinReplyTokenLength:       10,
			MaxPostbackDataSize:       LINEMaxPostbackDataLength,
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New(EnvLineChannelAccessToken+" is required"))
	}
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New(EnvLineChannelSecret+" is required"))
	}
	if c.AccountBaseURL == "" {
		errs = append(errs, errors.New(EnvAccountBaseURL+" is required"))
	}
	if c.AccountTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvAccountTimeout, c.AccountTimeout))
	}
	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if len(c.WebhookPath) == 0 || c.WebhookPath[0] != '/' {
		errs = append(errs, fmt.Errorf("%s must start with /, got %q", EnvWebhookPath, c.WebhookPath))
	}
	if (c.TLSCertPath == "") != (c.TLSKeyPath == "") {
		errs = append(errs, errors.New(EnvTLSCertPath+" and "+EnvTLSKeyPath+" must be set together"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("%s must be json or console, got %q", EnvLogFormat, c.LogFormat))
	}
	if c.EnableDB && c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required when the database is enabled"))
	}
	if c.QREnabled && c.QRRotateInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvQRRotateInterval, c.QRRotateInterval))
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks if the bot configuration is valid.
func (c *BotConfig) Validate() error {
	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive, got %v", c.WebhookTimeout)
	}
	if c.MaxMessagesPerReply < 1 || c.MaxMessagesPerReply > LINEMaxMessagesPerReply {
		return fmt.Errorf("max messages per reply must be 1-%d, got %d", LINEMaxMessagesPerReply, c.MaxMessagesPerReply)
	}
	if c.MaxEventsPerWebhook < 1 {
		return fmt.Errorf("max events per webhook must be positive, got %d", c.MaxEventsPerWebhook)
	}
	if c.UserRateLimitBurst <= 0 {
		return fmt.Errorf("user rate limit burst must be positive, got %f", c.UserRateLimitBurst)
	}
	if c.UserRateLimitRefillPerSec <= 0 {
		return fmt.Errorf("user rate limit refill rate must be positive, got %f", c.UserRateLimitRefillPerSec)
	}
	if c.GlobalRateRPS <= 0 {
		return fmt.Errorf("global rate limit must be positive, got %f", c.GlobalRateRPS)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "conversations.db")
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// HasTLS returns true if a TLS certificate and key are configured.
func (c *Config) HasTLS() bool {
	return c.TLSCertPath != "" && c.TLSKeyPath != ""
}

// HasSentry returns true if Sentry error reporting is configured.
func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// HasMetricsAuth returns true if the /metrics endpoint requires Basic Auth.
func (c *Config) HasMetricsAuth() bool {
	return c.MetricsPassword != ""
}
