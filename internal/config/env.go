// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Core (Required)
	EnvLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvLineChannelSecret      = "LINE_CHANNEL_SECRET"
	EnvAccountBaseURL         = "ACCOUNT_BASE_URL"

	// Server
	EnvHost            = "HOST"
	EnvPort            = "PORT"
	EnvWebhookPath     = "WEBHOOK_PATH"
	EnvTLSCertPath     = "TLS_CERT_PATH"
	EnvTLSKeyPath      = "TLS_KEY_PATH"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	// Data
	EnvEnableDB = "ENABLE_DB"
	EnvDataDir  = "DATA_DIR"

	// Replies
	EnvRepliesPath = "REPLIES_PATH"

	// Account service
	EnvAccountTimeout = "ACCOUNT_TIMEOUT"

	// Webhook
	EnvWebhookTimeout = "WEBHOOK_TIMEOUT"

	// Rate Limits
	EnvUserRateBurst  = "USER_RATE_BURST"
	EnvUserRateRefill = "USER_RATE_REFILL"
	EnvGlobalRateRPS  = "GLOBAL_RATE_RPS"

	// QR Ticket Feature
	EnvQREnabled        = "QR_ENABLED"
	EnvQRRotateInterval = "QR_ROTATE_INTERVAL"

	// Sentry Feature
	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "SENTRY_SAMPLE_RATE"

	// Metrics Auth Feature
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"
)
