// Package config provides centralized timeout constants for the application.
//
// These values are tuned for:
//   - LINE Messaging API constraints (reply token expiration, webhook timeouts)
//   - Account service response times (a small internal REST API)
//   - SQLite performance characteristics (WAL mode, busy timeout)
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single webhook event.
	// This includes conversation state lookups, account service calls, and
	// the reply/push API round trips.
	WebhookProcessing = 30 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since LINE sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 35 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Account service timeouts
const (
	// AccountRequest is the timeout for a single HTTP request to the member
	// account service. The service is internal and normally answers fast;
	// a slow answer is treated as a failure and reported to the user.
	AccountRequest = 10 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention across webhook goroutines.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// MetricsUpdateInterval is how often conversation count metrics are updated.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive user rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute

	// QRTicketRotation is the default interval between redemption ticket rotations.
	QRTicketRotation = 15 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
