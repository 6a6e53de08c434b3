package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// Outbound message metrics
	MessagesSentTotal *prometheus.CounterVec

	// Account service metrics
	AccountRequestsTotal   *prometheus.CounterVec
	AccountDurationSeconds *prometheus.HistogramVec

	// State store metrics
	StoreOpsTotal *prometheus.CounterVec

	// Canned reply metrics
	ReplyLookupsTotal *prometheus.CounterVec

	// Conversation metrics
	ConversationsActive  prometheus.Gauge
	FlowTransitionsTotal *prometheus.CounterVec
	PointsAddedTotal     *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// QR ticket metrics
	QRRotationsTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Webhook metrics
		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "healthbot_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // Faster buckets for webhook
			},
			[]string{"event_type"}, // event_type: message, postback, follow
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_webhook_requests_total",
				Help: "Total number of webhook requests by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error
		),

		// Outbound message metrics
		MessagesSentTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_messages_sent_total",
				Help: "Total number of LINE API message sends by mode and status",
			},
			[]string{"mode", "status"}, // mode: reply, push
		),

		// Account service metrics
		AccountRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_account_requests_total",
				Help: "Total number of account service requests by operation and status",
			},
			[]string{"operation", "status"}, // operation: search, link, register, add_point, logout
		),

		AccountDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "healthbot_account_duration_seconds",
				Help:    "Account service request duration in seconds by operation",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}, // Matches 10s client timeout
			},
			[]string{"operation"},
		),

		// State store metrics
		StoreOpsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_store_ops_total",
				Help: "Total number of conversation store operations by op and status",
			},
			[]string{"op", "status"}, // op: get, insert, update, delete
		),

		// Canned reply metrics
		ReplyLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_reply_lookups_total",
				Help: "Total number of canned-reply lookups by result",
			},
			[]string{"result"}, // result: hit, miss
		),

		// Conversation metrics
		ConversationsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "healthbot_conversations_active",
				Help: "Number of conversation state records currently stored",
			},
		),

		FlowTransitionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_flow_transitions_total",
				Help: "Total number of conversation flow transitions",
			},
			[]string{"flow", "outcome"}, // outcome: advanced, completed, failed, reset
		),

		PointsAddedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_points_added_total",
				Help: "Total number of loyalty points granted by category",
			},
			[]string{"category"}, // category: health_measurement, health_education, exercise
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, invalid_signature, etc.
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthbot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global
		),

		// QR ticket metrics
		QRRotationsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "healthbot_qr_rotations_total",
				Help: "Total number of redemption ticket rotations",
			},
		),
	}

	return m
}

// RecordWebhook records a webhook request
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordAccountRequest records an account service request with status
func (m *Metrics) RecordAccountRequest(operation, status string, duration float64) {
	m.AccountRequestsTotal.WithLabelValues(operation, status).Inc()
	m.AccountDurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordMessageSent records an outbound LINE API send
func (m *Metrics) RecordMessageSent(mode, status string) {
	m.MessagesSentTotal.WithLabelValues(mode, status).Inc()
}

// RecordStoreOp records a conversation store operation
func (m *Metrics) RecordStoreOp(op, status string) {
	m.StoreOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordReplyLookup records a canned-reply table lookup
func (m *Metrics) RecordReplyLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ReplyLookupsTotal.WithLabelValues(result).Inc()
}

// SetActiveConversations updates the stored conversation count gauge
func (m *Metrics) SetActiveConversations(n int) {
	m.ConversationsActive.Set(float64(n))
}

// RecordFlowTransition records a conversation flow transition
func (m *Metrics) RecordFlowTransition(flow, outcome string) {
	m.FlowTransitionsTotal.WithLabelValues(flow, outcome).Inc()
}

// RecordPointAdded records a granted loyalty point
func (m *Metrics) RecordPointAdded(category string) {
	m.PointsAddedTotal.WithLabelValues(category).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordQRRotation records a redemption ticket rotation
func (m *Metrics) RecordQRRotation() {
	m.QRRotationsTotal.Inc()
}
