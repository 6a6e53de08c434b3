package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.WebhookDurationSeconds == nil {
		t.Error("WebhookDurationSeconds is nil")
	}
	if m.WebhookRequestsTotal == nil {
		t.Error("WebhookRequestsTotal is nil")
	}
	if m.AccountRequestsTotal == nil {
		t.Error("AccountRequestsTotal is nil")
	}
	if m.AccountDurationSeconds == nil {
		t.Error("AccountDurationSeconds is nil")
	}
	if m.ConversationsActive == nil {
		t.Error("ConversationsActive is nil")
	}
	if m.FlowTransitionsTotal == nil {
		t.Error("FlowTransitionsTotal is nil")
	}
	if m.PointsAddedTotal == nil {
		t.Error("PointsAddedTotal is nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
	if m.RateLimiterDropped == nil {
		t.Error("RateLimiterDropped is nil")
	}
	if m.QRRotationsTotal == nil {
		t.Error("QRRotationsTotal is nil")
	}
	if m.MessagesSentTotal == nil {
		t.Error("MessagesSentTotal is nil")
	}
	if m.StoreOpsTotal == nil {
		t.Error("StoreOpsTotal is nil")
	}
	if m.ReplyLookupsTotal == nil {
		t.Error("ReplyLookupsTotal is nil")
	}
}

func TestRecordMessageSent(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordMessageSent("reply", "success")
	m.RecordMessageSent("push", "error")
}

func TestRecordStoreOp(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordStoreOp("get", "success")
	m.RecordStoreOp("update", "error")
}

func TestRecordReplyLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordReplyLookup(true)
	m.RecordReplyLookup(false)
}

func TestRecordWebhook(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordWebhook("message", "success", 0.5)
	m.RecordWebhook("postback", "error", 1.0)
	m.RecordWebhook("follow", "success", 0.1)
}

func TestRecordAccountRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordAccountRequest("search", "success", 0.2)
	m.RecordAccountRequest("link", "error", 1.0)
	m.RecordAccountRequest("add_point", "success", 0.3)
}

func TestRecordFlowTransition(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordFlowTransition("login", "advanced")
	m.RecordFlowTransition("register", "completed")
	m.RecordFlowTransition("login", "failed")
}

func TestRecordPointAdded(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordPointAdded("health_measurement")
	m.RecordPointAdded("health_education")
	m.RecordPointAdded("exercise")
}

func TestRecordHTTPError(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordHTTPError("timeout", "webhook")
	m.RecordHTTPError("invalid_signature", "webhook")
}

func TestRecordRateLimiterDrop(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordRateLimiterDrop("user")
	m.RecordRateLimiterDrop("global")
}

func TestMetrics_WithDefaultRegistry(t *testing.T) {
	// Test that metrics can be created with a new registry
	// without conflicting with default registry
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Record some metrics
	m.RecordWebhook("message", "success", 0.5)
	m.RecordAccountRequest("search", "success", 0.1)
	m.SetActiveConversations(3)
	m.RecordQRRotation()

	// Gather metrics to verify they were recorded
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	// Should have metrics registered
	if len(metricFamilies) == 0 {
		t.Error("No metrics were gathered")
	}

	// Check for specific metric names
	expectedMetrics := map[string]bool{
		"healthbot_webhook_requests_total":   false,
		"healthbot_webhook_duration_seconds": false,
		"healthbot_account_requests_total":   false,
		"healthbot_conversations_active":     false,
		"healthbot_qr_rotations_total":       false,
	}

	for _, mf := range metricFamilies {
		if _, ok := expectedMetrics[mf.GetName()]; ok {
			expectedMetrics[mf.GetName()] = true
		}
	}

	for name, found := range expectedMetrics {
		if !found {
			t.Errorf("Expected metric %q not found", name)
		}
	}
}
