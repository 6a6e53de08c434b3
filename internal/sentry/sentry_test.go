package sentry

import (
	"testing"
	"time"
)

func TestInitialize_EmptyDSN(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	// Should return nil when DSN is empty (disabled)
	err := Initialize(Config{DSN: ""})
	if err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}

	if IsEnabled() {
		t.Error("Expected IsEnabled() to return false when DSN is empty")
	}
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	err := Initialize(Config{
		DSN:         "https://abc123@o0.ingest.sentry.io/1",
		Environment: "test",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	Flush(time.Second)
}

func TestInitialize_DefaultSampleRate(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state

	// Zero sample rate should default to 1.0
	err := Initialize(Config{
		DSN:        "https://def456@o0.ingest.sentry.io/1",
		SampleRate: 0,
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	Flush(time.Second)
}

func TestFlush(t *testing.T) {
	t.Parallel()

	result := Flush(100 * time.Millisecond)
	if !result {
		t.Error("Expected Flush to return true when no events pending")
	}
}
