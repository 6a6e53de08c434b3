// Package main provides the health bot server entry point.
package main

import (
	"context"
	"time"

	"github.com/chiaheng/health-linebot-go/internal/config"
	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
	"github.com/chiaheng/health-linebot-go/internal/qrcode"
	"github.com/chiaheng/health-linebot-go/internal/ratelimit"
	"github.com/chiaheng/health-linebot-go/internal/state"
)

// updateConversationMetrics periodically refreshes the conversation
// count gauge from the store.
func updateConversationMetrics(ctx context.Context, store state.Store, userLimiter *ratelimit.UserLimiter, m *metrics.Metrics, log *logger.Logger) {
	refresh := func() {
		countCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		count, err := store.Count(countCtx)
		if err != nil {
			log.WithError(err).Warn("Failed to count conversations for metrics")
			return
		}
		m.SetActiveConversations(count)
		log.WithFields(map[string]any{
			"conversations": count,
			"rate_buckets":  userLimiter.ActiveCount(),
		}).Debug("Conversation metrics updated")
	}

	refresh()

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// rotateQRCode replaces the check-in QR code on a fixed interval so a
// photographed code stops being redeemable shortly after it is shown.
func rotateQRCode(ctx context.Context, manager *qrcode.Manager, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := manager.Rotate(); err != nil {
				log.WithError(err).Error("Failed to rotate QR code")
			}
		}
	}
}
