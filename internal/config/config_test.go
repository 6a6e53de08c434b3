package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvLineChannelAccessToken, "test-token")
	t.Setenv(EnvLineChannelSecret, "test-secret")
	t.Setenv(EnvAccountBaseURL, "http://account.local")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.LineChannelToken)
	assert.Equal(t, "test-secret", cfg.LineChannelSecret)
	assert.Equal(t, "http://account.local", cfg.AccountBaseURL)
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, ":10000", cfg.Addr())
	assert.Equal(t, "/callback", cfg.WebhookPath)
	assert.False(t, cfg.HasTLS())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.EnableDB)
	assert.False(t, cfg.QREnabled)
	assert.Equal(t, AccountRequest, cfg.AccountTimeout)
	assert.Equal(t, WebhookProcessing, cfg.Bot.WebhookTimeout)
	assert.Equal(t, LINEMaxMessagesPerReply, cfg.Bot.MaxMessagesPerReply)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv(EnvLineChannelAccessToken, "")
	t.Setenv(EnvLineChannelSecret, "")
	t.Setenv(EnvAccountBaseURL, "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLineChannelAccessToken)
	assert.Contains(t, err.Error(), EnvLineChannelSecret)
	assert.Contains(t, err.Error(), EnvAccountBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvPort, "8080")
	t.Setenv(EnvLogFormat, "console")
	t.Setenv(EnvEnableDB, "false")
	t.Setenv(EnvAccountTimeout, "3s")
	t.Setenv(EnvQREnabled, "true")
	t.Setenv(EnvQRRotateInterval, "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.EnableDB)
	assert.Equal(t, 3*time.Second, cfg.AccountTimeout)
	assert.True(t, cfg.QREnabled)
	assert.Equal(t, 30*time.Second, cfg.QRRotateInterval)
}

func TestLoadTLSRequiresBothPaths(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvTLSCertPath, "/etc/ssl/bot.crt")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTLSKeyPath)

	t.Setenv(EnvTLSKeyPath, "/etc/ssl/bot.key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasTLS())
}

func TestLoadInvalidWebhookPath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvWebhookPath, "callback")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvWebhookPath)
}

func TestLoadInvalidLogFormat(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvLogFormat, "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvLogFormat)
}

func TestBotConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BotConfig)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*BotConfig) {},
		},
		{
			name:    "zero webhook timeout",
			mutate:  func(c *BotConfig) { c.WebhookTimeout = 0 },
			wantErr: "webhook timeout",
		},
		{
			name:    "too many messages per reply",
			mutate:  func(c *BotConfig) { c.MaxMessagesPerReply = 6 },
			wantErr: "messages per reply",
		},
		{
			name:    "negative burst",
			mutate:  func(c *BotConfig) { c.UserRateLimitBurst = -1 },
			wantErr: "burst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := BotConfig{
				WebhookTimeout:            WebhookProcessing,
				UserRateLimitBurst:        15,
				UserRateLimitRefillPerSec: 0.5,
				GlobalRateRPS:             50,
				MaxMessagesPerReply:       LINEMaxMessagesPerReply,
				MaxEventsPerWebhook:       100,
				MinReplyTokenLength:       10,
				MaxPostbackDataSize:       LINEMaxPostbackDataLength,
			}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/data"}
	assert.Equal(t, "/tmp/data/conversations.db", cfg.SQLitePath())
}

func TestHasMetricsAuth(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasMetricsAuth())
	cfg.MetricsPassword = "secret"
	assert.True(t, cfg.HasMetricsAuth())
}
