package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(configFilePathENV, "")
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("KRAKEN_API_KEY", "key")
	t.Setenv("KRAKEN_API_SECRET", "c2VjcmV0")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Service.Host)
	assert.Equal(t, 5001, cfg.Service.PublicPort)
	assert.Equal(t, "0.0.0.0:5001", cfg.PublicAddr())
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.AllowPlaintext)
	assert.Equal(t, "SOLUSD", cfg.Trading.Pair)
	assert.Equal(t, "2.22", cfg.Trading.PositionSize.String())
	assert.Equal(t, 10*time.Second, cfg.Kraken.Timeout)
	assert.Equal(t, DefaultKrakenURL, cfg.Kraken.BaseURL)
	assert.True(t, cfg.Dispatch.Serialize)
	assert.False(t, cfg.Notify.Async)
	assert.True(t, cfg.HasKrakenCreds())
}

func TestNewConfigEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("EMAIL_HOST", "smtp.example.com")
	t.Setenv("EMAIL_PORT", "465")
	t.Setenv("EMAIL_ADDRESS", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "pw")
	t.Setenv("EMAIL_TO", "me@example.com")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("DISPATCH_SERIALIZE", "false")
	t.Setenv("EMAIL_ALLOW_PLAINTEXT", "true")
	t.Setenv("TRADING_PAIR", "XBTUSD")
	t.Setenv("POSITION_SIZE", "0.01")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Service.PublicPort)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.Equal(t, "bot@example.com", cfg.SMTP.Address)
	assert.Equal(t, "me@example.com", cfg.SMTP.To)
	assert.Equal(t, int64(-1001), cfg.Telegram.ChatID)
	assert.False(t, cfg.Dispatch.Serialize)
	assert.True(t, cfg.SMTP.AllowPlaintext)
	assert.Equal(t, "XBTUSD", cfg.Trading.Pair)
	assert.Equal(t, "0.01", cfg.Trading.PositionSize.String())
	assert.False(t, cfg.HasKrakenCreds())
}

func TestNewConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(configFilePathENV, filepath.Join("testdata", "config.yaml"))
	t.Setenv("EMAIL_ADDRESS", "bot@example.com")
	// env главнее файла
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 6001, cfg.Service.PublicPort)
	assert.Equal(t, 9090, cfg.Service.AdminPort)
	assert.Equal(t, 3*time.Second, cfg.Kraken.Timeout)
	assert.True(t, cfg.Kraken.ValidateOnly)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "XBTUSD", cfg.Trading.Pair)
	assert.Equal(t, "0.015", cfg.Trading.PositionSize.String())
	assert.False(t, cfg.Dispatch.Serialize)
	assert.Equal(t, 2.5, cfg.Dispatch.RatePerSec)
	assert.True(t, cfg.Notify.Async)
	assert.Equal(t, 8, cfg.Notify.QueueSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestNewConfigMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(configFilePathENV, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := NewConfig()
	require.Error(t, err)
}

func TestNewConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"bad size", map[string]string{"POSITION_SIZE": "abc"}, "trading.position_size"},
		{"zero size", map[string]string{"POSITION_SIZE": "0"}, "trading.position_size"},
		{"bad timeout", map[string]string{"KRAKEN_TIMEOUT": "soon"}, "kraken.timeout"},
		{"same ports", map[string]string{"PORT": "8080"}, "service.admin_port"},
		{"smtp without recipient", map[string]string{"EMAIL_HOST": "smtp.example.com"}, "smtp"},
		{"bad chat id", map[string]string{"TELEGRAM_CHAT_ID": "chat"}, "telegram.chat_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			require.Error(t, err)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
