package dispatcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kraken_bot/internal/modules/config"
)

func TestNewConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Trading.Pair = "SOLUSD"
	cfg.Trading.PositionSize = decimal.RequireFromString("2.22")
	cfg.Dispatch.Serialize = true
	cfg.Dispatch.RatePerSec = 2
	cfg.Notify.Timeout = 15 * time.Second
	cfg.Kraken.Timeout = 10 * time.Second

	got := NewConfig(cfg)
	assert.Equal(t, "SOLUSD", got.Pair)
	assert.Equal(t, "2.22", got.Volume.String())
	assert.True(t, got.Serialize)
	assert.Equal(t, 2.0, got.RatePerSec)
	assert.Equal(t, 15*time.Second, got.NotifyTimeout)
	assert.Equal(t, 10*time.Second, got.ExchangeTimeout)
}
