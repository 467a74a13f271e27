package service

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"kraken_bot/internal/modules/config"
)

const addOrderPath = "/0/private/AddOrder"

// Client ходит в приватный REST Kraken. Безопасен для конкурентного использования.
type Client struct {
	http         *http.Client
	baseURL      string
	apiKey       string
	apiSecret    string
	validateOnly bool

	lastNonce atomic.Int64
	now       func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:         &http.Client{Timeout: cfg.Kraken.Timeout},
		baseURL:      strings.TrimRight(cfg.Kraken.BaseURL, "/"),
		apiKey:       cfg.Kraken.APIKey,
		apiSecret:    cfg.Kraken.APISecret,
		validateOnly: cfg.Kraken.ValidateOnly,
		now:          time.Now,
	}
}

// nextNonce миллисекунды, но строго больше предыдущего.
func (c *Client) nextNonce() int64 {
	for {
		last := c.lastNonce.Load()
		n := c.now().UnixMilli()
		if n <= last {
			n = last + 1
		}
		if c.lastNonce.CompareAndSwap(last, n) {
			return n
		}
	}
}
