package alpaca

import (
	"fmt"

	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/httputil"
	"github.com/tradewind-io/tradewind/pkg/logger"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

// Client talks to the Alpaca trading and market-data APIs.
// All Alpaca calls in the application go through this client.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	cfg        config.AlpacaConfig
}

// NewClient creates a new Alpaca API client. The shared rate limiter
// should already be attached to httpClient.
func NewClient(cfg config.AlpacaConfig, httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	httpClient.
		WithHeader("APCA-API-KEY-ID", cfg.APIKey).
		WithHeader("APCA-API-SECRET-KEY", cfg.APISecret)

	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		cfg:        cfg,
	}
}

// tradingURL builds a URL against the trading API host
func (c *Client) tradingURL(path string) string {
	return fmt.Sprintf("%s%s", c.cfg.BaseURL, path)
}

// dataURL builds a URL against the market-data API host
func (c *Client) dataURL(path string) string {
	return fmt.Sprintf("%s%s", c.cfg.DataURL, path)
}
