package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/httputil"
	"github.com/tradewind-io/tradewind/pkg/logger"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

// Client fetches fundamentals from Alpha Vantage.
// All Alpha Vantage calls in the application go through this client.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	cfg        config.AlphaVantageConfig
}

// NewClient creates a new Alpha Vantage client. The free tier allows
// very few requests per minute, so the shared rate limiter on
// httpClient matters here.
func NewClient(cfg config.AlphaVantageConfig, httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		cfg:        cfg,
	}
}

// apiError carries the soft-error fields Alpha Vantage returns with a
// 200 status: rate-limit notes and bad-symbol messages.
type apiError struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (e apiError) err() error {
	switch {
	case e.ErrorMessage != "":
		return fmt.Errorf("api error: %s", e.ErrorMessage)
	case e.Note != "":
		return fmt.Errorf("rate limited: %s", e.Note)
	case e.Information != "":
		return fmt.Errorf("api notice: %s", e.Information)
	}
	return nil
}

// get fetches one API function for a symbol, going through the cache
func (c *Client) get(ctx context.Context, function, symbol string, dest interface{}) (bool, error) {
	cacheKey := fmt.Sprintf("av:%s:%s", strings.ToLower(function), symbol)
	if hit, _ := c.cache.Get(ctx, cacheKey, dest); hit {
		return true, nil
	}

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.cfg.APIKey)

	endpoint := fmt.Sprintf("%s?%s", c.cfg.BaseURL, params.Encode())
	if err := c.httpClient.GetJSON(ctx, endpoint, dest); err != nil {
		return false, contracts.NewProviderError("alphavantage", strings.ToLower(function), err)
	}

	return false, nil
}

// cacheResult stores a successful response; failures only cost a refetch
func (c *Client) cacheResult(ctx context.Context, function, symbol string, value interface{}) {
	cacheKey := fmt.Sprintf("av:%s:%s", strings.ToLower(function), symbol)
	if err := c.cache.Set(ctx, cacheKey, value, redis.TTLMedium); err != nil {
		c.logger.WithError(err).Warn("fundamentals cache write failed")
	}
}

// avFloat parses Alpha Vantage's stringly-typed numbers. "None", "-"
// and empty values become zero.
func avFloat(s string) float64 {
	if s == "" || s == "None" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
