package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

// maxBarsPerPage is Alpaca's bar pagination cap
const maxBarsPerPage = 10000

// apiBar mirrors one bar in an Alpaca bars response
type apiBar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    int64     `json:"v"`
}

type barsResponse struct {
	Bars          []apiBar `json:"bars"`
	Symbol        string   `json:"symbol"`
	NextPageToken *string  `json:"next_page_token"`
}

// apiAsset mirrors an Alpaca asset record
type apiAsset struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Exchange     string `json:"exchange"`
	Status       string `json:"status"`
	Tradable     bool   `json:"tradable"`
	Shortable    bool   `json:"shortable"`
	Fractionable bool   `json:"fractionable"`
}

func (a apiAsset) toContract() contracts.Asset {
	return contracts.Asset{
		Symbol:       a.Symbol,
		Name:         a.Name,
		Exchange:     a.Exchange,
		Tradable:     a.Tradable,
		Shortable:    a.Shortable,
		Fractionable: a.Fractionable,
	}
}

// GetPriceSeries returns daily bars for the last lookbackDays calendar
// days, ascending by date.
func (c *Client) GetPriceSeries(ctx context.Context, symbol string, lookbackDays int) (contracts.PriceSeries, error) {
	start := time.Now().AddDate(0, 0, -lookbackDays)

	series := make(contracts.PriceSeries, 0, lookbackDays)
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("timeframe", "1Day")
		params.Set("start", start.Format(time.RFC3339))
		params.Set("adjustment", "split")
		params.Set("feed", c.cfg.DataFeed)
		params.Set("limit", fmt.Sprintf("%d", maxBarsPerPage))
		if pageToken != "" {
			params.Set("page_token", pageToken)
		}

		var page barsResponse
		endpoint := c.dataURL(fmt.Sprintf("/v2/stocks/%s/bars?%s", url.PathEscape(symbol), params.Encode()))
		if err := c.httpClient.GetJSON(ctx, endpoint, &page); err != nil {
			return nil, contracts.NewProviderError("alpaca", "get bars", err)
		}

		for _, b := range page.Bars {
			series = append(series, contracts.Bar{
				Date:   b.Timestamp,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			})
		}

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	if len(series) == 0 {
		return nil, contracts.ErrInsufficientData
	}

	return series, nil
}

// ListAssets returns all active US equities
func (c *Client) ListAssets(ctx context.Context) ([]contracts.Asset, error) {
	var raw []apiAsset
	endpoint := c.tradingURL("/v2/assets?status=active&asset_class=us_equity")
	if err := c.httpClient.GetJSON(ctx, endpoint, &raw); err != nil {
		return nil, contracts.NewProviderError("alpaca", "list assets", err)
	}

	assets := make([]contracts.Asset, 0, len(raw))
	for _, a := range raw {
		assets = append(assets, a.toContract())
	}

	c.logger.WithField("count", len(assets)).Debug("assets listed")
	return assets, nil
}

// GetAsset returns metadata for one symbol. Asset records change rarely,
// so they are cached.
func (c *Client) GetAsset(ctx context.Context, symbol string) (*contracts.Asset, error) {
	cacheKey := fmt.Sprintf("alpaca:asset:%s", symbol)

	var cached contracts.Asset
	if hit, _ := c.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	var raw apiAsset
	endpoint := c.tradingURL(fmt.Sprintf("/v2/assets/%s", url.PathEscape(symbol)))
	if err := c.httpClient.GetJSON(ctx, endpoint, &raw); err != nil {
		return nil, contracts.NewProviderError("alpaca", "get asset", err)
	}

	asset := raw.toContract()
	if err := c.cache.Set(ctx, cacheKey, asset, redis.TTLMedium); err != nil {
		c.logger.WithError(err).Warn("asset cache write failed")
	}

	return &asset, nil
}
