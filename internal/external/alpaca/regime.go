package alpaca

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

// Regime input universe. Index breadth uses the four broad-market ETFs,
// sector rotation the SPDR sector funds.
const vixSymbol = "VIX"

var (
	indexSymbols = []string{"SPY", "QQQ", "DIA", "IWM"}

	sectorSymbols = []string{
		"XLK", "XLF", "XLE", "XLV", "XLY", "XLP",
		"XLI", "XLU", "XLB", "XLRE", "XLC",
	}
)

// Lookbacks sized to what the classifier needs plus weekend slack:
// 20-day SMAs and 30-day returns on calendar-day fetches.
const (
	vixLookbackDays    = 30
	indexLookbackDays  = 45
	sectorLookbackDays = 60
)

// GetRegimeInputs fetches the VIX level series, broad-index series, and
// sector series. A missing series is tolerated; the classifier degrades
// the affected layer to its neutral tier.
func (c *Client) GetRegimeInputs(ctx context.Context) (*contracts.RegimeInputs, error) {
	inputs := &contracts.RegimeInputs{
		Indices: make(map[string]contracts.PriceSeries, len(indexSymbols)),
		Sectors: make(map[string]contracts.PriceSeries, len(sectorSymbols)),
	}

	vix, err := c.getIndexBars(ctx, vixSymbol, vixLookbackDays)
	if err != nil {
		c.logger.WithError(err).Warn("vix series unavailable")
	} else {
		inputs.VIX = vix
	}

	for _, symbol := range indexSymbols {
		series, err := c.GetPriceSeries(ctx, symbol, indexLookbackDays)
		if err != nil {
			c.logger.WithField("symbol", symbol).WithError(err).Warn("index series unavailable")
			continue
		}
		inputs.Indices[symbol] = series
	}

	for _, symbol := range sectorSymbols {
		series, err := c.GetPriceSeries(ctx, symbol, sectorLookbackDays)
		if err != nil {
			c.logger.WithField("symbol", symbol).WithError(err).Warn("sector series unavailable")
			continue
		}
		inputs.Sectors[symbol] = series
	}

	if inputs.VIX.Len() == 0 && len(inputs.Indices) == 0 && len(inputs.Sectors) == 0 {
		return nil, contracts.NewProviderError("alpaca", "get regime inputs",
			fmt.Errorf("no regime series available"))
	}

	return inputs, nil
}

// getIndexBars fetches daily bars from the indices feed, which serves
// index levels (VIX included) rather than equity trades.
func (c *Client) getIndexBars(ctx context.Context, symbol string, lookbackDays int) (contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("timeframe", "1Day")
	params.Set("start", time.Now().AddDate(0, 0, -lookbackDays).Format(time.RFC3339))

	var page barsResponse
	endpoint := c.dataURL(fmt.Sprintf("/v1beta1/indices/%s/bars?%s", url.PathEscape(symbol), params.Encode()))
	if err := c.httpClient.GetJSON(ctx, endpoint, &page); err != nil {
		return nil, contracts.NewProviderError("alpaca", "get index bars", err)
	}

	if len(page.Bars) == 0 {
		return nil, contracts.ErrInsufficientData
	}

	series := make(contracts.PriceSeries, 0, len(page.Bars))
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

	return series, nil
}
