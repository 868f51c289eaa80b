package scoring

import (
	"context"
	"strings"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// Universe types
const (
	UniverseStarter  = "starter"
	UniverseAll      = "all"
	UniverseFiltered = "filtered"
)

// starterSymbols is the curated default universe of liquid large caps
var starterSymbols = []string{
	"AAPL", "GOOGL", "MSFT", "AMZN", "META", "NVDA", "NFLX", "AMD", "CRM",
	"SPY", "QQQ",
	"JPM", "JNJ", "PFE",
	"PYPL", "ZM", "ROKU", "SQ", "SHOP",
}

// excludedPatterns marks warrants, units, rights and other complex
// instruments that should never be scored.
var excludedPatterns = []string{".", "-", "WARRANT", "UNIT", "RT"}

// allowedExchanges for the filtered universe
var allowedExchanges = map[string]bool{
	"NASDAQ": true,
	"NYSE":   true,
}

// UniverseBuilder resolves a universe type into the symbol list to score
type UniverseBuilder struct {
	market contracts.MarketDataProvider
	logger *logger.Logger
}

// NewUniverseBuilder creates a universe builder
func NewUniverseBuilder(market contracts.MarketDataProvider, log *logger.Logger) *UniverseBuilder {
	return &UniverseBuilder{market: market, logger: log}
}

// Symbols returns the symbols for a universe type, truncated to
// maxSymbols when positive. An unknown type falls back to starter.
func (u *UniverseBuilder) Symbols(ctx context.Context, universeType string, maxSymbols int) ([]string, error) {
	var symbols []string
	var err error

	switch universeType {
	case UniverseStarter:
		symbols = append([]string(nil), starterSymbols...)
	case UniverseAll:
		symbols, err = u.tradableSymbols(ctx, false)
	case UniverseFiltered:
		symbols, err = u.tradableSymbols(ctx, true)
	default:
		u.logger.Warnf("Unknown universe type %q, using starter", universeType)
		symbols = append([]string(nil), starterSymbols...)
	}
	if err != nil {
		return nil, err
	}

	if maxSymbols > 0 && len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}

	u.logger.WithFields(map[string]interface{}{
		"universe": universeType,
		"symbols":  len(symbols),
	}).Info("Resolved scoring universe")

	return symbols, nil
}

func (u *UniverseBuilder) tradableSymbols(ctx context.Context, filtered bool) ([]string, error) {
	assets, err := u.market.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(assets))
	for _, asset := range assets {
		if !asset.Tradable || !asset.Shortable {
			continue
		}
		if filtered && !passesFilters(asset) {
			continue
		}
		symbols = append(symbols, asset.Symbol)
	}

	return symbols, nil
}

// passesFilters drops complex instruments, off-exchange listings, and
// likely penny stocks by symbol heuristics.
func passesFilters(asset contracts.Asset) bool {
	for _, pattern := range excludedPatterns {
		if strings.Contains(asset.Symbol, pattern) {
			return false
		}
	}

	if !allowedExchanges[asset.Exchange] {
		return false
	}

	if len(asset.Symbol) > 4 {
		return false
	}
	switch {
	case strings.HasSuffix(asset.Symbol, "F"),
		strings.HasSuffix(asset.Symbol, "Y"),
		strings.HasSuffix(asset.Symbol, "U"),
		strings.HasSuffix(asset.Symbol, "W"):
		return false
	}

	return true
}
