package contracts

import "context"

// MarketDataProvider supplies price history and the tradable universe
type MarketDataProvider interface {
	// GetPriceSeries returns daily bars for the last lookbackDays calendar
	// days, ascending by date. Returns ErrInsufficientData when the
	// provider has no bars for the symbol.
	GetPriceSeries(ctx context.Context, symbol string, lookbackDays int) (PriceSeries, error)

	// ListAssets returns all active tradable equities
	ListAssets(ctx context.Context) ([]Asset, error)

	// GetAsset returns metadata for one symbol
	GetAsset(ctx context.Context, symbol string) (*Asset, error)
}

// FundamentalsProvider supplies financial-statement data
type FundamentalsProvider interface {
	GetOverview(ctx context.Context, symbol string) (*Overview, error)
	GetBalanceSheet(ctx context.Context, symbol string) ([]QuarterlyReport, error)
	GetIncomeStatement(ctx context.Context, symbol string) ([]QuarterlyReport, error)
}

// RegimeInputProvider supplies the series the regime detector consumes
type RegimeInputProvider interface {
	GetRegimeInputs(ctx context.Context) (*RegimeInputs, error)
}
