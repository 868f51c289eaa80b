package contracts

import "time"

// Bar represents one daily OHLCV bar
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered sequence of daily bars, ascending by date.
// It is treated as immutable once fetched for a scoring pass.
type PriceSeries []Bar

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s)
}

// Last returns the most recent bar
func (s PriceSeries) Last() Bar {
	return s[len(s)-1]
}

// LastClose returns the most recent closing price, 0 when empty
func (s PriceSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Closes returns all closing prices in series order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}

// Returns computes simple daily returns, one fewer element than bars.
// Bars with a zero prior close are skipped.
func (s PriceSeries) Returns() []float64 {
	if len(s) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (s[i].Close-prev)/prev)
	}
	return returns
}

// Asset describes a tradable instrument as reported by the broker
type Asset struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Exchange     string `json:"exchange"`
	Tradable     bool   `json:"tradable"`
	Shortable    bool   `json:"shortable"`
	Fractionable bool   `json:"fractionable"`
}

// Overview is a point-in-time fundamentals snapshot for a symbol
type Overview struct {
	Symbol           string  `json:"symbol"`
	PERatio          float64 `json:"pe_ratio"`
	PriceToBookRatio float64 `json:"price_to_book_ratio"`
	ReturnOnEquity   float64 `json:"return_on_equity"`
}

// QuarterlyReport holds one quarter of financial-statement data.
// Missing fields default to zero.
type QuarterlyReport struct {
	FiscalDateEnding        time.Time `json:"fiscal_date_ending"`
	TotalAssets             float64   `json:"total_assets"`
	TotalLiabilities        float64   `json:"total_liabilities"`
	TotalCurrentAssets      float64   `json:"total_current_assets"`
	TotalCurrentLiabilities float64   `json:"total_current_liabilities"`
	TotalDebt               float64   `json:"total_debt"`
	TotalRevenue            float64   `json:"total_revenue"`
	RetainedEarnings        float64   `json:"retained_earnings"`
}

// FundamentalsSnapshot bundles the overview with up to 8 most-recent
// quarterly reports, newest first. Growth signals require all 8 quarters.
type FundamentalsSnapshot struct {
	Symbol          string            `json:"symbol"`
	Overview        *Overview         `json:"overview"`
	BalanceSheet    []QuarterlyReport `json:"balance_sheet"`
	IncomeStatement []QuarterlyReport `json:"income_statement"`
}

// Resolved reports whether any fundamentals data was fetched. Missing
// pieces of a partially resolved snapshot degrade to neutral signals,
// but a snapshot with nothing in it cannot be scored at all.
func (s *FundamentalsSnapshot) Resolved() bool {
	if s == nil {
		return false
	}
	return s.Overview != nil || len(s.BalanceSheet) > 0 || len(s.IncomeStatement) > 0
}

// GrowthQuarters is the number of quarterly reports needed for
// year-over-year growth signals (4 recent + 4 prior-year).
const GrowthQuarters = 8

// RegimeInputs carries the series the regime detector consumes
type RegimeInputs struct {
	VIX     PriceSeries            `json:"vix"`
	Indices map[string]PriceSeries `json:"indices"`
	Sectors map[string]PriceSeries `json:"sectors"`
}
