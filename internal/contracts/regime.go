package contracts

import "time"

// Regime is a discrete market-condition classification
type Regime string

const (
	RegimeHighVolatility  Regime = "high_volatility"
	RegimeLowVolatility   Regime = "low_volatility"
	RegimeTrendingBullish Regime = "trending_bullish"
	RegimeTrendingBearish Regime = "trending_bearish"
	RegimeTransitional    Regime = "transitional"
)

// LayerWeights is the technical/fundamental split applied to composite
// signals. The two weights always sum to 1.0.
type LayerWeights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
}

// VIXComponent is the volatility sub-classification
type VIXComponent struct {
	Tier       string  `json:"tier"` // low_vol, moderate_vol, elevated_vol, high_vol
	Confidence float64 `json:"confidence"`
	Level      float64 `json:"level"`
	Momentum   float64 `json:"momentum"` // vs 10-day average
}

// BreadthComponent is the market-breadth sub-classification
type BreadthComponent struct {
	Tier       string  `json:"tier"` // weak_breadth, neutral_breadth, strong_breadth
	Confidence float64 `json:"confidence"`
	Ratio      float64 `json:"ratio"` // fraction of indices above their 20-day SMA
}

// SectorComponent is the sector-rotation sub-classification
type SectorComponent struct {
	Tier       string   `json:"tier"` // risk_on_rotation, risk_off_rotation, balanced
	Confidence float64  `json:"confidence"`
	Dispersion float64  `json:"dispersion"` // stddev of 30-day sector returns
	Range      float64  `json:"range"`      // max - min 30-day sector return
	Leaders    []string `json:"leaders"`
	Laggards   []string `json:"laggards"`
}

// RegimeAnalysis is the regime detector output. Recomputed at most once
// per 24 hours unless a forced refresh is requested.
type RegimeAnalysis struct {
	Regime     Regime           `json:"regime"`
	Confidence float64          `json:"confidence"`
	Weights    LayerWeights     `json:"weights"`
	VIX        VIXComponent     `json:"vix"`
	Breadth    BreadthComponent `json:"breadth"`
	Sector     SectorComponent  `json:"sector"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
}
