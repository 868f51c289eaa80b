package strategyconfig

import "github.com/tradewind-io/tradewind/internal/contracts"

// Config is the full strategy definition: indicator weights per market
// regime, fundamental weights, recommendation thresholds, position
// sizing, and stop-loss parameters. One YAML file is the single source
// of truth for a strategy version.
type Config struct {
	Meta        Meta               `yaml:"meta" json:"meta"`
	Technical   RegimeTechnical    `yaml:"technical_weights" json:"technical_weights"`
	Fundamental FundamentalWeights `yaml:"fundamental_weights" json:"fundamental_weights"`
	Thresholds  RegimeThresholds   `yaml:"thresholds" json:"thresholds"`
	Sizing      Sizing             `yaml:"sizing" json:"sizing"`
	Stops       Stops              `yaml:"stops" json:"stops"`
	Risk        Risk               `yaml:"risk" json:"risk"`
}

// Meta identifies a strategy version
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// TechnicalWeights weights the six technical indicators. Must sum to 1.0.
type TechnicalWeights struct {
	SMACrossover float64 `yaml:"sma_crossover" json:"sma_crossover"`
	RSI          float64 `yaml:"rsi" json:"rsi"`
	Volume       float64 `yaml:"volume" json:"volume"`
	MACD         float64 `yaml:"macd" json:"macd"`
	Bollinger    float64 `yaml:"bollinger" json:"bollinger"`
	Stochastic   float64 `yaml:"stochastic" json:"stochastic"`
}

// Sum returns the total weight
func (w TechnicalWeights) Sum() float64 {
	return w.SMACrossover + w.RSI + w.Volume + w.MACD + w.Bollinger + w.Stochastic
}

// RegimeTechnical holds one technical weight set per market regime.
// Structs instead of a map keep YAML typos fatal and hashing deterministic.
type RegimeTechnical struct {
	Default         TechnicalWeights `yaml:"default" json:"default"`
	HighVolatility  TechnicalWeights `yaml:"high_volatility" json:"high_volatility"`
	LowVolatility   TechnicalWeights `yaml:"low_volatility" json:"low_volatility"`
	TrendingBullish TechnicalWeights `yaml:"trending_bullish" json:"trending_bullish"`
	TrendingBearish TechnicalWeights `yaml:"trending_bearish" json:"trending_bearish"`
	Transitional    TechnicalWeights `yaml:"transitional" json:"transitional"`
}

// ForRegime returns the weight set for a regime, falling back to Default
// for an unrecognized value.
func (r RegimeTechnical) ForRegime(regime contracts.Regime) TechnicalWeights {
	switch regime {
	case contracts.RegimeHighVolatility:
		return r.HighVolatility
	case contracts.RegimeLowVolatility:
		return r.LowVolatility
	case contracts.RegimeTrendingBullish:
		return r.TrendingBullish
	case contracts.RegimeTrendingBearish:
		return r.TrendingBearish
	case contracts.RegimeTransitional:
		return r.Transitional
	}
	return r.Default
}

// FundamentalWeights weights the seven fundamental signals. Must sum to 1.0.
type FundamentalWeights struct {
	PERatio        float64 `yaml:"pe_ratio" json:"pe_ratio"`
	PBRatio        float64 `yaml:"pb_ratio" json:"pb_ratio"`
	ROE            float64 `yaml:"roe" json:"roe"`
	CurrentRatio   float64 `yaml:"current_ratio" json:"current_ratio"`
	DebtToEquity   float64 `yaml:"debt_to_equity" json:"debt_to_equity"`
	RevenueGrowth  float64 `yaml:"revenue_growth" json:"revenue_growth"`
	EarningsGrowth float64 `yaml:"earnings_growth" json:"earnings_growth"`
}

// Sum returns the total weight
func (w FundamentalWeights) Sum() float64 {
	return w.PERatio + w.PBRatio + w.ROE + w.CurrentRatio + w.DebtToEquity +
		w.RevenueGrowth + w.EarningsGrowth
}

// ThresholdPair holds the buy and sell cutoffs on the adjusted signal
type ThresholdPair struct {
	Buy  float64 `yaml:"buy" json:"buy"`
	Sell float64 `yaml:"sell" json:"sell"`
}

// RegimeThresholds holds recommendation cutoffs per regime plus the
// confidence floor below which no BUY or SELL is issued.
type RegimeThresholds struct {
	MinConfidence   float64       `yaml:"min_confidence" json:"min_confidence"`
	Default         ThresholdPair `yaml:"default" json:"default"`
	HighVolatility  ThresholdPair `yaml:"high_volatility" json:"high_volatility"`
	LowVolatility   ThresholdPair `yaml:"low_volatility" json:"low_volatility"`
	TrendingBullish ThresholdPair `yaml:"trending_bullish" json:"trending_bullish"`
	TrendingBearish ThresholdPair `yaml:"trending_bearish" json:"trending_bearish"`
	Transitional    ThresholdPair `yaml:"transitional" json:"transitional"`
}

// ForRegime returns the threshold pair for a regime
func (r RegimeThresholds) ForRegime(regime contracts.Regime) ThresholdPair {
	switch regime {
	case contracts.RegimeHighVolatility:
		return r.HighVolatility
	case contracts.RegimeLowVolatility:
		return r.LowVolatility
	case contracts.RegimeTrendingBullish:
		return r.TrendingBullish
	case contracts.RegimeTrendingBearish:
		return r.TrendingBearish
	case contracts.RegimeTransitional:
		return r.Transitional
	}
	return r.Default
}

// SizingTier maps a minimum signal quality (|signal| x confidence) to a
// base position size as a fraction of portfolio value.
type SizingTier struct {
	MinQuality   float64 `yaml:"min_quality" json:"min_quality"`
	PortfolioPct float64 `yaml:"portfolio_pct" json:"portfolio_pct"`
}

// Sizing controls position sizing. Tiers are ordered by descending
// MinQuality; the first tier at or below the quality wins.
type Sizing struct {
	Tiers               []SizingTier `yaml:"tiers" json:"tiers"`
	MaxPositionPct      float64      `yaml:"max_position_pct" json:"max_position_pct"`
	FractionalMinShares float64      `yaml:"fractional_min_shares" json:"fractional_min_shares"`
	WholeMinShares      float64      `yaml:"whole_min_shares" json:"whole_min_shares"`
}

// PortfolioPct returns the base size fraction for a signal quality
func (s Sizing) PortfolioPct(quality float64) float64 {
	for _, tier := range s.Tiers {
		if quality > tier.MinQuality {
			return tier.PortfolioPct
		}
	}
	if len(s.Tiers) == 0 {
		return 0
	}
	return s.Tiers[len(s.Tiers)-1].PortfolioPct
}

// Stops controls initial and trailing stop-loss placement
type Stops struct {
	// Initial stop distance in daily volatilities below entry
	VolatilityMultiplier float64 `yaml:"volatility_multiplier" json:"volatility_multiplier"`
	// Flat stop used when no volatility estimate is available
	FallbackStopPct float64 `yaml:"fallback_stop_pct" json:"fallback_stop_pct"`
	// Trailing stop distance below the current price
	TrailPct float64 `yaml:"trail_pct" json:"trail_pct"`
}

// Risk controls the risk discount applied to the blended signal
type Risk struct {
	// AdjustmentFactor scales the risk score into a signal discount:
	// adjusted = signal x (1 - risk_score x factor)
	AdjustmentFactor float64 `yaml:"adjustment_factor" json:"adjustment_factor"`
}
