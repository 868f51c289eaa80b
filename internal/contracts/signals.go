package contracts

// SignalResult is a directional signal with the scorer's trust in it.
// Value is in [-1, 1], Confidence in [0, 1]. The two are always multiplied
// before weighting, so a zero-confidence signal contributes nothing.
type SignalResult struct {
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Neutral is the zero signal returned for insufficient input
func Neutral() SignalResult {
	return SignalResult{}
}

// Clamped returns the result with Value clamped to [-1, 1] and
// Confidence clamped to [0, 1]. Clamping is idempotent.
func (r SignalResult) Clamped() SignalResult {
	return SignalResult{
		Value:      ClampSignal(r.Value),
		Confidence: ClampConfidence(r.Confidence),
	}
}

// ClampSignal bounds a signal value to [-1, 1]
func ClampSignal(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// ClampConfidence bounds a confidence value to [0, 1]
func ClampConfidence(c float64) float64 {
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}

// TechnicalSignals holds the per-indicator technical results for one symbol
type TechnicalSignals struct {
	SMACrossover SignalResult `json:"sma_crossover"`
	RSI          SignalResult `json:"rsi"`
	Volume       SignalResult `json:"volume"`
	MACD         SignalResult `json:"macd"`
	Bollinger    SignalResult `json:"bollinger"`
	Stochastic   SignalResult `json:"stochastic"`
}

// FundamentalSignals holds the per-ratio fundamental results for one symbol
type FundamentalSignals struct {
	PERatio        SignalResult `json:"pe_ratio"`
	PBRatio        SignalResult `json:"pb_ratio"`
	ROE            SignalResult `json:"roe"`
	CurrentRatio   SignalResult `json:"current_ratio"`
	DebtToEquity   SignalResult `json:"debt_to_equity"`
	RevenueGrowth  SignalResult `json:"revenue_growth"`
	EarningsGrowth SignalResult `json:"earnings_growth"`
}

// RiskMetrics summarizes volatility-derived risk for one symbol
type RiskMetrics struct {
	Volatility       float64 `json:"volatility"`        // annualized
	RecentVolatility float64 `json:"recent_volatility"` // last 10 days, annualized
	VolatilityRatio  float64 `json:"volatility_ratio"`
	RiskScore        float64 `json:"risk_score"` // in [0, 1]
}
