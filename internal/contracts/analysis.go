package contracts

import "time"

// Recommendation is the trade action derived from a scored symbol
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// AnalysisResult is the full scoring output for one symbol in one pass.
// Created once per pass, persisted, never mutated.
type AnalysisResult struct {
	ID             int64              `json:"id"`
	Symbol         string             `json:"symbol"`
	CurrentPrice   float64            `json:"current_price"`
	TotalSignal    float64            `json:"total_signal"`
	AdjustedSignal float64            `json:"adjusted_signal"` // after risk discount
	Confidence     float64            `json:"confidence"`
	Recommendation Recommendation     `json:"recommendation"`
	Technical      TechnicalSignals   `json:"technical"`
	Fundamental    FundamentalSignals `json:"fundamental"`
	Risk           RiskMetrics        `json:"risk"`
	AnalyzedAt     time.Time          `json:"analyzed_at"`
}

// RecommendationSet splits scored results by recommendation.
// Lists stay sorted descending by adjusted signal.
type RecommendationSet struct {
	Buys          []*AnalysisResult `json:"buys"`
	Sells         []*AnalysisResult `json:"sells"`
	Holds         []*AnalysisResult `json:"holds"`
	TotalAnalyzed int               `json:"total_analyzed"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

// TopBuys returns the first n buy recommendations for display
func (r *RecommendationSet) TopBuys(n int) []*AnalysisResult {
	if n > len(r.Buys) {
		n = len(r.Buys)
	}
	return r.Buys[:n]
}

// TopSells returns the first n sell recommendations for display
func (r *RecommendationSet) TopSells(n int) []*AnalysisResult {
	if n > len(r.Sells) {
		n = len(r.Sells)
	}
	return r.Sells[:n]
}

// FilterOwned removes buy recommendations for symbols already held.
// Returns the number of entries filtered out.
func (r *RecommendationSet) FilterOwned(owned map[string]bool) int {
	if len(owned) == 0 {
		return 0
	}
	kept := r.Buys[:0]
	filtered := 0
	for _, res := range r.Buys {
		if owned[res.Symbol] {
			filtered++
			continue
		}
		kept = append(kept, res)
	}
	r.Buys = kept
	return filtered
}
