package signals

import (
	"context"
	"math"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// FundamentalCalculator computes fundamental ratio and growth signals
type FundamentalCalculator struct {
	logger *logger.Logger
}

// NewFundamentalCalculator creates a new fundamental calculator
func NewFundamentalCalculator(log *logger.Logger) *FundamentalCalculator {
	return &FundamentalCalculator{logger: log}
}

// Calculate computes all fundamental signals from a snapshot
func (c *FundamentalCalculator) Calculate(ctx context.Context, snapshot *contracts.FundamentalsSnapshot) contracts.FundamentalSignals {
	signals := contracts.FundamentalSignals{}

	if snapshot.Overview != nil {
		signals.PERatio = c.PERatio(snapshot.Overview.PERatio)
		signals.PBRatio = c.PBRatio(snapshot.Overview.PriceToBookRatio)
		signals.ROE = c.ROE(snapshot.Overview.ReturnOnEquity)
		signals.DebtToEquity = c.DebtToEquity(snapshot.BalanceSheet, snapshot.Overview.ReturnOnEquity)
	} else {
		signals.DebtToEquity = c.DebtToEquity(snapshot.BalanceSheet, 0)
	}

	signals.CurrentRatio = c.CurrentRatio(snapshot.BalanceSheet)
	signals.RevenueGrowth = c.RevenueGrowth(snapshot.IncomeStatement)
	signals.EarningsGrowth = c.EarningsGrowth(snapshot.BalanceSheet)

	c.logger.WithFields(map[string]interface{}{
		"symbol":          snapshot.Symbol,
		"pe":              signals.PERatio.Value,
		"pb":              signals.PBRatio.Value,
		"roe":             signals.ROE.Value,
		"current_ratio":   signals.CurrentRatio.Value,
		"debt_to_equity":  signals.DebtToEquity.Value,
		"revenue_growth":  signals.RevenueGrowth.Value,
		"earnings_growth": signals.EarningsGrowth.Value,
	}).Debug("Calculated fundamental signals")

	return signals
}

// PERatio scores the price/earnings ratio linearly around a fair value
// of 20, saturating at ±0.9. Negative earnings score maximally bearish.
// Confidence grows with distance from the moderate band.
func (c *FundamentalCalculator) PERatio(pe float64) contracts.SignalResult {
	var signal float64
	if pe > 0 {
		signal = math.Max(-0.9, math.Min(0.9, (20-pe)/12.5))
	} else {
		signal = -0.9
	}

	var confidence float64
	switch {
	case pe < 0 || pe > 50:
		confidence = 0.9
	case pe < 10 || pe > 35:
		confidence = 0.8
	case pe < 12 || pe > 30:
		confidence = 0.6
	default:
		confidence = 0.4
	}

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// PBRatio scores price/book linearly around a fair value of 2.4.
// Negative book value scores maximally bearish.
func (c *FundamentalCalculator) PBRatio(pb float64) contracts.SignalResult {
	if pb <= 0 {
		return contracts.SignalResult{Value: -0.9, Confidence: 0.9}
	}

	signal := math.Max(-0.9, math.Min(0.9, (2.4-pb)/2.0))
	confidence := math.Min(0.9, math.Abs(signal)+0.3)

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// ROE scores return on equity (percent) against a 10% baseline,
// asymmetrically bounded: upside saturates at 0.8, downside at -0.2 for
// positive ROE. Negative ROE scores -0.8 with high confidence.
func (c *FundamentalCalculator) ROE(roe float64) contracts.SignalResult {
	if roe <= 0 {
		return contracts.SignalResult{Value: -0.8, Confidence: 0.9}
	}

	signal := math.Min(0.8, math.Max(-0.2, (roe-10)/12.5))
	confidence := math.Min(0.9, math.Abs(signal)*0.8+0.4)

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// CurrentRatio scores short-term liquidity from the latest balance-sheet
// quarter. Ratios up to 2 score linearly; beyond 2 the score decays to
// penalize idle assets. Requires at least one quarterly report.
func (c *FundamentalCalculator) CurrentRatio(balanceSheet []contracts.QuarterlyReport) contracts.SignalResult {
	if len(balanceSheet) == 0 {
		return contracts.Neutral()
	}

	latest := balanceSheet[0]
	liabilities := latest.TotalCurrentLiabilities
	if liabilities == 0 {
		liabilities = 0.01
	}
	ratio := latest.TotalCurrentAssets / liabilities

	var signal float64
	if ratio <= 2 {
		signal = math.Max(-0.7, (ratio-0.5)/1.5*0.6)
	} else {
		signal = math.Max(-0.1, 0.6-(ratio-2)*0.2)
	}

	confidence := math.Min(0.8, math.Abs(signal)*0.8+0.3)

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// DebtToEquity scores leverage from the latest balance-sheet quarter.
// Moderate leverage up to 0.5 scores positively, beyond that the score
// declines. ROE cross-checks adjust the result: high returns with low
// leverage earn a bonus, weak returns with high leverage a penalty.
func (c *FundamentalCalculator) DebtToEquity(balanceSheet []contracts.QuarterlyReport, roe float64) contracts.SignalResult {
	if len(balanceSheet) == 0 {
		return contracts.Neutral()
	}

	latest := balanceSheet[0]
	equity := latest.TotalAssets - latest.TotalLiabilities
	if equity == 0 {
		equity = 0.01
	}
	dte := latest.TotalDebt / equity

	var signal float64
	if dte <= 0.5 {
		signal = math.Min(0.6, dte*1.2)
	} else {
		signal = math.Max(-0.8, 0.6-(dte-0.5)*0.8)
	}

	if roe > 15 && dte < 1 {
		signal = math.Min(1.0, signal+0.1)
	} else if roe < 5 && dte > 0.8 {
		signal = math.Max(-1.0, signal-0.2)
	}

	var confidence float64
	if dte > 2 || dte < 0.05 {
		confidence = 0.9
	} else {
		confidence = math.Min(0.8, math.Abs(signal)*0.6+0.4)
	}

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// RevenueGrowth scores recency-weighted year-over-year revenue growth
// across the four most recent quarters against the same quarter a year
// earlier. Requires the full 8 quarters, newest first.
func (c *FundamentalCalculator) RevenueGrowth(incomeStatement []contracts.QuarterlyReport) contracts.SignalResult {
	if len(incomeStatement) < contracts.GrowthQuarters {
		return contracts.Neutral()
	}

	weights := [4]float64{0.4, 0.3, 0.2, 0.1}
	var weightedGrowth float64
	for i := 0; i < 4; i++ {
		current := incomeStatement[i].TotalRevenue
		prior := incomeStatement[i+4].TotalRevenue
		if prior == 0 {
			prior = 0.01
		}
		growth := (current - prior) / prior * 100
		weightedGrowth += growth * weights[i]
	}

	var signal, confidence float64
	switch {
	case weightedGrowth < -10:
		signal, confidence = -0.8, 0.8
	case weightedGrowth < 0:
		signal, confidence = -0.3, 0.6
	case weightedGrowth < 5:
		signal, confidence = 0.1, 0.5
	case weightedGrowth < 15:
		signal, confidence = 0.5, 0.7
	case weightedGrowth < 25:
		signal, confidence = 0.7, 0.8
	default:
		signal, confidence = 0.8, 0.7
	}

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// EarningsGrowth scores year-over-year retained-earnings growth across
// the four most recent quarters. Sign flips map to ±100%, quarters with
// growth beyond ±200% are discarded as restatement noise, and the
// surviving quarters are averaged. Requires the full 8 quarters.
func (c *FundamentalCalculator) EarningsGrowth(balanceSheet []contracts.QuarterlyReport) contracts.SignalResult {
	if len(balanceSheet) < contracts.GrowthQuarters {
		return contracts.Neutral()
	}

	rates := make([]float64, 0, 4)
	for i := 0; i < 4; i++ {
		current := balanceSheet[i].RetainedEarnings
		prior := balanceSheet[i+4].RetainedEarnings

		var rate float64
		switch {
		case prior <= 0 && current > 0:
			rate = 100
		case prior > 0 && current <= 0:
			rate = -100
		case prior <= 0 && current <= 0:
			rate = 0
		default:
			if prior == 0 {
				prior = 0.01
			}
			rate = (current - prior) / prior * 100
		}

		if rate > -200 && rate < 200 {
			rates = append(rates, rate)
		}
	}

	avgGrowth := 0.0
	if len(rates) > 0 {
		avgGrowth = mean(rates)
	}

	var signal, confidence float64
	switch {
	case avgGrowth < -25:
		signal, confidence = -0.9, 0.9
	case avgGrowth < -10:
		signal, confidence = -0.5, 0.7
	case avgGrowth < 0:
		signal, confidence = -0.2, 0.5
	case avgGrowth < 10:
		signal, confidence = 0.2, 0.6
	case avgGrowth < 20:
		signal, confidence = 0.6, 0.8
	case avgGrowth < 40:
		signal, confidence = 0.8, 0.8
	default:
		// Extreme readings are likely one-off items, trust them less
		signal, confidence = 0.7, 0.6
	}

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}
