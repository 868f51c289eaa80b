package scoring

import (
	"context"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/signals"
	"github.com/tradewind-io/tradewind/internal/strategyconfig"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// minBarsForAnalysis is the floor below which a symbol is skipped
const minBarsForAnalysis = 50

// Analyzer scores one symbol: composes the indicator signals into
// technical and fundamental layers, blends them by the regime's layer
// split, discounts by risk, and classifies against the regime's
// thresholds.
type Analyzer struct {
	strategy    *strategyconfig.Config
	technical   *signals.TechnicalCalculator
	fundamental *signals.FundamentalCalculator
	logger      *logger.Logger
}

// NewAnalyzer creates an analyzer bound to one strategy
func NewAnalyzer(strategy *strategyconfig.Config, log *logger.Logger) *Analyzer {
	return &Analyzer{
		strategy:    strategy,
		technical:   signals.NewTechnicalCalculator(log),
		fundamental: signals.NewFundamentalCalculator(log),
		logger:      log,
	}
}

// Analyze scores a single symbol under the given regime. Returns
// ErrInsufficientData for symbols with fewer than 50 bars and
// ErrFundamentalsUnresolved when the snapshot holds no data at all;
// skipped symbols are never scored as zero.
func (a *Analyzer) Analyze(
	ctx context.Context,
	symbol string,
	prices contracts.PriceSeries,
	fundamentals *contracts.FundamentalsSnapshot,
	analysis *contracts.RegimeAnalysis,
) (*contracts.AnalysisResult, error) {
	if prices.Len() < minBarsForAnalysis {
		return nil, contracts.ErrInsufficientData
	}
	if !fundamentals.Resolved() {
		return nil, contracts.ErrFundamentalsUnresolved
	}

	technical := a.technical.Calculate(ctx, symbol, prices)
	fundamental := a.fundamental.Calculate(ctx, fundamentals)
	risk := signals.CalculateRiskMetrics(prices)

	techWeights := a.strategy.Technical.ForRegime(analysis.Regime)
	techSignal, techConfidence := compositeTechnical(technical, techWeights)
	fundSignal, fundConfidence := compositeFundamental(fundamental, a.strategy.Fundamental)

	layers := analysis.Weights
	totalSignal := techSignal*layers.Technical + fundSignal*layers.Fundamental
	totalConfidence := techConfidence*layers.Technical + fundConfidence*layers.Fundamental

	riskAdjustment := 1 - risk.RiskScore*a.strategy.Risk.AdjustmentFactor
	adjustedSignal := totalSignal * riskAdjustment

	thresholds := a.strategy.Thresholds.ForRegime(analysis.Regime)
	recommendation := contracts.RecommendationHold
	if totalConfidence > a.strategy.Thresholds.MinConfidence {
		if adjustedSignal > thresholds.Buy {
			recommendation = contracts.RecommendationBuy
		} else if adjustedSignal < thresholds.Sell {
			recommendation = contracts.RecommendationSell
		}
	}

	result := &contracts.AnalysisResult{
		Symbol:         symbol,
		CurrentPrice:   prices.LastClose(),
		TotalSignal:    totalSignal,
		AdjustedSignal: adjustedSignal,
		Confidence:     totalConfidence,
		Recommendation: recommendation,
		Technical:      technical,
		Fundamental:    fundamental,
		Risk:           risk,
		AnalyzedAt:     time.Now(),
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol":          symbol,
		"total_signal":    totalSignal,
		"adjusted_signal": adjustedSignal,
		"confidence":      totalConfidence,
		"recommendation":  recommendation,
	}).Debug("Scored symbol")

	return result, nil
}

// compositeTechnical folds the six technical signals into one weighted
// score. Each contribution is value x confidence x weight, so an
// uncertain indicator moves the composite less; the composite
// confidence is the weighted confidence alone.
func compositeTechnical(s contracts.TechnicalSignals, w strategyconfig.TechnicalWeights) (float64, float64) {
	signal := s.SMACrossover.Value*s.SMACrossover.Confidence*w.SMACrossover +
		s.RSI.Value*s.RSI.Confidence*w.RSI +
		s.Volume.Value*s.Volume.Confidence*w.Volume +
		s.MACD.Value*s.MACD.Confidence*w.MACD +
		s.Bollinger.Value*s.Bollinger.Confidence*w.Bollinger +
		s.Stochastic.Value*s.Stochastic.Confidence*w.Stochastic

	confidence := s.SMACrossover.Confidence*w.SMACrossover +
		s.RSI.Confidence*w.RSI +
		s.Volume.Confidence*w.Volume +
		s.MACD.Confidence*w.MACD +
		s.Bollinger.Confidence*w.Bollinger +
		s.Stochastic.Confidence*w.Stochastic

	return signal, confidence
}

// compositeFundamental folds the seven fundamental signals the same way
func compositeFundamental(s contracts.FundamentalSignals, w strategyconfig.FundamentalWeights) (float64, float64) {
	signal := s.PERatio.Value*s.PERatio.Confidence*w.PERatio +
		s.PBRatio.Value*s.PBRatio.Confidence*w.PBRatio +
		s.ROE.Value*s.ROE.Confidence*w.ROE +
		s.CurrentRatio.Value*s.CurrentRatio.Confidence*w.CurrentRatio +
		s.DebtToEquity.Value*s.DebtToEquity.Confidence*w.DebtToEquity +
		s.RevenueGrowth.Value*s.RevenueGrowth.Confidence*w.RevenueGrowth +
		s.EarningsGrowth.Value*s.EarningsGrowth.Confidence*w.EarningsGrowth

	confidence := s.PERatio.Confidence*w.PERatio +
		s.PBRatio.Confidence*w.PBRatio +
		s.ROE.Confidence*w.ROE +
		s.CurrentRatio.Confidence*w.CurrentRatio +
		s.DebtToEquity.Confidence*w.DebtToEquity +
		s.RevenueGrowth.Confidence*w.RevenueGrowth +
		s.EarningsGrowth.Confidence*w.EarningsGrowth

	return signal, confidence
}
