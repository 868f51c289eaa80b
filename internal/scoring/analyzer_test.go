package scoring

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/strategyconfig"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

func newTestAnalyzer(strategy *strategyconfig.Config) *Analyzer {
	return NewAnalyzer(strategy, logger.NewWithWriter(io.Discard, "test"))
}

func flatSeries(n int, price float64) contracts.PriceSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(contracts.PriceSeries, n)
	for i := range series {
		series[i] = contracts.Bar{
			Date: base.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return series
}

func transitionalRegime() *contracts.RegimeAnalysis {
	return &contracts.RegimeAnalysis{
		Regime:     contracts.RegimeTransitional,
		Confidence: 0.6,
		Weights:    contracts.LayerWeights{Technical: 0.5, Fundamental: 0.5},
		AnalyzedAt: time.Now(),
	}
}

// reports builds 8 quarters newest-first with the latest quarter's
// balance-sheet ratios set explicitly.
func reports(recent, prior float64, latest contracts.QuarterlyReport) []contracts.QuarterlyReport {
	out := make([]contracts.QuarterlyReport, contracts.GrowthQuarters)
	for i := range out {
		v := recent
		if i >= 4 {
			v = prior
		}
		out[i] = contracts.QuarterlyReport{
			FiscalDateEnding: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC).AddDate(0, -3*i, 0),
			TotalRevenue:     v,
			RetainedEarnings: v,
		}
	}
	latest.FiscalDateEnding = out[0].FiscalDateEnding
	latest.TotalRevenue = out[0].TotalRevenue
	latest.RetainedEarnings = out[0].RetainedEarnings
	out[0] = latest
	return out
}

func strongFundamentals(symbol string) *contracts.FundamentalsSnapshot {
	return &contracts.FundamentalsSnapshot{
		Symbol: symbol,
		Overview: &contracts.Overview{
			Symbol: symbol, PERatio: 10, PriceToBookRatio: 0.4, ReturnOnEquity: 22.5,
		},
		BalanceSheet: reports(115, 100, contracts.QuarterlyReport{
			TotalCurrentAssets: 2000, TotalCurrentLiabilities: 1000,
			TotalAssets: 1000, TotalLiabilities: 500, TotalDebt: 125,
		}),
		IncomeStatement: reports(110, 100, contracts.QuarterlyReport{}),
	}
}

// neutralFundamentals resolves the overview only, with every ratio at
// its fair value so the fundamental layer contributes no direction.
func neutralFundamentals(symbol string) *contracts.FundamentalsSnapshot {
	return &contracts.FundamentalsSnapshot{
		Symbol: symbol,
		Overview: &contracts.Overview{
			Symbol: symbol, PERatio: 20, PriceToBookRatio: 2.4, ReturnOnEquity: 10,
		},
	}
}

func weakFundamentals(symbol string) *contracts.FundamentalsSnapshot {
	return &contracts.FundamentalsSnapshot{
		Symbol: symbol,
		Overview: &contracts.Overview{
			Symbol: symbol, PERatio: -5, PriceToBookRatio: -1, ReturnOnEquity: -5,
		},
		BalanceSheet: reports(70, 100, contracts.QuarterlyReport{
			TotalCurrentAssets: 500, TotalCurrentLiabilities: 1000,
			TotalAssets: 1000, TotalLiabilities: 500, TotalDebt: 1500,
		}),
		IncomeStatement: reports(80, 100, contracts.QuarterlyReport{}),
	}
}

func TestAnalyze_InsufficientBars(t *testing.T) {
	analyzer := newTestAnalyzer(strategyconfig.Default())

	_, err := analyzer.Analyze(context.Background(), "AAPL", flatSeries(49, 100), neutralFundamentals("AAPL"), transitionalRegime())
	require.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestAnalyze_UnresolvedFundamentalsSkipped(t *testing.T) {
	analyzer := newTestAnalyzer(strategyconfig.Default())
	prices := flatSeries(60, 100)

	_, err := analyzer.Analyze(context.Background(), "NOFUND", prices, nil, transitionalRegime())
	require.ErrorIs(t, err, contracts.ErrFundamentalsUnresolved)

	empty := &contracts.FundamentalsSnapshot{Symbol: "NOFUND"}
	_, err = analyzer.Analyze(context.Background(), "NOFUND", prices, empty, transitionalRegime())
	require.ErrorIs(t, err, contracts.ErrFundamentalsUnresolved)
}

func TestAnalyze_FlatSeriesHolds(t *testing.T) {
	analyzer := newTestAnalyzer(strategyconfig.Default())

	result, err := analyzer.Analyze(context.Background(), "AAPL", flatSeries(60, 100), neutralFundamentals("AAPL"), transitionalRegime())
	require.NoError(t, err)

	assert.Equal(t, contracts.RecommendationHold, result.Recommendation)
	assert.Zero(t, result.Technical.SMACrossover.Value)
	assert.Zero(t, result.Technical.RSI.Value)
	assert.Zero(t, result.Technical.Volume.Value)
	assert.InDelta(t, 100, result.CurrentPrice, 1e-9)
	assert.Less(t, result.Confidence, 0.5, "neutral fundamentals and a flat tape earn little trust")
}

// permissiveStrategy lowers transitional thresholds so directional
// fundamentals decide the recommendation.
func permissiveStrategy() *strategyconfig.Config {
	cfg := strategyconfig.Default()
	cfg.Thresholds.MinConfidence = 0.3
	cfg.Thresholds.Transitional = strategyconfig.ThresholdPair{Buy: 0.2, Sell: -0.2}
	return cfg
}

func TestAnalyze_StrongFundamentalsBuy(t *testing.T) {
	analyzer := newTestAnalyzer(permissiveStrategy())

	result, err := analyzer.Analyze(
		context.Background(), "MSFT", flatSeries(60, 100),
		strongFundamentals("MSFT"), transitionalRegime(),
	)
	require.NoError(t, err)

	assert.Equal(t, contracts.RecommendationBuy, result.Recommendation)
	assert.Greater(t, result.AdjustedSignal, 0.2)
	assert.Greater(t, result.Confidence, 0.3)
}

func TestAnalyze_WeakFundamentalsSell(t *testing.T) {
	analyzer := newTestAnalyzer(permissiveStrategy())

	result, err := analyzer.Analyze(
		context.Background(), "XYZ", flatSeries(60, 100),
		weakFundamentals("XYZ"), transitionalRegime(),
	)
	require.NoError(t, err)

	assert.Equal(t, contracts.RecommendationSell, result.Recommendation)
	assert.Less(t, result.AdjustedSignal, -0.2)
}

func TestAnalyze_LowConfidenceNeverTrades(t *testing.T) {
	cfg := permissiveStrategy()
	cfg.Thresholds.MinConfidence = 0.99

	analyzer := newTestAnalyzer(cfg)

	result, err := analyzer.Analyze(
		context.Background(), "MSFT", flatSeries(60, 100),
		strongFundamentals("MSFT"), transitionalRegime(),
	)
	require.NoError(t, err)

	assert.Equal(t, contracts.RecommendationHold, result.Recommendation,
		"a strong signal without confidence stays a HOLD")
}

func TestAnalyze_RiskDiscount(t *testing.T) {
	analyzer := newTestAnalyzer(strategyconfig.Default())

	// Alternating ±4% moves produce a meaningful risk score
	series := flatSeries(60, 100)
	for i := range series {
		if i%2 == 1 {
			series[i].Close = 104
			series[i].High = 104
			series[i].Low = 104
		}
	}

	result, err := analyzer.Analyze(context.Background(), "VOLATILE", series, neutralFundamentals("VOLATILE"), transitionalRegime())
	require.NoError(t, err)

	require.Greater(t, result.Risk.RiskScore, 0.0)
	want := result.TotalSignal * (1 - result.Risk.RiskScore*0.3)
	assert.InDelta(t, want, result.AdjustedSignal, 1e-9)
	assert.Less(t, result.Risk.RiskScore, 1.01)
}
