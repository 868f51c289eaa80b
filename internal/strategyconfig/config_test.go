package strategyconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
}

func TestLoad_StrategyFile(t *testing.T) {
	cfg, err := Load("../../config/strategy/us_equity_v1.yaml")
	require.NoError(t, err)

	assert.Equal(t, "us_equity_v1", cfg.Meta.StrategyID)

	// The shipped YAML matches the built-in default
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte(`
meta:
  strategy_id: test
  version: 1.0.0
  not_a_field: true
`))
	require.Error(t, err)
}

func TestValidate_WeightSums(t *testing.T) {
	cfg := Default()
	cfg.Technical.HighVolatility.RSI += 0.05
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "technical_weights.high_volatility")

	cfg = Default()
	cfg.Fundamental.PERatio = 0.5
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fundamental_weights")
}

func TestValidate_Thresholds(t *testing.T) {
	cfg := Default()
	cfg.Thresholds.TrendingBearish.Sell = 0.4
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sell")

	cfg = Default()
	cfg.Thresholds.MinConfidence = 0
	require.Error(t, Validate(cfg))
}

func TestValidate_SizingTiers(t *testing.T) {
	cfg := Default()
	cfg.Sizing.Tiers = nil
	require.Error(t, Validate(cfg))

	// Ascending tiers rejected
	cfg = Default()
	cfg.Sizing.Tiers = []SizingTier{
		{MinQuality: 0.2, PortfolioPct: 0.01},
		{MinQuality: 0.6, PortfolioPct: 0.03},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descending")
}

func TestForRegime(t *testing.T) {
	cfg := Default()

	tests := []struct {
		regime  contracts.Regime
		wantBuy float64
	}{
		{contracts.RegimeHighVolatility, 0.65},
		{contracts.RegimeLowVolatility, 0.45},
		{contracts.RegimeTrendingBullish, 0.40},
		{contracts.RegimeTrendingBearish, 0.75},
		{contracts.RegimeTransitional, 0.55},
		{contracts.Regime("unknown"), 0.30},
	}

	for _, tt := range tests {
		t.Run(string(tt.regime), func(t *testing.T) {
			assert.InDelta(t, tt.wantBuy, cfg.Thresholds.ForRegime(tt.regime).Buy, 1e-9)

			weights := cfg.Technical.ForRegime(tt.regime)
			assert.InDelta(t, 1.0, weights.Sum(), 1e-6, "every regime weight set sums to 1.0")
		})
	}
}

func TestSizing_PortfolioPct(t *testing.T) {
	sizing := Default().Sizing

	assert.InDelta(t, 0.05, sizing.PortfolioPct(0.9), 1e-9)
	assert.InDelta(t, 0.03, sizing.PortfolioPct(0.7), 1e-9)
	assert.InDelta(t, 0.015, sizing.PortfolioPct(0.4), 1e-9)
	assert.InDelta(t, 0.015, sizing.PortfolioPct(0.0), 1e-9)
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Stops.TrailPct = 0.06
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
