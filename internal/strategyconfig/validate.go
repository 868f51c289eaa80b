package strategyconfig

import (
	"fmt"
	"math"
)

// weightTolerance allows for float representation of weight sums
const weightTolerance = 1e-6

// ValidationError reports a constraint violation fatal to startup
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all strategy constraints
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Version == "" {
		return ValidationError{"meta.version", "required"}
	}

	technical := map[string]TechnicalWeights{
		"default":          cfg.Technical.Default,
		"high_volatility":  cfg.Technical.HighVolatility,
		"low_volatility":   cfg.Technical.LowVolatility,
		"trending_bullish": cfg.Technical.TrendingBullish,
		"trending_bearish": cfg.Technical.TrendingBearish,
		"transitional":     cfg.Technical.Transitional,
	}
	for name, w := range technical {
		if math.Abs(w.Sum()-1.0) > weightTolerance {
			return ValidationError{
				"technical_weights." + name,
				fmt.Sprintf("weights must sum to 1.0, got %.6f", w.Sum()),
			}
		}
	}

	if math.Abs(cfg.Fundamental.Sum()-1.0) > weightTolerance {
		return ValidationError{
			"fundamental_weights",
			fmt.Sprintf("weights must sum to 1.0, got %.6f", cfg.Fundamental.Sum()),
		}
	}

	if cfg.Thresholds.MinConfidence <= 0 || cfg.Thresholds.MinConfidence >= 1 {
		return ValidationError{"thresholds.min_confidence", "must be in (0, 1)"}
	}
	thresholds := map[string]ThresholdPair{
		"default":          cfg.Thresholds.Default,
		"high_volatility":  cfg.Thresholds.HighVolatility,
		"low_volatility":   cfg.Thresholds.LowVolatility,
		"trending_bullish": cfg.Thresholds.TrendingBullish,
		"trending_bearish": cfg.Thresholds.TrendingBearish,
		"transitional":     cfg.Thresholds.Transitional,
	}
	for name, pair := range thresholds {
		if pair.Buy <= 0 || pair.Buy >= 1 {
			return ValidationError{"thresholds." + name + ".buy", "must be in (0, 1)"}
		}
		if pair.Sell >= 0 || pair.Sell <= -1 {
			return ValidationError{"thresholds." + name + ".sell", "must be in (-1, 0)"}
		}
	}

	if len(cfg.Sizing.Tiers) == 0 {
		return ValidationError{"sizing.tiers", "at least one tier required"}
	}
	prev := math.Inf(1)
	for i, tier := range cfg.Sizing.Tiers {
		if tier.MinQuality < 0 || tier.MinQuality >= 1 {
			return ValidationError{
				fmt.Sprintf("sizing.tiers[%d].min_quality", i), "must be in [0, 1)",
			}
		}
		if tier.MinQuality >= prev {
			return ValidationError{
				fmt.Sprintf("sizing.tiers[%d].min_quality", i),
				"tiers must be in strictly descending order",
			}
		}
		if tier.PortfolioPct <= 0 || tier.PortfolioPct > 1 {
			return ValidationError{
				fmt.Sprintf("sizing.tiers[%d].portfolio_pct", i), "must be in (0, 1]",
			}
		}
		prev = tier.MinQuality
	}
	if cfg.Sizing.MaxPositionPct <= 0 || cfg.Sizing.MaxPositionPct > 1 {
		return ValidationError{"sizing.max_position_pct", "must be in (0, 1]"}
	}
	if cfg.Sizing.FractionalMinShares <= 0 {
		return ValidationError{"sizing.fractional_min_shares", "must be > 0"}
	}
	if cfg.Sizing.WholeMinShares < 1 {
		return ValidationError{"sizing.whole_min_shares", "must be >= 1"}
	}

	if cfg.Stops.VolatilityMultiplier <= 0 {
		return ValidationError{"stops.volatility_multiplier", "must be > 0"}
	}
	if cfg.Stops.FallbackStopPct <= 0 || cfg.Stops.FallbackStopPct >= 1 {
		return ValidationError{"stops.fallback_stop_pct", "must be in (0, 1)"}
	}
	if cfg.Stops.TrailPct <= 0 || cfg.Stops.TrailPct >= 1 {
		return ValidationError{"stops.trail_pct", "must be in (0, 1)"}
	}

	if cfg.Risk.AdjustmentFactor < 0 || cfg.Risk.AdjustmentFactor >= 1 {
		return ValidationError{"risk.adjustment_factor", "must be in [0, 1)"}
	}

	return nil
}
