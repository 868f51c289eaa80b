package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a strategy YAML file. Unknown fields are fatal so a typo
// never silently falls back to a zero weight.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates strategy YAML
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Hash returns a SHA256 over the canonical JSON form of the config.
// Struct fields serialize in declaration order, so the hash is stable
// for identical configs.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Default returns the built-in strategy used when no YAML file is
// configured. It mirrors config/strategy/us_equity_v1.yaml.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID:  "us_equity_v1",
			Version:     "1.0.0",
			Description: "Multi-factor US equity strategy with regime-conditional weighting",
		},
		Technical: RegimeTechnical{
			Default: TechnicalWeights{
				SMACrossover: 0.22, RSI: 0.18, Volume: 0.13,
				MACD: 0.18, Bollinger: 0.14, Stochastic: 0.15,
			},
			HighVolatility: TechnicalWeights{
				SMACrossover: 0.10, RSI: 0.25, Volume: 0.05,
				MACD: 0.22, Bollinger: 0.20, Stochastic: 0.18,
			},
			LowVolatility: TechnicalWeights{
				SMACrossover: 0.30, RSI: 0.10, Volume: 0.15,
				MACD: 0.25, Bollinger: 0.12, Stochastic: 0.08,
			},
			TrendingBullish: TechnicalWeights{
				SMACrossover: 0.25, RSI: 0.09, Volume: 0.18,
				MACD: 0.28, Bollinger: 0.05, Stochastic: 0.15,
			},
			TrendingBearish: TechnicalWeights{
				SMACrossover: 0.18, RSI: 0.18, Volume: 0.15,
				MACD: 0.18, Bollinger: 0.16, Stochastic: 0.15,
			},
			Transitional: TechnicalWeights{
				SMACrossover: 0.18, RSI: 0.18, Volume: 0.15,
				MACD: 0.18, Bollinger: 0.16, Stochastic: 0.15,
			},
		},
		Fundamental: FundamentalWeights{
			PERatio: 0.20, PBRatio: 0.12, ROE: 0.15, CurrentRatio: 0.08,
			DebtToEquity: 0.12, RevenueGrowth: 0.15, EarningsGrowth: 0.18,
		},
		Thresholds: RegimeThresholds{
			MinConfidence:   0.5,
			Default:         ThresholdPair{Buy: 0.3, Sell: -0.3},
			HighVolatility:  ThresholdPair{Buy: 0.65, Sell: -0.55},
			LowVolatility:   ThresholdPair{Buy: 0.45, Sell: -0.65},
			TrendingBullish: ThresholdPair{Buy: 0.40, Sell: -0.70},
			TrendingBearish: ThresholdPair{Buy: 0.75, Sell: -0.40},
			Transitional:    ThresholdPair{Buy: 0.55, Sell: -0.60},
		},
		Sizing: Sizing{
			Tiers: []SizingTier{
				{MinQuality: 0.8, PortfolioPct: 0.05},
				{MinQuality: 0.6, PortfolioPct: 0.03},
				{MinQuality: 0.0, PortfolioPct: 0.015},
			},
			MaxPositionPct:      0.05,
			FractionalMinShares: 0.001,
			WholeMinShares:      1,
		},
		Stops: Stops{
			VolatilityMultiplier: 2.0,
			FallbackStopPct:      0.08,
			TrailPct:             0.05,
		},
		Risk: Risk{
			AdjustmentFactor: 0.3,
		},
	}
}
