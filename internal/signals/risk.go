package signals

import (
	"math"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

// minBarsRisk is the minimum series length for volatility metrics.
// Below it the metrics default to a moderate 0.5 risk score.
const minBarsRisk = 30

// tradingDaysPerYear annualizes daily return volatility
const tradingDaysPerYear = 252

// CalculateRiskMetrics derives annualized volatility, recent 10-day
// volatility, their ratio, and a risk score in [0, 1] from daily bars.
func CalculateRiskMetrics(prices contracts.PriceSeries) contracts.RiskMetrics {
	if prices.Len() < minBarsRisk {
		return contracts.RiskMetrics{Volatility: 0.5, RiskScore: 0.5}
	}

	returns := prices.Returns()
	annualFactor := math.Sqrt(tradingDaysPerYear)

	volatility := sampleStd(returns) * annualFactor

	recent := returns
	if len(returns) > 10 {
		recent = returns[len(returns)-10:]
	}
	recentVolatility := sampleStd(recent) * annualFactor

	ratio := 1.0
	if volatility > 0 {
		ratio = recentVolatility / volatility
	}

	return contracts.RiskMetrics{
		Volatility:       volatility,
		RecentVolatility: recentVolatility,
		VolatilityRatio:  ratio,
		RiskScore:        math.Min(1.0, volatility*2),
	}
}
