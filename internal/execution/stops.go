package execution

import (
	"math"

	"github.com/tradewind-io/tradewind/internal/strategyconfig"
)

const tradingDaysPerYear = 252

// StopCalculator derives stop-loss levels from the strategy's stop policy
type StopCalculator struct {
	stops strategyconfig.Stops
}

// NewStopCalculator builds a StopCalculator from the strategy's stops section
func NewStopCalculator(stops strategyconfig.Stops) *StopCalculator {
	return &StopCalculator{stops: stops}
}

// Initial places the first stop a multiple of daily volatility below the
// entry price. annualVol is annualized; it is scaled back to a daily move.
// A missing volatility estimate falls back to a flat percentage stop.
func (c *StopCalculator) Initial(entryPrice, annualVol float64) float64 {
	if annualVol <= 0 {
		return entryPrice * (1 - c.stops.FallbackStopPct)
	}
	dailyVol := annualVol / math.Sqrt(tradingDaysPerYear)
	return entryPrice * (1 - c.stops.VolatilityMultiplier*dailyVol)
}

// TrailingCandidate returns the trailing stop implied by the current
// price. Callers only apply it when it is above the existing stop; a
// trailing stop never moves down.
func (c *StopCalculator) TrailingCandidate(currentPrice float64) float64 {
	return currentPrice * (1 - c.stops.TrailPct)
}
