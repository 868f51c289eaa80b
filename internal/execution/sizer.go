package execution

import (
	"errors"
	"math"

	"github.com/tradewind-io/tradewind/internal/strategyconfig"
)

// ErrBelowMinimum marks an order too small to submit. The caller records
// a failed order and moves on.
var ErrBelowMinimum = errors.New("order size below minimum")

const fractionalPrecision = 1e6 // round fractional quantities to 6 decimals

// Sizer turns a scored signal into an order quantity under the
// strategy's sizing policy.
type Sizer struct {
	sizing strategyconfig.Sizing
}

// NewSizer builds a Sizer from the strategy's sizing section
func NewSizer(sizing strategyconfig.Sizing) *Sizer {
	return &Sizer{sizing: sizing}
}

// Quality is the sizing input: signal strength discounted by confidence
func Quality(signal, confidence float64) float64 {
	return math.Abs(signal) * confidence
}

// Shares computes the order quantity for a buy. The base allocation is a
// portfolio fraction picked by signal quality, capped at the maximum
// position size and by available buying power. Fractionable assets round
// to 6 decimals with a 0.001-share floor; whole-share assets floor to an
// integer with a 1-share floor.
func (s *Sizer) Shares(quality float64, account *Account, price float64, fractionable bool) (float64, error) {
	if price <= 0 {
		return 0, ErrBelowMinimum
	}

	pct := s.sizing.PortfolioPct(quality)
	if pct > s.sizing.MaxPositionPct {
		pct = s.sizing.MaxPositionPct
	}

	notional := account.PortfolioValue * pct
	if notional > account.BuyingPower {
		notional = account.BuyingPower
	}
	if notional <= 0 {
		return 0, ErrBelowMinimum
	}

	qty := notional / price
	if fractionable {
		qty = math.Round(qty*fractionalPrecision) / fractionalPrecision
		if qty < s.sizing.FractionalMinShares {
			return 0, ErrBelowMinimum
		}
		return qty, nil
	}

	qty = math.Floor(qty)
	if qty < s.sizing.WholeMinShares {
		return 0, ErrBelowMinimum
	}
	return qty, nil
}
