package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-io/tradewind/internal/strategyconfig"
)

func newTestSizer() *Sizer {
	return NewSizer(strategyconfig.Default().Sizing)
}

func testAccount() *Account {
	return &Account{Cash: 100000, PortfolioValue: 100000, BuyingPower: 100000}
}

func TestQuality(t *testing.T) {
	assert.InDelta(t, 0.4, Quality(-0.5, 0.8), 1e-9)
	assert.InDelta(t, 0.9, Quality(0.9, 1.0), 1e-9)
	assert.Zero(t, Quality(0.7, 0))
}

func TestSizer_QualityTiers(t *testing.T) {
	sizer := newTestSizer()
	account := testAccount()

	tests := []struct {
		name    string
		quality float64
		want    float64
	}{
		{"top tier gets 5 percent", 0.9, 50},
		{"middle tier gets 3 percent", 0.7, 30},
		{"base tier gets 1.5 percent", 0.3, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, err := sizer.Shares(tt.quality, account, 100, false)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, qty, 1e-9)
		})
	}
}

func TestSizer_BuyingPowerCaps(t *testing.T) {
	sizer := newTestSizer()
	account := &Account{Cash: 1000, PortfolioValue: 100000, BuyingPower: 1000}

	qty, err := sizer.Shares(0.9, account, 100, false)
	require.NoError(t, err)
	assert.InDelta(t, 10, qty, 1e-9)
}

func TestSizer_FractionalRounding(t *testing.T) {
	sizer := newTestSizer()
	account := testAccount()

	// 5000 / 3333 = 1.50015001..., rounded to 6 decimals
	qty, err := sizer.Shares(0.9, account, 3333, true)
	require.NoError(t, err)
	assert.InDelta(t, 1.50015, qty, 1e-9)

	// Whole-share asset floors instead
	whole, err := sizer.Shares(0.9, account, 3333, false)
	require.NoError(t, err)
	assert.InDelta(t, 1, whole, 1e-9)
}

func TestSizer_BelowMinimum(t *testing.T) {
	sizer := newTestSizer()

	// Whole shares: 1500 notional cannot buy one 10000-dollar share
	_, err := sizer.Shares(0.3, testAccount(), 10000, false)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// Fractional: quantity rounds below the 0.001-share floor
	tiny := &Account{PortfolioValue: 100000, BuyingPower: 0.01}
	_, err = sizer.Shares(0.9, tiny, 100, true)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// No buying power at all
	broke := &Account{PortfolioValue: 100000, BuyingPower: 0}
	_, err = sizer.Shares(0.9, broke, 100, false)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// Bad price
	_, err = sizer.Shares(0.9, testAccount(), 0, false)
	assert.ErrorIs(t, err, ErrBelowMinimum)
}
