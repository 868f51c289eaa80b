package signals

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

func newFundamentalCalculator() *FundamentalCalculator {
	return NewFundamentalCalculator(logger.NewWithWriter(io.Discard, "test"))
}

func TestPERatio(t *testing.T) {
	calc := newFundamentalCalculator()

	tests := []struct {
		name     string
		pe       float64
		wantVal  float64
		wantConf float64
	}{
		{"fair value", 20, 0, 0.4},
		{"deep value saturates", 7.5, 0.9, 0.8},
		{"negative earnings", -5, -0.9, 0.9},
		{"very expensive", 45, -0.9, 0.8},
		{"extreme multiple", 60, -0.9, 0.9},
		{"mildly cheap", 15, 0.4, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.PERatio(tt.pe)
			assert.InDelta(t, tt.wantVal, got.Value, 1e-9)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
		})
	}
}

func TestPBRatio(t *testing.T) {
	calc := newFundamentalCalculator()

	got := calc.PBRatio(2.4)
	assert.InDelta(t, 0, got.Value, 1e-9)
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)

	got = calc.PBRatio(0.4)
	assert.InDelta(t, 0.9, got.Value, 1e-9)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)

	got = calc.PBRatio(6)
	assert.InDelta(t, -0.9, got.Value, 1e-9)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)

	// Negative book value
	got = calc.PBRatio(-1)
	assert.InDelta(t, -0.9, got.Value, 1e-9)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestROE(t *testing.T) {
	calc := newFundamentalCalculator()

	got := calc.ROE(22.5)
	assert.InDelta(t, 0.8, got.Value, 1e-9, "upside saturates at 0.8")
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)

	got = calc.ROE(10)
	assert.InDelta(t, 0, got.Value, 1e-9)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)

	got = calc.ROE(5)
	assert.InDelta(t, -0.2, got.Value, 1e-9, "downside floored at -0.2 for positive ROE")
	assert.InDelta(t, 0.56, got.Confidence, 1e-9)

	got = calc.ROE(-5)
	assert.InDelta(t, -0.8, got.Value, 1e-9)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func quarter(daysAgo int) time.Time {
	return time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo)
}

func TestCurrentRatio(t *testing.T) {
	calc := newFundamentalCalculator()

	// Healthy 2.0 liquidity
	got := calc.CurrentRatio([]contracts.QuarterlyReport{
		{FiscalDateEnding: quarter(0), TotalCurrentAssets: 2000, TotalCurrentLiabilities: 1000},
	})
	assert.InDelta(t, 0.6, got.Value, 1e-9)
	assert.InDelta(t, 0.78, got.Confidence, 1e-9)

	// Idle assets beyond 2.0 decay the score
	got = calc.CurrentRatio([]contracts.QuarterlyReport{
		{FiscalDateEnding: quarter(0), TotalCurrentAssets: 4000, TotalCurrentLiabilities: 1000},
	})
	assert.InDelta(t, 0.2, got.Value, 1e-9)
	assert.InDelta(t, 0.46, got.Confidence, 1e-9)

	// No quarterly data
	assert.Equal(t, contracts.Neutral(), calc.CurrentRatio(nil))
}

func TestDebtToEquity(t *testing.T) {
	calc := newFundamentalCalculator()

	moderate := []contracts.QuarterlyReport{
		{FiscalDateEnding: quarter(0), TotalAssets: 1000, TotalLiabilities: 500, TotalDebt: 125},
	}

	// D/E 0.25, no ROE adjustment
	got := calc.DebtToEquity(moderate, 0)
	assert.InDelta(t, 0.3, got.Value, 1e-9)
	assert.InDelta(t, 0.58, got.Confidence, 1e-9)

	// High ROE with low leverage earns the bonus
	got = calc.DebtToEquity(moderate, 20)
	assert.InDelta(t, 0.4, got.Value, 1e-9)
	assert.InDelta(t, 0.64, got.Confidence, 1e-9)

	// Overleveraged
	leveraged := []contracts.QuarterlyReport{
		{FiscalDateEnding: quarter(0), TotalAssets: 1000, TotalLiabilities: 500, TotalDebt: 1500},
	}
	got = calc.DebtToEquity(leveraged, 0)
	assert.InDelta(t, -0.8, got.Value, 1e-9)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9, "extreme leverage is a confident read")

	// Weak ROE with high leverage takes the penalty
	penalized := []contracts.QuarterlyReport{
		{FiscalDateEnding: quarter(0), TotalAssets: 1000, TotalLiabilities: 500, TotalDebt: 450},
	}
	got = calc.DebtToEquity(penalized, 2)
	// D/E 0.9: base 0.6 - 0.4*0.8 = 0.28, penalty -0.2
	assert.InDelta(t, 0.08, got.Value, 1e-9)
}

// growthReports builds 8 quarters, newest first: 4 recent at recent and
// 4 prior-year at prior for both revenue and retained earnings.
func growthReports(recent, prior float64) []contracts.QuarterlyReport {
	reports := make([]contracts.QuarterlyReport, contracts.GrowthQuarters)
	for i := range reports {
		v := recent
		if i >= 4 {
			v = prior
		}
		reports[i] = contracts.QuarterlyReport{
			FiscalDateEnding: quarter(i * 91),
			TotalRevenue:     v,
			RetainedEarnings: v,
		}
	}
	return reports
}

func TestRevenueGrowth(t *testing.T) {
	calc := newFundamentalCalculator()

	// 10% YoY in every quarter
	got := calc.RevenueGrowth(growthReports(110, 100))
	assert.InDelta(t, 0.5, got.Value, 1e-9)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)

	// 20% contraction
	got = calc.RevenueGrowth(growthReports(80, 100))
	assert.InDelta(t, -0.8, got.Value, 1e-9)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)

	// Needs the full 8 quarters
	short := growthReports(110, 100)[:6]
	assert.Equal(t, contracts.Neutral(), calc.RevenueGrowth(short))
}

func TestEarningsGrowth(t *testing.T) {
	calc := newFundamentalCalculator()

	// 15% growth in every quarter
	got := calc.EarningsGrowth(growthReports(115, 100))
	assert.InDelta(t, 0.6, got.Value, 1e-9)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)

	// Loss-to-profit flip maps to +100% per quarter
	got = calc.EarningsGrowth(growthReports(10, -50))
	assert.InDelta(t, 0.7, got.Value, 1e-9)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9, "extreme growth trusted less")

	// A 300% quarter is discarded as an outlier, the rest average to 5%
	reports := growthReports(105, 100)
	reports[0].RetainedEarnings = 400
	got = calc.EarningsGrowth(reports)
	assert.InDelta(t, 0.2, got.Value, 1e-9)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)

	assert.Equal(t, contracts.Neutral(), calc.EarningsGrowth(nil))
}

func TestCalculate_Snapshot(t *testing.T) {
	calc := newFundamentalCalculator()

	snapshot := &contracts.FundamentalsSnapshot{
		Symbol: "MSFT",
		Overview: &contracts.Overview{
			Symbol:           "MSFT",
			PERatio:          20,
			PriceToBookRatio: 2.4,
			ReturnOnEquity:   10,
		},
		BalanceSheet:    growthReports(115, 100),
		IncomeStatement: growthReports(110, 100),
	}
	snapshot.BalanceSheet[0].TotalCurrentAssets = 2000
	snapshot.BalanceSheet[0].TotalCurrentLiabilities = 1000
	snapshot.BalanceSheet[0].TotalAssets = 1000
	snapshot.BalanceSheet[0].TotalLiabilities = 500
	snapshot.BalanceSheet[0].TotalDebt = 125

	signals := calc.Calculate(context.Background(), snapshot)

	assert.Zero(t, signals.PERatio.Value)
	assert.Zero(t, signals.PBRatio.Value)
	assert.Zero(t, signals.ROE.Value)
	assert.InDelta(t, 0.6, signals.CurrentRatio.Value, 1e-9)
	assert.InDelta(t, 0.3, signals.DebtToEquity.Value, 1e-9)
	assert.InDelta(t, 0.5, signals.RevenueGrowth.Value, 1e-9)
	assert.InDelta(t, 0.6, signals.EarningsGrowth.Value, 1e-9)
}

func TestCalculate_MissingOverview(t *testing.T) {
	calc := newFundamentalCalculator()

	signals := calc.Calculate(context.Background(), &contracts.FundamentalsSnapshot{Symbol: "XYZ"})

	assert.Equal(t, contracts.Neutral(), signals.PERatio)
	assert.Equal(t, contracts.Neutral(), signals.CurrentRatio)
	assert.Equal(t, contracts.Neutral(), signals.RevenueGrowth)
}
