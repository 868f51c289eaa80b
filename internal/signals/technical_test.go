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

func newTestCalculator() *TechnicalCalculator {
	return NewTechnicalCalculator(logger.NewWithWriter(io.Discard, "test"))
}

// flatSeries builds n bars at a constant price with constant volume
func flatSeries(n int, price float64) contracts.PriceSeries {
	return flatSeriesWithVolume(n, price, 1000)
}

func flatSeriesWithVolume(n int, price float64, volume int64) contracts.PriceSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(contracts.PriceSeries, n)
	for i := range series {
		series[i] = contracts.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: volume,
		}
	}
	return series
}

// trendSeries builds n bars stepping linearly from start
func trendSeries(n int, start, step float64) contracts.PriceSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(contracts.PriceSeries, n)
	for i := range series {
		price := start + float64(i)*step
		series[i] = contracts.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		}
	}
	return series
}

func TestTechnical_InsufficientData(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name string
		bars int
		fn   func(contracts.PriceSeries) contracts.SignalResult
	}{
		{"sma needs 50", 49, calc.SMACrossover},
		{"rsi needs 15", 14, calc.RSI},
		{"volume needs 20", 19, calc.Volume},
		{"macd needs 35", 34, calc.MACD},
		{"bollinger needs 25", 24, calc.Bollinger},
		{"stochastic needs 17", 16, calc.Stochastic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(flatSeries(tt.bars, 100))
			assert.Equal(t, contracts.Neutral(), got)
		})
	}
}

func TestTechnical_FlatSeries(t *testing.T) {
	calc := newTestCalculator()
	series := flatSeries(60, 100)

	sma := calc.SMACrossover(series)
	assert.Zero(t, sma.Value, "no trend in a flat series")
	assert.Zero(t, sma.Confidence)

	rsi := calc.RSI(series)
	assert.Zero(t, rsi.Value, "no momentum in a flat series")
	assert.Zero(t, rsi.Confidence)

	vol := calc.Volume(series)
	assert.Zero(t, vol.Value, "no volume anomaly in a flat series")

	macd := calc.MACD(series)
	assert.Zero(t, macd.Value)
	assert.Zero(t, macd.Confidence)
}

func TestSMACrossover_Trends(t *testing.T) {
	calc := newTestCalculator()

	up := calc.SMACrossover(trendSeries(60, 100, 1))
	assert.InDelta(t, 0.8, up.Value, 1e-9)
	assert.InDelta(t, 1.0, up.Confidence, 1e-9, "wide MA separation saturates confidence")

	down := calc.SMACrossover(trendSeries(60, 200, -1))
	assert.InDelta(t, -0.8, down.Value, 1e-9)
	assert.InDelta(t, 1.0, down.Confidence, 1e-9)
}

func TestRSI_Extremes(t *testing.T) {
	calc := newTestCalculator()

	// 14 consecutive gains drives RSI to 100
	overbought := calc.RSI(trendSeries(20, 100, 1))
	assert.InDelta(t, -0.9, overbought.Value, 1e-9)
	assert.InDelta(t, 0.8, overbought.Confidence, 1e-9)

	// 14 consecutive losses drives RSI to 0
	oversold := calc.RSI(trendSeries(20, 100, -1))
	assert.InDelta(t, 0.9, oversold.Value, 1e-9)
	assert.InDelta(t, 0.8, oversold.Confidence, 1e-9)
}

func TestVolume_SpikeWithPriceMove(t *testing.T) {
	calc := newTestCalculator()

	// Volume spike confirming an up move
	series := flatSeriesWithVolume(25, 100, 1000)
	series[len(series)-1].Close = 103
	series[len(series)-1].Volume = 2500
	got := calc.Volume(series)
	assert.InDelta(t, 0.7, got.Value, 1e-9)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)

	// Same spike confirming a down move
	series = flatSeriesWithVolume(25, 100, 1000)
	series[len(series)-1].Close = 97
	series[len(series)-1].Volume = 2500
	got = calc.Volume(series)
	assert.InDelta(t, -0.7, got.Value, 1e-9)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)

	// Spike without a price move stays neutral
	series = flatSeriesWithVolume(25, 100, 1000)
	series[len(series)-1].Volume = 2500
	got = calc.Volume(series)
	assert.Zero(t, got.Value)
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
}

func TestMACD_TrendDirection(t *testing.T) {
	calc := newTestCalculator()

	up := calc.MACD(trendSeries(60, 100, 0.5))
	assert.Greater(t, up.Value, 0.0, "rising series keeps MACD above its signal line")
	assert.GreaterOrEqual(t, up.Confidence, 0.6)

	down := calc.MACD(trendSeries(60, 200, -0.5))
	assert.Less(t, down.Value, 0.0)
	assert.GreaterOrEqual(t, down.Confidence, 0.6)
}

func TestBollinger_UpperBandBreach(t *testing.T) {
	calc := newTestCalculator()

	series := flatSeries(25, 100)
	series[len(series)-1].Close = 120

	got := calc.Bollinger(series)
	assert.InDelta(t, -0.6, got.Value, 1e-9)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestBollinger_LowerBandBreach(t *testing.T) {
	calc := newTestCalculator()

	series := flatSeries(25, 100)
	series[len(series)-1].Close = 80

	got := calc.Bollinger(series)
	assert.InDelta(t, 0.6, got.Value, 1e-9)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestStochastic_Saturation(t *testing.T) {
	calc := newTestCalculator()

	// Sustained rally pins %K and %D at 100: overbought, not yet turning
	overbought := calc.Stochastic(trendSeries(30, 100, 1))
	assert.InDelta(t, -0.3, overbought.Value, 1e-9)
	assert.InDelta(t, 0.6, overbought.Confidence, 1e-9, "extremity boost on 0.5 base")

	// Sustained selloff pins %K and %D at 0: oversold, not yet turning
	oversold := calc.Stochastic(trendSeries(30, 200, -1))
	assert.InDelta(t, 0.5, oversold.Value, 1e-9)
	assert.InDelta(t, 0.72, oversold.Confidence, 1e-9)
}

func TestCalculate_AssemblesAllSignals(t *testing.T) {
	calc := newTestCalculator()
	series := trendSeries(60, 100, 1)

	signals := calc.Calculate(context.Background(), "AAPL", series)

	assert.InDelta(t, 0.8, signals.SMACrossover.Value, 1e-9)
	assert.InDelta(t, -0.9, signals.RSI.Value, 1e-9)
	assert.NotZero(t, signals.MACD.Confidence)
}
