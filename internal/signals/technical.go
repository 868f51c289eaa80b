package signals

import (
	"context"
	"math"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// Minimum bar counts per indicator. Shorter input yields the neutral
// (0, 0) result instead of an error.
const (
	minBarsSMA        = 50
	minBarsRSI        = 15
	minBarsVolume     = 20
	minBarsMACD       = 35
	minBarsBollinger  = 25 // period + 5
	minBarsStochastic = 17 // %K period + %D period
)

// TechnicalCalculator computes technical indicator signals
type TechnicalCalculator struct {
	logger *logger.Logger
}

// NewTechnicalCalculator creates a new technical calculator
func NewTechnicalCalculator(log *logger.Logger) *TechnicalCalculator {
	return &TechnicalCalculator{logger: log}
}

// Calculate computes all technical signals for a symbol
func (c *TechnicalCalculator) Calculate(ctx context.Context, symbol string, prices contracts.PriceSeries) contracts.TechnicalSignals {
	signals := contracts.TechnicalSignals{
		SMACrossover: c.SMACrossover(prices),
		RSI:          c.RSI(prices),
		Volume:       c.Volume(prices),
		MACD:         c.MACD(prices),
		Bollinger:    c.Bollinger(prices),
		Stochastic:   c.Stochastic(prices),
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"sma":        signals.SMACrossover.Value,
		"rsi":        signals.RSI.Value,
		"volume":     signals.Volume.Value,
		"macd":       signals.MACD.Value,
		"bollinger":  signals.Bollinger.Value,
		"stochastic": signals.Stochastic.Value,
	}).Debug("Calculated technical signals")

	return signals
}

// SMACrossover scores the 20/50-day moving-average crossover.
// A full trend alignment (price > SMA20 > SMA50 or the reverse) is a
// strong signal; partial crossovers are weak. Confidence scales with
// the normalized MA separation.
func (c *TechnicalCalculator) SMACrossover(prices contracts.PriceSeries) contracts.SignalResult {
	if prices.Len() < minBarsSMA {
		return contracts.Neutral()
	}

	closes := prices.Closes()
	sma20 := mean(closes[len(closes)-20:])
	sma50 := mean(closes[len(closes)-50:])
	price := closes[len(closes)-1]

	if sma50 == 0 {
		return contracts.Neutral()
	}

	var signal float64
	switch {
	case price > sma20 && sma20 > sma50:
		signal = 0.8 // trending up
	case price < sma20 && sma20 < sma50:
		signal = -0.8 // trending down
	case price > sma20 && sma20 < sma50:
		signal = 0.3
	case price < sma20 && sma20 > sma50:
		signal = -0.3
	}

	separation := math.Abs(sma20-sma50) / sma50
	confidence := math.Min(1.0, separation*20)

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// RSI scores the 14-day Relative Strength Index with tiered
// oversold/overbought levels.
func (c *TechnicalCalculator) RSI(prices contracts.PriceSeries) contracts.SignalResult {
	if prices.Len() < minBarsRSI {
		return contracts.Neutral()
	}

	closes := prices.Closes()
	var gains, losses float64
	for i := len(closes) - 14; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	// No movement at all: no momentum to score
	if gains == 0 && losses == 0 {
		return contracts.Neutral()
	}

	var rsi float64
	if losses == 0 {
		rsi = 100
	} else {
		rs := (gains / 14) / (losses / 14)
		rsi = 100 - (100 / (1 + rs))
	}

	switch {
	case rsi < 30:
		return contracts.SignalResult{Value: 0.9, Confidence: 0.8}
	case rsi < 40:
		return contracts.SignalResult{Value: 0.5, Confidence: 0.6}
	case rsi > 70:
		return contracts.SignalResult{Value: -0.9, Confidence: 0.8}
	case rsi > 60:
		return contracts.SignalResult{Value: -0.5, Confidence: 0.6}
	default:
		return contracts.SignalResult{Value: 0, Confidence: 0.3}
	}
}

// Volume scores unusual volume confirmed by a same-day price move.
// Both the 20-day volume ratio and the 1-day price change must clear
// their thresholds together to emit a directional signal.
func (c *TechnicalCalculator) Volume(prices contracts.PriceSeries) contracts.SignalResult {
	if prices.Len() < minBarsVolume {
		return contracts.Neutral()
	}

	var volSum float64
	for _, b := range prices[prices.Len()-20:] {
		volSum += float64(b.Volume)
	}
	avgVolume := volSum / 20
	if avgVolume <= 0 {
		return contracts.Neutral()
	}

	volumeRatio := float64(prices.Last().Volume) / avgVolume

	prevClose := prices[prices.Len()-2].Close
	if prevClose == 0 {
		return contracts.Neutral()
	}
	priceChange := (prices.Last().Close - prevClose) / prevClose

	switch {
	case volumeRatio > 2.0 && priceChange > 0.02:
		return contracts.SignalResult{Value: 0.7, Confidence: 0.8}
	case volumeRatio > 2.0 && priceChange < -0.02:
		return contracts.SignalResult{Value: -0.7, Confidence: 0.8}
	case volumeRatio > 1.5 && priceChange > 0.01:
		return contracts.SignalResult{Value: 0.4, Confidence: 0.6}
	case volumeRatio > 1.5 && priceChange < -0.01:
		return contracts.SignalResult{Value: -0.4, Confidence: 0.6}
	default:
		return contracts.SignalResult{Value: 0, Confidence: 0.3}
	}
}

// MACD scores the 12/26/9 MACD. Histogram sign and slope set the base
// tier, a signal-line crossover overrides it, and a zero-line crossover
// nudges both signal and confidence.
func (c *TechnicalCalculator) MACD(prices contracts.PriceSeries) contracts.SignalResult {
	if prices.Len() < minBarsMACD {
		return contracts.Neutral()
	}

	closes := prices.Closes()
	ema12 := emaSeries(closes, 12)
	ema26 := emaSeries(closes, 26)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = ema12[i] - ema26[i]
	}
	signalLine := emaSeries(macdLine, 9)

	n := len(closes)
	macd := macdLine[n-1]
	sigLine := signalLine[n-1]
	prevMACD := macdLine[n-2]
	prevSigLine := signalLine[n-2]
	histogram := macd - sigLine
	prevHistogram := prevMACD - prevSigLine

	var signal, confidence float64

	switch {
	case macd > sigLine && histogram > prevHistogram:
		signal, confidence = 0.7, 0.6
	case macd > sigLine:
		signal, confidence = 0.3, 0.6
	case macd < sigLine && histogram < prevHistogram:
		signal, confidence = -0.7, 0.8
	case macd < sigLine:
		signal, confidence = -0.3, 0.6
	}

	// Signal-line crossover overrides the base tier
	if macd > sigLine && prevMACD <= prevSigLine {
		signal, confidence = 0.9, 0.9
	} else if macd < sigLine && prevMACD >= prevSigLine {
		signal, confidence = -0.9, 0.9
	}

	// Zero-line crossover nudges, each clamp applied independently
	if macd > 0 && prevMACD <= 0 {
		signal = math.Min(0.8, signal+0.2)
		confidence = math.Min(1.0, confidence+0.1)
	} else if macd < 0 && prevMACD >= 0 {
		signal = math.Max(-0.8, signal-0.2)
		confidence = math.Min(1.0, confidence+0.1)
	}

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// Bollinger scores 20-day, 2-sigma Bollinger Bands: band touches with
// directional momentum are strongest, interior extremes mean-revert,
// a squeeze adds a momentum nudge, and confidence is damped for weak
// signals under elevated band width.
func (c *TechnicalCalculator) Bollinger(prices contracts.PriceSeries) contracts.SignalResult {
	const period = 20
	const stdDev = 2.0

	if prices.Len() < minBarsBollinger {
		return contracts.Neutral()
	}

	closes := prices.Closes()
	n := len(closes)

	sma := mean(closes[n-period:])
	std := sampleStd(closes[n-period:])
	upper := sma + std*stdDev
	lower := sma - std*stdDev

	prevWindow := closes[n-period-1 : n-1]
	prevSMA := mean(prevWindow)
	prevStd := sampleStd(prevWindow)
	prevUpper := prevSMA + prevStd*stdDev
	prevLower := prevSMA - prevStd*stdDev

	price := closes[n-1]
	prevPrice := closes[n-2]

	if sma == 0 {
		return contracts.Neutral()
	}

	bandWidth := (upper - lower) / sma
	bandPosition := 0.5
	if upper != lower {
		bandPosition = (price - lower) / sma
	}

	var signal, confidence float64

	switch {
	// Band touching / breaching
	case price <= lower && prevPrice > prevLower:
		signal, confidence = 0.8, 0.9
	case price <= lower:
		signal, confidence = 0.6, 0.7
	case price >= upper && prevPrice < prevUpper:
		signal, confidence = -0.8, 0.9
	case price >= upper:
		signal, confidence = -0.6, 0.7
	// Mean reversion from interior extremes
	case bandPosition < 0.2:
		signal, confidence = 0.4, 0.6
	case bandPosition > 0.8:
		signal, confidence = -0.4, 0.6
	// Middle band crossover
	case price > sma && prevPrice <= sma:
		signal, confidence = 0.3, 0.5
	case price < sma && prevPrice >= sma:
		signal, confidence = -0.3, 0.5
	}

	// Band squeeze: narrow bands get a momentum nudge
	if bandWidth < 0.1 {
		if price > prevPrice {
			signal += 0.2
			confidence = math.Min(1.0, confidence+0.1)
		}
		if price < prevPrice {
			signal -= 0.2
			confidence = math.Min(1.0, confidence+0.1)
		}
	}

	// Weak signals under elevated volatility are less trustworthy
	volatilityAdjustment := math.Min(1.0, bandWidth*5)
	if math.Abs(signal) < 0.5 {
		confidence *= 1 - volatilityAdjustment*0.3
	}

	return contracts.SignalResult{Value: signal, Confidence: confidence}.Clamped()
}

// Stochastic scores the 14/3 stochastic oscillator: %K/%D level and
// momentum set the tier, with a confidence boost near the 0/100 bounds.
func (c *TechnicalCalculator) Stochastic(prices contracts.PriceSeries) contracts.SignalResult {
	const kPeriod = 14
	const dPeriod = 3

	if prices.Len() < minBarsStochastic {
		return contracts.Neutral()
	}

	// %K for the last dPeriod+1 bars, enough for current and previous %D
	n := prices.Len()
	kValues := make([]float64, dPeriod+1)
	for i := 0; i <= dPeriod; i++ {
		idx := n - (dPeriod + 1) + i
		window := prices[idx-kPeriod+1 : idx+1]

		lowMin := window[0].Low
		highMax := window[0].High
		for _, b := range window[1:] {
			if b.Low < lowMin {
				lowMin = b.Low
			}
			if b.High > highMax {
				highMax = b.High
			}
		}

		rangeHL := highMax - lowMin
		if rangeHL == 0 {
			rangeHL = 0.01
		}
		kValues[i] = (prices[idx].Close - lowMin) / rangeHL * 100
	}

	currentK := kValues[dPeriod]
	prevK := kValues[dPeriod-1]
	currentD := mean(kValues[1:])
	prevD := mean(kValues[:dPeriod])

	var signal, confidence float64

	switch {
	case currentK < 20 && currentD < 20:
		if currentK > prevK && currentD > prevD {
			signal, confidence = 0.9, 0.9
		} else if currentK > currentD {
			signal, confidence = 0.7, 0.8
		} else {
			signal, confidence = 0.5, 0.6
		}
	case currentK < 30 && currentD < 30:
		if currentK > prevK && currentD > prevD {
			signal, confidence = 0.6, 0.7
		} else {
			signal, confidence = 0.3, 0.5
		}
	case currentK > 80 && currentD > 80:
		if currentK < prevK && currentD < prevD {
			signal, confidence = -0.9, 0.9
		} else if currentK < currentD {
			signal, confidence = -0.7, 0.8
		} else {
			signal, confidence = -0.3, 0.5
		}
	case currentK >= 30 && currentK <= 70 && currentK > currentD && prevK <= prevD:
		signal, confidence = 0.4, 0.6
	default:
		kMomentum := currentK - prevK
		dMomentum := currentD - prevD
		if kMomentum > 2 && dMomentum > 1 {
			signal, confidence = 0.2, 0.3
		} else if kMomentum < -2 && dMomentum < -1 {
			signal, confidence = -0.2, 0.3
		} else {
			signal, confidence = 0, 0.1
		}
	}

	extremityFactor := 1.0
	if currentK < 10 || currentK > 90 {
		extremityFactor = 1.2
	} else if currentK < 20 || currentK > 80 {
		extremityFactor = 1.1
	}

	confidence = math.Min(1.0, confidence*extremityFactor)

	return contracts.SignalResult{Value: signal, Confidence: confidence}
}

// mean computes the arithmetic mean of values
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd computes the sample standard deviation (n-1 denominator)
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// emaSeries computes an exponential moving average over the full series,
// seeded with the first value
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	multiplier := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*multiplier + out[i-1]*(1-multiplier)
	}
	return out
}
