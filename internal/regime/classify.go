package regime

import (
	"math"
	"sort"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

// Classification thresholds
const (
	vixLow      = 15.0
	vixModerate = 25.0
	vixHigh     = 35.0

	breadthStrong  = 0.8
	breadthNeutral = 0.6

	sectorRangeThreshold  = 0.15
	sectorLeaderThreshold = 0.05
)

// Component blend weights for overall confidence
const (
	weightVIX     = 0.40
	weightBreadth = 0.35
	weightSector  = 0.25
)

// VIX sub-classification tiers
const (
	vixTierLow      = "low_vol"
	vixTierModerate = "moderate_vol"
	vixTierElevated = "elevated_vol"
	vixTierHigh     = "high_vol"
)

// Breadth sub-classification tiers
const (
	breadthTierWeak    = "weak_breadth"
	breadthTierNeutral = "neutral_breadth"
	breadthTierStrong  = "strong_breadth"
)

// Sector sub-classification tiers
const (
	sectorTierRiskOn   = "risk_on_rotation"
	sectorTierRiskOff  = "risk_off_rotation"
	sectorTierBalanced = "balanced"
)

// layerWeights maps each regime to its technical/fundamental split
var layerWeights = map[contracts.Regime]contracts.LayerWeights{
	contracts.RegimeHighVolatility:  {Technical: 0.71, Fundamental: 0.29},
	contracts.RegimeLowVolatility:   {Technical: 0.29, Fundamental: 0.71},
	contracts.RegimeTrendingBullish: {Technical: 0.625, Fundamental: 0.375},
	contracts.RegimeTrendingBearish: {Technical: 0.75, Fundamental: 0.25},
	contracts.RegimeTransitional:    {Technical: 0.5, Fundamental: 0.5},
}

// Classify derives the market regime from the raw input series. Missing
// or short inputs degrade a component to its neutral tier at 0.5
// confidence rather than failing the classification.
func Classify(inputs *contracts.RegimeInputs, now time.Time) *contracts.RegimeAnalysis {
	vix := classifyVIX(inputs.VIX)
	breadth := classifyBreadth(inputs.Indices)
	sector := classifySector(inputs.Sectors)

	regime := decide(vix.Tier, breadth.Tier, sector.Tier)

	confidence := vix.Confidence*weightVIX +
		breadth.Confidence*weightBreadth +
		sector.Confidence*weightSector

	return &contracts.RegimeAnalysis{
		Regime:     regime,
		Confidence: confidence,
		Weights:    layerWeights[regime],
		VIX:        vix,
		Breadth:    breadth,
		Sector:     sector,
		AnalyzedAt: now,
	}
}

// decide maps the three sub-labels onto one of the five regimes.
// Order matters: volatility extremes dominate, then trend agreement
// between breadth and sector rotation, else transitional.
func decide(vixTier, breadthTier, sectorTier string) contracts.Regime {
	switch {
	case vixTier == vixTierHigh ||
		(vixTier == vixTierElevated && breadthTier == breadthTierWeak):
		return contracts.RegimeHighVolatility
	case vixTier == vixTierLow &&
		(breadthTier == breadthTierStrong || breadthTier == breadthTierNeutral):
		return contracts.RegimeLowVolatility
	case breadthTier == breadthTierStrong && sectorTier == sectorTierRiskOn:
		return contracts.RegimeTrendingBullish
	case breadthTier == breadthTierWeak && sectorTier == sectorTierRiskOff:
		return contracts.RegimeTrendingBearish
	default:
		return contracts.RegimeTransitional
	}
}

// classifyVIX tiers the volatility index by absolute level, with a
// 10-day momentum sign qualifying confidence at the extremes.
func classifyVIX(series contracts.PriceSeries) contracts.VIXComponent {
	if series.Len() < 10 {
		return contracts.VIXComponent{Tier: vixTierModerate, Confidence: 0.5}
	}

	level := series.LastClose()

	var ma10 float64
	for _, b := range series[series.Len()-10:] {
		ma10 += b.Close
	}
	ma10 /= 10

	momentum := 0.0
	if ma10 != 0 {
		momentum = (level - ma10) / ma10
	}

	var tier string
	var confidence float64
	switch {
	case level < vixLow:
		tier = vixTierLow
		if momentum <= 0 {
			confidence = 0.9
		} else {
			confidence = 0.7
		}
	case level > vixHigh:
		tier = vixTierHigh
		if momentum >= 0 {
			confidence = 0.9
		} else {
			confidence = 0.7
		}
	case level > vixModerate:
		tier = vixTierElevated
		confidence = 0.8
	default:
		tier = vixTierModerate
		confidence = 0.6
	}

	return contracts.VIXComponent{
		Tier:       tier,
		Confidence: confidence,
		Level:      level,
		Momentum:   momentum,
	}
}

// classifyBreadth tiers market breadth by the fraction of broad indices
// trading above their 20-day moving average. Indices with too little
// history count as below.
func classifyBreadth(indices map[string]contracts.PriceSeries) contracts.BreadthComponent {
	if len(indices) == 0 {
		return contracts.BreadthComponent{Tier: breadthTierNeutral, Confidence: 0.5, Ratio: 0.5}
	}

	above := 0
	for _, series := range indices {
		if series.Len() < 20 {
			continue
		}
		var sma20 float64
		for _, b := range series[series.Len()-20:] {
			sma20 += b.Close
		}
		sma20 /= 20

		if series.LastClose() > sma20 {
			above++
		}
	}

	ratio := float64(above) / float64(len(indices))

	var tier string
	var confidence float64
	switch {
	case ratio >= breadthStrong:
		tier = breadthTierStrong
		confidence = 0.8
	case ratio >= breadthNeutral:
		tier = breadthTierNeutral
		confidence = 0.6
	default:
		tier = breadthTierWeak
		confidence = 0.8
	}

	return contracts.BreadthComponent{Tier: tier, Confidence: confidence, Ratio: ratio}
}

// classifySector tiers sector rotation by the dispersion of 30-day
// sector returns and the sign of the strongest sector.
func classifySector(sectors map[string]contracts.PriceSeries) contracts.SectorComponent {
	if len(sectors) == 0 {
		return contracts.SectorComponent{Tier: sectorTierBalanced, Confidence: 0.5}
	}

	type sectorReturn struct {
		symbol string
		ret    float64
	}

	perf := make([]sectorReturn, 0, len(sectors))
	for symbol, series := range sectors {
		if series.Len() < 2 || series[0].Close == 0 {
			continue
		}
		ret := series.LastClose()/series[0].Close - 1
		perf = append(perf, sectorReturn{symbol: symbol, ret: ret})
	}

	if len(perf) == 0 {
		return contracts.SectorComponent{Tier: sectorTierBalanced, Confidence: 0.5}
	}

	sort.Slice(perf, func(i, j int) bool { return perf[i].ret > perf[j].ret })

	maxRet := perf[0].ret
	minRet := perf[len(perf)-1].ret
	returnRange := maxRet - minRet

	var meanRet float64
	for _, p := range perf {
		meanRet += p.ret
	}
	meanRet /= float64(len(perf))
	var variance float64
	for _, p := range perf {
		d := p.ret - meanRet
		variance += d * d
	}
	dispersion := math.Sqrt(variance / float64(len(perf)))

	topN := 3
	if len(perf) < topN {
		topN = len(perf)
	}
	leaders := make([]string, 0, topN)
	for _, p := range perf[:topN] {
		leaders = append(leaders, p.symbol)
	}
	laggards := make([]string, 0, topN)
	for _, p := range perf[len(perf)-topN:] {
		laggards = append(laggards, p.symbol)
	}

	var tier string
	var confidence float64
	if returnRange > sectorRangeThreshold {
		if maxRet > sectorLeaderThreshold {
			tier = sectorTierRiskOn
		} else {
			tier = sectorTierRiskOff
		}
		confidence = 0.8
	} else {
		tier = sectorTierBalanced
		confidence = 0.6
	}

	return contracts.SectorComponent{
		Tier:       tier,
		Confidence: confidence,
		Dispersion: dispersion,
		Range:      returnRange,
		Leaders:    leaders,
		Laggards:   laggards,
	}
}
