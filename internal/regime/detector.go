package regime

import (
	"context"
	"sync"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
	"github.com/tradewind-io/tradewind/pkg/redis"
)

// cacheKey stores the current regime analysis in Redis
const cacheKey = "regime:current"

// staleness is how long one classification stays authoritative
const staleness = 24 * time.Hour

// Detector classifies the market regime and caches the result for 24
// hours, in process and in Redis. A forced refresh bypasses the cache
// but is honored at most once per rolling 24-hour window.
type Detector struct {
	provider contracts.RegimeInputProvider
	cache    *redis.Cache
	logger   *logger.Logger
	now      func() time.Time

	mu         sync.Mutex
	current    *contracts.RegimeAnalysis
	lastForced time.Time
}

// NewDetector creates a regime detector
func NewDetector(provider contracts.RegimeInputProvider, cache *redis.Cache, log *logger.Logger) *Detector {
	return &Detector{
		provider: provider,
		cache:    cache,
		logger:   log,
		now:      time.Now,
	}
}

// Current returns the cached analysis, recomputing only when stale
func (d *Detector) Current(ctx context.Context) (*contracts.RegimeAnalysis, error) {
	return d.Refresh(ctx, false)
}

// Refresh returns the regime analysis. With force, a recomputation is
// performed even on a fresh cache, unless a forced refresh already ran
// within the last 24 hours.
func (d *Detector) Refresh(ctx context.Context, force bool) (*contracts.RegimeAnalysis, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()

	if force && now.Sub(d.lastForced) < staleness {
		d.logger.Debug("Forced regime refresh throttled, serving cached analysis")
		force = false
	}

	if !force {
		if d.current != nil && now.Sub(d.current.AnalyzedAt) < staleness {
			return d.current, nil
		}

		var cached contracts.RegimeAnalysis
		hit, err := d.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			d.logger.WithError(err).Warn("Regime cache read failed")
		}
		if hit && now.Sub(cached.AnalyzedAt) < staleness {
			d.current = &cached
			return d.current, nil
		}
	}

	inputs, err := d.provider.GetRegimeInputs(ctx)
	if err != nil {
		// Serve a stale analysis over failing the whole cycle
		if d.current != nil {
			d.logger.WithError(err).Warn("Regime inputs unavailable, serving stale analysis")
			return d.current, nil
		}
		return nil, err
	}

	analysis := Classify(inputs, now)

	d.logger.WithFields(map[string]interface{}{
		"regime":     analysis.Regime,
		"confidence": analysis.Confidence,
		"vix_tier":   analysis.VIX.Tier,
		"breadth":    analysis.Breadth.Tier,
		"sector":     analysis.Sector.Tier,
	}).Info("Market regime classified")

	if err := d.cache.Set(ctx, cacheKey, analysis, redis.TTLRegime); err != nil {
		d.logger.WithError(err).Warn("Regime cache write failed")
	}

	d.current = analysis
	if force {
		d.lastForced = now
	}

	return analysis, nil
}
