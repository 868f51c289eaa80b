package jobs

import (
	"context"
	"fmt"

	"github.com/tradewind-io/tradewind/internal/regime"
	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// RegimeRefreshJob re-analyzes the market regime before the trading cycle
// so the cycle scores against fresh regime thresholds.
type RegimeRefreshJob struct {
	detector *regime.Detector
	trading  config.TradingConfig
	logger   *logger.Logger
}

// NewRegimeRefreshJob creates a new regime refresh job
func NewRegimeRefreshJob(detector *regime.Detector, trading config.TradingConfig, log *logger.Logger) *RegimeRefreshJob {
	return &RegimeRefreshJob{
		detector: detector,
		trading:  trading,
		logger:   log,
	}
}

// Name returns the job name
func (j *RegimeRefreshJob) Name() string {
	return "regime_refresh"
}

// Schedule returns the cron schedule (default 9:15 AM ET, pre-open)
func (j *RegimeRefreshJob) Schedule() string {
	return j.trading.RegimeSchedule
}

// Run forces a regime re-analysis
func (j *RegimeRefreshJob) Run(ctx context.Context) error {
	analysis, err := j.detector.Refresh(ctx, true)
	if err != nil {
		return fmt.Errorf("regime refresh: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"regime":     analysis.Regime,
		"confidence": analysis.Confidence,
	}).Info("Market regime refreshed")

	return nil
}
