package jobs

import (
	"context"
	"fmt"

	"github.com/tradewind-io/tradewind/internal/execution"
	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// StopManagementJob re-checks open positions intraday: triggers stop-loss
// exits and ratchets trailing stops against the latest prices.
type StopManagementJob struct {
	engine  *execution.Engine
	trading config.TradingConfig
	logger  *logger.Logger
}

// NewStopManagementJob creates a new stop management job
func NewStopManagementJob(engine *execution.Engine, trading config.TradingConfig, log *logger.Logger) *StopManagementJob {
	return &StopManagementJob{
		engine:  engine,
		trading: trading,
		logger:  log,
	}
}

// Name returns the job name
func (j *StopManagementJob) Name() string {
	return "stop_management"
}

// Schedule returns the cron schedule (default every 15 minutes during market hours)
func (j *StopManagementJob) Schedule() string {
	return j.trading.StopSchedule
}

// Run manages stops for all open positions
func (j *StopManagementJob) Run(ctx context.Context) error {
	if err := j.engine.ManagePositions(ctx); err != nil {
		return fmt.Errorf("manage positions: %w", err)
	}
	return nil
}
