package jobs

import (
	"context"
	"fmt"

	"github.com/tradewind-io/tradewind/internal/execution"
	"github.com/tradewind-io/tradewind/internal/scoring"
	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// TradingCycleJob runs the full daily cycle: reconcile, manage stops,
// score the universe, and execute the resulting recommendations.
type TradingCycleJob struct {
	manager *execution.Manager
	trading config.TradingConfig
	logger  *logger.Logger
}

// NewTradingCycleJob creates a new trading cycle job
func NewTradingCycleJob(manager *execution.Manager, trading config.TradingConfig, log *logger.Logger) *TradingCycleJob {
	return &TradingCycleJob{
		manager: manager,
		trading: trading,
		logger:  log,
	}
}

// Name returns the job name
func (j *TradingCycleJob) Name() string {
	return "trading_cycle"
}

// Schedule returns the cron schedule (default 9:45 AM ET, after the open)
func (j *TradingCycleJob) Schedule() string {
	return j.trading.CycleSchedule
}

// Run executes one trading cycle
func (j *TradingCycleJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled trading cycle")

	report, err := j.manager.RunCycle(ctx, execution.CycleConfig{
		Scoring: scoring.RunConfig{
			UniverseType: j.trading.UniverseType,
			MaxSymbols:   j.trading.MaxSymbols,
			BatchSize:    j.trading.BatchSize,
			LookbackDays: j.trading.LookbackDays,
		},
		MaxBuyOrders: j.trading.TopBuyCount,
		AutoExecute:  j.trading.AutoExecute,
	})
	if err != nil {
		return fmt.Errorf("trading cycle: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"buys_executed":  report.BuysExecuted,
		"sells_executed": report.SellsExecuted,
		"auto_execute":   j.trading.AutoExecute,
	}).Info("Scheduled trading cycle completed")

	return nil
}
