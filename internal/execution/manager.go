package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/scoring"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// Scorer produces recommendations for one scoring pass. Satisfied by
// scoring.Runner.
type Scorer interface {
	Run(ctx context.Context, cfg scoring.RunConfig) (*contracts.RecommendationSet, error)
}

// Manager runs the trading cycle: reconcile against the broker, manage
// stops on open positions, score the universe, then act on the
// recommendations.
type Manager struct {
	reconciler *Reconciler
	engine     *Engine
	runner     Scorer
	store      PositionStore
	broker     Broker
	market     contracts.MarketDataProvider
	logger     *logger.Logger
}

// NewManager creates a new trading manager
func NewManager(reconciler *Reconciler, engine *Engine, runner Scorer, store PositionStore, broker Broker, market contracts.MarketDataProvider, log *logger.Logger) *Manager {
	return &Manager{
		reconciler: reconciler,
		engine:     engine,
		runner:     runner,
		store:      store,
		broker:     broker,
		market:     market,
		logger:     log,
	}
}

// CycleConfig controls one trading cycle
type CycleConfig struct {
	Scoring scoring.RunConfig
	// MaxBuyOrders caps new positions per cycle. AutoExecute false
	// stops after scoring and recommends only.
	MaxBuyOrders int
	AutoExecute  bool
}

// CycleReport summarizes one trading cycle
type CycleReport struct {
	Reconciliation  *ReconcileReport              `json:"reconciliation"`
	Recommendations *contracts.RecommendationSet  `json:"recommendations"`
	BuysExecuted    int                           `json:"buys_executed"`
	SellsExecuted   int                           `json:"sells_executed"`
	StartedAt       time.Time                     `json:"started_at"`
	FinishedAt      time.Time                     `json:"finished_at"`
}

// RunCycle executes one full trading cycle. State is trued up against
// the broker and stops are enforced before any new order is considered,
// so decisions never act on stale positions.
func (m *Manager) RunCycle(ctx context.Context, cfg CycleConfig) (*CycleReport, error) {
	report := &CycleReport{StartedAt: time.Now()}
	m.logger.Info("trading cycle started")

	reconciliation, err := m.reconciler.Reconcile(ctx)
	if err != nil {
		return report, fmt.Errorf("reconciliation failed: %w", err)
	}
	report.Reconciliation = reconciliation

	if err := m.engine.ManagePositions(ctx); err != nil {
		return report, fmt.Errorf("position management failed: %w", err)
	}

	set, err := m.runner.Run(ctx, cfg.Scoring)
	if err != nil {
		return report, fmt.Errorf("scoring failed: %w", err)
	}
	report.Recommendations = set

	owned, err := m.store.GetOwnedSymbols(ctx)
	if err != nil {
		return report, &contracts.PersistenceError{Op: "get owned symbols", Err: err}
	}
	if filtered := set.FilterOwned(owned); filtered > 0 {
		m.logger.WithField("filtered", filtered).Info("dropped buy recommendations for held symbols")
	}

	if !cfg.AutoExecute {
		report.FinishedAt = time.Now()
		m.logger.Info("trading cycle finished, auto-execute off")
		return report, nil
	}

	sells, err := m.engine.ExecuteSells(ctx, set.Sells)
	if err != nil {
		return report, err
	}
	report.SellsExecuted = sells

	buys, err := m.engine.ExecuteBuys(ctx, set.Buys, cfg.MaxBuyOrders)
	if err != nil {
		return report, err
	}
	report.BuysExecuted = buys

	report.FinishedAt = time.Now()
	m.logger.WithFields(map[string]interface{}{
		"buys":  buys,
		"sells": sells,
	}).Info("trading cycle finished")

	return report, nil
}

// PositionView is an open position enriched with its current market value
type PositionView struct {
	Position      *contracts.Position `json:"position"`
	CurrentPrice  float64             `json:"current_price"`
	MarketValue   float64             `json:"market_value"`
	UnrealizedPnL float64             `json:"unrealized_pnl"`
}

// PortfolioSummary aggregates open positions and account state
type PortfolioSummary struct {
	Cash           float64        `json:"cash"`
	PortfolioValue float64        `json:"portfolio_value"`
	TotalCost      float64        `json:"total_cost"`
	TotalValue     float64        `json:"total_value"`
	UnrealizedPnL  float64        `json:"unrealized_pnl"`
	Positions      []PositionView `json:"positions"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// Summary builds the current portfolio view. Symbols without a fresh
// price fall back to their entry price.
func (m *Manager) Summary(ctx context.Context) (*PortfolioSummary, error) {
	account, err := m.broker.GetAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	positions, err := m.store.GetActivePositions(ctx)
	if err != nil {
		return nil, &contracts.PersistenceError{Op: "get active positions", Err: err}
	}

	summary := &PortfolioSummary{
		Cash:           account.Cash,
		PortfolioValue: account.PortfolioValue,
		Positions:      make([]PositionView, 0, len(positions)),
		GeneratedAt:    time.Now(),
	}

	for _, position := range positions {
		price := position.EntryPrice
		if series, err := m.market.GetPriceSeries(ctx, position.Symbol, priceLookbackDays); err == nil && series.Len() > 0 {
			price = series.LastClose()
		}

		cost := position.Quantity * position.EntryPrice
		value := position.Quantity * price

		summary.TotalCost += cost
		summary.TotalValue += value
		summary.UnrealizedPnL += value - cost
		summary.Positions = append(summary.Positions, PositionView{
			Position:      position,
			CurrentPrice:  price,
			MarketValue:   value,
			UnrealizedPnL: value - cost,
		})
	}

	return summary, nil
}
