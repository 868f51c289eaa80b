package execution

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/scoring"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

type fakeScorer struct {
	set   *contracts.RecommendationSet
	err   error
	calls int
}

func (f *fakeScorer) Run(ctx context.Context, cfg scoring.RunConfig) (*contracts.RecommendationSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func newTestManager(broker *fakeBroker, store *memoryStore, market contracts.MarketDataProvider, scorer Scorer) *Manager {
	log := logger.NewWithWriter(io.Discard, "test")
	engine := newTestEngine(broker, store, market)
	reconciler := newTestReconciler(broker, store)
	return NewManager(reconciler, engine, scorer, store, broker, market, log)
}

func recommendationSet(buys, sells []*contracts.AnalysisResult) *contracts.RecommendationSet {
	return &contracts.RecommendationSet{
		Buys:          buys,
		Sells:         sells,
		TotalAnalyzed: len(buys) + len(sells),
		GeneratedAt:   time.Now(),
	}
}

func TestManager_RunCycle_ExecutesRecommendations(t *testing.T) {
	broker := newFakeBroker()
	store := newMemoryStore()
	held := store.seed(contracts.Position{
		Symbol: "OLDP", Quantity: 5, EntryPrice: 80,
		CurrentStopLoss: 74, State: contracts.PositionActive,
	})
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "OLDP", Quantity: 5, AvgEntryPrice: 80, CurrentPrice: 85},
	}
	market := &priceMarket{prices: map[string]float64{"OLDP": 85}}

	scorer := &fakeScorer{set: recommendationSet(
		[]*contracts.AnalysisResult{buyRecommendation("AAPL", 100, 0.9, 1.0, 0.3)},
		[]*contracts.AnalysisResult{{Symbol: "OLDP", CurrentPrice: 85, Recommendation: contracts.RecommendationSell}},
	)}
	manager := newTestManager(broker, store, market, scorer)

	report, err := manager.RunCycle(context.Background(), CycleConfig{MaxBuyOrders: 3, AutoExecute: true})
	require.NoError(t, err)

	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, &ReconcileReport{Matched: 1}, report.Reconciliation)
	assert.Equal(t, 1, report.BuysExecuted)
	assert.Equal(t, 1, report.SellsExecuted)
	assert.Equal(t, contracts.PositionClosed, store.positions[held.ID].State)
	assert.Equal(t, []string{"AAPL"}, broker.buys)
}

func TestManager_RunCycle_FiltersOwnedBuys(t *testing.T) {
	broker := newFakeBroker()
	store := newMemoryStore()
	store.seed(contracts.Position{
		Symbol: "AAPL", Quantity: 10, EntryPrice: 90,
		CurrentStopLoss: 83, State: contracts.PositionActive,
	})
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "AAPL", Quantity: 10, AvgEntryPrice: 90, CurrentPrice: 100},
	}
	market := &priceMarket{prices: map[string]float64{"AAPL": 100}}

	scorer := &fakeScorer{set: recommendationSet(
		[]*contracts.AnalysisResult{buyRecommendation("AAPL", 100, 0.9, 1.0, 0.3)},
		nil,
	)}
	manager := newTestManager(broker, store, market, scorer)

	report, err := manager.RunCycle(context.Background(), CycleConfig{MaxBuyOrders: 3, AutoExecute: true})
	require.NoError(t, err)

	assert.Zero(t, report.BuysExecuted, "a held symbol is never bought again")
	assert.Empty(t, broker.buys)
	// The trailing stop still ratcheted during position management
	assert.NotEmpty(t, store.stopUpdates)
}

func TestManager_RunCycle_RecommendOnly(t *testing.T) {
	broker := newFakeBroker()
	store := newMemoryStore()
	scorer := &fakeScorer{set: recommendationSet(
		[]*contracts.AnalysisResult{buyRecommendation("AAPL", 100, 0.9, 1.0, 0.3)},
		nil,
	)}
	manager := newTestManager(broker, store, &priceMarket{}, scorer)

	report, err := manager.RunCycle(context.Background(), CycleConfig{MaxBuyOrders: 3, AutoExecute: false})
	require.NoError(t, err)

	assert.Zero(t, report.BuysExecuted)
	assert.Empty(t, broker.buys)
	require.NotNil(t, report.Recommendations)
	assert.Len(t, report.Recommendations.Buys, 1)
}

func TestManager_RunCycle_ScoringFailureAborts(t *testing.T) {
	broker := newFakeBroker()
	store := newMemoryStore()
	scorer := &fakeScorer{err: errors.New("feed down")}
	manager := newTestManager(broker, store, &priceMarket{}, scorer)

	_, err := manager.RunCycle(context.Background(), CycleConfig{AutoExecute: true})
	require.Error(t, err)
	assert.Empty(t, broker.buys)
}

func TestManager_Summary(t *testing.T) {
	broker := newFakeBroker()
	store := newMemoryStore()
	store.seed(contracts.Position{
		Symbol: "AAPL", Quantity: 10, EntryPrice: 90, State: contracts.PositionActive,
	})
	store.seed(contracts.Position{
		Symbol: "MSFT", Quantity: 2, EntryPrice: 300, State: contracts.PositionActive,
	})
	market := &priceMarket{prices: map[string]float64{"AAPL": 100, "MSFT": 290}}
	manager := newTestManager(broker, store, market, &fakeScorer{})

	summary, err := manager.Summary(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1500, summary.TotalCost, 1e-9)  // 900 + 600
	assert.InDelta(t, 1580, summary.TotalValue, 1e-9) // 1000 + 580
	assert.InDelta(t, 80, summary.UnrealizedPnL, 1e-9)
	require.Len(t, summary.Positions, 2)
	assert.InDelta(t, 100, summary.Positions[0].CurrentPrice, 1e-9)
	assert.InDelta(t, 100, summary.UnrealizedPnL-summary.Positions[1].UnrealizedPnL, 1e-9)
}
