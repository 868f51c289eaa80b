package execution

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/strategyconfig"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

func newTestReconciler(broker Broker, store PositionStore) *Reconciler {
	stops := NewStopCalculator(strategyconfig.Default().Stops)
	return NewReconciler(broker, store, stops, logger.NewWithWriter(io.Discard, "test"))
}

func TestReconcile_MatchedPositionsUntouched(t *testing.T) {
	store := newMemoryStore()
	position := store.seed(contracts.Position{
		Symbol: "AAPL", Quantity: 10, EntryPrice: 100,
		CurrentStopLoss: 95, State: contracts.PositionActive,
	})
	broker := newFakeBroker()
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "AAPL", Quantity: 10, AvgEntryPrice: 100, CurrentPrice: 105},
	}

	report, err := newTestReconciler(broker, store).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &ReconcileReport{Matched: 1}, report)
	assert.Empty(t, store.trades, "a matched position must not generate trades")
	assert.Equal(t, contracts.PositionActive, store.positions[position.ID].State)
	assert.InDelta(t, 10, store.positions[position.ID].Quantity, 1e-9)
}

func TestReconcile_LocalOnlyClosesWithOneTrade(t *testing.T) {
	store := newMemoryStore()
	position := store.seed(contracts.Position{
		Symbol: "GHOST", Quantity: 7, EntryPrice: 50,
		CurrentStopLoss: 46, State: contracts.PositionActive,
	})
	broker := newFakeBroker()

	report, err := newTestReconciler(broker, store).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &ReconcileReport{Closed: 1}, report)
	assert.Equal(t, contracts.PositionClosed, store.positions[position.ID].State)

	trades := store.tradesByReason(contracts.ReasonSyncClose)
	require.Len(t, trades, 1)
	assert.Equal(t, contracts.TradeSell, trades[0].Action)
	assert.InDelta(t, 7, trades[0].Quantity, 1e-9)
	assert.Len(t, store.trades, 1)
}

func TestReconcile_BrokerOnlyAdoptedWithFreshStop(t *testing.T) {
	store := newMemoryStore()
	broker := newFakeBroker()
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "TSLA", Quantity: 3, AvgEntryPrice: 200, CurrentPrice: 210},
	}

	report, err := newTestReconciler(broker, store).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &ReconcileReport{Added: 1}, report)
	require.Len(t, store.positions, 1)

	adopted := store.positions[1]
	assert.Equal(t, "TSLA", adopted.Symbol)
	assert.Equal(t, contracts.PositionActive, adopted.State)
	assert.InDelta(t, 3, adopted.Quantity, 1e-9)
	assert.InDelta(t, 200, adopted.EntryPrice, 1e-9)
	// No volatility estimate, so the fallback stop applies
	assert.InDelta(t, 184, adopted.CurrentStopLoss, 1e-9)

	trades := store.tradesByReason(contracts.ReasonSyncAdd)
	require.Len(t, trades, 1)
	assert.Equal(t, contracts.TradeBuy, trades[0].Action)
}

func TestReconcile_QuantityDriftSyncsToBroker(t *testing.T) {
	store := newMemoryStore()
	position := store.seed(contracts.Position{
		Symbol: "NVDA", Quantity: 10, EntryPrice: 100,
		CurrentStopLoss: 92, State: contracts.PositionActive,
	})
	broker := newFakeBroker()
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "NVDA", Quantity: 4, AvgEntryPrice: 100, CurrentPrice: 120},
	}

	report, err := newTestReconciler(broker, store).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &ReconcileReport{Updated: 1}, report)
	assert.InDelta(t, 4, store.positions[position.ID].Quantity, 1e-9)
	assert.Equal(t, contracts.PositionActive, store.positions[position.ID].State)

	trades := store.tradesByReason(contracts.ReasonSyncUpdate)
	require.Len(t, trades, 1)
	assert.Equal(t, contracts.TradeSell, trades[0].Action)
	assert.InDelta(t, 6, trades[0].Quantity, 1e-9)
	assert.InDelta(t, 120, trades[0].Price, 1e-9)
}

func TestReconcile_Idempotent(t *testing.T) {
	store := newMemoryStore()
	store.seed(contracts.Position{
		Symbol: "AAPL", Quantity: 10, EntryPrice: 100, State: contracts.PositionActive,
	})
	store.seed(contracts.Position{
		Symbol: "GHOST", Quantity: 5, EntryPrice: 40, State: contracts.PositionActive,
	})
	broker := newFakeBroker()
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "AAPL", Quantity: 12, AvgEntryPrice: 100, CurrentPrice: 100},
		{Symbol: "TSLA", Quantity: 2, AvgEntryPrice: 200, CurrentPrice: 200},
	}
	reconciler := newTestReconciler(broker, store)

	first, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Closed: 1, Added: 1, Updated: 1}, first)
	tradesAfterFirst := len(store.trades)

	// The second pass finds everything already in sync
	second, err := reconciler.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Matched: 2}, second)
	assert.Len(t, store.trades, tradesAfterFirst, "a no-drift pass must not write trades")
}

func TestReconcile_FractionalToleranceIsNotDrift(t *testing.T) {
	store := newMemoryStore()
	store.seed(contracts.Position{
		Symbol: "AAPL", Quantity: 1.50015, EntryPrice: 100, State: contracts.PositionActive,
	})
	broker := newFakeBroker()
	broker.positions = []contracts.BrokerPosition{
		{Symbol: "AAPL", Quantity: 1.5001500000001, AvgEntryPrice: 100},
	}

	report, err := newTestReconciler(broker, store).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Matched: 1}, report)
	assert.Empty(t, store.trades)
}
