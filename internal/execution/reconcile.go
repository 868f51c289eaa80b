package execution

import (
	"context"
	"math"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// quantities are compared at fractional-share resolution
const qtyEpsilon = 1e-6

// Reconciler aligns local position state with the broker's holdings.
// The broker is authoritative: local-only positions close, broker-only
// holdings are adopted, and quantity drift is corrected. Every fix
// leaves an audit trade; matched positions are untouched, so running
// twice in a row changes nothing the second time.
type Reconciler struct {
	broker Broker
	store  PositionStore
	stops  *StopCalculator
	logger *logger.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(broker Broker, store PositionStore, stops *StopCalculator, log *logger.Logger) *Reconciler {
	return &Reconciler{broker: broker, store: store, stops: stops, logger: log}
}

// ReconcileReport summarizes one reconciliation pass
type ReconcileReport struct {
	Matched int `json:"matched"`
	Closed  int `json:"closed"`  // local-only, closed with SYNC_CLOSE
	Added   int `json:"added"`   // broker-only, adopted with SYNC_ADD
	Updated int `json:"updated"` // quantity drift, fixed with SYNC_UPDATE
}

// Reconcile runs one three-way diff between local and broker positions
func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	local, err := r.store.GetActivePositions(ctx)
	if err != nil {
		return nil, &contracts.PersistenceError{Op: "get active positions", Err: err}
	}

	brokerPositions, err := r.broker.ListPositions(ctx)
	if err != nil {
		return nil, contracts.NewProviderError("broker", "list positions", err)
	}

	brokerBySymbol := make(map[string]contracts.BrokerPosition, len(brokerPositions))
	for _, bp := range brokerPositions {
		brokerBySymbol[bp.Symbol] = bp
	}

	report := &ReconcileReport{}

	for _, position := range local {
		brokerPos, held := brokerBySymbol[position.Symbol]
		if held {
			delete(brokerBySymbol, position.Symbol)
		}

		switch {
		case !held:
			if err := r.closeLocalOnly(ctx, position); err != nil {
				return report, err
			}
			report.Closed++

		case math.Abs(brokerPos.Quantity-position.Quantity) > qtyEpsilon:
			if err := r.updateQuantity(ctx, position, brokerPos); err != nil {
				return report, err
			}
			report.Updated++

		default:
			report.Matched++
		}
	}

	// Whatever remains in the map is held at the broker but unknown locally
	for _, brokerPos := range brokerBySymbol {
		if err := r.adopt(ctx, brokerPos); err != nil {
			return report, err
		}
		report.Added++
	}

	r.logger.WithFields(map[string]interface{}{
		"matched": report.Matched,
		"closed":  report.Closed,
		"added":   report.Added,
		"updated": report.Updated,
	}).Info("reconciliation complete")

	return report, nil
}

// closeLocalOnly closes a position the broker no longer holds
func (r *Reconciler) closeLocalOnly(ctx context.Context, position *contracts.Position) error {
	r.logger.WithField("symbol", position.Symbol).Warn("position missing at broker, closing locally")

	trade := &contracts.Trade{
		Symbol:     position.Symbol,
		Action:     contracts.TradeSell,
		Quantity:   position.Quantity,
		Price:      position.EntryPrice,
		Reason:     contracts.ReasonSyncClose,
		ExecutedAt: time.Now(),
	}
	if err := r.store.ClosePositionWithTrade(ctx, position.ID, trade); err != nil {
		return &contracts.PersistenceError{Op: "sync close", Err: err}
	}

	return nil
}

// adopt creates a local position for a broker-only holding with a fresh
// stop. No volatility estimate exists for an adopted position, so the
// fallback stop applies.
func (r *Reconciler) adopt(ctx context.Context, brokerPos contracts.BrokerPosition) error {
	r.logger.WithField("symbol", brokerPos.Symbol).Warn("untracked broker position, adopting")

	now := time.Now()
	position := &contracts.Position{
		Symbol:          brokerPos.Symbol,
		Quantity:        brokerPos.Quantity,
		EntryPrice:      brokerPos.AvgEntryPrice,
		EntryDate:       now,
		CurrentStopLoss: r.stops.Initial(brokerPos.AvgEntryPrice, 0),
		State:           contracts.PositionActive,
	}
	trade := &contracts.Trade{
		Symbol:     brokerPos.Symbol,
		Action:     contracts.TradeBuy,
		Quantity:   brokerPos.Quantity,
		Price:      brokerPos.AvgEntryPrice,
		Reason:     contracts.ReasonSyncAdd,
		ExecutedAt: now,
	}
	if err := r.store.CreatePositionWithTrade(ctx, position, trade); err != nil {
		return &contracts.PersistenceError{Op: "sync add", Err: err}
	}

	return nil
}

// updateQuantity corrects local quantity to the broker's. The delta is
// recorded as a trade; a broker quantity of zero closes the position.
func (r *Reconciler) updateQuantity(ctx context.Context, position *contracts.Position, brokerPos contracts.BrokerPosition) error {
	delta := brokerPos.Quantity - position.Quantity

	action := contracts.TradeBuy
	if delta < 0 {
		action = contracts.TradeSell
	}

	r.logger.WithFields(map[string]interface{}{
		"symbol":     position.Symbol,
		"local_qty":  position.Quantity,
		"broker_qty": brokerPos.Quantity,
	}).Warn("quantity drift, syncing to broker")

	price := brokerPos.CurrentPrice
	if price == 0 {
		price = brokerPos.AvgEntryPrice
	}

	trade := &contracts.Trade{
		Symbol:     position.Symbol,
		Action:     action,
		Quantity:   math.Abs(delta),
		Price:      price,
		Reason:     contracts.ReasonSyncUpdate,
		ExecutedAt: time.Now(),
	}
	if err := r.store.UpdateQuantityWithTrade(ctx, position.ID, brokerPos.Quantity, trade); err != nil {
		return &contracts.PersistenceError{Op: "sync update", Err: err}
	}

	return nil
}
