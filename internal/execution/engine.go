package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// priceLookbackDays is the window fetched when only the latest close is needed
const priceLookbackDays = 5

// Engine submits orders for scored recommendations and manages the
// stop-losses of open positions. Order failures are recorded and
// skipped; persistence failures abort the cycle.
type Engine struct {
	broker Broker
	store  PositionStore
	market contracts.MarketDataProvider
	sizer  *Sizer
	stops  *StopCalculator
	logger *logger.Logger
}

// NewEngine creates a new execution engine
func NewEngine(broker Broker, store PositionStore, market contracts.MarketDataProvider, sizer *Sizer, stops *StopCalculator, log *logger.Logger) *Engine {
	return &Engine{
		broker: broker,
		store:  store,
		market: market,
		sizer:  sizer,
		stops:  stops,
		logger: log,
	}
}

// ExecuteBuys opens positions for up to maxOrders buy recommendations.
// Rejected and undersized orders become failed-order records and never
// touch position state. Returns the number of positions opened.
func (e *Engine) ExecuteBuys(ctx context.Context, buys []*contracts.AnalysisResult, maxOrders int) (int, error) {
	if len(buys) == 0 || maxOrders <= 0 {
		return 0, nil
	}

	account, err := e.broker.GetAccount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account.TradingBlocked {
		e.logger.Warn("trading blocked on account, skipping buys")
		return 0, nil
	}

	executed := 0
	for _, result := range buys {
		if executed >= maxOrders {
			break
		}

		opened, err := e.executeBuy(ctx, account, result)
		if err != nil {
			return executed, err
		}
		if opened {
			executed++
		}
	}

	return executed, nil
}

func (e *Engine) executeBuy(ctx context.Context, account *Account, result *contracts.AnalysisResult) (bool, error) {
	log := e.logger.WithField("symbol", result.Symbol)

	fractionable := false
	if asset, err := e.broker.GetAsset(ctx, result.Symbol); err == nil {
		fractionable = asset.Fractionable
	} else {
		log.WithError(err).Warn("asset lookup failed, assuming whole shares")
	}

	quality := Quality(result.AdjustedSignal, result.Confidence)
	qty, err := e.sizer.Shares(quality, account, result.CurrentPrice, fractionable)
	if err != nil {
		if errors.Is(err, ErrBelowMinimum) {
			log.Debug("order below minimum size, recording failed order")
			return false, e.recordFailedOrder(ctx, result.Symbol, contracts.TradeBuy, 0, err.Error())
		}
		return false, err
	}

	order, err := e.broker.PlaceBuy(ctx, result.Symbol, qty, uuid.NewString())
	if err != nil {
		var rejected *contracts.OrderRejectedError
		if errors.As(err, &rejected) {
			log.WithField("reason", rejected.Reason).Warn("buy order rejected")
			return false, e.recordFailedOrder(ctx, result.Symbol, contracts.TradeBuy, qty, rejected.Reason)
		}
		log.WithError(err).Error("buy order failed")
		return false, e.recordFailedOrder(ctx, result.Symbol, contracts.TradeBuy, qty, err.Error())
	}

	entryPrice := order.FilledAvgPrice
	filledQty := order.FilledQty
	state := contracts.PositionActive
	if !order.Filled() {
		// The fill confirmation arrives later; reconciliation trues up
		// quantity and entry if they differ.
		entryPrice = result.CurrentPrice
		filledQty = qty
		state = contracts.PositionPending
	}

	now := time.Now()
	position := &contracts.Position{
		Symbol:          result.Symbol,
		Quantity:        filledQty,
		EntryPrice:      entryPrice,
		EntryDate:       now,
		CurrentStopLoss: e.stops.Initial(entryPrice, result.Risk.Volatility),
		State:           state,
		BrokerOrderID:   order.OrderID,
	}
	trade := &contracts.Trade{
		Symbol:     result.Symbol,
		Action:     contracts.TradeBuy,
		Quantity:   filledQty,
		Price:      entryPrice,
		Reason:     contracts.ReasonNewPosition,
		ExecutedAt: now,
	}

	if err := e.store.CreatePositionWithTrade(ctx, position, trade); err != nil {
		return false, &contracts.PersistenceError{Op: "create position", Err: err}
	}

	log.WithFields(map[string]interface{}{
		"quantity":  filledQty,
		"entry":     entryPrice,
		"stop_loss": position.CurrentStopLoss,
		"state":     string(state),
	}).Info("position opened")

	return true, nil
}

// ExecuteSells closes open positions whose symbols carry a SELL
// recommendation. Returns the number of positions closed.
func (e *Engine) ExecuteSells(ctx context.Context, sells []*contracts.AnalysisResult) (int, error) {
	if len(sells) == 0 {
		return 0, nil
	}

	positions, err := e.store.GetActivePositions(ctx)
	if err != nil {
		return 0, &contracts.PersistenceError{Op: "get active positions", Err: err}
	}

	bySymbol := make(map[string]*contracts.Position, len(positions))
	for _, p := range positions {
		bySymbol[p.Symbol] = p
	}

	closed := 0
	for _, result := range sells {
		position, ok := bySymbol[result.Symbol]
		if !ok {
			continue
		}

		ok, err := e.closePosition(ctx, position, result.CurrentPrice, contracts.ReasonSignal)
		if err != nil {
			var persistence *contracts.PersistenceError
			if errors.As(err, &persistence) {
				return closed, err
			}
			e.logger.WithField("symbol", result.Symbol).WithError(err).Error("sell failed")
			continue
		}
		if ok {
			closed++
		}
	}

	return closed, nil
}

// ManagePositions runs one stop-loss pass over all open positions:
// positions at or below their stop are sold in full, the rest have
// their trailing stop ratcheted up when the price has advanced.
func (e *Engine) ManagePositions(ctx context.Context) error {
	positions, err := e.store.GetActivePositions(ctx)
	if err != nil {
		return &contracts.PersistenceError{Op: "get active positions", Err: err}
	}

	for _, position := range positions {
		if !position.State.Open() || position.State == contracts.PositionPending {
			continue
		}

		log := e.logger.WithField("symbol", position.Symbol)

		series, err := e.market.GetPriceSeries(ctx, position.Symbol, priceLookbackDays)
		if err != nil || series.Len() == 0 {
			log.WithError(err).Warn("no current price, skipping stop check")
			continue
		}
		price := series.LastClose()

		if position.CurrentStopLoss > 0 && price <= position.CurrentStopLoss {
			log.WithFields(map[string]interface{}{
				"price":     price,
				"stop_loss": position.CurrentStopLoss,
			}).Info("stop loss triggered")

			if _, err := e.closePosition(ctx, position, price, contracts.ReasonStopLoss); err != nil {
				var persistence *contracts.PersistenceError
				if errors.As(err, &persistence) {
					return err
				}
				log.WithError(err).Error("stop loss sell failed")
			}
			continue
		}

		candidate := e.stops.TrailingCandidate(price)
		if candidate > position.CurrentStopLoss {
			update := &contracts.StopLossUpdate{
				PositionID:    position.ID,
				OldStop:       position.CurrentStopLoss,
				NewStop:       candidate,
				Reason:        contracts.StopTrailing,
				PriceAtUpdate: price,
				UpdatedAt:     time.Now(),
			}
			if err := e.store.UpdateStopLoss(ctx, update); err != nil {
				return &contracts.PersistenceError{Op: "update stop loss", Err: err}
			}
			log.WithFields(map[string]interface{}{
				"old_stop": update.OldStop,
				"new_stop": update.NewStop,
			}).Info("trailing stop raised")
		}
	}

	return nil
}

// closePosition sells the full quantity and closes the local position.
// Order failures are recorded without mutating position state; the bool
// reports whether the position actually closed.
func (e *Engine) closePosition(ctx context.Context, position *contracts.Position, fallbackPrice float64, reason contracts.TradeReason) (bool, error) {
	order, err := e.broker.PlaceSell(ctx, position.Symbol, position.Quantity, uuid.NewString())
	if err != nil {
		var rejected *contracts.OrderRejectedError
		if errors.As(err, &rejected) {
			return false, e.recordFailedOrder(ctx, position.Symbol, contracts.TradeSell, position.Quantity, rejected.Reason)
		}
		return false, fmt.Errorf("failed to place sell for %s: %w", position.Symbol, err)
	}

	price := order.FilledAvgPrice
	if price == 0 {
		price = fallbackPrice
	}

	trade := &contracts.Trade{
		Symbol:     position.Symbol,
		Action:     contracts.TradeSell,
		Quantity:   position.Quantity,
		Price:      price,
		Reason:     reason,
		ExecutedAt: time.Now(),
	}
	if err := e.store.ClosePositionWithTrade(ctx, position.ID, trade); err != nil {
		return false, &contracts.PersistenceError{Op: "close position", Err: err}
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":   position.Symbol,
		"quantity": position.Quantity,
		"price":    price,
		"reason":   string(reason),
	}).Info("position closed")

	return true, nil
}

func (e *Engine) recordFailedOrder(ctx context.Context, symbol string, action contracts.TradeAction, qty float64, reason string) error {
	failed := &contracts.FailedOrder{
		Symbol:   symbol,
		Action:   action,
		Quantity: qty,
		Reason:   reason,
		FailedAt: time.Now(),
	}
	if err := e.store.SaveFailedOrder(ctx, failed); err != nil {
		return &contracts.PersistenceError{Op: "save failed order", Err: err}
	}
	return nil
}
