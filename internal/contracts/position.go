package contracts

import "time"

// PositionState models the position lifecycle as a closed enum.
// pending → filled → active → closed, with filled → active immediate
// when there is no broker-side fill delay.
type PositionState string

const (
	PositionPending PositionState = "pending" // order submitted, not yet filled
	PositionFilled  PositionState = "filled"  // fill confirmed, stop not yet managed
	PositionActive  PositionState = "active"  // under stop-loss management
	PositionClosed  PositionState = "closed"
)

// Open reports whether the state still represents a held position
func (s PositionState) Open() bool {
	switch s {
	case PositionPending, PositionFilled, PositionActive:
		return true
	case PositionClosed:
		return false
	}
	return false
}

// Position is a locally tracked holding. Exactly one open position per
// symbol is the invariant reconciliation preserves.
type Position struct {
	ID              int64         `json:"id"`
	Symbol          string        `json:"symbol"`
	Quantity        float64       `json:"quantity"`
	EntryPrice      float64       `json:"entry_price"`
	EntryDate       time.Time     `json:"entry_date"`
	CurrentStopLoss float64       `json:"current_stop_loss"` // 0 = no stop set
	State           PositionState `json:"state"`
	BrokerOrderID   string        `json:"broker_order_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TradeAction is the direction of a trade
type TradeAction string

const (
	TradeBuy  TradeAction = "BUY"
	TradeSell TradeAction = "SELL"
)

// TradeReason tags why a trade was recorded
type TradeReason string

const (
	ReasonNewPosition TradeReason = "NEW_POSITION"
	ReasonStopLoss    TradeReason = "STOP_LOSS"
	ReasonSignal      TradeReason = "SIGNAL"
	ReasonSyncAdd     TradeReason = "SYNC_ADD"
	ReasonSyncClose   TradeReason = "SYNC_CLOSE"
	ReasonSyncUpdate  TradeReason = "SYNC_UPDATE"
	ReasonManual      TradeReason = "MANUAL"
)

// Trade is an immutable ledger entry. Every position-quantity change
// produces exactly one trade.
type Trade struct {
	ID         int64       `json:"id"`
	PositionID int64       `json:"position_id"`
	Symbol     string      `json:"symbol"`
	Action     TradeAction `json:"action"`
	Quantity   float64     `json:"quantity"`
	Price      float64     `json:"price"`
	Reason     TradeReason `json:"reason"`
	ExecutedAt time.Time   `json:"executed_at"`
}

// StopReason tags why a stop-loss level changed
type StopReason string

const (
	StopInitial  StopReason = "INITIAL"
	StopTrailing StopReason = "TRAILING"
	StopManual   StopReason = "MANUAL"
)

// StopLossUpdate is an append-only audit record, one per stop change
type StopLossUpdate struct {
	ID            int64      `json:"id"`
	PositionID    int64      `json:"position_id"`
	OldStop       float64    `json:"old_stop"` // 0 = no prior stop
	NewStop       float64    `json:"new_stop"`
	Reason        StopReason `json:"reason"`
	PriceAtUpdate float64    `json:"price_at_update"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BrokerPosition is a holding as reported by the broker, the
// authoritative side of reconciliation.
type BrokerPosition struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	MarketValue   float64 `json:"market_value"`
	CurrentPrice  float64 `json:"current_price"`
}

// FailedOrder records a rejected or errored order submission.
// Failed orders never create positions or trades.
type FailedOrder struct {
	ID       int64       `json:"id"`
	Symbol   string      `json:"symbol"`
	Action   TradeAction `json:"action"`
	Quantity float64     `json:"quantity"`
	Reason   string      `json:"reason"`
	FailedAt time.Time   `json:"failed_at"`
}

// RecommendationsSnapshot persists one pass's recommendation lists as JSON
type RecommendationsSnapshot struct {
	ID           int64     `json:"id"`
	AnalysisDate time.Time `json:"analysis_date"`
	Buys         string    `json:"buys"`
	Sells        string    `json:"sells"`
	Holds        string    `json:"holds"`
}
