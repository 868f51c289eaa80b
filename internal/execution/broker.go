package execution

import (
	"context"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
)

// Order statuses as reported by the broker
const (
	OrderStatusFilled   = "filled"
	OrderStatusAccepted = "accepted"
	OrderStatusNew      = "new"
	OrderStatusRejected = "rejected"
	OrderStatusCanceled = "canceled"
)

// Account is the broker account snapshot used for sizing and guards
type Account struct {
	Cash           float64 `json:"cash"`
	PortfolioValue float64 `json:"portfolio_value"`
	BuyingPower    float64 `json:"buying_power"`
	TradingBlocked bool    `json:"trading_blocked"`
}

// OrderResult is the broker's response to an order submission
type OrderResult struct {
	OrderID        string    `json:"order_id"`
	Symbol         string    `json:"symbol"`
	Status         string    `json:"status"`
	FilledQty      float64   `json:"filled_qty"`
	FilledAvgPrice float64   `json:"filled_avg_price"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Filled reports whether the order is fully executed
func (o *OrderResult) Filled() bool {
	return o.Status == OrderStatusFilled
}

// Broker is the order and account adapter. Implementations must return
// a ProviderError for transport failures and an OrderRejectedError when
// the broker declines an order.
type Broker interface {
	// GetAccount returns the current account snapshot
	GetAccount(ctx context.Context) (*Account, error)

	// PlaceBuy submits a market buy. clientOrderID deduplicates retries.
	PlaceBuy(ctx context.Context, symbol string, qty float64, clientOrderID string) (*OrderResult, error)

	// PlaceSell submits a market sell
	PlaceSell(ctx context.Context, symbol string, qty float64, clientOrderID string) (*OrderResult, error)

	// GetOrder returns the latest state of an order
	GetOrder(ctx context.Context, orderID string) (*OrderResult, error)

	// ListPositions returns the broker's authoritative holdings
	ListPositions(ctx context.Context) ([]contracts.BrokerPosition, error)

	// GetAsset returns instrument metadata, including fractionability
	GetAsset(ctx context.Context, symbol string) (*contracts.Asset, error)
}
