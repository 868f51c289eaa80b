package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/execution"
)

// apiAccount mirrors the Alpaca account record. Numeric fields arrive
// as JSON strings.
type apiAccount struct {
	Cash           string `json:"cash"`
	PortfolioValue string `json:"portfolio_value"`
	BuyingPower    string `json:"buying_power"`
	TradingBlocked bool   `json:"trading_blocked"`
}

// apiOrder mirrors an Alpaca order record
type apiOrder struct {
	ID             string    `json:"id"`
	ClientOrderID  string    `json:"client_order_id"`
	Symbol         string    `json:"symbol"`
	Status         string    `json:"status"`
	FilledQty      string    `json:"filled_qty"`
	FilledAvgPrice *string   `json:"filled_avg_price"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

func (o apiOrder) toResult() *execution.OrderResult {
	result := &execution.OrderResult{
		OrderID:     o.ID,
		Symbol:      o.Symbol,
		Status:      o.Status,
		FilledQty:   parseFloat(o.FilledQty),
		SubmittedAt: o.SubmittedAt,
	}
	if o.FilledAvgPrice != nil {
		result.FilledAvgPrice = parseFloat(*o.FilledAvgPrice)
	}
	return result
}

// apiPosition mirrors an Alpaca position record
type apiPosition struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
	MarketValue   string `json:"market_value"`
	CurrentPrice  string `json:"current_price"`
}

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// GetAccount returns the current account snapshot
func (c *Client) GetAccount(ctx context.Context) (*execution.Account, error) {
	var raw apiAccount
	if err := c.httpClient.GetJSON(ctx, c.tradingURL("/v2/account"), &raw); err != nil {
		return nil, contracts.NewProviderError("alpaca", "get account", err)
	}

	return &execution.Account{
		Cash:           parseFloat(raw.Cash),
		PortfolioValue: parseFloat(raw.PortfolioValue),
		BuyingPower:    parseFloat(raw.BuyingPower),
		TradingBlocked: raw.TradingBlocked,
	}, nil
}

// PlaceBuy submits a market buy order
func (c *Client) PlaceBuy(ctx context.Context, symbol string, qty float64, clientOrderID string) (*execution.OrderResult, error) {
	return c.placeOrder(ctx, symbol, qty, "buy", clientOrderID)
}

// PlaceSell submits a market sell order
func (c *Client) PlaceSell(ctx context.Context, symbol string, qty float64, clientOrderID string) (*execution.OrderResult, error) {
	return c.placeOrder(ctx, symbol, qty, "sell", clientOrderID)
}

// placeOrder submits a day market order. Fractional quantities require
// time_in_force=day on Alpaca.
func (c *Client) placeOrder(ctx context.Context, symbol string, qty float64, side, clientOrderID string) (*execution.OrderResult, error) {
	req := orderRequest{
		Symbol:        symbol,
		Qty:           strconv.FormatFloat(qty, 'f', -1, 64),
		Side:          side,
		Type:          "market",
		TimeInForce:   "day",
		ClientOrderID: clientOrderID,
	}

	resp, err := c.httpClient.PostJSON(ctx, c.tradingURL("/v2/orders"), req)
	if err != nil {
		return nil, contracts.NewProviderError("alpaca", "place order", err)
	}
	defer resp.Body.Close()

	// 403 is insufficient buying power, 422 an unprocessable order.
	// Both are rejections, not transport failures.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, &contracts.OrderRejectedError{Symbol: symbol, Reason: readAPIMessage(resp.Body)}
	}
	if resp.StatusCode >= 400 {
		return nil, contracts.NewProviderError("alpaca", "place order",
			fmt.Errorf("status %d: %s", resp.StatusCode, readAPIMessage(resp.Body)))
	}

	var order apiOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, contracts.NewProviderError("alpaca", "place order", fmt.Errorf("decode response: %w", err))
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"side":     side,
		"qty":      qty,
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("order submitted")

	return order.toResult(), nil
}

// GetOrder returns the latest state of an order
func (c *Client) GetOrder(ctx context.Context, orderID string) (*execution.OrderResult, error) {
	var order apiOrder
	endpoint := c.tradingURL(fmt.Sprintf("/v2/orders/%s", url.PathEscape(orderID)))
	if err := c.httpClient.GetJSON(ctx, endpoint, &order); err != nil {
		return nil, contracts.NewProviderError("alpaca", "get order", err)
	}

	return order.toResult(), nil
}

// ListPositions returns the broker's authoritative holdings
func (c *Client) ListPositions(ctx context.Context) ([]contracts.BrokerPosition, error) {
	var raw []apiPosition
	if err := c.httpClient.GetJSON(ctx, c.tradingURL("/v2/positions"), &raw); err != nil {
		return nil, contracts.NewProviderError("alpaca", "list positions", err)
	}

	positions := make([]contracts.BrokerPosition, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, contracts.BrokerPosition{
			Symbol:        p.Symbol,
			Quantity:      parseFloat(p.Qty),
			AvgEntryPrice: parseFloat(p.AvgEntryPrice),
			MarketValue:   parseFloat(p.MarketValue),
			CurrentPrice:  parseFloat(p.CurrentPrice),
		})
	}

	return positions, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func readAPIMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil || body.Message == "" {
		return "unknown error"
	}
	return body.Message
}
