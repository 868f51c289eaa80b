package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

const (
	pingInterval          = 30 * time.Second
	reconnectInitialDelay = 1 * time.Second
	reconnectMaxDelay     = 30 * time.Second
	maxReconnectAttempts  = 10
)

// Trade update events worth reacting to
const (
	EventFill        = "fill"
	EventPartialFill = "partial_fill"
	EventCanceled    = "canceled"
	EventRejected    = "rejected"
)

// TradeUpdate is one order lifecycle event from the trade stream
type TradeUpdate struct {
	Event      string    `json:"event"`
	OrderID    string    `json:"order_id"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	FilledQty  float64   `json:"filled_qty"`
	FillPrice  float64   `json:"fill_price"`
	ReceivedAt time.Time `json:"received_at"`
}

// StreamClient consumes Alpaca's trade-updates websocket so position
// state reflects fills without waiting for the next reconciliation.
type StreamClient struct {
	cfg    config.AlpacaConfig
	logger *logger.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	connected bool

	// Callbacks
	onTradeUpdate func(*TradeUpdate)
	onError       func(error)
	onDisconnect  func()

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewStreamClient creates a new trade-updates stream client
func NewStreamClient(cfg config.AlpacaConfig, log *logger.Logger) *StreamClient {
	return &StreamClient{
		cfg:    cfg,
		logger: log,
		stopCh: make(chan struct{}),
	}
}

// Callback setters
func (c *StreamClient) OnTradeUpdate(fn func(*TradeUpdate)) { c.onTradeUpdate = fn }
func (c *StreamClient) OnError(fn func(error))              { c.onError = fn }
func (c *StreamClient) OnDisconnect(fn func())              { c.onDisconnect = fn }

// Connect dials the stream, authenticates, and subscribes to trade updates
func (c *StreamClient) Connect(ctx context.Context) error {
	if err := c.connect(ctx); err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	c.logger.Info("trade update stream connected")
	return nil
}

func (c *StreamClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.cfg.StreamURL, nil)
	if err != nil {
		return err
	}

	auth := map[string]interface{}{
		"action": "auth",
		"key":    c.cfg.APIKey,
		"secret": c.cfg.APISecret,
	}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return fmt.Errorf("auth write: %w", err)
	}

	listen := map[string]interface{}{
		"action": "listen",
		"data":   map[string]interface{}{"streams": []string{"trade_updates"}},
	}
	if err := conn.WriteJSON(listen); err != nil {
		conn.Close()
		return fmt.Errorf("listen write: %w", err)
	}

	c.conn = conn
	c.connected = true
	return nil
}

// Disconnect closes the stream
func (c *StreamClient) Disconnect() error {
	close(c.stopCh)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.connected = false
	}
	c.connMu.Unlock()

	c.wg.Wait()

	if c.onDisconnect != nil {
		c.onDisconnect()
	}

	c.logger.Info("trade update stream disconnected")
	return nil
}

// IsConnected returns connection status
func (c *StreamClient) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.connected
}

func (c *StreamClient) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if c.onError != nil {
				c.onError(fmt.Errorf("read error: %w", err))
			}
			c.handleDisconnect()
			return
		}

		c.handleMessage(message)
	}
}

// streamEnvelope wraps every stream message
type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// tradeUpdatePayload mirrors one trade_updates event. Quantities and
// prices arrive as JSON strings.
type tradeUpdatePayload struct {
	Event string `json:"event"`
	Price string `json:"price"`
	Qty   string `json:"qty"`
	Order struct {
		ID        string `json:"id"`
		Symbol    string `json:"symbol"`
		Side      string `json:"side"`
		FilledQty string `json:"filled_qty"`
	} `json:"order"`
}

func (c *StreamClient) handleMessage(data []byte) {
	var envelope streamEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return
	}
	if envelope.Stream != "trade_updates" {
		return // authorization and listening confirmations
	}

	var payload tradeUpdatePayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logger.WithError(err).Error("trade update decode failed")
		return
	}

	update := &TradeUpdate{
		Event:      payload.Event,
		OrderID:    payload.Order.ID,
		Symbol:     payload.Order.Symbol,
		Side:       payload.Order.Side,
		FilledQty:  parseFloat(payload.Order.FilledQty),
		FillPrice:  parseFloat(payload.Price),
		ReceivedAt: time.Now(),
	}

	if c.onTradeUpdate != nil {
		c.onTradeUpdate(update)
	}
}

func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.connMu.Unlock()
					if c.onError != nil {
						c.onError(fmt.Errorf("ping error: %w", err))
					}
					c.handleDisconnect()
					return
				}
			}
			c.connMu.Unlock()
		}
	}
}

func (c *StreamClient) handleDisconnect() {
	c.connMu.Lock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	if c.onDisconnect != nil {
		c.onDisconnect()
	}
}

// Reconnect attempts to re-establish the stream with backoff
func (c *StreamClient) Reconnect(ctx context.Context) error {
	delay := reconnectInitialDelay

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		c.logger.WithField("attempt", attempt).Info("reconnecting trade update stream")

		if err := c.connect(ctx); err != nil {
			delay *= 2
			if delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}

		c.stopCh = make(chan struct{})
		c.wg.Add(2)
		go c.readLoop()
		go c.pingLoop()

		c.logger.Info("trade update stream reconnected")
		return nil
	}

	return fmt.Errorf("max reconnect attempts reached")
}
