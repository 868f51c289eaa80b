package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tradewind-io/tradewind/internal/execution"
	"github.com/tradewind-io/tradewind/internal/scoring"
	"github.com/tradewind-io/tradewind/pkg/config"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

const defaultTradeLimit = 50

// TradingHandler handles position and trading-cycle API endpoints
type TradingHandler struct {
	manager    *execution.Manager
	repository *execution.Repository
	trading    config.TradingConfig
	logger     *logger.Logger
}

// NewTradingHandler creates a new trading handler
func NewTradingHandler(manager *execution.Manager, repository *execution.Repository, trading config.TradingConfig, log *logger.Logger) *TradingHandler {
	return &TradingHandler{
		manager:    manager,
		repository: repository,
		trading:    trading,
		logger:     log,
	}
}

// GetPositions returns all open positions
// GET /api/positions
func (h *TradingHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.repository.GetActivePositions(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to get positions")
		respondError(w, http.StatusInternalServerError, "failed to retrieve positions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"count":     len(positions),
	})
}

// GetStopHistory returns the stop-loss audit trail for a position
// GET /api/positions/{id}/stops
func (h *TradingHandler) GetStopHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid position id")
		return
	}

	updates, err := h.repository.GetStopLossHistory(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("failed to get stop history")
		respondError(w, http.StatusInternalServerError, "failed to retrieve stop history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"updates": updates})
}

// GetPortfolio returns the portfolio summary with live prices
// GET /api/portfolio
func (h *TradingHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.manager.Summary(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to build portfolio summary")
		respondError(w, http.StatusInternalServerError, "failed to retrieve portfolio")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetTrades returns recent trades
// GET /api/trades?limit=50
func (h *TradingHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	trades, err := h.repository.GetRecentTrades(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to get trades")
		respondError(w, http.StatusInternalServerError, "failed to retrieve trades")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

// CycleRequest overrides trading-cycle defaults per request
type CycleRequest struct {
	Universe    string `json:"universe"`
	MaxSymbols  int    `json:"max_symbols"`
	MaxBuys     int    `json:"max_buys"`
	AutoExecute *bool  `json:"auto_execute"`
}

// RunCycle triggers one trading cycle
// POST /api/cycle
func (h *TradingHandler) RunCycle(w http.ResponseWriter, r *http.Request) {
	var req CycleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	cfg := execution.CycleConfig{
		Scoring: scoring.RunConfig{
			UniverseType: h.trading.UniverseType,
			MaxSymbols:   h.trading.MaxSymbols,
			BatchSize:    h.trading.BatchSize,
			LookbackDays: h.trading.LookbackDays,
		},
		MaxBuyOrders: h.trading.TopBuyCount,
		AutoExecute:  h.trading.AutoExecute,
	}
	if req.Universe != "" {
		cfg.Scoring.UniverseType = req.Universe
	}
	if req.MaxSymbols > 0 {
		cfg.Scoring.MaxSymbols = req.MaxSymbols
	}
	if req.MaxBuys > 0 {
		cfg.MaxBuyOrders = req.MaxBuys
	}
	if req.AutoExecute != nil {
		cfg.AutoExecute = *req.AutoExecute
	}

	report, err := h.manager.RunCycle(r.Context(), cfg)
	if err != nil {
		h.logger.WithError(err).Error("trading cycle failed")
		respondError(w, http.StatusInternalServerError, "trading cycle failed")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
