package handlers

import (
	"net/http"

	"github.com/tradewind-io/tradewind/internal/execution"
	"github.com/tradewind-io/tradewind/internal/regime"
	"github.com/tradewind-io/tradewind/pkg/logger"
)

// MarketHandler handles recommendation and market-regime API endpoints
type MarketHandler struct {
	repository *execution.Repository
	detector   *regime.Detector
	logger     *logger.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(repository *execution.Repository, detector *regime.Detector, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		repository: repository,
		detector:   detector,
		logger:     log,
	}
}

// GetRecommendations returns the latest recommendation snapshot
// GET /api/recommendations
func (h *MarketHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.repository.GetLatestRecommendations(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to get recommendations")
		respondError(w, http.StatusInternalServerError, "failed to retrieve recommendations")
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "no recommendations yet")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetRegime returns the current market regime analysis
// GET /api/regime
func (h *MarketHandler) GetRegime(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.detector.Current(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to get regime")
		respondError(w, http.StatusInternalServerError, "failed to retrieve market regime")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// RefreshRegime forces a regime re-analysis, subject to the detector's
// refresh throttle.
// POST /api/regime/refresh
func (h *MarketHandler) RefreshRegime(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.detector.Refresh(r.Context(), true)
	if err != nil {
		h.logger.WithError(err).Error("regime refresh failed")
		respondError(w, http.StatusInternalServerError, "regime refresh failed")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}
