package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// MarketChecker answers whether the option market is trading.
type MarketChecker interface {
	IsMarketOpen(ctx context.Context, now time.Time) (bool, error)
}

// MarketHandler serves the advisory market-hours state. A provider
// failure becomes "unknown", never an aborted request.
type MarketHandler struct {
	market MarketChecker
	logger *logger.Logger
}

// NewMarketHandler creates a market handler.
func NewMarketHandler(market MarketChecker, log *logger.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		logger: log.WithField("module", "api"),
	}
}

// GetMarket returns the current trading state.
// GET /api/market
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	open, err := h.market.IsMarketOpen(r.Context(), time.Now())
	if err != nil {
		h.logger.WithError(err).Warn("Market hours check failed")
		writeJSON(w, http.StatusOK, map[string]string{"state": "unknown"})
		return
	}

	state := "closed"
	if open {
		state = "open"
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}
