package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// RankingHandler serves the latest cycle's ranking to display clients.
// Every candidate field is included so the renderer needs no further
// computation.
type RankingHandler struct {
	results *screener.ResultStore
	logger  *logger.Logger
}

// NewRankingHandler creates a ranking handler.
func NewRankingHandler(results *screener.ResultStore, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		results: results,
		logger:  log.WithField("module", "api"),
	}
}

// GetRanking returns the most recent cycle result.
// GET /api/ranking
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	cycle := h.results.Latest()
	if cycle == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no cycle completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, cycle)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
