package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

func TestGetRanking_NoCycleYet(t *testing.T) {
	h := NewRankingHandler(screener.NewResultStore(), logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetRanking(rec, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no cycle completed yet", body["error"])
}

func TestGetRanking_LatestCycle(t *testing.T) {
	results := screener.NewResultStore()
	results.Set(&screener.CycleResult{
		SortKey:   screener.SortPremiumUSD,
		Survivors: 1,
		Ranking: []screener.CandidateOption{
			{Ticker: "SPY", StrikePrice: 400, PremiumUSD: 492},
		},
		Warnings: []screener.Warning{},
	})
	h := NewRankingHandler(results, logger.NewNop())

	rec := httptest.NewRecorder()
	h.GetRanking(rec, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var cycle screener.CycleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cycle))
	require.Len(t, cycle.Ranking, 1)
	assert.Equal(t, "SPY", cycle.Ranking[0].Ticker)
	assert.Equal(t, 1, cycle.Survivors)
}

type fakeMarket struct {
	open bool
	err  error
}

func (f fakeMarket) IsMarketOpen(ctx context.Context, now time.Time) (bool, error) {
	return f.open, f.err
}

func TestGetMarket(t *testing.T) {
	tests := []struct {
		name   string
		market fakeMarket
		state  string
	}{
		{"open", fakeMarket{open: true}, "open"},
		{"closed", fakeMarket{open: false}, "closed"},
		{"provider failure", fakeMarket{err: errors.New("boom")}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMarketHandler(tt.market, logger.NewNop())

			rec := httptest.NewRecorder()
			h.GetMarket(rec, httptest.NewRequest(http.MethodGet, "/api/market", nil))

			// Failures degrade to "unknown", never an error status.
			assert.Equal(t, http.StatusOK, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.state, body["state"])
		})
	}
}
