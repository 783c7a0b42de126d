package screener

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudolfTheOne/ThetaTracker/internal/external/ameritrade"
)

// buildChain assembles a raw chain response the way the provider
// shapes it: expiration key -> strike key -> contract records.
func buildChain(underlying float64, contracts ...ameritrade.ChainContract) *ameritrade.ChainResponse {
	putMap := make(map[string]map[string][]json.RawMessage)
	for _, c := range contracts {
		expKey := fmt.Sprintf("2026-09-25:%d", c.DaysToExpiration)
		strikeKey := fmt.Sprintf("%.1f", c.StrikePrice)
		if putMap[expKey] == nil {
			putMap[expKey] = make(map[string][]json.RawMessage)
		}
		raw, _ := json.Marshal(c)
		putMap[expKey][strikeKey] = append(putMap[expKey][strikeKey], raw)
	}
	return &ameritrade.ChainResponse{
		Symbol:          "TEST",
		UnderlyingPrice: underlying,
		PutExpDateMap:   putMap,
	}
}

func putContract(strike, bid, delta float64, dte int) ameritrade.ChainContract {
	return ameritrade.ChainContract{
		PutCall:          "PUT",
		Description:      fmt.Sprintf("TEST Put $%.0f", strike),
		Bid:              bid,
		Ask:              bid + 0.05,
		BidSize:          10,
		AskSize:          12,
		Delta:            delta,
		Volatility:       25.5,
		StrikePrice:      strike,
		DaysToExpiration: dte,
	}
}

func TestNormalize_DeltaFilter(t *testing.T) {
	chain := buildChain(420,
		putContract(400, 1.5, -0.2, 10),  // |delta| 0.2, kept
		putContract(410, 2.0, -0.35, 10), // |delta| 0.35, dropped
		putContract(405, 1.8, 0.3, 10),   // exactly at the bound, kept
		putContract(395, 1.2, -0.3, 10),  // negative at the bound, kept
	)

	candidates := Normalize(chain, "PUT", 0.3, 100000, SortPremiumUSD)
	require.Len(t, candidates, 3)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Delta, 0.0)
		assert.LessOrEqual(t, c.Delta, 0.3)
	}
}

func TestNormalize_InsufficientCapital(t *testing.T) {
	// strike 400 needs $40,000 per contract; $5,000 affords none.
	chain := buildChain(420, putContract(400, 1.5, -0.2, 10))

	candidates := Normalize(chain, "PUT", 0.3, 5000, SortPremiumUSD)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, 0, c.ContractsAffordable)
	assert.True(t, c.InsufficientCapital)
	assert.Equal(t, "Not enough buying power", c.Message)
	assert.Equal(t, 0.0, c.PremiumUSD)
	assert.Equal(t, 0.2, c.Delta)
}

func TestNormalize_ZeroDTE(t *testing.T) {
	chain := buildChain(28, putContract(25, 0.5, 0.25, 0))

	candidates := Normalize(chain, "PUT", 0.3, 5000, SortPremiumUSD)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, 2, c.ContractsAffordable) // floor(5000 / 2500)
	assert.Equal(t, 100.0, c.PremiumUSD)
	// Per-day premium falls back to the whole premium at zero DTE.
	assert.Equal(t, 100.0, c.PremiumPerDay)
	// Annualizing is undefined at zero DTE; the candidate is flagged
	// ineligible rather than carrying an infinity.
	assert.False(t, c.ARRValid)
	assert.Equal(t, 0.0, c.ARR)
}

func TestNormalize_DerivedMetrics(t *testing.T) {
	chain := buildChain(55, putContract(50, 1.23, -0.18, 30))

	candidates := Normalize(chain, "PUT", 0.3, 20000, SortPremiumUSD)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, 4, c.ContractsAffordable) // floor(20000 / 5000)
	assert.Equal(t, 492.0, c.PremiumUSD)      // 4 * 1.23 * 100
	assert.InDelta(t, 16.4, c.PremiumPerDay, 0.0001) // 492 / 30
	require.True(t, c.ARRValid)
	assert.InDelta(t, 29.93, c.ARR, 0.0001) // 492/20000 * 365/30 * 100
	assert.Equal(t, 55.0, c.UnderlyingPrice)
}

func TestNormalize_SkipsMalformedRecords(t *testing.T) {
	chain := buildChain(420, putContract(400, 1.5, -0.2, 10))
	// Inject a record that does not decode and one with a bad strike.
	for expKey, strikes := range chain.PutExpDateMap {
		strikes["garbage"] = []json.RawMessage{json.RawMessage(`"not an object"`)}
		bad, _ := json.Marshal(putContract(0, 1.0, -0.1, 10))
		strikes["0.0"] = []json.RawMessage{bad}
		_ = expKey
	}

	candidates := Normalize(chain, "PUT", 0.3, 100000, SortPremiumUSD)
	require.Len(t, candidates, 1)
	assert.Equal(t, 400.0, candidates[0].StrikePrice)
}

func TestNormalize_TopFiveTruncation(t *testing.T) {
	var contracts []ameritrade.ChainContract
	for i := 0; i < 8; i++ {
		contracts = append(contracts, putContract(100+float64(i), 1.0+float64(i)*0.1, -0.2, 20+i))
	}
	chain := buildChain(120, contracts...)

	candidates := Normalize(chain, "PUT", 0.3, 100000, SortPremiumUSD)
	require.Len(t, candidates, 5)
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].PremiumUSD, candidates[i].PremiumUSD)
	}
}

func TestSortCandidates_ARRInvalidSortsLast(t *testing.T) {
	candidates := []CandidateOption{
		{Ticker: "A", ARR: 0, ARRValid: false},
		{Ticker: "B", ARR: 12.5, ARRValid: true},
		{Ticker: "C", ARR: 3.1, ARRValid: true},
	}
	SortCandidates(candidates, SortARR)

	assert.Equal(t, "B", candidates[0].Ticker)
	assert.Equal(t, "C", candidates[1].Ticker)
	assert.Equal(t, "A", candidates[2].Ticker)
}

func TestSortCandidates_MessageKeyIsLexicographic(t *testing.T) {
	candidates := []CandidateOption{
		{Ticker: "A", Message: ""},
		{Ticker: "B", Message: "Not enough buying power"},
		{Ticker: "C", Message: ""},
	}
	SortCandidates(candidates, SortMessage)

	assert.Equal(t, "B", candidates[0].Ticker)
	// Stable sort: tied empty messages keep their relative order.
	assert.Equal(t, "A", candidates[1].Ticker)
	assert.Equal(t, "C", candidates[2].Ticker)
}

func TestSortCandidates_UnknownKeyNeverPanics(t *testing.T) {
	candidates := []CandidateOption{
		{Ticker: "A", PremiumUSD: 10},
		{Ticker: "B", PremiumUSD: 20},
	}
	assert.NotPanics(t, func() {
		SortCandidates(candidates, "bogus")
	})
	// All values coerce to -1, so the stable order is untouched.
	assert.Equal(t, "A", candidates[0].Ticker)
}
