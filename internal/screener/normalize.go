package screener

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"github.com/RudolfTheOne/ThetaTracker/internal/external/ameritrade"
)

// topCandidatesPerTicker bounds how many candidates one ticker can
// contribute to the global ranking.
const topCandidatesPerTicker = 5

// Normalize flattens a raw chain into candidate records: every
// (expiration, strike) contract whose |delta| is within [0, maxDelta],
// with all derived metrics computed. A record that fails to decode or
// carries a non-positive strike is skipped, never fatal. The result is
// sorted by sortKey, descending, and truncated to the per-ticker top 5.
//
// Pure function: no I/O, no shared state, safe to call concurrently.
func Normalize(chain *ameritrade.ChainResponse, contractType string, maxDelta, buyingPower float64, sortKey string) []CandidateOption {
	var candidates []CandidateOption

	for _, strikes := range chain.ExpDateMap(contractType) {
		for _, records := range strikes {
			for _, raw := range records {
				var contract ameritrade.ChainContract
				if err := json.Unmarshal(raw, &contract); err != nil {
					continue // skip the record, keep the ticker
				}
				if contract.StrikePrice <= 0 || contract.DaysToExpiration < 0 {
					continue
				}

				delta := math.Abs(contract.Delta)
				if math.IsNaN(delta) || delta > maxDelta {
					continue
				}

				candidates = append(candidates, newCandidate(&contract, chain.UnderlyingPrice, delta, buyingPower))
			}
		}
	}

	SortCandidates(candidates, sortKey)
	if len(candidates) > topCandidatesPerTicker {
		candidates = candidates[:topCandidatesPerTicker]
	}
	return candidates
}

// newCandidate computes the derived metrics for one retained contract.
func newCandidate(contract *ameritrade.ChainContract, underlyingPrice, delta, buyingPower float64) CandidateOption {
	c := CandidateOption{
		Description:      contract.Description,
		Bid:              contract.Bid,
		Ask:              contract.Ask,
		BidSize:          contract.BidSize,
		AskSize:          contract.AskSize,
		Delta:            delta,
		Volatility:       contract.Volatility,
		StrikePrice:      contract.StrikePrice,
		UnderlyingPrice:  underlyingPrice,
		DaysToExpiration: contract.DaysToExpiration,
	}

	c.ContractsAffordable = int(math.Floor(buyingPower / (contract.StrikePrice * 100)))
	if c.ContractsAffordable < 1 {
		c.InsufficientCapital = true
		c.Message = "Not enough buying power"
	}

	premium := decimal.NewFromInt(int64(c.ContractsAffordable)).
		Mul(decimal.NewFromFloat(contract.Bid)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	c.PremiumUSD = premium.InexactFloat64()

	// A same-day expiry has no per-day spread to amortize over, so the
	// whole premium stands in for the daily figure.
	if contract.DaysToExpiration != 0 {
		c.PremiumPerDay = premium.
			Div(decimal.NewFromInt(int64(contract.DaysToExpiration))).
			Round(2).
			InexactFloat64()
	} else {
		c.PremiumPerDay = c.PremiumUSD
	}

	// Annualizing divides by DTE, which is undefined at zero; such a
	// candidate is ineligible for ARR-based ranking rather than an
	// infinity or a crash.
	if contract.DaysToExpiration > 0 {
		c.ARR = premium.
			Div(decimal.NewFromFloat(buyingPower)).
			Mul(decimal.NewFromInt(365)).
			Div(decimal.NewFromInt(int64(contract.DaysToExpiration))).
			Mul(decimal.NewFromInt(100)).
			Round(3).
			InexactFloat64()
		c.ARRValid = true
	}

	return c
}
