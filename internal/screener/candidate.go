package screener

import "sort"

// Sort keys accepted by the screener. They match the field names the
// renderer shows, so a key selected in the UI maps straight onto the
// candidate fields below.
const (
	SortARR           = "arr"
	SortPremiumUSD    = "premium_usd"
	SortPremiumPerDay = "premium_per_day"
	SortDelta         = "delta"
	SortMessage       = "message"
)

// ValidSortKeys lists every accepted sort key.
var ValidSortKeys = []string{SortARR, SortPremiumUSD, SortPremiumPerDay, SortDelta, SortMessage}

// IsValidSortKey reports whether key is one of ValidSortKeys.
func IsValidSortKey(key string) bool {
	for _, k := range ValidSortKeys {
		if k == key {
			return true
		}
	}
	return false
}

// CandidateOption is the canonical unit of the pipeline: one option
// contract that passed the delta filter, with every derived metric the
// renderer needs. Raw market fields keep the provider's camelCase wire
// names; derived fields use the snake_case names the sort keys use.
// A candidate is immutable once enrichment has stamped HasEarnings.
type CandidateOption struct {
	Ticker string `json:"ticker"`
	// Line preserves the watch-list's original entry order for display.
	Line int `json:"line"`

	Description      string  `json:"description"`
	Bid              float64 `json:"bid"`
	Ask              float64 `json:"ask"`
	BidSize          int     `json:"bidSize"`
	AskSize          int     `json:"askSize"`
	Delta            float64 `json:"delta"` // absolute value
	Volatility       float64 `json:"volatility"`
	StrikePrice      float64 `json:"strikePrice"`
	UnderlyingPrice  float64 `json:"underlyingPrice"`
	DaysToExpiration int     `json:"daysToExpiration"`

	ContractsAffordable int     `json:"no_of_contracts_to_write"`
	PremiumUSD          float64 `json:"premium_usd"`
	PremiumPerDay       float64 `json:"premium_per_day"`

	// ARR is only meaningful when ARRValid is set; a zero-DTE contract
	// has no annualized rate and sorts lowest under the arr key.
	ARR      float64 `json:"arr"`
	ARRValid bool    `json:"arr_valid"`

	InsufficientCapital bool   `json:"insufficient_capital"`
	Message             string `json:"message,omitempty"`

	HasEarnings bool `json:"has_earnings"`
}

// sortValue coerces a candidate to a numeric value for the given key.
// A candidate with no meaningful value for the key sorts as -1, never
// panics.
func sortValue(c *CandidateOption, key string) float64 {
	switch key {
	case SortARR:
		if !c.ARRValid {
			return -1
		}
		return c.ARR
	case SortPremiumUSD:
		return c.PremiumUSD
	case SortPremiumPerDay:
		return c.PremiumPerDay
	case SortDelta:
		return c.Delta
	default:
		return -1
	}
}

// SortCandidates orders candidates by key, descending, in place. The
// message key compares lexicographically; every other key compares
// numerically via sortValue. The sort is stable so ties keep their
// watch-list-then-ticker-rank order, which makes cycle output
// deterministic for frozen inputs.
func SortCandidates(candidates []CandidateOption, key string) {
	if key == SortMessage {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Message > candidates[j].Message
		})
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return sortValue(&candidates[i], key) > sortValue(&candidates[j], key)
	})
}
