package screener

import (
	"context"
	"errors"
	"time"

	"github.com/RudolfTheOne/ThetaTracker/internal/external/ameritrade"
	"github.com/RudolfTheOne/ThetaTracker/pkg/httputil"
)

// ChainFetcher fetches one ticker's option chain.
type ChainFetcher interface {
	FetchChain(ctx context.Context, symbol, contractType string, from, to time.Time) (*ameritrade.ChainResponse, error)
}

// EarningsChecker answers whether a symbol has earnings inside a window.
type EarningsChecker interface {
	HasUpcomingEarnings(ctx context.Context, symbol string, from, to time.Time) (bool, error)
}

// TickerEntry is one watch-list entry with its original position.
type TickerEntry struct {
	Symbol string `json:"symbol"`
	Line   int    `json:"line"`
}

// CycleConfig is the immutable per-cycle snapshot of the screening
// settings. A concurrent user edit takes effect only on the next cycle.
type CycleConfig struct {
	Tickers      []TickerEntry
	ContractType string
	From         time.Time
	To           time.Time
	MaxDelta     float64
	BuyingPower  float64
	SortKey      string

	// Now anchors the earnings-window computation; the zero value
	// means wall-clock time. Tests freeze it.
	Now time.Time
}

func (c *CycleConfig) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// TickerResult is the outcome of one per-ticker fetch task, consumed
// exactly once by the aggregating collector.
type TickerResult struct {
	Entry      TickerEntry
	Candidates []CandidateOption

	// Err marks a ticker-level failure on the chain call: the ticker
	// is dropped from this cycle's output (the watch-list keeps it).
	Err error

	// EarningsErr records a degraded enrichment call. Non-fatal: the
	// candidates stay, with HasEarnings false.
	EarningsErr error
}

// fetchTicker runs the full per-ticker state machine: chain request
// (with bounded rate-limit retry), normalization, and the advisory
// earnings enrichment. Chain failure is ticker-fatal; earnings failure
// degrades to HasEarnings=false and the task still succeeds.
func (p *Pipeline) fetchTicker(ctx context.Context, entry TickerEntry, cfg CycleConfig) TickerResult {
	result := TickerResult{Entry: entry}

	chain, err := p.chainWithRetry(ctx, entry.Symbol, cfg)
	if err != nil {
		result.Err = err
		return result
	}

	candidates := Normalize(chain, cfg.ContractType, cfg.MaxDelta, cfg.BuyingPower, cfg.SortKey)
	if len(candidates) == 0 {
		// Nothing matched the filter; a trivially successful ticker.
		return result
	}

	hasEarnings, earningsErr := p.earningsWithRetry(ctx, entry.Symbol, candidates, cfg)
	if earningsErr != nil {
		result.EarningsErr = earningsErr
		hasEarnings = false
	}

	for i := range candidates {
		candidates[i].Ticker = entry.Symbol
		candidates[i].Line = entry.Line
		candidates[i].HasEarnings = hasEarnings
	}
	result.Candidates = candidates
	return result
}

// chainWithRetry calls the chain endpoint, retrying only rate-limited
// outcomes and only within the configured budget. Transport and
// upstream errors are not retried; the caller owns that policy choice.
func (p *Pipeline) chainWithRetry(ctx context.Context, symbol string, cfg CycleConfig) (*ameritrade.ChainResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retryBudget; attempt++ {
		chain, err := p.chains.FetchChain(ctx, symbol, cfg.ContractType, cfg.From, cfg.To)
		if err == nil {
			return chain, nil
		}
		lastErr = err
		if !errors.Is(err, httputil.ErrRateLimited) {
			return nil, err
		}
	}
	return nil, lastErr
}

// earningsWithRetry bounds the earnings-calendar window by the furthest
// candidate expiry and applies the same rate-limit retry contract as
// the chain call.
func (p *Pipeline) earningsWithRetry(ctx context.Context, symbol string, candidates []CandidateOption, cfg CycleConfig) (bool, error) {
	maxDTE := 0
	for i := range candidates {
		if candidates[i].DaysToExpiration > maxDTE {
			maxDTE = candidates[i].DaysToExpiration
		}
	}
	from := cfg.now()
	to := from.AddDate(0, 0, maxDTE)

	var lastErr error
	for attempt := 0; attempt <= p.retryBudget; attempt++ {
		hasEarnings, err := p.earnings.HasUpcomingEarnings(ctx, symbol, from, to)
		if err == nil {
			return hasEarnings, nil
		}
		lastErr = err
		if !errors.Is(err, httputil.ErrRateLimited) {
			return false, err
		}
	}
	return false, lastErr
}
