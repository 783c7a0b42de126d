package screener

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// Warning is a structured per-ticker problem report. Warnings never
// abort a cycle; they ride along with the (possibly partial) ranking.
type Warning struct {
	Ticker string `json:"ticker"`
	Line   int    `json:"line"`
	Stage  string `json:"stage"` // "chain" or "earnings"
	Error  string `json:"error"`
}

// CycleResult is the output of one full fetch-filter-rank pass. It has
// no identity beyond the cycle that produced it.
type CycleResult struct {
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
	SortKey   string            `json:"sort_key"`
	Ranking   []CandidateOption `json:"ranking"`
	Warnings  []Warning         `json:"warnings"`

	// Survivors is the count of tickers that produced a successful
	// (possibly empty) result this cycle.
	Survivors int `json:"survivors"`
}

// Pipeline is the fan-out scheduler and aggregator: it runs one
// per-ticker fetch task per watch-list entry under a bounded worker
// pool and merges the survivors into a single ranking.
type Pipeline struct {
	chains      ChainFetcher
	earnings    EarningsChecker
	logger      *logger.Logger
	workers     int
	retryBudget int

	// runMu serializes cycles: a trigger arriving mid-cycle queues
	// behind the in-flight one and never interleaves with its merge.
	runMu sync.Mutex
}

// NewPipeline creates a Pipeline. workers bounds concurrent fetch
// tasks; retryBudget is the number of extra attempts after a
// rate-limited call (0 disables retries).
func NewPipeline(chains ChainFetcher, earnings EarningsChecker, log *logger.Logger, workers, retryBudget int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	if retryBudget < 0 {
		retryBudget = 0
	}
	return &Pipeline{
		chains:      chains,
		earnings:    earnings,
		logger:      log.WithField("module", "screener"),
		workers:     workers,
		retryBudget: retryBudget,
	}
}

// RunCycle executes one full pass over the ticker snapshot and always
// returns a result: failed tickers become warnings, never an error to
// the caller. Identical upstream data and config yield an identical
// ordered ranking. Cancelling ctx stops unstarted tasks; tasks already
// in flight finish or abort on their own context checks, and no
// task-local state leaks into the next cycle.
func (p *Pipeline) RunCycle(ctx context.Context, cfg CycleConfig) *CycleResult {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	started := time.Now()
	p.logger.WithFields(map[string]interface{}{
		"tickers":  len(cfg.Tickers),
		"workers":  p.workers,
		"sort_key": cfg.SortKey,
	}).Info("Starting screening cycle")

	jobs := make(chan TickerEntry, len(cfg.Tickers))
	results := make(chan TickerResult, len(cfg.Tickers))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, jobs, results, cfg)
		}()
	}

	for _, entry := range cfg.Tickers {
		jobs <- entry
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single consumer: results arrive in completion order and are
	// re-anchored to watch-list order before the merge.
	collected := make([]TickerResult, 0, len(cfg.Tickers))
	for result := range results {
		collected = append(collected, result)
	}
	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Entry.Line < collected[j].Entry.Line
	})

	cycle := &CycleResult{
		StartedAt: started,
		SortKey:   cfg.SortKey,
		Ranking:   make([]CandidateOption, 0),
		Warnings:  make([]Warning, 0),
	}

	for _, result := range collected {
		if result.Err != nil {
			cycle.Warnings = append(cycle.Warnings, Warning{
				Ticker: result.Entry.Symbol,
				Line:   result.Entry.Line,
				Stage:  "chain",
				Error:  result.Err.Error(),
			})
			continue
		}
		cycle.Survivors++
		if result.EarningsErr != nil {
			cycle.Warnings = append(cycle.Warnings, Warning{
				Ticker: result.Entry.Symbol,
				Line:   result.Entry.Line,
				Stage:  "earnings",
				Error:  result.EarningsErr.Error(),
			})
		}
		cycle.Ranking = append(cycle.Ranking, result.Candidates...)
	}

	// Global merge: one stable re-sort across all surviving tickers.
	// Per-ticker truncation already bounds the size, so no cut here.
	SortCandidates(cycle.Ranking, cfg.SortKey)

	cycle.Duration = time.Since(started)
	p.logger.WithFields(map[string]interface{}{
		"candidates": len(cycle.Ranking),
		"survivors":  cycle.Survivors,
		"warnings":   len(cycle.Warnings),
		"duration":   cycle.Duration.String(),
	}).Info("Screening cycle completed")

	return cycle
}

// worker drains the job channel, skipping fetches once the cycle is
// cancelled so no new requests are issued.
func (p *Pipeline) worker(ctx context.Context, jobs <-chan TickerEntry, results chan<- TickerResult, cfg CycleConfig) {
	for entry := range jobs {
		select {
		case <-ctx.Done():
			results <- TickerResult{Entry: entry, Err: ctx.Err()}
			continue
		default:
		}

		result := p.fetchTicker(ctx, entry, cfg)
		if result.Err != nil {
			p.logger.WithError(result.Err).WithField("ticker", entry.Symbol).Warn("Ticker dropped for this cycle")
		}
		results <- result
	}
}
