package userconfig

import (
	"time"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
)

// Config is the user's screening-strategy file: which tickers to watch
// and how to filter and rank their chains. It is loaded once per
// process and snapshotted per cycle; edits take effect the next cycle.
type Config struct {
	MaxDelta             float64  `yaml:"max_delta"`
	DTERangeMin          int      `yaml:"dte_range_min"`
	DTERangeMax          int      `yaml:"dte_range_max"`
	BuyingPower          float64  `yaml:"buying_power"`
	DefaultSortingMethod string   `yaml:"default_sorting_method"`
	Tickers              []string `yaml:"tickers"`
}

// Default returns the starter configuration written on first run.
func Default() *Config {
	return &Config{
		MaxDelta:             0.3,
		DTERangeMin:          0,
		DTERangeMax:          45,
		BuyingPower:          5000,
		DefaultSortingMethod: screener.SortPremiumUSD,
		Tickers:              []string{"SPY"},
	}
}

// Snapshot freezes the configuration into an immutable per-cycle view.
// The date window is anchored at now: [now+DTERangeMin, now+DTERangeMax]
// calendar days. sortKey overrides the configured default when
// non-empty (the UI's transient "sort by" selection).
func (c *Config) Snapshot(now time.Time, sortKey string) screener.CycleConfig {
	if sortKey == "" {
		sortKey = c.DefaultSortingMethod
	}

	tickers := make([]screener.TickerEntry, 0, len(c.Tickers))
	for i, symbol := range c.Tickers {
		tickers = append(tickers, screener.TickerEntry{Symbol: symbol, Line: i})
	}

	return screener.CycleConfig{
		Tickers:      tickers,
		ContractType: "PUT",
		From:         now.AddDate(0, 0, c.DTERangeMin),
		To:           now.AddDate(0, 0, c.DTERangeMax),
		MaxDelta:     c.MaxDelta,
		BuyingPower:  c.BuyingPower,
		SortKey:      sortKey,
		Now:          now,
	}
}
