package userconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
)

func TestLoad_WritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theta_tracker_user.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// The file now exists with the same content.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_ParsesValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	content := `max_delta: 0.25
dte_range_min: 7
dte_range_max: 60
buying_power: 25000
default_sorting_method: arr
tickers:
  - SPY
  - QQQ
  - AAPL
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.MaxDelta)
	assert.Equal(t, 7, cfg.DTERangeMin)
	assert.Equal(t, 60, cfg.DTERangeMax)
	assert.Equal(t, 25000.0, cfg.BuyingPower)
	assert.Equal(t, screener.SortARR, cfg.DefaultSortingMethod)
	assert.Equal(t, []string{"SPY", "QQQ", "AAPL"}, cfg.Tickers)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	content := `max_delta: 0.3
dte_range_min: 0
dte_range_max: 45
buying_power: 5000
default_sorting_method: premium_usd
tikcers:
  - SPY
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tikcers")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"delta above one", func(c *Config) { c.MaxDelta = 1.5 }, "max_delta"},
		{"delta negative", func(c *Config) { c.MaxDelta = -0.1 }, "max_delta"},
		{"dte min negative", func(c *Config) { c.DTERangeMin = -1 }, "dte_range_min"},
		{"dte min above year", func(c *Config) { c.DTERangeMin = 366 }, "dte_range_min"},
		{"dte max below min", func(c *Config) { c.DTERangeMin = 30; c.DTERangeMax = 10 }, "dte_range_max"},
		{"dte max above year", func(c *Config) { c.DTERangeMax = 400 }, "dte_range_max"},
		{"buying power too small", func(c *Config) { c.BuyingPower = 500 }, "buying_power"},
		{"bad sort key", func(c *Config) { c.DefaultSortingMethod = "alphabetical" }, "default_sorting_method"},
		{"no tickers", func(c *Config) { c.Tickers = nil }, "tickers"},
		{"blank ticker", func(c *Config) { c.Tickers = []string{"SPY", "  "} }, "tickers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestSnapshot(t *testing.T) {
	cfg := &Config{
		MaxDelta:             0.3,
		DTERangeMin:          7,
		DTERangeMax:          45,
		BuyingPower:          20000,
		DefaultSortingMethod: screener.SortPremiumUSD,
		Tickers:              []string{"SPY", "QQQ"},
	}
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	snap := cfg.Snapshot(now, "")
	assert.Equal(t, "PUT", snap.ContractType)
	assert.Equal(t, now.AddDate(0, 0, 7), snap.From)
	assert.Equal(t, now.AddDate(0, 0, 45), snap.To)
	assert.Equal(t, screener.SortPremiumUSD, snap.SortKey)
	assert.Equal(t, now, snap.Now)

	require.Len(t, snap.Tickers, 2)
	assert.Equal(t, screener.TickerEntry{Symbol: "SPY", Line: 0}, snap.Tickers[0])
	assert.Equal(t, screener.TickerEntry{Symbol: "QQQ", Line: 1}, snap.Tickers[1])

	// A transient sort selection overrides the configured default.
	override := cfg.Snapshot(now, screener.SortARR)
	assert.Equal(t, screener.SortARR, override.SortKey)
}
