package userconfig

import (
	"fmt"
	"strings"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
)

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every constraint the screening pipeline relies on.
func Validate(cfg *Config) error {
	if cfg.MaxDelta < 0 || cfg.MaxDelta > 1 {
		return ValidationError{"max_delta", "must be between 0.0 and 1.0"}
	}
	if cfg.DTERangeMin < 0 || cfg.DTERangeMin > 365 {
		return ValidationError{"dte_range_min", "must be between 0 and 365"}
	}
	if cfg.DTERangeMax < cfg.DTERangeMin || cfg.DTERangeMax > 365 {
		return ValidationError{"dte_range_max", fmt.Sprintf("must be between %d and 365", cfg.DTERangeMin)}
	}
	if cfg.BuyingPower < 1000 {
		return ValidationError{"buying_power", "must be at least $1000"}
	}
	if !screener.IsValidSortKey(cfg.DefaultSortingMethod) {
		return ValidationError{
			"default_sorting_method",
			"must be one of: " + strings.Join(screener.ValidSortKeys, ", "),
		}
	}
	if len(cfg.Tickers) == 0 {
		return ValidationError{"tickers", "at least one ticker is required"}
	}
	for _, symbol := range cfg.Tickers {
		if strings.TrimSpace(symbol) == "" {
			return ValidationError{"tickers", "empty ticker symbol"}
		}
	}
	return nil
}
