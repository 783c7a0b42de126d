package commands

import (
	"fmt"
	"strings"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
)

// PrintSeparator prints a horizontal rule.
func PrintSeparator() {
	fmt.Println(strings.Repeat("-", 72))
}

// PrintRanking renders a cycle's ranking for the terminal.
func PrintRanking(cycle *screener.CycleResult) {
	if len(cycle.Ranking) == 0 {
		fmt.Println("No candidates matched the current filters.")
		return
	}

	for _, c := range cycle.Ranking {
		if c.InsufficientCapital {
			fmt.Printf("\n%s\n", c.Message)
			continue
		}

		arr := "n/a"
		if c.ARRValid {
			arr = fmt.Sprintf("%.3f", c.ARR)
		}
		earnings := ""
		if c.HasEarnings {
			earnings = "  [earnings ahead]"
		}

		fmt.Printf("\nTicker: %s, Bid: $%.2f, Ask: $%.2f, Bid Size: %d, Ask Size: %d, Volatility: %.2f, Strike: $%.2f\n",
			c.Ticker, c.Bid, c.Ask, c.BidSize, c.AskSize, c.Volatility, c.StrikePrice)
		fmt.Printf("   Description: %s, Delta: %.4f, Underlying: $%.2f, DTE: %d\n",
			c.Description, c.Delta, c.UnderlyingPrice, c.DaysToExpiration)
		fmt.Printf("   Premium Total: $%.2f, Premium/Day: $%.2f, ARR: %s, Contracts: %d%s\n",
			c.PremiumUSD, c.PremiumPerDay, arr, c.ContractsAffordable, earnings)
	}
}

// PrintWarnings renders per-ticker warnings, if any.
func PrintWarnings(cycle *screener.CycleResult) {
	if len(cycle.Warnings) == 0 {
		return
	}
	fmt.Println()
	PrintSeparator()
	fmt.Println("Warnings:")
	for _, w := range cycle.Warnings {
		fmt.Printf("  %s (%s): %s\n", w.Ticker, w.Stage, w.Error)
	}
}
