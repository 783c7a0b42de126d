package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
)

var scanSortKey string

// scanCmd runs one screening cycle and prints the ranking.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one screening cycle",
	Long: `Fetches option chains for every watch-list ticker, filters by delta,
ranks the candidates, and prints the result.

Example:
  thetatracker scan
  thetatracker scan --sort arr`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanSortKey, "sort", "", "sort key (arr, premium_usd, premium_per_day, delta, message)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	if scanSortKey != "" && !screener.IsValidSortKey(scanSortKey) {
		return fmt.Errorf("unknown sort key %q", scanSortKey)
	}

	ctx := cmd.Context()

	open, err := a.provider.IsMarketOpen(ctx, time.Now())
	switch {
	case err != nil:
		fmt.Println("Market: unknown")
	case open:
		fmt.Println("Market: open")
	default:
		fmt.Println("Market: closed")
	}

	snapshot := a.userCfg.Snapshot(time.Now(), scanSortKey)
	cycle := a.pipeline.RunCycle(ctx, snapshot)

	PrintSeparator()
	fmt.Printf("Sorted by %s, buying power $%.0f\n", cycle.SortKey, a.userCfg.BuyingPower)
	PrintRanking(cycle)
	PrintWarnings(cycle)

	return nil
}
