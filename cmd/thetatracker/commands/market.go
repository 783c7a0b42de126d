package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// marketCmd prints the current option-market trading state.
var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Check whether the option market is open",
	RunE:  runMarket,
}

func init() {
	rootCmd.AddCommand(marketCmd)
}

func runMarket(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	open, err := a.provider.IsMarketOpen(cmd.Context(), time.Now())
	if err != nil {
		fmt.Println("Market state: unknown")
		log.WithError(err).Warn("Market hours check failed")
		return nil
	}

	if open {
		fmt.Println("Market state: open")
	} else {
		fmt.Println("Market state: closed")
	}
	return nil
}
