package main

import (
	"fmt"
	"os"

	"github.com/RudolfTheOne/ThetaTracker/cmd/thetatracker/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
