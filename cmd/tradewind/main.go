package main

import (
	"os"

	"github.com/tradewind-io/tradewind/cmd/tradewind/commands"
)

// main is the entry point for the Tradewind CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
