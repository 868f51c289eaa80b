package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradewind",
	Short: "Tradewind - signal-driven US equity trading assistant",
	Long: `Tradewind Unified CLI

Multi-factor signal scoring, market regime detection, and managed
position execution against an Alpaca brokerage account.

Usage:
  go run ./cmd/tradewind [command]

Examples:
  go run ./cmd/tradewind api
  go run ./cmd/tradewind scan
  go run ./cmd/tradewind cycle --execute
  go run ./cmd/tradewind scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
