package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradewind-io/tradewind/internal/contracts"
	"github.com/tradewind-io/tradewind/internal/scoring"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score the universe and print recommendations",
	Long: `Runs a full scoring pass without touching the broker.

The scan resolves the configured universe, scores every symbol against
the current market regime, persists the results, and prints the top
buy and sell recommendations.

Example:
  go run ./cmd/tradewind scan
  go run ./cmd/tradewind scan --universe starter --max-symbols 20`,
	RunE: runScan,
}

var (
	scanUniverse   string
	scanMaxSymbols int
	scanTop        int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanUniverse, "universe", "", "universe type (starter|all|filtered)")
	scanCmd.Flags().IntVar(&scanMaxSymbols, "max-symbols", 0, "limit the number of symbols scored")
	scanCmd.Flags().IntVar(&scanTop, "top", 10, "number of recommendations to display per side")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Scan ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	runCfg := scoring.RunConfig{
		UniverseType: a.cfg.Trading.UniverseType,
		MaxSymbols:   a.cfg.Trading.MaxSymbols,
		BatchSize:    a.cfg.Trading.BatchSize,
		LookbackDays: a.cfg.Trading.LookbackDays,
	}
	if scanUniverse != "" {
		runCfg.UniverseType = scanUniverse
	}
	if scanMaxSymbols > 0 {
		runCfg.MaxSymbols = scanMaxSymbols
	}

	set, err := a.runner.Run(cmd.Context(), runCfg)
	if err != nil {
		return fmt.Errorf("scoring run: %w", err)
	}

	fmt.Println()
	PrintKeyValue("Analyzed", fmt.Sprintf("%d symbols", set.TotalAnalyzed), 10)
	PrintKeyValue("Buys", fmt.Sprintf("%d", len(set.Buys)), 10)
	PrintKeyValue("Sells", fmt.Sprintf("%d", len(set.Sells)), 10)
	PrintKeyValue("Holds", fmt.Sprintf("%d", len(set.Holds)), 10)

	if len(set.Buys) > 0 {
		fmt.Println("\nTop buys:")
		printResultTable(set.TopBuys(scanTop))
	}
	if len(set.Sells) > 0 {
		fmt.Println("\nTop sells:")
		printResultTable(set.TopSells(scanTop))
	}

	return nil
}

func printResultTable(results []*contracts.AnalysisResult) {
	widths := []int{8, 10, 8, 8, 10, 6}
	PrintTableHeader([]string{"SYMBOL", "PRICE", "SIGNAL", "ADJ", "CONFIDENCE", "REC"}, widths)
	for _, r := range results {
		PrintTableRow([]string{
			r.Symbol,
			fmt.Sprintf("%.2f", r.CurrentPrice),
			fmt.Sprintf("%+.3f", r.TotalSignal),
			fmt.Sprintf("%+.3f", r.AdjustedSignal),
			fmt.Sprintf("%.2f", r.Confidence),
			string(r.Recommendation),
		}, widths)
	}
}
