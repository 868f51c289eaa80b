package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cycleCmd represents the cycle command
var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one full trading cycle",
	Long: `Runs one trading cycle: reconcile local positions against the
broker, enforce stop-losses and trailing stops, score the universe,
then execute the resulting sells and buys.

Orders are only placed with --execute (or TRADING_AUTO_EXECUTE=true);
otherwise the cycle stops after producing recommendations.

Example:
  go run ./cmd/tradewind cycle
  go run ./cmd/tradewind cycle --execute --max-buys 3`,
	RunE: runCycle,
}

var (
	cycleUniverse   string
	cycleMaxSymbols int
	cycleMaxBuys    int
	cycleExecute    bool
)

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().StringVar(&cycleUniverse, "universe", "", "universe type (starter|all|filtered)")
	cycleCmd.Flags().IntVar(&cycleMaxSymbols, "max-symbols", 0, "limit the number of symbols scored")
	cycleCmd.Flags().IntVar(&cycleMaxBuys, "max-buys", 0, "limit the number of buy orders")
	cycleCmd.Flags().BoolVar(&cycleExecute, "execute", false, "place orders (defaults to recommend-only)")
}

func runCycle(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Trading Cycle ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	autoExecute := cycleExecute || a.cfg.Trading.AutoExecute
	if !autoExecute {
		PrintWarning("recommend-only mode, no orders will be placed")
	}

	cfg := a.cycleConfig(cycleUniverse, cycleMaxSymbols, cycleMaxBuys, autoExecute)

	report, err := a.manager.RunCycle(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("trading cycle: %w", err)
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  Cycle Report")
	PrintSeparator()
	PrintKeyValue("Duration", report.FinishedAt.Sub(report.StartedAt).String(), 14)
	PrintKeyValue("Reconciled", fmt.Sprintf("%d matched, %d closed, %d added, %d updated",
		report.Reconciliation.Matched, report.Reconciliation.Closed,
		report.Reconciliation.Added, report.Reconciliation.Updated), 14)
	PrintKeyValue("Analyzed", fmt.Sprintf("%d symbols", report.Recommendations.TotalAnalyzed), 14)
	PrintKeyValue("Buys", fmt.Sprintf("%d recommended, %d executed",
		len(report.Recommendations.Buys), report.BuysExecuted), 14)
	PrintKeyValue("Sells", fmt.Sprintf("%d recommended, %d executed",
		len(report.Recommendations.Sells), report.SellsExecuted), 14)
	PrintSeparator()

	if len(report.Recommendations.Buys) > 0 {
		fmt.Println("\nTop buys:")
		printResultTable(report.Recommendations.TopBuys(a.cfg.Trading.TopBuyCount))
	}
	if len(report.Recommendations.Sells) > 0 {
		fmt.Println("\nTop sells:")
		printResultTable(report.Recommendations.TopSells(a.cfg.Trading.TopSellCount))
	}

	fmt.Println()
	PrintSuccess("cycle completed")
	return nil
}
