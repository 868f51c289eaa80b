package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// positionsCmd represents the positions command
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show open positions and portfolio summary",
	Long: `Prints every open position with its live price, market value,
unrealized P&L, and current stop-loss, plus account totals.

Example:
  go run ./cmd/tradewind positions`,
	RunE: runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.manager.Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("portfolio summary: %w", err)
	}

	PrintDoubleSeparator()
	fmt.Println("  Portfolio")
	PrintSeparator()
	PrintKeyValue("Cash", fmt.Sprintf("$%.2f", summary.Cash), 16)
	PrintKeyValue("Portfolio Value", fmt.Sprintf("$%.2f", summary.PortfolioValue), 16)
	PrintKeyValue("Position Cost", fmt.Sprintf("$%.2f", summary.TotalCost), 16)
	PrintKeyValue("Position Value", fmt.Sprintf("$%.2f", summary.TotalValue), 16)
	PrintKeyValue("Unrealized P&L", fmt.Sprintf("$%+.2f", summary.UnrealizedPnL), 16)
	PrintDoubleSeparator()

	if len(summary.Positions) == 0 {
		fmt.Println("\nNo open positions")
		return nil
	}

	fmt.Println()
	widths := []int{8, 10, 10, 10, 12, 12, 10}
	PrintTableHeader([]string{"SYMBOL", "QTY", "ENTRY", "PRICE", "VALUE", "P&L", "STOP"}, widths)
	for _, view := range summary.Positions {
		p := view.Position
		PrintTableRow([]string{
			p.Symbol,
			fmt.Sprintf("%g", p.Quantity),
			fmt.Sprintf("%.2f", p.EntryPrice),
			fmt.Sprintf("%.2f", view.CurrentPrice),
			fmt.Sprintf("%.2f", view.MarketValue),
			fmt.Sprintf("%+.2f", view.UnrealizedPnL),
			fmt.Sprintf("%.2f", p.CurrentStopLoss),
		}, widths)
	}

	return nil
}
