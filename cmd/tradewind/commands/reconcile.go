package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile local positions against the broker",
	Long: `Trues up the local position book against the broker account:
positions missing at the broker are closed, positions held only at the
broker are adopted with a fresh stop-loss, and quantity drift is synced
with an adjusting trade.

Example:
  go run ./cmd/tradewind reconcile`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Tradewind Reconcile ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.reconciler.Reconcile(cmd.Context())
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	fmt.Println()
	PrintKeyValue("Matched", fmt.Sprintf("%d", report.Matched), 8)
	PrintKeyValue("Closed", fmt.Sprintf("%d", report.Closed), 8)
	PrintKeyValue("Added", fmt.Sprintf("%d", report.Added), 8)
	PrintKeyValue("Updated", fmt.Sprintf("%d", report.Updated), 8)

	fmt.Println()
	PrintSuccess("reconciliation completed")
	return nil
}
