package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// regimeCmd represents the regime command
var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Show the current market regime",
	Long: `Classifies the current market regime from VIX level, index
breadth, and sector rotation. The classification is cached for 24
hours; use --refresh to force a re-analysis.

Example:
  go run ./cmd/tradewind regime
  go run ./cmd/tradewind regime --refresh`,
	RunE: runRegime,
}

var regimeForceRefresh bool

func init() {
	rootCmd.AddCommand(regimeCmd)

	regimeCmd.Flags().BoolVar(&regimeForceRefresh, "refresh", false, "force a re-analysis")
}

func runRegime(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	analysis, err := a.detector.Refresh(cmd.Context(), regimeForceRefresh)
	if err != nil {
		return fmt.Errorf("regime analysis: %w", err)
	}

	PrintDoubleSeparator()
	fmt.Println("  Market Regime")
	PrintSeparator()
	PrintKeyValue("Regime", string(analysis.Regime), 12)
	PrintKeyValue("Confidence", fmt.Sprintf("%.2f", analysis.Confidence), 12)
	PrintKeyValue("Weights", fmt.Sprintf("technical %.2f / fundamental %.2f",
		analysis.Weights.Technical, analysis.Weights.Fundamental), 12)
	PrintKeyValue("Analyzed", analysis.AnalyzedAt.Format("2006-01-02 15:04:05"), 12)
	PrintSeparator()
	PrintKeyValue("VIX", fmt.Sprintf("%.2f (%s, momentum %+.1f%%)",
		analysis.VIX.Level, analysis.VIX.Tier, analysis.VIX.Momentum*100), 12)
	PrintKeyValue("Breadth", fmt.Sprintf("%.0f%% above 20d SMA (%s)",
		analysis.Breadth.Ratio*100, analysis.Breadth.Tier), 12)
	PrintKeyValue("Sector", fmt.Sprintf("%s, dispersion %.2f",
		analysis.Sector.Tier, analysis.Sector.Dispersion), 12)
	if len(analysis.Sector.Leaders) > 0 {
		PrintKeyValue("Leaders", strings.Join(analysis.Sector.Leaders, ", "), 12)
	}
	if len(analysis.Sector.Laggards) > 0 {
		PrintKeyValue("Laggards", strings.Join(analysis.Sector.Laggards, ", "), 12)
	}
	PrintDoubleSeparator()

	return nil
}
