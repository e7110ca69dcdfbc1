package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/report"
	"github.com/yhlin/chipmon/internal/riskmon"
)

// riskCmd represents the risk command
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Run the market risk dashboard once",
	Long: `Fetches the market-level risk indicators for one date: whole-market
institutional totals, margin financing change, the options put/call
ratio, foreign futures positioning and a set of international
benchmarks. Writes the dashboard as a JSON report.

The date defaults to the last trading day. Indicators whose source was
unavailable are shown without a value; the dashboard never synthesizes
market-level figures.

Example:
  go run ./cmd/chipmon risk
  go run ./cmd/chipmon risk --date 2026-01-30
  go run ./cmd/chipmon risk --history`,
	RunE: runRisk,
}

var (
	riskDate    string
	riskOutput  string
	riskHistory bool
)

func init() {
	rootCmd.AddCommand(riskCmd)

	// Flags
	riskCmd.Flags().StringVar(&riskDate, "date", "", "target date (YYYY-MM-DD), default last trading day")
	riskCmd.Flags().StringVar(&riskOutput, "output", "", "output directory override")
	riskCmd.Flags().BoolVar(&riskHistory, "history", false, "include trailing institutional flow statistics")
}

func runRisk(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	writer := a.writer
	if riskOutput != "" {
		writer = report.NewWriter(riskOutput, a.log)
	}

	target := market.LastTradingDay(time.Now())
	if riskDate != "" {
		target, err = time.Parse(market.ISOLayout, riskDate)
		if err != nil {
			return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
		}
	}

	fmt.Printf("=== chipmon risk dashboard - %s ===\n\n", target.Format(market.ISOLayout))

	dashboard, err := a.riskMon.Run(context.Background(), target)
	if err != nil {
		return fmt.Errorf("risk run: %w", err)
	}

	var history *riskmon.History
	if riskHistory {
		history, err = a.riskMon.RunHistory(context.Background(), target)
		if err != nil {
			return fmt.Errorf("risk history: %w", err)
		}
	}

	printDashboard(dashboard)

	if history != nil {
		fmt.Printf("\n%d-day institutional flow (%d samples):\n", a.cfg.Risk.HistoryDays, history.Samples)
		fmt.Printf("  外資  avg %8.2f  min %8.2f  max %8.2f 億\n", history.Foreign.Avg, history.Foreign.Min, history.Foreign.Max)
		fmt.Printf("  投信  avg %8.2f  min %8.2f  max %8.2f 億\n", history.Trust.Avg, history.Trust.Min, history.Trust.Max)
		fmt.Printf("  合計  avg %8.2f  min %8.2f  max %8.2f 億\n", history.Total.Avg, history.Total.Min, history.Total.Max)
	}

	path, err := writer.WriteRisk(target, dashboard, history)
	if err != nil {
		return fmt.Errorf("report write: %w", err)
	}

	fmt.Printf("\n✅ %d indicators\n   %s\n", len(dashboard.Indicators), path)
	return nil
}

func printDashboard(dashboard *riskmon.Report) {
	marks := map[riskmon.Level]string{
		riskmon.LevelSafe:    "[V]",
		riskmon.LevelWatch:   "[!]",
		riskmon.LevelDanger:  "[X]",
		riskmon.LevelNeutral: "[-]",
		riskmon.LevelNoData:  "[?]",
	}

	for _, ind := range dashboard.Indicators {
		value := "N/A"
		if ind.Value != nil {
			value = fmt.Sprintf("%.2f%s", *ind.Value, ind.Unit)
		}
		change := ""
		if ind.ChangePct != nil {
			change = fmt.Sprintf(" (%+.2f%%)", *ind.ChangePct)
		}
		fmt.Printf("  %-4s %-14s %12s%s %s\n", ind.Category, ind.Name, value, change, marks[ind.Level])
	}
}
