package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/report"
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run the enrichment batch once",
	Long: `Runs the enrichment pipeline for one date and writes the JSON and
CSV report artifacts.

The date defaults to the last trading day: on weekends the preceding
Friday, otherwise today. Every watchlist entry produces a complete
record; metrics whose live data was unavailable are simulated and
stamped accordingly.

Example:
  go run ./cmd/chipmon enrich
  go run ./cmd/chipmon enrich --date 2026-01-30
  go run ./cmd/chipmon enrich --output ./out`,
	RunE: runEnrich,
}

var (
	enrichDate   string
	enrichOutput string
)

func init() {
	rootCmd.AddCommand(enrichCmd)

	// Flags
	enrichCmd.Flags().StringVar(&enrichDate, "date", "", "target date (YYYY-MM-DD), default last trading day")
	enrichCmd.Flags().StringVar(&enrichOutput, "output", "", "output directory override")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	writer := a.writer
	if enrichOutput != "" {
		writer = report.NewWriter(enrichOutput, a.log)
	}

	target := market.LastTradingDay(time.Now())
	if enrichDate != "" {
		target, err = time.Parse(market.ISOLayout, enrichDate)
		if err != nil {
			return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
		}
	}

	fmt.Printf("=== chipmon enrichment - %s ===\n", target.Format(market.ISOLayout))

	records, err := a.orch.Run(context.Background(), target, a.list)
	if err != nil {
		return fmt.Errorf("enrichment run: %w", err)
	}

	paths, err := writer.WriteAll(target, records)
	if err != nil {
		return fmt.Errorf("report write: %w", err)
	}

	fetched, partial, simulated := 0, 0, 0
	for _, r := range records {
		switch r.Provenance {
		case market.ProvenanceFetched:
			fetched++
		case market.ProvenancePartial:
			partial++
		default:
			simulated++
		}
	}

	fmt.Printf("\n✅ %d records (%d fetched, %d partial, %d simulated)\n", len(records), fetched, partial, simulated)
	for _, p := range paths {
		fmt.Printf("   %s\n", p)
	}
	return nil
}
