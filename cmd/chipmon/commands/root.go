package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chipmon",
	Short: "chipmon - Taiwan market chip indicator monitor",
	Long: `chipmon aggregates daily chip (籌碼) indicators for a watchlist of
Taiwan securities: institutional flows, margin balances, broker branch
concentration, lending short interest and cost-basis metrics. A
market-level risk dashboard covers the index-wide picture.

Live tables come from the TWSE and TPEx open endpoints, the FinMind
datasets and the TAIFEX statistics pages; any chip metric whose live
data is unavailable is filled with a bounded, reproducible placeholder
and stamped as simulated.

Usage:
  go run ./cmd/chipmon [command]

Examples:
  go run ./cmd/chipmon enrich --date 2026-01-30
  go run ./cmd/chipmon risk --history
  go run ./cmd/chipmon serve --port 8080
  go run ./cmd/chipmon schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
