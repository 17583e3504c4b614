package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swingbot",
	Short: "An unattended swing-trading decision engine for perpetual swaps",
	Long: `Swingbot watches a perpetual-swap market across several timeframes and
manages a position without supervision.

It provides:
  - Multi-timeframe signal detection (daily trend, consolidation, entry)
  - Layered stop-loss rules, take-profit and pyramiding
  - Volatility-adjusted position sizing
  - A paper exchange for dry runs and a sqlite action journal

Complete documentation is available at https://github.com/rustyeddy/swingbot`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
