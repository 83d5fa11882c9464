package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "perpbridge",
	Short: "Bridge trade signals into perpetual-futures orders",
	Long: `Perpbridge listens for webhook trade signals and turns them into
exchange-compliant order submissions on a perpetual-futures venue.

It provides:
  - An HTTP endpoint consuming Entry/Exit/Status/Account signals
  - Tick/step quantization of prices and sizes per market
  - Margin-fraction and allow-list entry gates
  - A position guard against duplicate entries and bad exits
  - Optional stop-loss/take-profit brackets after a confirmed fill
  - An order journal and Telegram outcome notifications`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
