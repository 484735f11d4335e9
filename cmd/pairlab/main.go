package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "pairlab",
	Short: "pairlab - pairs trading backtester for crypto spreads",
	Long: `pairlab downloads OHLCV candles for a fixed set of crypto assets and
backtests a log-spread mean-reversion strategy on every asset pair over
backtest, in-sample and out-sample periods.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
