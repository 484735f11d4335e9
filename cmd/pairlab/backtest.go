package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/pairlab/internal/backtest"
	"github.com/newthinker/pairlab/internal/dataset"
	"github.com/newthinker/pairlab/internal/logger"
	"github.com/newthinker/pairlab/internal/metrics"
	"github.com/newthinker/pairlab/internal/report"
)

var (
	backtestPairs     []string
	backtestTimeframe string
	backtestWindows   []int
	backtestAlpha     float64
	backtestExport    bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest the spread strategy on asset pairs",
	Long: `Run the log-spread band strategy on each pair and window size over the
backtest, in-sample and out-sample periods and print the performance
metrics. Candle files must have been downloaded with fetch first.`,
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringSliceVar(&backtestPairs, "pair", nil, "pairs like BTC-ETH (default: every pair of data.assets)")
	backtestCmd.Flags().StringVar(&backtestTimeframe, "timeframe", "1d", "candle timeframe: 1m, 5m, 1h, 1d")
	backtestCmd.Flags().IntSliceVar(&backtestWindows, "window", nil, "window sizes (default: strategy.window_sizes)")
	backtestCmd.Flags().Float64Var(&backtestAlpha, "alpha", 0, "band width in standard deviations (default: strategy.alpha)")
	backtestCmd.Flags().BoolVar(&backtestExport, "export", false, "write return curves and summary.json under report.dir")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	pairs := backtest.AllPairs(cfg.Data.Assets)
	if len(backtestPairs) > 0 {
		pairs = nil
		for _, s := range backtestPairs {
			p, err := backtest.ParsePair(s)
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
		}
	}

	windows := cfg.Strategy.WindowSizes
	if len(backtestWindows) > 0 {
		windows = backtestWindows
	}
	alpha := cfg.Strategy.Alpha
	if cmd.Flags().Changed("alpha") {
		if backtestAlpha <= 0 {
			return fmt.Errorf("--alpha must be positive, got %v", backtestAlpha)
		}
		alpha = backtestAlpha
	}

	periodList, err := periods(cfg.Periods)
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	assets := uniqueAssets(pairs)
	splitter := dataset.NewSplitter(store, assets, periodList)

	reg := metrics.NewRegistry()
	defer writeMetrics(cfg.Metrics, reg, log)

	runner := backtest.NewRunner(splitter, backtest.Config{
		Alpha:   alpha,
		Eval:    evalOptions(cfg.Strategy),
		Workers: cfg.Workers,
	}, reg, logger.Named(log, "backtest"))

	ctx, cancel := signalContext()
	defer cancel()

	log.Info("running backtest",
		zap.Int("pairs", len(pairs)),
		zap.Ints("windows", windows),
		zap.String("timeframe", backtestTimeframe),
		zap.Float64("alpha", alpha))

	rep, err := runner.Run(ctx, backtest.RunRequest{
		Pairs:       pairs,
		Timeframe:   backtestTimeframe,
		WindowSizes: windows,
	})
	if err != nil {
		return err
	}

	if err := report.WriteTable(cmd.OutOrStdout(), rep); err != nil {
		return err
	}

	if backtestExport {
		storage, err := newStorage(cfg.Storage)
		if err != nil {
			return fmt.Errorf("creating storage: %w", err)
		}
		runID, err := report.NewExporter(storage, cfg.Report.Dir, logger.Named(log, "report")).Export(ctx, rep)
		if err != nil {
			return fmt.Errorf("exporting report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nreport exported: %s/%s\n", cfg.Report.Dir, runID)
	}

	return nil
}

func uniqueAssets(pairs []backtest.Pair) []string {
	seen := make(map[string]bool)
	var assets []string
	for _, p := range pairs {
		for _, a := range []string{p.A, p.B} {
			if !seen[a] {
				seen[a] = true
				assets = append(assets, a)
			}
		}
	}
	return assets
}
