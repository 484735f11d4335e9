package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/dataset"
	"github.com/newthinker/pairlab/internal/logger"
	"github.com/newthinker/pairlab/internal/metrics"
)

var (
	fetchAssets     []string
	fetchTimeframes []string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download missing candle files",
	Long: `Download OHLCV candles for every configured asset and timeframe.
Files that already exist are skipped; a failed download is logged and the
remaining files are still fetched.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchAssets, "asset", nil, "assets to fetch (default: data.assets)")
	fetchCmd.Flags().StringSliceVar(&fetchTimeframes, "timeframe", nil, "timeframes to fetch: 1m, 5m, 1h, 1d (default: data.timeframes)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	assets := cfg.Data.Assets
	if len(fetchAssets) > 0 {
		assets = make([]string, len(fetchAssets))
		for i, a := range fetchAssets {
			assets[i] = strings.ToUpper(a)
		}
	}

	names := cfg.Data.Timeframes
	if len(fetchTimeframes) > 0 {
		names = fetchTimeframes
	}
	timeframes := make([]core.Timeframe, 0, len(names))
	for _, name := range names {
		tf, err := core.ParseTimeframe(name)
		if err != nil {
			return err
		}
		timeframes = append(timeframes, tf)
	}

	start, end, err := dateRange(cfg.Data)
	if err != nil {
		return fmt.Errorf("data range: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	defer writeMetrics(cfg.Metrics, reg, log)

	collector := newCollector(cfg, reg, log)
	fetcher := dataset.NewFetcher(store, collector, start, end, reg, logger.Named(log, "fetcher"))

	ctx, cancel := signalContext()
	defer cancel()

	log.Info("fetching candles",
		zap.Strings("assets", assets),
		zap.Strings("timeframes", names),
		zap.Strings("providers", collector.Providers()),
		zap.String("start", cfg.Data.Start),
		zap.String("end", cfg.Data.End))

	summary, err := fetcher.Fetch(ctx, assets, timeframes)
	log.Info("fetch finished",
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	if err != nil {
		return fmt.Errorf("%d of %d files failed: %w", summary.Failed, len(assets)*len(timeframes), err)
	}
	return nil
}
