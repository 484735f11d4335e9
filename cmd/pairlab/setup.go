package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/pairlab/internal/backtest"
	"github.com/newthinker/pairlab/internal/collector/crypto"
	"github.com/newthinker/pairlab/internal/collector/crypto/binance"
	"github.com/newthinker/pairlab/internal/collector/crypto/okx"
	"github.com/newthinker/pairlab/internal/config"
	"github.com/newthinker/pairlab/internal/dataset"
	"github.com/newthinker/pairlab/internal/logger"
	"github.com/newthinker/pairlab/internal/metrics"
	"github.com/newthinker/pairlab/internal/storage/archive"
)

// loadConfig reads --config when given, defaults otherwise, and validates.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newStorage(cfg config.StorageConfig) (archive.Storage, error) {
	return archive.New(archive.Config{
		Type: cfg.Type,
		Path: cfg.Path,
		S3: archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		},
	})
}

func newStore(cfg *config.Config) (*dataset.Store, error) {
	storage, err := newStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}
	return dataset.NewStore(storage, cfg.Data.Quote, cfg.Data.Start, cfg.Data.End), nil
}

// newCollector builds the configured providers in fallback order, all
// sharing one request pacer.
func newCollector(cfg *config.Config, reg *metrics.Registry, log *zap.Logger) *crypto.Collector {
	limiter := crypto.NewLimiter(cfg.Collectors.RequestInterval)

	var providers []crypto.Provider
	for _, name := range cfg.Collectors.Providers {
		switch name {
		case "binance":
			p := binance.New(limiter)
			p.SetPageLimit(cfg.Collectors.PageLimit)
			p.SetTimeout(cfg.Collectors.Timeout)
			providers = append(providers, p)
		case "okx":
			p := okx.New(limiter)
			p.SetPageLimit(cfg.Collectors.PageLimit)
			p.SetTimeout(cfg.Collectors.Timeout)
			providers = append(providers, p)
		}
	}

	return crypto.New(providers, cfg.Data.Quote, reg, logger.Named(log, "collector"))
}

func periods(cfg config.PeriodsConfig) ([]dataset.Period, error) {
	ranges := []struct {
		name dataset.PeriodName
		r    config.DateRange
	}{
		{dataset.PeriodBacktest, cfg.Backtest},
		{dataset.PeriodInSample, cfg.InSample},
		{dataset.PeriodOutSample, cfg.OutSample},
	}

	out := make([]dataset.Period, 0, len(ranges))
	for _, pr := range ranges {
		p, err := dataset.NewPeriod(pr.name, pr.r.Start, pr.r.End)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func evalOptions(cfg config.StrategyConfig) backtest.EvalOptions {
	return backtest.EvalOptions{
		RiskFreeRate: cfg.RiskFreeRate,
		TradingDays:  cfg.TradingDays,
		DaysPerYear:  cfg.DaysPerYear,
	}
}

func dateRange(cfg config.DataConfig) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, cfg.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(time.DateOnly, cfg.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func writeMetrics(cfg config.MetricsConfig, reg *metrics.Registry, log *zap.Logger) {
	if !cfg.Enabled || cfg.Textfile == "" {
		return
	}
	if err := reg.WriteTextfile(cfg.Textfile); err != nil {
		log.Error("writing metrics", zap.Error(err))
		return
	}
	log.Info("metrics written", zap.String("path", cfg.Textfile))
}
