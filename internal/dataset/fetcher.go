package dataset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/metrics"
)

// HistorySource downloads candles for a symbol, e.g. crypto.Collector.
type HistorySource interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}

// FetchSummary counts what a Fetch call did per file.
type FetchSummary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Fetcher fills a Store with every asset × timeframe file that is missing.
type Fetcher struct {
	store   *Store
	source  HistorySource
	start   time.Time
	end     time.Time
	metrics *metrics.Registry
	log     *zap.Logger
}

// NewFetcher downloads candles with open times in [start, end). reg may be nil.
func NewFetcher(store *Store, source HistorySource, start, end time.Time, reg *metrics.Registry, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		store:   store,
		source:  source,
		start:   start,
		end:     end,
		metrics: reg,
		log:     log,
	}
}

// Fetch downloads each missing file in turn. Existing files are skipped.
// A failed file is logged and does not stop the loop; all failures are
// returned joined once every file has been tried.
func (f *Fetcher) Fetch(ctx context.Context, assets []string, timeframes []core.Timeframe) (FetchSummary, error) {
	var summary FetchSummary
	var errs []error

	for _, asset := range assets {
		for _, tf := range timeframes {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			path := f.store.Path(asset, tf)
			log := f.log.With(zap.String("asset", asset), zap.String("timeframe", string(tf)), zap.String("path", path))

			exists, err := f.store.Exists(ctx, asset, tf)
			if err != nil {
				log.Error("checking file", zap.Error(err))
				summary.Failed++
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			if exists {
				log.Info("file already exists, skipping")
				summary.Skipped++
				if f.metrics != nil {
					f.metrics.RecordCacheHit()
				}
				continue
			}

			if err := f.fetchOne(ctx, asset, tf); err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				log.Error("download failed", zap.Error(err))
				summary.Failed++
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}

			log.Info("saved")
			summary.Downloaded++
		}
	}

	return summary, errors.Join(errs...)
}

func (f *Fetcher) fetchOne(ctx context.Context, asset string, tf core.Timeframe) error {
	candles, err := f.source.FetchHistory(ctx, f.store.Symbol(asset), f.start, f.end, string(tf))
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return core.Errorf(core.ErrNoData, "%s %s", f.store.Symbol(asset), tf)
	}
	return f.store.Save(ctx, asset, tf, candles)
}
