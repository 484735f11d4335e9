// Package crypto downloads historical candles from cryptocurrency
// exchanges, falling back across providers.
package crypto

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/metrics"
)

// Provider is a single exchange's kline endpoint.
type Provider interface {
	// Name returns the provider identifier, e.g. "binance".
	Name() string

	// FetchHistory returns candles for a normalized symbol ("BTCUSDT")
	// with open times in [start, end), paging as many requests as needed.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}

// NewLimiter allows one request per interval. A non-positive interval
// disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Collector fetches history from the first provider that returns data.
type Collector struct {
	providers    []Provider
	defaultQuote string
	metrics      *metrics.Registry
	log          *zap.Logger
}

// New creates a Collector over providers, tried in order. reg and log may be nil.
func New(providers []Provider, defaultQuote string, reg *metrics.Registry, log *zap.Logger) *Collector {
	if defaultQuote == "" {
		defaultQuote = "USDT"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		providers:    providers,
		defaultQuote: defaultQuote,
		metrics:      reg,
		log:          log,
	}
}

func (c *Collector) Name() string {
	return "crypto"
}

// Providers returns the provider names in fallback order.
func (c *Collector) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// FetchHistory validates the request and returns chronologically ordered,
// de-duplicated candles from the first provider that has any.
func (c *Collector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	if err := ValidateCryptoSymbol(symbol); err != nil {
		return nil, err
	}
	if _, err := core.ParseTimeframe(interval); err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, core.Errorf(core.ErrCollectorFailed, "empty range %s..%s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if len(c.providers) == 0 {
		return nil, core.Errorf(core.ErrCollectorFailed, "no providers configured")
	}
	normalized := NormalizeSymbol(symbol, c.defaultQuote)

	var errs []error
	for _, p := range c.providers {
		data, err := p.FetchHistory(ctx, normalized, start, end, interval)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("symbol", normalized),
				zap.Error(err))
			if c.metrics != nil {
				c.metrics.RecordFetchFailure(p.Name())
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		data = clean(data, normalized, interval)
		if len(data) == 0 {
			c.log.Debug("provider returned no candles", zap.String("provider", p.Name()), zap.String("symbol", normalized))
			continue
		}

		if c.metrics != nil {
			c.metrics.RecordCandles(p.Name(), len(data))
		}
		c.log.Debug("fetched candles",
			zap.String("provider", p.Name()),
			zap.String("symbol", normalized),
			zap.String("interval", interval),
			zap.Int("count", len(data)))
		return data, nil
	}

	if len(errs) > 0 {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("all providers failed for %s: %w", normalized, errors.Join(errs...)))
	}
	return nil, core.Errorf(core.ErrNoData, "%s %s", normalized, interval)
}

// clean sorts candles by time, drops invalid rows and keeps the first
// candle for any repeated timestamp.
func clean(data []core.OHLCV, symbol, interval string) []core.OHLCV {
	sort.SliceStable(data, func(i, j int) bool { return data[i].Time.Before(data[j].Time) })

	out := data[:0]
	for _, c := range data {
		if !c.IsValid() {
			continue
		}
		if n := len(out); n > 0 && !c.Time.After(out[n-1].Time) {
			continue
		}
		c.Symbol = symbol
		c.Interval = interval
		c.Time = c.Time.UTC()
		out = append(out, c)
	}
	return out
}
