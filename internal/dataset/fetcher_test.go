package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/metrics"
)

type fakeSource struct {
	fail  map[string]bool
	empty map[string]bool
	calls []string
}

func (f *fakeSource) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	key := symbol + "_" + interval
	f.calls = append(f.calls, key)
	if f.fail[key] {
		return nil, errors.New("exchange unavailable")
	}
	if f.empty[key] {
		return nil, nil
	}
	return dailyCandles(3, 100), nil
}

func TestFetcher_Fetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "BTC", core.Timeframe1d, dailyCandles(2, 1)))

	src := &fakeSource{fail: map[string]bool{"ETHUSDT_1h": true}}
	f := NewFetcher(store, src, day0, day0.AddDate(0, 0, 3), metrics.NewRegistry(), nil)

	summary, err := f.Fetch(ctx, []string{"BTC", "ETH"}, []core.Timeframe{core.Timeframe1d, core.Timeframe1h})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange unavailable")
	assert.Equal(t, FetchSummary{Downloaded: 2, Skipped: 1, Failed: 1}, summary)
	assert.Equal(t, []string{"BTCUSDT_1h", "ETHUSDT_1d", "ETHUSDT_1h"}, src.calls)

	ok, _ := store.Exists(ctx, "ETH", core.Timeframe1d)
	assert.True(t, ok)
	ok, _ = store.Exists(ctx, "ETH", core.Timeframe1h)
	assert.False(t, ok)

	// cached file left untouched
	got, err := store.Load(ctx, "BTC", core.Timeframe1d)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFetcher_Fetch_EmptyResultIsFailure(t *testing.T) {
	store := newTestStore(t)
	src := &fakeSource{empty: map[string]bool{"SOLUSDT_1d": true}}
	f := NewFetcher(store, src, day0, day0.AddDate(0, 0, 3), nil, nil)

	summary, err := f.Fetch(context.Background(), []string{"SOL"}, []core.Timeframe{core.Timeframe1d})
	assert.ErrorIs(t, err, core.ErrNoData)
	assert.Equal(t, 1, summary.Failed)
}

func TestFetcher_Fetch_SecondRunSkipsEverything(t *testing.T) {
	store := newTestStore(t)
	src := &fakeSource{}
	f := NewFetcher(store, src, day0, day0.AddDate(0, 0, 3), nil, nil)
	ctx := context.Background()
	assets := []string{"BTC", "ETH", "SOL"}
	tfs := []core.Timeframe{core.Timeframe1d}

	_, err := f.Fetch(ctx, assets, tfs)
	require.NoError(t, err)
	calls := len(src.calls)

	summary, err := f.Fetch(ctx, assets, tfs)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, calls, len(src.calls))
}

func TestFetcher_Fetch_Cancelled(t *testing.T) {
	store := newTestStore(t)
	f := NewFetcher(store, &fakeSource{}, day0, day0.AddDate(0, 0, 3), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, []string{"BTC"}, []core.Timeframe{core.Timeframe1d})
	assert.ErrorIs(t, err, context.Canceled)
}
