package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/storage/archive"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	return NewStore(fs, "USDT", "2023-01-01", "2024-11-30")
}

func TestStore_Path(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "BTCUSDT/BTCUSDT_1d_2023-01-01_to_2024-11-30.csv", s.Path("BTC", core.Timeframe1d))
	assert.Equal(t, "SOLUSDT/SOLUSDT_5m_2023-01-01_to_2024-11-30.csv", s.Path("SOL", core.Timeframe5m))
}

func TestStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "ETH", core.Timeframe1d)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Save(ctx, "ETH", core.Timeframe1d, dailyCandles(5, 2000)))

	exists, err = s.Exists(ctx, "ETH", core.Timeframe1d)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := s.Load(ctx, "ETH", core.Timeframe1d)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 2004.0, got[4].Close)
	assert.Equal(t, "ETHUSDT", got[0].Symbol)
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load(context.Background(), "BTC", core.Timeframe1h)
	assert.ErrorIs(t, err, core.ErrNoData)
}
