package dataset

import (
	"bytes"
	"context"
	"fmt"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/storage/archive"
)

// Store lays candle files out as <SYMBOL>/<SYMBOL>_<tf>_<start>_to_<end>.csv
// on an archive backend.
type Store struct {
	storage archive.Storage
	quote   string
	start   string
	end     string
}

// NewStore creates a Store for the date range label start..end (YYYY-MM-DD).
func NewStore(storage archive.Storage, quote, start, end string) *Store {
	return &Store{storage: storage, quote: quote, start: start, end: end}
}

// Symbol returns the trading symbol for an asset, e.g. BTC -> BTCUSDT.
func (s *Store) Symbol(asset string) string {
	return asset + s.quote
}

// Path returns the archive path of the candle file for asset and timeframe.
func (s *Store) Path(asset string, tf core.Timeframe) string {
	symbol := s.Symbol(asset)
	return fmt.Sprintf("%s/%s_%s_%s_to_%s.csv", symbol, symbol, tf, s.start, s.end)
}

// Exists reports whether the candle file is already stored.
func (s *Store) Exists(ctx context.Context, asset string, tf core.Timeframe) (bool, error) {
	return s.storage.Exists(ctx, s.Path(asset, tf))
}

// Save writes candles for asset and timeframe.
func (s *Store) Save(ctx context.Context, asset string, tf core.Timeframe, candles []core.OHLCV) error {
	data, err := EncodeCSV(candles)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("encoding %s: %w", s.Path(asset, tf), err))
	}
	if err := s.storage.Write(ctx, s.Path(asset, tf), data); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// Load reads the candles for asset and timeframe.
func (s *Store) Load(ctx context.Context, asset string, tf core.Timeframe) ([]core.OHLCV, error) {
	path := s.Path(asset, tf)

	ok, err := s.storage.Exists(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if !ok {
		return nil, core.Errorf(core.ErrNoData, "%s not found, run fetch first", path)
	}

	data, err := s.storage.Read(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	candles, err := DecodeCSV(bytes.NewReader(data), s.Symbol(asset), string(tf))
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decoding %s: %w", path, err))
	}
	return candles, nil
}
