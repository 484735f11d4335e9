package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/pairlab/internal/core"
)

// TimestampLayout is how candle open times are written.
const TimestampLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// accepted when reading files produced by other tools
var timestampLayouts = []string{TimestampLayout, time.RFC3339, "2006-01-02"}

// EncodeCSV writes candles with a timestamp,open,high,low,close,volume header.
func EncodeCSV(candles []core.OHLCV) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, c := range candles {
		record := []string{
			c.Time.UTC().Format(TimestampLayout),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
			formatFloat(c.Volume),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses candles written by EncodeCSV. Columns are matched by
// header name, case-insensitively; the timestamp column defaults to the first.
func DecodeCSV(r io.Reader, symbol, interval string) ([]core.OHLCV, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	tsCol, ok := cols["timestamp"]
	if !ok {
		tsCol = 0
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, fmt.Errorf("missing close column in header %v", header)
	}

	var candles []core.OHLCV
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseTimestamp(record[tsCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closePrice, err := strconv.ParseFloat(record[closeCol], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing close: %w", line, err)
		}

		candle := core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Close:    closePrice,
			Time:     ts,
		}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &candle.Open},
			{"high", &candle.High},
			{"low", &candle.Low},
			{"volume", &candle.Volume},
		} {
			if *f.dst, err = optionalFloat(record, cols, f.name); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// optionalFloat reads a non-essential column. Absent columns and empty
// cells read as 0; anything else must parse.
func optionalFloat(record []string, cols map[string]int, name string) (float64, error) {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return 0, nil
	}
	cell := strings.TrimSpace(record[i])
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
