package core

import (
	"strings"
	"time"
)

// Timeframe is a candle interval identifier
type Timeframe string

const (
	Timeframe1m Timeframe = "1m"
	Timeframe5m Timeframe = "5m"
	Timeframe1h Timeframe = "1h"
	Timeframe1d Timeframe = "1d"
)

// Timeframes lists every interval the dataset layout knows about.
var Timeframes = []Timeframe{Timeframe1m, Timeframe5m, Timeframe1h, Timeframe1d}

// ParseTimeframe validates tf against the supported intervals.
func ParseTimeframe(tf string) (Timeframe, error) {
	for _, known := range Timeframes {
		if string(known) == tf {
			return known, nil
		}
	}
	names := make([]string, len(Timeframes))
	for i, known := range Timeframes {
		names[i] = "'" + string(known) + "'"
	}
	return "", Errorf(ErrInvalidTimeframe, "timeframe '%s' is not valid, use one of: %s", tf, strings.Join(names, ", "))
}

// Duration returns the wall-clock length of one candle.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe1m:
		return time.Minute
	case Timeframe5m:
		return 5 * time.Minute
	case Timeframe1h:
		return time.Hour
	case Timeframe1d:
		return 24 * time.Hour
	default:
		return 0
	}
}

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string
	Interval string // "1m", "5m", "1h", "1d"
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Time     time.Time
}

// IsValid checks if the candle has a usable close
func (c OHLCV) IsValid() bool {
	return !c.Time.IsZero() && c.Close > 0
}
