// Package series holds timestamp-indexed float series and the helpers the
// backtest pipeline needs to build spreads from candle closes.
package series

import (
	"time"

	"github.com/newthinker/pairlab/internal/core"
)

// Series is an ordered sequence of (timestamp, value) pairs with strictly
// increasing timestamps. Slices share the parent's backing arrays.
type Series struct {
	Times  []time.Time
	Values []float64
}

// New validates times and values and wraps them in a Series.
func New(times []time.Time, values []float64) (Series, error) {
	s := Series{Times: times, Values: values}
	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	return s, nil
}

// Validate checks length agreement and timestamp ordering.
func (s Series) Validate() error {
	if len(s.Times) != len(s.Values) {
		return core.Errorf(core.ErrLengthMismatch, "%d timestamps, %d values", len(s.Times), len(s.Values))
	}
	for i := 1; i < len(s.Times); i++ {
		if !s.Times[i].After(s.Times[i-1]) {
			return core.Errorf(core.ErrNonMonotonic, "index %d (%s) not after %s",
				i, s.Times[i].Format(time.RFC3339), s.Times[i-1].Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Values)
}

// Slice returns points [i, j).
func (s Series) Slice(i, j int) Series {
	return Series{Times: s.Times[i:j], Values: s.Values[i:j]}
}

// First returns the first timestamp, or the zero time for an empty series.
func (s Series) First() time.Time {
	if len(s.Times) == 0 {
		return time.Time{}
	}
	return s.Times[0]
}

// Last returns the last timestamp, or the zero time for an empty series.
func (s Series) Last() time.Time {
	if len(s.Times) == 0 {
		return time.Time{}
	}
	return s.Times[len(s.Times)-1]
}

// Between returns the points with start <= t < end.
func (s Series) Between(start, end time.Time) Series {
	lo := 0
	for lo < len(s.Times) && s.Times[lo].Before(start) {
		lo++
	}
	hi := lo
	for hi < len(s.Times) && s.Times[hi].Before(end) {
		hi++
	}
	return s.Slice(lo, hi)
}

// SameIndex reports whether both series carry identical timestamps.
func SameIndex(a, b Series) bool {
	if len(a.Times) != len(b.Times) {
		return false
	}
	for i := range a.Times {
		if !a.Times[i].Equal(b.Times[i]) {
			return false
		}
	}
	return true
}

// FromCandles builds a close-price series from candles in time order.
func FromCandles(candles []core.OHLCV) (Series, error) {
	times := make([]time.Time, len(candles))
	values := make([]float64, len(candles))
	for i, c := range candles {
		times[i] = c.Time
		values[i] = c.Close
	}
	return New(times, values)
}
