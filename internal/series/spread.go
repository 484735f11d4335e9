package series

import (
	"math"
	"time"

	"github.com/newthinker/pairlab/internal/core"
)

// Spread returns log(a) - log(b) on the shared index of a and b.
func Spread(a, b Series) (Series, error) {
	if a.Len() != b.Len() {
		return Series{}, core.Errorf(core.ErrLengthMismatch, "spread legs have %d and %d points", a.Len(), b.Len())
	}
	if !SameIndex(a, b) {
		return Series{}, core.WrapError(core.ErrIndexMismatch, nil)
	}

	values := make([]float64, a.Len())
	for i := range values {
		pa, pb := a.Values[i], b.Values[i]
		if pa <= 0 || pb <= 0 {
			return Series{}, core.Errorf(core.ErrInvalidPrice, "index %d: %v / %v", i, pa, pb)
		}
		values[i] = math.Log(pa) - math.Log(pb)
	}
	return Series{Times: a.Times, Values: values}, nil
}

// Align inner-joins a and b on timestamp. Both inputs must be strictly
// increasing; the outputs share one freshly allocated index.
func Align(a, b Series) (Series, Series) {
	n := min(a.Len(), b.Len())
	times := make([]time.Time, 0, n)
	va := make([]float64, 0, n)
	vb := make([]float64, 0, n)

	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		ta, tb := a.Times[i], b.Times[j]
		switch {
		case ta.Equal(tb):
			times = append(times, ta)
			va = append(va, a.Values[i])
			vb = append(vb, b.Values[j])
			i++
			j++
		case ta.Before(tb):
			i++
		default:
			j++
		}
	}

	return Series{Times: times, Values: va}, Series{Times: times, Values: vb}
}
