package strategy

import (
	"fmt"

	"github.com/newthinker/pairlab/internal/series"
)

// DefaultAlpha is the band half-width in standard deviations.
const DefaultAlpha = 1.0

// Band holds mean-reversion thresholds estimated from a test window.
type Band struct {
	Mean  float64
	Std   float64
	Upper float64
	Lower float64
}

// EstimateBand computes mean and sample standard deviation over test and
// places the entry thresholds alpha deviations either side of the mean.
// A constant window collapses the band onto its mean.
func EstimateBand(test []float64, alpha float64) Band {
	mean := series.Mean(test)
	std := series.StdDev(test)
	return Band{
		Mean:  mean,
		Std:   std,
		Upper: mean + std*alpha,
		Lower: mean - std*alpha,
	}
}

func (b Band) String() string {
	return fmt.Sprintf("band(mean=%.6f std=%.6f lower=%.6f upper=%.6f)", b.Mean, b.Std, b.Lower, b.Upper)
}
