package strategy

import (
	"fmt"

	"github.com/newthinker/pairlab/internal/walkforward"
)

// SpreadBand applies a mean-reversion band to walk-forward windows.
type SpreadBand struct {
	alpha float64
}

// New creates a SpreadBand; non-positive alpha falls back to DefaultAlpha.
func New(alpha float64) *SpreadBand {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	return &SpreadBand{alpha: alpha}
}

func (s *SpreadBand) Name() string { return "spread_band" }

func (s *SpreadBand) Description() string {
	return fmt.Sprintf("Log-spread band strategy (alpha: %.2f)", s.alpha)
}

func (s *SpreadBand) Alpha() float64 { return s.alpha }

// Analyze returns the band fitted on w.Test and the signals it produces on w.Target.
func (s *SpreadBand) Analyze(w walkforward.Window) (Band, []Signal) {
	band := EstimateBand(w.Test.Values, s.alpha)
	return band, Generate(band, w.Target.Values)
}

// Run analyzes every window and concatenates the signals in window order.
func (s *SpreadBand) Run(windows []walkforward.Window) []Signal {
	var all []Signal
	for _, w := range windows {
		_, signals := s.Analyze(w)
		all = append(all, signals...)
	}
	return all
}
