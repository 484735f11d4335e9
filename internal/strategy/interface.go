package strategy

import "github.com/newthinker/pairlab/internal/walkforward"

// Strategy fits a band on a window's test block and emits one signal per
// point of its target block. Implementations must be deterministic.
type Strategy interface {
	Name() string
	Description() string
	Analyze(w walkforward.Window) (Band, []Signal)
}

var _ Strategy = (*SpreadBand)(nil)
