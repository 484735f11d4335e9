package backtest

import (
	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/series"
	"github.com/newthinker/pairlab/internal/strategy"
)

// position is the simulator's open-trade state; the zero value is flat.
type position struct {
	side       Side
	entryA     float64
	entryB     float64
	entryIndex int
}

// Simulate walks signals against the two price legs. A nonzero signal
// while flat opens a position at that step's prices; a zero signal while
// open closes it and books the realized return at that step. Index 0 is
// never evaluated and a position still open at the end is not accounted.
func Simulate(priceA, priceB []float64, signals []strategy.Signal) (*Simulation, error) {
	if len(priceA) != len(signals) || len(priceB) != len(signals) {
		return nil, core.Errorf(core.ErrLengthMismatch, "prices %d/%d, signals %d", len(priceA), len(priceB), len(signals))
	}
	for i := range signals {
		if priceA[i] <= 0 || priceB[i] <= 0 {
			return nil, core.Errorf(core.ErrInvalidPrice, "index %d: %v / %v", i, priceA[i], priceB[i])
		}
	}

	sim := &Simulation{
		Signals: signals,
		Returns: make([]float64, len(signals)),
	}

	var pos position
	for i := 1; i < len(signals); i++ {
		sig := signals[i]

		switch {
		case pos.side == SideFlat && sig != strategy.Flat:
			pos = position{side: sideOf(sig), entryA: priceA[i], entryB: priceB[i], entryIndex: i}

		case pos.side != SideFlat && sig == strategy.Flat:
			ret := closeReturn(pos, priceA[i], priceB[i])
			sim.Returns[i] = ret
			sim.Trades = append(sim.Trades, Trade{
				Side:       pos.side,
				EntryIndex: pos.entryIndex,
				ExitIndex:  i,
				EntryA:     pos.entryA,
				EntryB:     pos.entryB,
				ExitA:      priceA[i],
				ExitB:      priceB[i],
				Return:     ret,
			})
			pos = position{}
		}
	}

	if pos.side != SideFlat {
		sim.Open = &Trade{
			Side:       pos.side,
			EntryIndex: pos.entryIndex,
			ExitIndex:  -1,
			EntryA:     pos.entryA,
			EntryB:     pos.entryB,
		}
	}

	sim.Cumulative = Compound(sim.Returns)
	return sim, nil
}

// SimulateSeries runs Simulate on two aligned price series and stamps the
// result and its trades with the shared timestamps.
func SimulateSeries(a, b series.Series, signals []strategy.Signal) (*Simulation, error) {
	if !series.SameIndex(a, b) {
		return nil, core.WrapError(core.ErrIndexMismatch, nil)
	}

	sim, err := Simulate(a.Values, b.Values, signals)
	if err != nil {
		return nil, err
	}

	sim.Times = a.Times
	for i := range sim.Trades {
		sim.Trades[i].EntryTime = a.Times[sim.Trades[i].EntryIndex]
		sim.Trades[i].ExitTime = a.Times[sim.Trades[i].ExitIndex]
	}
	if sim.Open != nil {
		sim.Open.EntryTime = a.Times[sim.Open.EntryIndex]
	}
	return sim, nil
}

// closeReturn is the paired return of unwinding pos at (a, b).
func closeReturn(pos position, a, b float64) float64 {
	if pos.side == SideLong {
		return a/pos.entryA - b/pos.entryB
	}
	return b/pos.entryB - a/pos.entryA
}

// Compound returns the running product of (1+r) minus 1.
func Compound(returns []float64) []float64 {
	out := make([]float64, len(returns))
	growth := 1.0
	for i, r := range returns {
		growth *= 1 + r
		out[i] = growth - 1
	}
	return out
}
