package backtest

import (
	"time"

	"github.com/newthinker/pairlab/internal/series"
	"github.com/newthinker/pairlab/internal/strategy"
)

// Side is the direction of an open spread position
type Side int8

const (
	SideShort Side = -1
	SideFlat  Side = 0
	SideLong  Side = 1
)

func (s Side) String() string {
	switch s {
	case SideLong:
		return "long"
	case SideShort:
		return "short"
	default:
		return "flat"
	}
}

// sideOf maps an entry signal onto a position side
func sideOf(sig strategy.Signal) Side {
	switch {
	case sig > 0:
		return SideLong
	case sig < 0:
		return SideShort
	default:
		return SideFlat
	}
}

// Trade represents one simulated round trip on the pair
type Trade struct {
	Side       Side
	EntryIndex int
	ExitIndex  int // -1 while open
	EntryTime  time.Time
	ExitTime   time.Time
	EntryA     float64
	EntryB     float64
	ExitA      float64
	ExitB      float64
	Return     float64 // realized return, 0 while open
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.Return > 0
}

// IsClosed returns true if the trade has an exit
func (t Trade) IsClosed() bool {
	return t.ExitIndex >= 0
}

// Simulation is the output of Simulate
type Simulation struct {
	Times      []time.Time // nil when simulated from bare slices
	Signals    []strategy.Signal
	Returns    []float64 // nonzero only where a position closed
	Cumulative []float64
	Trades     []Trade
	Open       *Trade // position still open at the last index, never accounted
}

// CumulativeSeries returns the cumulative return curve on its timestamps.
func (s *Simulation) CumulativeSeries() series.Series {
	return series.Series{Times: s.Times, Values: s.Cumulative}
}

// Metric keys reported by Metrics.Map
const (
	KeyTotalReturn      = "Total Return (%)"
	KeyAnnualizedReturn = "Annualized Return (%)"
	KeySharpeRatio      = "Sharpe Ratio"
	KeySortinoRatio     = "Sortino Ratio"
	KeyMaxDrawdown      = "Max Drawdown (%)"
)

// MetricKeys lists the keys of Metrics.Map in display order
var MetricKeys = []string{KeyTotalReturn, KeyAnnualizedReturn, KeySharpeRatio, KeySortinoRatio, KeyMaxDrawdown}

// Metrics holds performance statistics of one cumulative return curve.
// Percentages are already multiplied by 100; everything is rounded to 2 dp.
// MaxDrawdown only measures falls from a positive peak, so a curve that never
// rises above zero reports 0 even while it loses money.
type Metrics struct {
	TotalReturn      float64 `json:"total_return_pct"`
	AnnualizedReturn float64 `json:"annualized_return_pct"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown_pct"`
}

// Map returns the metrics under their fixed display keys.
func (m Metrics) Map() map[string]float64 {
	return map[string]float64{
		KeyTotalReturn:      m.TotalReturn,
		KeyAnnualizedReturn: m.AnnualizedReturn,
		KeySharpeRatio:      m.SharpeRatio,
		KeySortinoRatio:     m.SortinoRatio,
		KeyMaxDrawdown:      m.MaxDrawdown,
	}
}
