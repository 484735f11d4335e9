package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/series"
)

// PeriodName identifies one of the evaluation date ranges
type PeriodName string

const (
	PeriodBacktest  PeriodName = "backtest"
	PeriodInSample  PeriodName = "in_sample"
	PeriodOutSample PeriodName = "out_sample"
)

// Label returns the display name of the period.
func (p PeriodName) Label() string {
	switch p {
	case PeriodBacktest:
		return "Backtest"
	case PeriodInSample:
		return "In-Sample"
	case PeriodOutSample:
		return "Out-Sample"
	default:
		return string(p)
	}
}

// Period is a named calendar date range. End is inclusive: every candle
// opening on the End date belongs to the period.
type Period struct {
	Name  PeriodName
	Start time.Time
	End   time.Time
}

// NewPeriod parses YYYY-MM-DD dates in UTC.
func NewPeriod(name PeriodName, start, end string) (Period, error) {
	s, err := time.ParseInLocation(time.DateOnly, start, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%s start: %w", name, err)
	}
	e, err := time.ParseInLocation(time.DateOnly, end, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%s end: %w", name, err)
	}
	if e.Before(s) {
		return Period{}, fmt.Errorf("%s: end %s before start %s", name, end, start)
	}
	return Period{Name: name, Start: s, End: e}, nil
}

// Slice returns the points of s dated within the period.
func (p Period) Slice(s series.Series) series.Series {
	return s.Between(p.Start, p.End.AddDate(0, 0, 1))
}

func (p Period) String() string {
	return fmt.Sprintf("%s %s..%s", p.Name.Label(), p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

// DefaultPeriods returns the backtest, in-sample and out-sample ranges.
func DefaultPeriods() []Period {
	return []Period{
		{Name: PeriodBacktest, Start: date(2023, 1, 1), End: date(2024, 5, 31)},
		{Name: PeriodInSample, Start: date(2024, 6, 1), End: date(2024, 9, 30)},
		{Name: PeriodOutSample, Start: date(2024, 10, 1), End: date(2024, 11, 30)},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PeriodData holds every asset's close series sliced to one period.
type PeriodData struct {
	Period Period
	Closes map[string]series.Series
}

// Splitter loads close series from a Store and cuts them into periods.
type Splitter struct {
	store   *Store
	assets  []string
	periods []Period
}

// NewSplitter creates a Splitter over assets and periods, in order.
func NewSplitter(store *Store, assets []string, periods []Period) *Splitter {
	return &Splitter{store: store, assets: assets, periods: periods}
}

// Split validates the timeframe, loads each asset's close series once and
// returns it sliced to every period, in period order.
func (s *Splitter) Split(ctx context.Context, timeframe string) ([]PeriodData, error) {
	tf, err := core.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	full := make(map[string]series.Series, len(s.assets))
	for _, asset := range s.assets {
		candles, err := s.store.Load(ctx, asset, tf)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", asset, err)
		}
		closes, err := series.FromCandles(candles)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", asset, err)
		}
		full[asset] = closes
	}

	out := make([]PeriodData, 0, len(s.periods))
	for _, p := range s.periods {
		pd := PeriodData{Period: p, Closes: make(map[string]series.Series, len(full))}
		for asset, closes := range full {
			pd.Closes[asset] = p.Slice(closes)
		}
		out = append(out, pd)
	}
	return out, nil
}
