package backtest

import (
	"math"
	"time"

	"github.com/newthinker/pairlab/internal/series"
)

// EvalOptions parameterizes Evaluate
type EvalOptions struct {
	RiskFreeRate float64 // annual, as a fraction
	TradingDays  int     // volatility annualization factor
	DaysPerYear  int     // calendar days used to annualize returns
}

// DefaultEvalOptions returns a 2% risk-free rate, 252 trading days and a
// 365-day calendar year.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{
		RiskFreeRate: 0.02,
		TradingDays:  252,
		DaysPerYear:  365,
	}
}

// Evaluate computes performance metrics of a cumulative return curve.
// Curves shorter than two points report all zeros. When no step return is
// defined (every base is zero) only the volatility ratios fall back to zero.
func Evaluate(cum series.Series, opts EvalOptions) Metrics {
	if cum.Len() < 2 {
		return Metrics{}
	}

	if opts.TradingDays <= 0 {
		opts.TradingDays = DefaultEvalOptions().TradingDays
	}
	if opts.DaysPerYear <= 0 {
		opts.DaysPerYear = DefaultEvalOptions().DaysPerYear
	}
	annualFactor := math.Sqrt(float64(opts.TradingDays))

	totalReturn := cum.Values[cum.Len()-1] - cum.Values[0]
	annualized := annualizeReturn(totalReturn, elapsedDays(cum.First(), cum.Last()), opts.DaysPerYear)

	var sharpe, sortino float64
	if steps := stepReturns(cum.Values); len(steps) > 0 {
		vol := series.StdDev(steps) * annualFactor

		downsideVol := vol
		if downside := negatives(steps); len(downside) > 0 {
			downsideVol = series.StdDev(downside) * annualFactor
		}

		excess := annualized - opts.RiskFreeRate
		if vol != 0 {
			sharpe = excess / vol
		}
		if downsideVol != 0 {
			sortino = excess / downsideVol
		}
	}

	return Metrics{
		TotalReturn:      round2(totalReturn * 100),
		AnnualizedReturn: round2(annualized * 100),
		SharpeRatio:      round2(sharpe),
		SortinoRatio:     round2(sortino),
		MaxDrawdown:      round2(calculateMaxDrawdown(cum.Values) * 100),
	}
}

// stepReturns returns percentage changes between consecutive points,
// dropping steps whose base is zero (the change is undefined there).
func stepReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	steps := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		r := (values[i] - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		steps = append(steps, r)
	}
	return steps
}

func negatives(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

// elapsedDays counts whole calendar days between first and last.
func elapsedDays(first, last time.Time) int {
	return int(last.Sub(first) / (24 * time.Hour))
}

// annualizeReturn compounds total to a year of daysPerYear days. Spans
// shorter than a day are reported unannualized; a wipe-out stays -100%.
func annualizeReturn(total float64, days, daysPerYear int) float64 {
	if days <= 0 {
		return total
	}
	if 1+total <= 0 {
		return -1
	}
	years := float64(days) / float64(daysPerYear)
	return math.Pow(1+total, 1/years) - 1
}

// calculateMaxDrawdown finds the largest (peak - value) / peak over the
// curve, where peak is the running maximum. Points under a zero peak have
// no defined drawdown and are skipped.
func calculateMaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var maxDD float64
	found := false
	peak := values[0]

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak == 0 {
			continue
		}
		dd := (peak - v) / peak
		if !found || dd > maxDD {
			maxDD = dd
			found = true
		}
	}

	return maxDD
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
