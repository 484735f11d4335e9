package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/newthinker/pairlab/internal/series"
	"github.com/newthinker/pairlab/internal/strategy"
)

var day0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func curve(offsets []int, values []float64) series.Series {
	times := make([]time.Time, len(offsets))
	for i, d := range offsets {
		times[i] = day0.AddDate(0, 0, d)
	}
	return series.Series{Times: times, Values: values}
}

func TestEvaluate_Empty(t *testing.T) {
	if got := Evaluate(series.Series{}, DefaultEvalOptions()); got != (Metrics{}) {
		t.Errorf("expected zero metrics, got %+v", got)
	}
}

func TestEvaluate_FlatCurveIsZero(t *testing.T) {
	c := curve([]int{0, 1, 2, 3, 4}, []float64{0, 0, 0, 0, 0})
	if got := Evaluate(c, DefaultEvalOptions()); got != (Metrics{}) {
		t.Errorf("flat curve should report zeros, got %+v", got)
	}
}

func TestEvaluate_KnownCurve(t *testing.T) {
	// steps: 1.0, 0.6; total 0.22 over exactly one year
	c := curve([]int{0, 200, 365}, []float64{0.1, 0.2, 0.32})
	got := Evaluate(c, DefaultEvalOptions())

	vol := math.Sqrt(0.08) * math.Sqrt(252)
	wantSharpe := math.Round((0.22-0.02)/vol*100) / 100

	want := Metrics{
		TotalReturn:      22,
		AnnualizedReturn: 22,
		SharpeRatio:      wantSharpe,
		SortinoRatio:     wantSharpe, // no negative steps
		MaxDrawdown:      0,
	}
	if got != want {
		t.Errorf("Evaluate() = %+v, want %+v", got, want)
	}
}

func TestEvaluate_Drawdown(t *testing.T) {
	c := curve([]int{0, 1, 2, 3}, []float64{0.1, 0.2, 0.1, 0.15})
	got := Evaluate(c, DefaultEvalOptions())

	if got.MaxDrawdown != 50 {
		t.Errorf("MaxDrawdown = %v, want 50", got.MaxDrawdown)
	}
	if got.TotalReturn != 5 {
		t.Errorf("TotalReturn = %v, want 5", got.TotalReturn)
	}
	if got.SortinoRatio == got.SharpeRatio {
		t.Error("downside volatility should differ with a negative step")
	}
}

func TestEvaluate_SkipsZeroBaseSteps(t *testing.T) {
	// the only defined step is 0.05 -> 0.1
	c := curve([]int{0, 1, 2}, []float64{0, 0.05, 0.1})
	got := Evaluate(c, DefaultEvalOptions())

	if got.SharpeRatio != 0 || got.SortinoRatio != 0 {
		t.Errorf("single step has no volatility, got %+v", got)
	}
	if got.TotalReturn != 10 {
		t.Errorf("TotalReturn = %v, want 10", got.TotalReturn)
	}
}

func TestEvaluate_SingleClosingTrade(t *testing.T) {
	sim, err := Simulate([]float64{100, 101, 102, 103}, []float64{50, 50, 50, 50}, []strategy.Signal{0, 1, 1, 0})
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	// every step sits on a zero base, so only the ratios fall back
	c := curve([]int{0, 1, 2, 3}, sim.Cumulative)
	got := Evaluate(c, DefaultEvalOptions())

	want := Metrics{
		TotalReturn:      1.98,
		AnnualizedReturn: round2(annualizeReturn(sim.Cumulative[3], 3, 365) * 100),
		SharpeRatio:      0,
		SortinoRatio:     0,
		MaxDrawdown:      0,
	}
	if got != want {
		t.Errorf("Evaluate() = %+v, want %+v", got, want)
	}
	if got.AnnualizedReturn <= got.TotalReturn {
		t.Errorf("AnnualizedReturn = %v, expected compounding above %v", got.AnnualizedReturn, got.TotalReturn)
	}
}

func TestEvaluate_SinglePoint(t *testing.T) {
	c := curve([]int{0}, []float64{0.3})
	if got := Evaluate(c, DefaultEvalOptions()); got != (Metrics{}) {
		t.Errorf("single point should report zeros, got %+v", got)
	}
}

func TestEvaluate_LosingFromZeroHasNoDrawdown(t *testing.T) {
	c := curve([]int{0, 1, 2, 3}, []float64{0, -0.05, -0.1, -0.1})
	got := Evaluate(c, DefaultEvalOptions())

	if got.TotalReturn != -10 {
		t.Errorf("TotalReturn = %v, want -10", got.TotalReturn)
	}
	if got.MaxDrawdown != 0 {
		t.Errorf("MaxDrawdown = %v, want 0 under a zero peak", got.MaxDrawdown)
	}
}

func TestEvaluate_RoundsToTwoDecimals(t *testing.T) {
	c := curve([]int{0, 10, 20, 30}, []float64{0.01, 0.0234567, 0.011, 0.03})
	got := Evaluate(c, DefaultEvalOptions())

	for k, v := range got.Map() {
		if r := math.Round(v*100) / 100; r != v {
			t.Errorf("%s = %v not rounded", k, v)
		}
	}
}

func TestAnnualizeReturn(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		days  int
		want  float64
	}{
		{"one year", 0.1, 365, 0.1},
		{"half year", 0.21, 365 / 2, math.Pow(1.21, 365.0/182) - 1},
		{"same day", 0.05, 0, 0.05},
		{"wiped out", -1, 100, -1},
		{"below -100%", -1.5, 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annualizeReturn(tt.total, tt.days, 365)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("annualizeReturn(%v, %d) = %v, want %v", tt.total, tt.days, got, tt.want)
			}
		})
	}
}

func TestElapsedDays(t *testing.T) {
	if got := elapsedDays(day0, day0.Add(47*time.Hour)); got != 1 {
		t.Errorf("elapsedDays = %d, want 1", got)
	}
	if got := elapsedDays(day0, day0.AddDate(0, 0, 90)); got != 90 {
		t.Errorf("elapsedDays = %d, want 90", got)
	}
}

func TestCalculateMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"rising", []float64{0.1, 0.2, 0.3}, 0},
		{"peak then fall", []float64{0.1, 0.2, 0.1, 0.15}, 0.5},
		{"zero peak skipped", []float64{0, -0.1, 0.05, 0.04}, 0.2},
		{"never above zero", []float64{0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateMaxDrawdown(tt.values)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calculateMaxDrawdown(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
