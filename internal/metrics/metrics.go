package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// Backtest metrics
	backtestsTotal   *prometheus.CounterVec
	backtestDuration *prometheus.HistogramVec
	windowsEvaluated prometheus.Counter
	signalsGenerated *prometheus.CounterVec
	tradesTotal      *prometheus.CounterVec

	// Data acquisition metrics
	candlesFetched *prometheus.CounterVec
	fetchFailures  *prometheus.CounterVec
	filesCached    prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairlab_backtests_total",
				Help: "Total number of period backtests",
			},
			[]string{"period", "status"},
		),

		backtestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairlab_backtest_duration_seconds",
				Help:    "Period backtest duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"period"},
		),

		windowsEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pairlab_windows_evaluated_total",
				Help: "Total number of walk-forward windows evaluated",
			},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.windowsEvaluated)

	r.signalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairlab_signals_generated_total",
			Help: "Total number of entry signals generated",
		},
		[]string{"side"},
	)
	r.tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairlab_trades_total",
			Help: "Total number of closed simulated trades",
		},
		[]string{"side", "outcome"},
	)
	r.candlesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairlab_candles_fetched_total",
			Help: "Total number of candles downloaded",
		},
		[]string{"provider"},
	)
	r.fetchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairlab_fetch_failures_total",
			Help: "Total number of failed candle downloads",
		},
		[]string{"provider"},
	)
	r.filesCached = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairlab_files_cached_total",
			Help: "Total number of candle files skipped because they already exist",
		},
	)

	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.tradesTotal)
	reg.MustRegister(r.candlesFetched)
	reg.MustRegister(r.fetchFailures)
	reg.MustRegister(r.filesCached)

	return r
}

// RecordBacktest records a period backtest completion.
func (r *Registry) RecordBacktest(period, status string, duration float64) {
	r.backtestsTotal.WithLabelValues(period, status).Inc()
	r.backtestDuration.WithLabelValues(period).Observe(duration)
}

// RecordWindows adds n evaluated windows.
func (r *Registry) RecordWindows(n int) {
	r.windowsEvaluated.Add(float64(n))
}

// RecordSignal records an entry signal on a side.
func (r *Registry) RecordSignal(side string) {
	r.signalsGenerated.WithLabelValues(side).Inc()
}

// RecordTrade records a closed trade.
func (r *Registry) RecordTrade(side string, win bool) {
	r.tradesTotal.WithLabelValues(side, outcome(win)).Inc()
}

// RecordCandles records n candles downloaded from provider.
func (r *Registry) RecordCandles(provider string, n int) {
	r.candlesFetched.WithLabelValues(provider).Add(float64(n))
}

// RecordFetchFailure records a failed download.
func (r *Registry) RecordFetchFailure(provider string) {
	r.fetchFailures.WithLabelValues(provider).Inc()
}

// RecordCacheHit records a candle file that was already present.
func (r *Registry) RecordCacheHit() {
	r.filesCached.Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func outcome(win bool) string {
	if win {
		return "win"
	}
	return "loss"
}
