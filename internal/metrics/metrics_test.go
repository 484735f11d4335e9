package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func find(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, label := range m.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	// Should have go runtime metrics at minimum
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func TestRegistry_RecordBacktest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordBacktest("in_sample", "ok", 0.02)
	reg.RecordBacktest("in_sample", "ok", 0.03)
	reg.RecordBacktest("out_sample", "error", 0.01)

	mf := find(t, reg, "pairlab_backtests_total")
	if mf == nil {
		t.Fatal("expected pairlab_backtests_total metric")
	}
	for _, m := range mf.GetMetric() {
		if hasLabel(m, "period", "in_sample") && m.GetCounter().GetValue() != 2 {
			t.Errorf("expected 2 in_sample backtests, got %v", m.GetCounter().GetValue())
		}
	}

	hist := find(t, reg, "pairlab_backtest_duration_seconds")
	if hist == nil {
		t.Fatal("expected pairlab_backtest_duration_seconds metric")
	}
	var samples uint64
	for _, m := range hist.GetMetric() {
		samples += m.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Errorf("expected 3 duration samples, got %d", samples)
	}
}

func TestRegistry_RecordTrade_Outcome(t *testing.T) {
	tests := []struct {
		win      bool
		expected string
	}{
		{true, "win"},
		{false, "loss"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordTrade("long", tt.win)

			mf := find(t, reg, "pairlab_trades_total")
			if mf == nil {
				t.Fatal("expected pairlab_trades_total metric")
			}
			found := false
			for _, m := range mf.GetMetric() {
				if hasLabel(m, "outcome", tt.expected) && hasLabel(m, "side", "long") {
					found = true
				}
			}
			if !found {
				t.Errorf("expected outcome label %s", tt.expected)
			}
		})
	}
}

func TestRegistry_Counters(t *testing.T) {
	reg := NewRegistry()

	reg.RecordWindows(3)
	reg.RecordWindows(2)
	reg.RecordSignal("short_spread")
	reg.RecordCandles("binance", 1000)
	reg.RecordFetchFailure("okx")
	reg.RecordCacheHit()

	mf := find(t, reg, "pairlab_windows_evaluated_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 5 {
		t.Error("expected 5 evaluated windows")
	}

	mf = find(t, reg, "pairlab_candles_fetched_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1000 {
		t.Error("expected 1000 fetched candles")
	}

	for _, name := range []string{"pairlab_signals_generated_total", "pairlab_fetch_failures_total", "pairlab_files_cached_total"} {
		if find(t, reg, name) == nil {
			t.Errorf("expected %s metric", name)
		}
	}
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.RecordBacktest("backtest", "ok", 0.5)

	path := filepath.Join(t.TempDir(), "pairlab.prom")
	if err := reg.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	if !strings.Contains(string(data), `pairlab_backtests_total{period="backtest",status="ok"} 1`) {
		t.Errorf("textfile missing backtest counter:\n%s", data)
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}
