package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/pairlab/internal/backtest"
	"github.com/newthinker/pairlab/internal/dataset"
	"github.com/newthinker/pairlab/internal/storage/archive"
	"github.com/newthinker/pairlab/internal/strategy"
)

var day0 = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func sampleReport(t *testing.T) *backtest.Report {
	t.Helper()
	sim, err := backtest.Simulate(
		[]float64{100, 101, 102, 103},
		[]float64{50, 50, 50, 50},
		[]strategy.Signal{0, 1, 1, 0},
	)
	require.NoError(t, err)
	sim.Times = []time.Time{day0, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2), day0.AddDate(0, 0, 3)}

	pair := backtest.Pair{A: "BTC", B: "ETH"}
	return &backtest.Report{
		Timeframe: "1d",
		Alpha:     1,
		Started:   day0,
		Results: []backtest.Result{
			{
				Pair:   pair,
				Period: dataset.Period{Name: dataset.PeriodBacktest, Start: day0, End: day0.AddDate(0, 0, 3)},
				PeriodResult: &backtest.PeriodResult{
					WindowSize: 30,
					Windows:    1,
					Simulation: sim,
					Metrics:    backtest.Metrics{TotalReturn: 1.98, SharpeRatio: 0.5},
				},
			},
			{
				Pair:         pair,
				Period:       dataset.Period{Name: dataset.PeriodOutSample},
				PeriodResult: &backtest.PeriodResult{WindowSize: 30},
			},
		},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Total Return (%)")
	assert.Contains(t, lines[0], "Max Drawdown (%)")
	assert.Contains(t, lines[1], "BTC-ETH")
	assert.Contains(t, lines[1], "Backtest")
	assert.Contains(t, lines[1], "1.98")
	assert.Contains(t, lines[2], "Out-Sample")
	assert.Contains(t, lines[2], "0.00")
}

func TestEncodeCurve(t *testing.T) {
	rep := sampleReport(t)
	data, err := EncodeCurve(rep.Results[0].Simulation)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "timestamp,signal,return,cumulative", lines[0])
	assert.Equal(t, "2024-06-02 00:00:00,1,0,0", lines[2])
	assert.True(t, strings.HasPrefix(lines[4], "2024-06-04 00:00:00,0,0.0198"))
}

func TestCurveName(t *testing.T) {
	got := CurveName(backtest.Pair{A: "ETH", B: "SOL"}, 60, dataset.PeriodInSample)
	assert.Equal(t, "ETH-SOL_w60_in_sample.csv", got)
}

func TestExporter_Export(t *testing.T) {
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	exp := NewExporter(fs, "reports", nil)
	exp.newID = func() string { return "run-1" }

	runID, err := exp.Export(ctx, sampleReport(t))
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	paths, err := fs.List(ctx, "reports/run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/run-1/BTC-ETH_w30_backtest.csv", "reports/run-1/summary.json"}, paths)

	raw, err := fs.Read(ctx, "reports/run-1/summary.json")
	require.NoError(t, err)

	var summary Summary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, "1d", summary.Timeframe)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "BTC-ETH_w30_backtest.csv", summary.Results[0].Curve)
	assert.Equal(t, 1, summary.Results[0].Trades)
	assert.Equal(t, 1.98, summary.Results[0].Metrics.TotalReturn)
	assert.Equal(t, "2024-06-01", summary.Results[0].PeriodStart)
	assert.Empty(t, summary.Results[1].Curve)
}

func TestExporter_DefaultRunIDIsUUID(t *testing.T) {
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	runID, err := NewExporter(fs, "reports", nil).Export(context.Background(), &backtest.Report{Timeframe: "1d"})
	require.NoError(t, err)
	assert.Len(t, runID, 36)
}
