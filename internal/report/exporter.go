package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/pairlab/internal/backtest"
	"github.com/newthinker/pairlab/internal/dataset"
	"github.com/newthinker/pairlab/internal/storage/archive"
)

// Summary is the JSON document written next to the curves of a run.
type Summary struct {
	RunID     string         `json:"run_id"`
	CreatedAt time.Time      `json:"created_at"`
	Timeframe string         `json:"timeframe"`
	Alpha     float64        `json:"alpha"`
	Results   []SummaryEntry `json:"results"`
}

// SummaryEntry describes one (pair, window, period) evaluation.
type SummaryEntry struct {
	Pair        string           `json:"pair"`
	WindowSize  int              `json:"window_size"`
	Period      string           `json:"period"`
	PeriodStart string           `json:"period_start,omitempty"`
	PeriodEnd   string           `json:"period_end,omitempty"`
	Windows     int              `json:"windows"`
	Trades      int              `json:"trades"`
	Metrics     backtest.Metrics `json:"metrics"`
	Curve       string           `json:"curve,omitempty"`
}

// Exporter writes run artifacts under <dir>/<run-id>/ on a storage backend.
type Exporter struct {
	storage archive.Storage
	dir     string
	newID   func() string
	log     *zap.Logger
}

// NewExporter creates an Exporter rooted at dir.
func NewExporter(storage archive.Storage, dir string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		storage: storage,
		dir:     dir,
		newID:   func() string { return uuid.NewString() },
		log:     log,
	}
}

// Export writes one curve CSV per result plus summary.json and returns the run ID.
func (e *Exporter) Export(ctx context.Context, rep *backtest.Report) (string, error) {
	runID := e.newID()
	root := path.Join(e.dir, runID)

	summary := Summary{
		RunID:     runID,
		CreatedAt: rep.Started,
		Timeframe: rep.Timeframe,
		Alpha:     rep.Alpha,
	}

	for _, r := range rep.Results {
		entry := SummaryEntry{
			Pair:       r.Pair.String(),
			WindowSize: r.WindowSize,
			Period:     string(r.Period.Name),
			Windows:    r.Windows,
			Trades:     tradeCount(r),
			Metrics:    r.Metrics,
		}
		if !r.Period.Start.IsZero() {
			entry.PeriodStart = r.Period.Start.Format(time.DateOnly)
			entry.PeriodEnd = r.Period.End.Format(time.DateOnly)
		}

		if r.Simulation != nil {
			name := CurveName(r.Pair, r.WindowSize, r.Period.Name)
			data, err := EncodeCurve(r.Simulation)
			if err != nil {
				return "", fmt.Errorf("encoding %s: %w", name, err)
			}
			if err := e.storage.Write(ctx, path.Join(root, name), data); err != nil {
				return "", fmt.Errorf("writing %s: %w", name, err)
			}
			entry.Curve = name
		}

		summary.Results = append(summary.Results, entry)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	if err := e.storage.Write(ctx, path.Join(root, "summary.json"), data); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}

	e.log.Info("report exported", zap.String("run_id", runID), zap.String("dir", root), zap.Int("results", len(rep.Results)))
	return runID, nil
}

// CurveName is the file name of one result's curve, e.g. BTC-ETH_w30_backtest.csv.
func CurveName(pair backtest.Pair, window int, period dataset.PeriodName) string {
	return fmt.Sprintf("%s_w%d_%s.csv", pair, window, period)
}

// EncodeCurve writes timestamp,signal,return,cumulative rows.
func EncodeCurve(sim *backtest.Simulation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"timestamp", "signal", "return", "cumulative"}); err != nil {
		return nil, err
	}
	for i := range sim.Cumulative {
		ts := ""
		if i < len(sim.Times) {
			ts = sim.Times[i].UTC().Format(dataset.TimestampLayout)
		}
		record := []string{
			ts,
			strconv.Itoa(int(sim.Signals[i])),
			strconv.FormatFloat(sim.Returns[i], 'f', -1, 64),
			strconv.FormatFloat(sim.Cumulative[i], 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
