// Package report renders backtest results as a text table and exports
// return curves and a run summary to archive storage.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/pairlab/internal/backtest"
)

// WriteTable prints one row per (pair, window, period) with the five metrics.
func WriteTable(w io.Writer, rep *backtest.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := append([]string{"Pair", "Window", "Period", "Windows", "Trades"}, backtest.MetricKeys...)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, r := range rep.Results {
		m := r.Metrics.Map()
		row := []string{
			r.Pair.String(),
			fmt.Sprintf("%d", r.WindowSize),
			r.Period.Name.Label(),
			fmt.Sprintf("%d", r.Windows),
			fmt.Sprintf("%d", tradeCount(r)),
		}
		for _, k := range backtest.MetricKeys {
			row = append(row, fmt.Sprintf("%.2f", m[k]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	return tw.Flush()
}

func tradeCount(r backtest.Result) int {
	if r.Simulation == nil {
		return 0
	}
	return len(r.Simulation.Trades)
}
