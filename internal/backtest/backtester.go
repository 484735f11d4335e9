package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/pairlab/internal/core"
	"github.com/newthinker/pairlab/internal/dataset"
	"github.com/newthinker/pairlab/internal/metrics"
	"github.com/newthinker/pairlab/internal/series"
	"github.com/newthinker/pairlab/internal/strategy"
	"github.com/newthinker/pairlab/internal/walkforward"
)

// PeriodResult is the outcome of backtesting one pair over one period.
type PeriodResult struct {
	WindowSize int
	Windows    int
	Bands      []strategy.Band // per window
	Simulation *Simulation     // nil when the period is too short for a window
	Metrics    Metrics
}

// RunPeriod aligns the two close series, builds their log spread, runs
// the band strategy window by window and simulates the resulting signals
// on the prices of the target blocks. A period too short for a single
// test/target pair yields an empty result with zero metrics.
func RunPeriod(a, b series.Series, windowSize int, alpha float64, opts EvalOptions) (*PeriodResult, error) {
	a, b = series.Align(a, b)

	spread, err := series.Spread(a, b)
	if err != nil {
		return nil, err
	}

	windows, err := walkforward.Partition(spread, windowSize)
	if err != nil {
		return nil, err
	}

	res := &PeriodResult{WindowSize: windowSize, Windows: len(windows)}
	if len(windows) == 0 {
		return res, nil
	}

	var strat strategy.Strategy = strategy.New(alpha)
	var signals []strategy.Signal
	for _, w := range windows {
		band, sigs := strat.Analyze(w)
		res.Bands = append(res.Bands, band)
		signals = append(signals, sigs...)
	}

	// signals start at the first target block
	end := windowSize + len(signals)
	sim, err := SimulateSeries(a.Slice(windowSize, end), b.Slice(windowSize, end), signals)
	if err != nil {
		return nil, err
	}

	res.Simulation = sim
	res.Metrics = Evaluate(sim.CumulativeSeries(), opts)
	return res, nil
}

// PeriodProvider supplies close series cut into evaluation periods.
type PeriodProvider interface {
	Split(ctx context.Context, timeframe string) ([]dataset.PeriodData, error)
}

// Config holds the strategy and evaluation parameters of a run.
type Config struct {
	Alpha   float64
	Eval    EvalOptions
	Workers int
}

// RunRequest selects what a run evaluates.
type RunRequest struct {
	Pairs       []Pair
	Timeframe   string
	WindowSizes []int
}

// Result is one (pair, window size, period) evaluation.
type Result struct {
	Pair     Pair
	Period   dataset.Period
	Duration time.Duration
	*PeriodResult
}

// Report collects every Result of a run in request order: pairs, then
// window sizes, then periods.
type Report struct {
	Timeframe string
	Alpha     float64
	Started   time.Time
	Results   []Result
}

// Runner evaluates pairs × window sizes × periods concurrently.
type Runner struct {
	provider PeriodProvider
	cfg      Config
	metrics  *metrics.Registry
	log      *zap.Logger
}

// NewRunner creates a Runner. reg and log may be nil.
func NewRunner(provider PeriodProvider, cfg Config, reg *metrics.Registry, log *zap.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = strategy.DefaultAlpha
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		provider: provider,
		cfg:      cfg,
		metrics:  reg,
		log:      log,
	}
}

// Run loads the periods once and fans each (pair, window size) task out
// to the worker pool. The first failing task cancels the rest.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Report, error) {
	if len(req.Pairs) == 0 {
		return nil, core.Errorf(core.ErrConfigMissing, "no pairs to backtest")
	}
	if len(req.WindowSizes) == 0 {
		return nil, core.Errorf(core.ErrConfigMissing, "no window sizes")
	}
	for _, w := range req.WindowSizes {
		if w < 1 {
			return nil, core.Errorf(core.ErrInvalidWindow, "got %d", w)
		}
	}

	report := &Report{Timeframe: req.Timeframe, Alpha: r.cfg.Alpha, Started: time.Now().UTC()}
	strat := strategy.New(r.cfg.Alpha)
	r.log.Debug("starting run", zap.String("strategy", strat.Name()), zap.String("description", strat.Description()))

	periods, err := r.provider.Split(ctx, req.Timeframe)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, core.Errorf(core.ErrNoData, "no periods configured")
	}
	for _, pair := range req.Pairs {
		for _, asset := range []string{pair.A, pair.B} {
			if _, ok := periods[0].Closes[asset]; !ok {
				return nil, core.Errorf(core.ErrNoData, "asset %s of pair %s not loaded", asset, pair)
			}
		}
	}

	type task struct {
		pair   Pair
		window int
	}
	var tasks []task
	for _, pair := range req.Pairs {
		for _, w := range req.WindowSizes {
			tasks = append(tasks, task{pair: pair, window: w})
		}
	}

	out := make([][]Result, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, t := range tasks {
		g.Go(func() error {
			results, err := r.runTask(gctx, t.pair, t.window, periods)
			if err != nil {
				return fmt.Errorf("%s window %d: %w", t.pair, t.window, err)
			}
			out[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, results := range out {
		report.Results = append(report.Results, results...)
	}
	return report, nil
}

func (r *Runner) runTask(ctx context.Context, pair Pair, window int, periods []dataset.PeriodData) ([]Result, error) {
	results := make([]Result, 0, len(periods))

	for _, pd := range periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := r.log.With(
			zap.String("pair", pair.String()),
			zap.Int("window", window),
			zap.String("period", string(pd.Period.Name)))

		start := time.Now()
		res, err := RunPeriod(pd.Closes[pair.A], pd.Closes[pair.B], window, r.cfg.Alpha, r.cfg.Eval)
		elapsed := time.Since(start)
		if err != nil {
			r.recordFailure(pd.Period.Name, elapsed)
			return nil, fmt.Errorf("%s: %w", pd.Period.Name, err)
		}

		r.record(pd.Period.Name, res, elapsed)

		if res.Windows == 0 {
			log.Warn("period too short for a single window, metrics are zero")
		} else {
			if res.Simulation.Open != nil {
				log.Debug("position still open at period end, not accounted",
					zap.Stringer("side", res.Simulation.Open.Side),
					zap.Time("entry", res.Simulation.Open.EntryTime))
			}
			log.Info("period evaluated",
				zap.Int("windows", res.Windows),
				zap.Int("trades", len(res.Simulation.Trades)),
				zap.Float64("total_return_pct", res.Metrics.TotalReturn),
				zap.Float64("sharpe", res.Metrics.SharpeRatio),
				zap.Duration("elapsed", elapsed))
		}

		results = append(results, Result{Pair: pair, Period: pd.Period, Duration: elapsed, PeriodResult: res})
	}

	return results, nil
}

func (r *Runner) record(period dataset.PeriodName, res *PeriodResult, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordBacktest(string(period), "ok", elapsed.Seconds())
	r.metrics.RecordWindows(res.Windows)
	if res.Simulation == nil {
		return
	}
	for _, sig := range res.Simulation.Signals {
		if sig != strategy.Flat {
			r.metrics.RecordSignal(sig.String())
		}
	}
	for _, t := range res.Simulation.Trades {
		r.metrics.RecordTrade(t.Side.String(), t.IsWin())
	}
}

func (r *Runner) recordFailure(period dataset.PeriodName, elapsed time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordBacktest(string(period), "error", elapsed.Seconds())
}
