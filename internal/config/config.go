package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/pairlab/internal/core"
)

type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	Periods    PeriodsConfig    `mapstructure:"periods"`
	Strategy   StrategyConfig   `mapstructure:"strategy"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Collectors CollectorsConfig `mapstructure:"collectors"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Report     ReportConfig     `mapstructure:"report"`
	Workers    int              `mapstructure:"workers"`
}

// DataConfig names the candle files the fetch command maintains.
type DataConfig struct {
	Assets     []string `mapstructure:"assets"`
	Quote      string   `mapstructure:"quote"`
	Timeframes []string `mapstructure:"timeframes"`
	Start      string   `mapstructure:"start"` // YYYY-MM-DD, inclusive
	End        string   `mapstructure:"end"`   // YYYY-MM-DD, exclusive for downloads
}

type PeriodsConfig struct {
	Backtest  DateRange `mapstructure:"backtest"`
	InSample  DateRange `mapstructure:"in_sample"`
	OutSample DateRange `mapstructure:"out_sample"`
}

// DateRange is an inclusive pair of YYYY-MM-DD dates.
type DateRange struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type StrategyConfig struct {
	Alpha        float64 `mapstructure:"alpha"`
	WindowSizes  []int   `mapstructure:"window_sizes"`
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	TradingDays  int     `mapstructure:"trading_days"`
	DaysPerYear  int     `mapstructure:"days_per_year"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type CollectorsConfig struct {
	Providers       []string      `mapstructure:"providers"`
	PageLimit       int           `mapstructure:"page_limit"` // 0 keeps each provider's maximum
	RequestInterval time.Duration `mapstructure:"request_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

type ReportConfig struct {
	Dir string `mapstructure:"dir"`
}

// KnownProviders lists the collector providers that can be configured.
var KnownProviders = []string{"binance", "okx"}

// Load reads configuration from file, on top of Defaults. An empty path
// loads defaults and environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	// PAIRLAB_STRATEGY_ALPHA overrides strategy.alpha
	v.SetEnvPrefix("pairlab")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand ${VAR} string values, e.g. S3 credentials
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if ok && strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns the configuration of the three-asset daily study.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Assets:     []string{"BTC", "ETH", "SOL"},
			Quote:      "USDT",
			Timeframes: []string{"1d", "1h", "1m", "5m"},
			Start:      "2023-01-01",
			End:        "2024-11-30",
		},
		Periods: PeriodsConfig{
			Backtest:  DateRange{Start: "2023-01-01", End: "2024-05-31"},
			InSample:  DateRange{Start: "2024-06-01", End: "2024-09-30"},
			OutSample: DateRange{Start: "2024-10-01", End: "2024-11-30"},
		},
		Strategy: StrategyConfig{
			Alpha:        1.0,
			WindowSizes:  []int{30},
			RiskFreeRate: 0.02,
			TradingDays:  252,
			DaysPerYear:  365,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "data",
		},
		Collectors: CollectorsConfig{
			Providers:       []string{"binance", "okx"},
			RequestInterval: time.Second,
			Timeout:         10 * time.Second,
		},
		Report: ReportConfig{
			Dir: "reports",
		},
		Workers: 4,
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data.assets", d.Data.Assets)
	v.SetDefault("data.quote", d.Data.Quote)
	v.SetDefault("data.timeframes", d.Data.Timeframes)
	v.SetDefault("data.start", d.Data.Start)
	v.SetDefault("data.end", d.Data.End)

	v.SetDefault("periods.backtest.start", d.Periods.Backtest.Start)
	v.SetDefault("periods.backtest.end", d.Periods.Backtest.End)
	v.SetDefault("periods.in_sample.start", d.Periods.InSample.Start)
	v.SetDefault("periods.in_sample.end", d.Periods.InSample.End)
	v.SetDefault("periods.out_sample.start", d.Periods.OutSample.Start)
	v.SetDefault("periods.out_sample.end", d.Periods.OutSample.End)

	v.SetDefault("strategy.alpha", d.Strategy.Alpha)
	v.SetDefault("strategy.window_sizes", d.Strategy.WindowSizes)
	v.SetDefault("strategy.risk_free_rate", d.Strategy.RiskFreeRate)
	v.SetDefault("strategy.trading_days", d.Strategy.TradingDays)
	v.SetDefault("strategy.days_per_year", d.Strategy.DaysPerYear)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.prefix", "")

	v.SetDefault("collectors.providers", d.Collectors.Providers)
	v.SetDefault("collectors.page_limit", d.Collectors.PageLimit)
	v.SetDefault("collectors.request_interval", d.Collectors.RequestInterval)
	v.SetDefault("collectors.timeout", d.Collectors.Timeout)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("report.dir", d.Report.Dir)
	v.SetDefault("workers", d.Workers)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Data
	if len(c.Data.Assets) == 0 {
		return core.Errorf(core.ErrConfigMissing, "data.assets is empty")
	}
	if c.Data.Quote == "" {
		return core.Errorf(core.ErrConfigMissing, "data.quote is empty")
	}
	for _, tf := range c.Data.Timeframes {
		if _, err := core.ParseTimeframe(tf); err != nil {
			return core.WrapError(core.ErrConfigInvalid, err)
		}
	}
	start, end, err := parseRange("data", DateRange{Start: c.Data.Start, End: c.Data.End})
	if err != nil {
		return err
	}
	if !end.After(start) {
		return core.Errorf(core.ErrConfigInvalid, "data.end %s must be after data.start %s", c.Data.End, c.Data.Start)
	}

	// Periods
	for name, r := range map[string]DateRange{
		"periods.backtest":   c.Periods.Backtest,
		"periods.in_sample":  c.Periods.InSample,
		"periods.out_sample": c.Periods.OutSample,
	} {
		if _, _, err := parseRange(name, r); err != nil {
			return err
		}
	}

	// Strategy
	if c.Strategy.Alpha <= 0 {
		return core.Errorf(core.ErrConfigInvalid, "strategy.alpha must be positive, got %v", c.Strategy.Alpha)
	}
	if len(c.Strategy.WindowSizes) == 0 {
		return core.Errorf(core.ErrConfigMissing, "strategy.window_sizes is empty")
	}
	for _, w := range c.Strategy.WindowSizes {
		if w < 1 {
			return core.Errorf(core.ErrConfigInvalid, "window size must be positive, got %d", w)
		}
	}
	if c.Strategy.TradingDays < 1 || c.Strategy.DaysPerYear < 1 {
		return core.Errorf(core.ErrConfigInvalid, "trading_days and days_per_year must be positive")
	}

	// Storage
	switch c.Storage.Type {
	case "localfs":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.Errorf(core.ErrConfigMissing, "storage.s3.bucket required when type is s3")
		}
	default:
		return core.Errorf(core.ErrConfigInvalid, "storage.type must be localfs or s3, got %q", c.Storage.Type)
	}

	// Collectors
	if len(c.Collectors.Providers) == 0 {
		return core.Errorf(core.ErrConfigMissing, "collectors.providers is empty")
	}
	for _, p := range c.Collectors.Providers {
		if !known(p) {
			return core.Errorf(core.ErrConfigInvalid, "unknown provider %q, use one of %v", p, KnownProviders)
		}
	}
	if c.Collectors.PageLimit < 0 || c.Collectors.RequestInterval < 0 {
		return core.Errorf(core.ErrConfigInvalid, "collectors.page_limit and request_interval cannot be negative")
	}

	if c.Workers < 1 {
		return core.Errorf(core.ErrConfigInvalid, "workers must be at least 1, got %d", c.Workers)
	}

	return nil
}

func parseRange(name string, r DateRange) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, core.Errorf(core.ErrConfigInvalid, "%s.start: %v", name, err)
	}
	end, err := time.Parse(time.DateOnly, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, core.Errorf(core.ErrConfigInvalid, "%s.end: %v", name, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, core.Errorf(core.ErrConfigInvalid, "%s ends before it starts", name)
	}
	return start, end, nil
}

func known(provider string) bool {
	for _, p := range KnownProviders {
		if p == provider {
			return true
		}
	}
	return false
}
