package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/newthinker/pairlab/internal/core"
)

const (
	baseURL = "https://api.binance.com"

	// PageLimit is the maximum number of klines per request.
	PageLimit = 1000
)

// Binance reads spot klines from the Binance REST API
type Binance struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	limit   int
}

// New creates a Binance provider. A nil limiter disables pacing.
func New(limiter *rate.Limiter) *Binance {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		limiter: limiter,
		limit:   PageLimit,
	}
}

// NewWithBaseURL creates a Binance provider with custom base URL (for testing)
func NewWithBaseURL(url string, limiter *rate.Limiter) *Binance {
	b := New(limiter)
	b.baseURL = url
	return b
}

// SetPageLimit overrides the page size, capped at PageLimit.
func (b *Binance) SetPageLimit(n int) {
	if n > 0 && n <= PageLimit {
		b.limit = n
	}
}

// SetTimeout overrides the per-request timeout.
func (b *Binance) SetTimeout(d time.Duration) {
	if d > 0 {
		b.client.Timeout = d
	}
}

func (b *Binance) Name() string {
	return "binance"
}

// FetchHistory pages forward from start, moving the cursor past the last
// open time of each page, until a short page or end is reached.
func (b *Binance) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	binanceInterval, err := b.toInterval(interval)
	if err != nil {
		return nil, err
	}

	endMs := end.UnixMilli()
	cursor := start.UnixMilli()
	var data []core.OHLCV

	for cursor < endMs {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := b.fetchPage(ctx, symbol, binanceInterval, cursor, endMs-1)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, k := range page {
			if k.Time.UnixMilli() >= endMs {
				continue
			}
			k.Symbol = symbol
			k.Interval = interval
			data = append(data, k)
		}

		next := page[len(page)-1].Time.UnixMilli() + 1
		if next <= cursor || len(page) < b.limit {
			break
		}
		cursor = next
	}

	return data, nil
}

func (b *Binance) fetchPage(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]core.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("startTime", strconv.FormatInt(startMs, 10))
	q.Set("endTime", strconv.FormatInt(endMs, 10))
	q.Set("limit", strconv.Itoa(b.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/v3/klines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching klines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Msg != "" {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Msg)
		}
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var klines [][]any
	if err := json.NewDecoder(resp.Body).Decode(&klines); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	data := make([]core.OHLCV, 0, len(klines))
	for _, k := range klines {
		if len(k) < 6 {
			continue
		}

		openTime, _ := k[0].(float64)
		data = append(data, core.OHLCV{
			Open:   parseField(k[1]),
			High:   parseField(k[2]),
			Low:    parseField(k[3]),
			Close:  parseField(k[4]),
			Volume: parseField(k[5]),
			Time:   time.UnixMilli(int64(openTime)).UTC(),
		})
	}

	return data, nil
}

// prices arrive as strings; tolerate bare numbers too
func parseField(v any) float64 {
	switch x := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case float64:
		return x
	default:
		return 0
	}
}

func (b *Binance) toInterval(interval string) (string, error) {
	switch core.Timeframe(interval) {
	case core.Timeframe1m, core.Timeframe5m, core.Timeframe1h, core.Timeframe1d:
		return interval, nil
	default:
		return "", core.Errorf(core.ErrInvalidTimeframe, "binance: %q", interval)
	}
}

type apiError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
