package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/newthinker/pairlab/internal/collector/crypto"
	"github.com/newthinker/pairlab/internal/core"
)

const (
	baseURL = "https://www.okx.com"

	// PageLimit is the maximum number of candles per history request.
	PageLimit = 100
)

// OKX reads spot candles from the OKX v5 REST API
type OKX struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	limit   int
}

// New creates an OKX provider. A nil limiter disables pacing.
func New(limiter *rate.Limiter) *OKX {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &OKX{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		limiter: limiter,
		limit:   PageLimit,
	}
}

// NewWithBaseURL creates an OKX provider with custom base URL (for testing)
func NewWithBaseURL(url string, limiter *rate.Limiter) *OKX {
	o := New(limiter)
	o.baseURL = url
	return o
}

// SetPageLimit overrides the page size, capped at PageLimit.
func (o *OKX) SetPageLimit(n int) {
	if n > 0 && n <= PageLimit {
		o.limit = n
	}
}

// SetTimeout overrides the per-request timeout.
func (o *OKX) SetTimeout(d time.Duration) {
	if d > 0 {
		o.client.Timeout = d
	}
}

func (o *OKX) Name() string {
	return "okx"
}

// FetchHistory pages backward from end with the "after" cursor, which
// returns candles strictly older than it, and stops once a page reaches
// before start. Results are returned oldest first.
func (o *OKX) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	bar, err := o.toInterval(interval)
	if err != nil {
		return nil, err
	}
	instID := crypto.InstrumentID(symbol, "-")

	startMs := start.UnixMilli()
	cursor := end.UnixMilli()
	var data []core.OHLCV

	for {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := o.fetchPage(ctx, instID, bar, cursor)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		oldest := cursor
		for _, c := range page {
			ts := c.Time.UnixMilli()
			if ts < oldest {
				oldest = ts
			}
			if ts < startMs || ts >= end.UnixMilli() {
				continue
			}
			c.Symbol = symbol
			c.Interval = interval
			data = append(data, c)
		}

		if oldest <= startMs || oldest >= cursor || len(page) < o.limit {
			break
		}
		cursor = oldest
	}

	sort.Slice(data, func(i, j int) bool { return data[i].Time.Before(data[j].Time) })
	return data, nil
}

func (o *OKX) fetchPage(ctx context.Context, instID, bar string, after int64) ([]core.OHLCV, error) {
	q := url.Values{}
	q.Set("instId", instID)
	q.Set("bar", bar)
	q.Set("after", strconv.FormatInt(after, 10))
	q.Set("limit", strconv.Itoa(o.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/v5/market/history-candles?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result candleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Code != "0" {
		return nil, fmt.Errorf("okx error %s: %s", result.Code, result.Msg)
	}

	data := make([]core.OHLCV, 0, len(result.Data))
	for _, candle := range result.Data {
		if len(candle) < 6 {
			continue
		}

		ts, _ := strconv.ParseInt(candle[0], 10, 64)
		openPrice, _ := strconv.ParseFloat(candle[1], 64)
		high, _ := strconv.ParseFloat(candle[2], 64)
		low, _ := strconv.ParseFloat(candle[3], 64)
		closePrice, _ := strconv.ParseFloat(candle[4], 64)
		volume, _ := strconv.ParseFloat(candle[5], 64)

		data = append(data, core.OHLCV{
			Open:   openPrice,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
			Time:   time.UnixMilli(ts).UTC(),
		})
	}

	return data, nil
}

// toInterval maps timeframes to OKX bars. Daily bars use the UTC-aligned
// variant so they line up with other exchanges.
func (o *OKX) toInterval(interval string) (string, error) {
	switch core.Timeframe(interval) {
	case core.Timeframe1m, core.Timeframe5m:
		return interval, nil
	case core.Timeframe1h:
		return "1H", nil
	case core.Timeframe1d:
		return "1Dutc", nil
	default:
		return "", core.Errorf(core.ErrInvalidTimeframe, "okx: %q", interval)
	}
}

type candleResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}
