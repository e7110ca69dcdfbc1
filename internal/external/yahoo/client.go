// Package yahoo fetches international benchmark quotes (treasury yield,
// gold, FX, sector indices) from the Yahoo Finance chart API. The
// endpoint is unauthenticated JSON.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/stats"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Client handles communication with the Yahoo Finance chart API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", "yahoo"),
		baseURL:    baseURL,
	}
}

// Snapshot is the closing value of a symbol nearest a target date, with
// the percent change against the previous close when one exists.
type Snapshot struct {
	Value     float64
	ChangePct *float64
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// FetchSnapshot returns the close nearest to date, looking back up to a
// week so that a non-trading day still yields the latest session.
func (c *Client) FetchSnapshot(ctx context.Context, symbol string, date time.Time) (Snapshot, error) {
	params := url.Values{
		"period1":  {fmt.Sprintf("%d", date.AddDate(0, 0, -7).Unix())},
		"period2":  {fmt.Sprintf("%d", date.AddDate(0, 0, 1).Unix())},
		"interval": {"1d"},
	}
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return Snapshot{}, err
	}

	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return Snapshot{}, fmt.Errorf("yahoo %s empty chart: %w", symbol, market.ErrNoData)
	}

	result := resp.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	// Keep only sessions with a close, preserving order.
	var values []float64
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		if time.Unix(ts, 0).After(date.AddDate(0, 0, 1)) {
			continue
		}
		values = append(values, *closes[i])
	}
	if len(values) == 0 {
		return Snapshot{}, fmt.Errorf("yahoo %s no closes: %w", symbol, market.ErrNoData)
	}

	snap := Snapshot{Value: stats.Round(values[len(values)-1], 2)}
	if len(values) >= 2 {
		prev := values[len(values)-2]
		if prev != 0 {
			pct := stats.Round((snap.Value-prev)/prev*100, 2)
			snap.ChangePct = &pct
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"value":  snap.Value,
	}).Debug("Fetched snapshot")
	return snap, nil
}
