// Package finmind fetches per-security datasets from the FinMind open
// data API: broker branch trading reports, securities-lending balances
// and daily OHLCV history. Most datasets require an API token; callers
// should check HasToken before relying on these endpoints.
package finmind

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Client handles communication with the FinMind API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	token      string
}

// NewClient creates a new FinMind client. An empty token is allowed;
// requests then run against the unauthenticated quota. The HTTP client
// is cloned before the bearer header is installed, so a caller-shared
// client never leaks the token to other venues.
func NewClient(baseURL, token string, httpClient *httputil.Client, log *logger.Logger) *Client {
	if token != "" {
		httpClient = httpClient.Clone().
			WithHeader("Authorization", "Bearer "+token)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", "finmind"),
		baseURL:    baseURL,
		token:      token,
	}
}

// HasToken reports whether the client was configured with an API token.
func (c *Client) HasToken() bool {
	return c.token != ""
}

type dataResponse struct {
	Msg  string `json:"msg"`
	Data []struct {
		Date          string  `json:"date"`
		TraderID      string  `json:"securities_trader_id"`
		Buy           int64   `json:"buy"`
		Sell          int64   `json:"sell"`
		SBLBalance    int64   `json:"SBLShortSalesCurrentDayBalance"`
		Max           float64 `json:"max"`
		Min           float64 `json:"min"`
		Close         float64 `json:"close"`
		TradingVolume int64   `json:"Trading_Volume"`
	} `json:"data"`
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) (*dataResponse, error) {
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var resp dataResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, err
	}

	if resp.Msg != "success" {
		return nil, fmt.Errorf("finmind %s msg %q: %w", path, resp.Msg, market.ErrNoData)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("finmind %s empty: %w", path, market.ErrNoData)
	}

	return &resp, nil
}

// FetchBrokerTrades returns the per-branch broker trading report for a
// security on one date. Quantities are in shares.
func (c *Client) FetchBrokerTrades(ctx context.Context, code string, date time.Time) ([]market.BrokerTrade, error) {
	params := url.Values{
		"data_id":    {code},
		"start_date": {date.Format(market.ISOLayout)},
		"end_date":   {date.Format(market.ISOLayout)},
	}

	resp, err := c.fetch(ctx, "/api/v4/taiwan_stock_trading_daily_report", params)
	if err != nil {
		return nil, err
	}

	trades := make([]market.BrokerTrade, 0, len(resp.Data))
	for _, row := range resp.Data {
		trades = append(trades, market.BrokerTrade{
			BrokerID: row.TraderID,
			Buy:      row.Buy,
			Sell:     row.Sell,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"code":  code,
		"date":  date.Format(market.ISOLayout),
		"count": len(trades),
	}).Debug("Fetched broker trades")
	return trades, nil
}

// FetchLendingBalance returns the securities-lending short sale balance
// for a security on one date, in shares.
func (c *Client) FetchLendingBalance(ctx context.Context, code string, date time.Time) (int64, error) {
	params := url.Values{
		"dataset":    {"TaiwanDailyShortSaleBalances"},
		"data_id":    {code},
		"start_date": {date.Format(market.ISOLayout)},
		"end_date":   {date.Format(market.ISOLayout)},
	}

	resp, err := c.fetch(ctx, "/api/v4/data", params)
	if err != nil {
		return 0, err
	}

	return resp.Data[len(resp.Data)-1].SBLBalance, nil
}

// FetchCandles returns daily OHLCV history for a security over a date
// range, oldest first. Volume is in shares.
func (c *Client) FetchCandles(ctx context.Context, code string, start, end time.Time) ([]market.Candle, error) {
	params := url.Values{
		"dataset":    {"TaiwanStockPrice"},
		"data_id":    {code},
		"start_date": {start.Format(market.ISOLayout)},
		"end_date":   {end.Format(market.ISOLayout)},
	}

	resp, err := c.fetch(ctx, "/api/v4/data", params)
	if err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(resp.Data))
	for _, row := range resp.Data {
		day, err := time.Parse(market.ISOLayout, row.Date)
		if err != nil {
			continue
		}
		candles = append(candles, market.Candle{
			Date:   day,
			High:   row.Max,
			Low:    row.Min,
			Close:  row.Close,
			Volume: row.TradingVolume,
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"code":  code,
		"count": len(candles),
	}).Debug("Fetched candles")
	return candles, nil
}
