// Package tpex fetches daily tables from the Taipei Exchange (the
// secondary OTC venue). The endpoints mirror the TWSE ones but use the
// Republic-of-China year in request dates and a slightly different
// envelope: data lives in tables[0], and a missing or empty table means
// no data for the date.
package tpex

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Client handles communication with the TPEx open endpoints.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TPEx client.
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", "tpex"),
		baseURL:    baseURL,
	}
}

type tableResponse struct {
	Tables []struct {
		Data [][]string `json:"data"`
	} `json:"tables"`
}

func (c *Client) fetchRows(ctx context.Context, path string, date time.Time) ([][]string, error) {
	params := url.Values{
		"l": {"zh-tw"},
		"o": {"json"},
		"d": {market.ROCDate(date)},
		"_": {"1"},
	}
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var resp tableResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, err
	}

	if len(resp.Tables) == 0 || len(resp.Tables[0].Data) == 0 {
		return nil, fmt.Errorf("tpex %s empty: %w", path, market.ErrNoData)
	}

	return resp.Tables[0].Data, nil
}

// FetchQuotes returns the daily closing quotes for every OTC security,
// keyed by code.
func (c *Client) FetchQuotes(ctx context.Context, date time.Time) (map[string]market.Quote, error) {
	rows, err := c.fetchRows(ctx, "/web/stock/aftertrading/daily_close_quotes/stk_quote_result.php", date)
	if err != nil {
		return nil, err
	}

	quotes := parseQuoteRows(rows)

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"count": len(quotes),
	}).Debug("Fetched quotes")
	return quotes, nil
}

// FetchInstitutional returns the OTC institutional net-trading table,
// keyed by code. Quantities are in shares.
func (c *Client) FetchInstitutional(ctx context.Context, date time.Time) (map[string]market.InstitutionalFlow, error) {
	rows, err := c.fetchRows(ctx, "/web/stock/3insti/daily_trade/3itrade_hedge_result.php", date)
	if err != nil {
		return nil, err
	}

	flows := parseInstitutionalRows(rows)

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"count": len(flows),
	}).Debug("Fetched institutional flows")
	return flows, nil
}

// FetchMargin returns the OTC margin balance table, keyed by code.
// TPEx does not publish short-sale detail in this table, so the short
// fields stay zero.
func (c *Client) FetchMargin(ctx context.Context, date time.Time) (map[string]market.MarginBalance, error) {
	rows, err := c.fetchRows(ctx, "/web/stock/margin_trading/margin_balance/margin_bal_result.php", date)
	if err != nil {
		return nil, err
	}

	balances := parseMarginRows(rows)

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"count": len(balances),
	}).Debug("Fetched margin balances")
	return balances, nil
}
