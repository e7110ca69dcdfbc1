// Package twse fetches daily after-trading tables from the Taiwan
// Stock Exchange (the primary listed-market venue). The endpoints are
// unauthenticated JSON; a response with stat != "OK" means the exchange
// has no data for that date (holiday or not yet published).
package twse

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Client handles communication with the TWSE open endpoints.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TWSE client.
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("venue", "twse"),
		baseURL:    baseURL,
	}
}

// tableResponse covers the common TWSE JSON envelope. Depending on the
// endpoint the rows live either directly under data or inside tables.
type tableResponse struct {
	Stat   string     `json:"stat"`
	Data   [][]string `json:"data"`
	Tables []struct {
		Data [][]string `json:"data"`
	} `json:"tables"`
}

func (c *Client) fetchTable(ctx context.Context, path string, params url.Values) (*tableResponse, error) {
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var resp tableResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, err
	}

	if resp.Stat != "OK" {
		return nil, fmt.Errorf("twse %s stat %q: %w", path, resp.Stat, market.ErrNoData)
	}

	return &resp, nil
}

// FetchQuotes returns the daily closing quotes for every listed
// security, keyed by code. Returns ErrNoData for non-trading days.
func (c *Client) FetchQuotes(ctx context.Context, date time.Time) (map[string]market.Quote, error) {
	params := url.Values{
		"response": {"json"},
		"date":     {date.Format(market.DateKeyLayout)},
		"type":     {"ALLBUT0999"},
	}

	resp, err := c.fetchTable(ctx, "/rwd/zh/afterTrading/MI_INDEX", params)
	if err != nil {
		return nil, err
	}

	// The per-security closing table is the ninth table of MI_INDEX.
	if len(resp.Tables) <= 8 {
		return nil, fmt.Errorf("twse MI_INDEX has %d tables: %w", len(resp.Tables), market.ErrNoData)
	}

	quotes := parseQuoteRows(resp.Tables[8].Data)

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"count": len(quotes),
	}).Debug("Fetched quotes")
	return quotes, nil
}

// FetchInstitutional returns the T86 institutional net-trading table,
// keyed by code. Quantities are in shares.
func (c *Client) FetchInstitutional(ctx context.Context, date time.Time) (map[string]market.InstitutionalFlow, error) {
	params := url.Values{
		"response":   {"json"},
		"date":       {date.Format(market.DateKeyLayout)},
		"selectType": {"ALLBUT0999"},
	}

	resp, err := c.fetchTable(ctx, "/fund/T86", params)
	if err != nil {
		return nil, err
	}

	flows := parseInstitutionalRows(resp.Data)

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"count": len(flows),
	}).Debug("Fetched institutional flows")
	return flows, nil
}

// FetchMargin returns the MI_MARGN per-security margin table, keyed by
// code. Quantities are in lots.
func (c *Client) FetchMargin(ctx context.Context, date time.Time) (map[string]market.MarginBalance, error) {
	params := url.Values{
		"response":   {"json"},
		"date":       {date.Format(market.DateKeyLayout)},
		"selectType": {"ALL"},
	}

	resp, err := c.fetchTable(ctx, "/rwd/zh/marginTrading/MI_MARGN", params)
	if err != nil {
		return nil, err
	}

	// tables[0] is the market summary, tables[1] the per-security detail.
	if len(resp.Tables) <= 1 {
		return nil, fmt.Errorf("twse MI_MARGN has %d tables: %w", len(resp.Tables), market.ErrNoData)
	}

	balances := parseMarginRows(resp.Tables[1].Data)

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"count": len(balances),
	}).Debug("Fetched margin balances")
	return balances, nil
}
