// Package taifex scrapes derivatives statistics from the Taiwan Futures
// Exchange. Unlike the stock venues these pages are HTML only; the
// tables are parsed with goquery. A page that renders without the
// expected table means the exchange has no data for that date.
package taifex

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

// QueryDateLayout is the date format the TAIFEX query pages expect.
const QueryDateLayout = "2006/01/02"

// Client handles communication with the TAIFEX statistics pages.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TAIFEX client. The HTTP client is cloned so
// the browser-style headers the pages require stay local to this venue.
func NewClient(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.Clone().
			WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
		logger:  log.WithField("venue", "taifex"),
		baseURL: baseURL,
	}
}

func (c *Client) fetchDocument(ctx context.Context, path string, params url.Values) (*goquery.Document, error) {
	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("taifex %s status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// FetchPutCallRatio returns the options open-interest put/call ratio in
// percent for one date.
func (c *Client) FetchPutCallRatio(ctx context.Context, date time.Time) (float64, error) {
	params := url.Values{
		"queryDate": {date.Format(QueryDateLayout)},
	}

	doc, err := c.fetchDocument(ctx, "/cht/3/pcRatio", params)
	if err != nil {
		return 0, err
	}

	ratio, ok := parsePutCallRatio(doc, date.Format(QueryDateLayout))
	if !ok {
		return 0, fmt.Errorf("taifex pcRatio has no row for %s: %w", date.Format(QueryDateLayout), market.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":  date.Format(market.ISOLayout),
		"ratio": ratio,
	}).Debug("Fetched put/call ratio")
	return ratio, nil
}

// FetchForeignFuturesNet returns the foreign investors' net open
// interest in TAIEX futures, in contracts. Negative means net short.
func (c *Client) FetchForeignFuturesNet(ctx context.Context, date time.Time) (int64, error) {
	params := url.Values{
		"queryDate": {date.Format(QueryDateLayout)},
	}

	doc, err := c.fetchDocument(ctx, "/cht/3/futContractsDate", params)
	if err != nil {
		return 0, err
	}

	net, ok := parseForeignFuturesNet(doc)
	if !ok {
		return 0, fmt.Errorf("taifex futContractsDate has no TAIEX foreign row: %w", market.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"date": date.Format(market.ISOLayout),
		"net":  net,
	}).Debug("Fetched foreign futures net position")
	return net, nil
}

// parsePutCallRatio finds the open-interest P/C ratio column of the
// pcRatio table. Row layout: 日期, put volume, call volume, volume
// ratio %, put OI, call OI, OI ratio %. The page shows a recent date
// range; the row matching wantDate wins, otherwise the first data row.
func parsePutCallRatio(doc *goquery.Document, wantDate string) (float64, bool) {
	var ratio float64
	var found, firstSeen bool

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if found {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 7 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		v, err := strconv.ParseFloat(cleanNumber(cells.Eq(6).Text()), 64)
		if err != nil {
			return
		}

		if dateText == wantDate {
			ratio = v
			found = true
			return
		}
		if !firstSeen {
			ratio = v
			firstSeen = true
		}
	})

	return ratio, found || firstSeen
}

// parseForeignFuturesNet walks the institutional futures table. The
// product cell spans its three identity rows, so the current product is
// tracked across rows; within the TAIEX futures block the 外資 row's
// second-to-last cell is the net open interest in contracts (the last
// cell is the contract value).
func parseForeignFuturesNet(doc *goquery.Document) (int64, bool) {
	var net int64
	var found bool
	currentProduct := ""

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		if found {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		rowText := row.Text()
		if strings.Contains(rowText, "臺股期貨") {
			currentProduct = "臺股期貨"
		} else if strings.Contains(rowText, "期貨") || strings.Contains(rowText, "選擇權") {
			// A row naming any other product starts a new block; the
			// identity rows below it carry no product name.
			currentProduct = ""
		}

		if currentProduct != "臺股期貨" || !strings.Contains(rowText, "外資") {
			return
		}

		n, err := strconv.ParseInt(cleanNumber(cells.Eq(cells.Length()-2).Text()), 10, 64)
		if err != nil {
			return
		}
		net = n
		found = true
	})

	return net, found
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	return s
}
