package twse

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/stats"
)

// FetchMarketInstitutional returns the BFI82U whole-market institutional
// trading summary. Amounts are in hundred-million TWD.
func (c *Client) FetchMarketInstitutional(ctx context.Context, date time.Time) (market.MarketInstitutional, error) {
	params := url.Values{
		"response": {"json"},
		"dayDate":  {date.Format(market.DateKeyLayout)},
		"type":     {"day"},
	}

	resp, err := c.fetchTable(ctx, "/fund/BFI82U", params)
	if err != nil {
		return market.MarketInstitutional{}, err
	}

	summary, ok := parseMarketInstitutionalRows(resp.Data)
	if !ok {
		return market.MarketInstitutional{}, fmt.Errorf("twse BFI82U missing total row: %w", market.ErrNoData)
	}

	c.logger.WithFields(map[string]interface{}{
		"date":      date.Format(market.ISOLayout),
		"total_net": summary.TotalNet,
	}).Debug("Fetched market institutional summary")
	return summary, nil
}

// FetchMarketMarginChange returns the day-over-day change of the
// whole-market margin financing amount, in hundred-million TWD. The
// figure comes from the MI_MARGN credit summary table.
func (c *Client) FetchMarketMarginChange(ctx context.Context, date time.Time) (float64, error) {
	params := url.Values{
		"response":   {"json"},
		"date":       {date.Format(market.DateKeyLayout)},
		"selectType": {"ALL"},
	}

	resp, err := c.fetchTable(ctx, "/rwd/zh/marginTrading/MI_MARGN", params)
	if err != nil {
		return 0, err
	}

	if len(resp.Tables) == 0 || len(resp.Tables[0].Data) < 3 {
		return 0, fmt.Errorf("twse MI_MARGN summary too short: %w", market.ErrNoData)
	}

	// Row 2 of the summary is the margin financing amount in thousand
	// TWD: previous balance at index 1, today's balance at index 2.
	row := resp.Tables[0].Data[2]
	if len(row) < 3 {
		return 0, fmt.Errorf("twse MI_MARGN summary row too short: %w", market.ErrNoData)
	}

	change := (parseFloat(row[2]) - parseFloat(row[1])) / 100_000
	return stats.Round(change, 2), nil
}

// parseMarketInstitutionalRows converts BFI82U rows. Layout per row:
// 0 category, 1 buy amount, 2 sell amount, 3 net amount (TWD). The
// foreign figure excludes foreign dealers, the dealer figure is
// proprietary trading only, both matching the published summary.
func parseMarketInstitutionalRows(rows [][]string) (market.MarketInstitutional, bool) {
	var summary market.MarketInstitutional
	sawTotal := false

	for _, row := range rows {
		if len(row) < 4 {
			continue
		}

		category := strings.TrimSpace(row[0])
		net := stats.Round(parseFloat(row[3])/100_000_000, 2)

		switch {
		case strings.Contains(category, "外資及陸資") && strings.Contains(category, "不含"):
			summary.ForeignNet = net
		case category == "投信":
			summary.TrustNet = net
		case strings.Contains(category, "自營商(自行買賣)"):
			summary.DealerNet = net
		case category == "合計":
			summary.TotalNet = net
			sawTotal = true
		}
	}

	return summary, sawTotal
}
