package twse

import (
	"strconv"
	"strings"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/stats"
)

// parseQuoteRows converts the MI_INDEX per-security table. Row layout:
// 0 code, 1 name, 2 traded shares, 8 close, 9 direction marker (an HTML
// fragment, green means down), 10 change amount.
func parseQuoteRows(rows [][]string) map[string]market.Quote {
	quotes := make(map[string]market.Quote, len(rows))

	for _, row := range rows {
		if len(row) < 11 {
			continue
		}

		code := strings.TrimSpace(row[0])
		if !isNumericCode(code) {
			continue
		}

		close := parseFloat(row[8])
		change := parseFloat(row[10])
		if strings.Contains(row[9], "green") {
			change = -abs(change)
		}

		pctChange := 0.0
		if close > 0 && close-change != 0 {
			pctChange = stats.Round(change/(close-change)*100, 2)
		}

		quotes[code] = market.Quote{
			Code:      code,
			Name:      strings.TrimSpace(row[1]),
			Close:     close,
			Change:    change,
			PctChange: pctChange,
			Volume:    market.SharesToLots(parseInt(row[2])),
		}
	}

	return quotes
}

// parseInstitutionalRows converts T86 rows. Layout: 0 code, 1 name,
// 2-4 foreign buy/sell/net (ex dealer), 8-10 trust, 11-13 dealer
// proprietary, 14-16 dealer hedge.
func parseInstitutionalRows(rows [][]string) map[string]market.InstitutionalFlow {
	flows := make(map[string]market.InstitutionalFlow, len(rows))

	for _, row := range rows {
		if len(row) < 17 {
			continue
		}

		code := strings.TrimSpace(row[0])
		flows[code] = market.InstitutionalFlow{
			Code:       code,
			Name:       strings.TrimSpace(row[1]),
			ForeignNet: parseInt(row[4]),
			TrustNet:   parseInt(row[10]),
			DealerNet:  parseInt(row[13]) + parseInt(row[16]),
		}
	}

	return flows
}

// parseMarginRows converts MI_MARGN detail rows. Layout: 0 code,
// 1 previous margin balance, 6 margin balance, 7 previous short
// balance, 12 short balance.
func parseMarginRows(rows [][]string) map[string]market.MarginBalance {
	balances := make(map[string]market.MarginBalance, len(rows))

	for _, row := range rows {
		if len(row) < 13 {
			continue
		}

		code := strings.TrimSpace(row[0])
		marginBalance := parseInt(row[6])
		shortBalance := parseInt(row[12])

		balances[code] = market.MarginBalance{
			Code:          code,
			MarginBalance: marginBalance,
			MarginChange:  marginBalance - parseInt(row[1]),
			ShortBalance:  shortBalance,
			ShortChange:   shortBalance - parseInt(row[7]),
		}
	}

	return balances
}

func isNumericCode(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseInt strips thousands separators and placeholder dashes. Bad
// cells count as zero, matching how the exchange publishes them.
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "--", "0")
	if s == "" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// parseFloat additionally strips the HTML colour markup and the X
// suffix TWSE embeds in price cells.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "X", "")
	for _, tag := range []string{"<p style= color:green>", "<p style= color:red>", "</p>", "+"} {
		s = strings.ReplaceAll(s, tag, "")
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "--" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
