package tpex

import (
	"strconv"
	"strings"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/stats"
)

// parseQuoteRows converts the OTC daily close quotes. Row layout:
// 0 code, 1 name, 2 close, 3 change, 8 traded shares.
func parseQuoteRows(rows [][]string) map[string]market.Quote {
	quotes := make(map[string]market.Quote, len(rows))

	for _, row := range rows {
		if len(row) < 9 {
			continue
		}

		code := strings.TrimSpace(row[0])
		close := parseFloat(row[2])
		change := parseFloat(row[3])

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
			Volume:    market.SharesToLots(parseInt(row[8])),
		}
	}

	return quotes
}

// parseInstitutionalRows converts OTC institutional rows. Layout:
// 0 code, 1 name, 2-4 foreign ex-dealer buy/sell/net, 11-13 trust,
// 14-16 dealer proprietary, 17-19 dealer hedge.
func parseInstitutionalRows(rows [][]string) map[string]market.InstitutionalFlow {
	flows := make(map[string]market.InstitutionalFlow, len(rows))

	for _, row := range rows {
		if len(row) < 24 {
			continue
		}

		code := strings.TrimSpace(row[0])
		flows[code] = market.InstitutionalFlow{
			Code:       code,
			Name:       strings.TrimSpace(row[1]),
			ForeignNet: parseInt(row[4]),
			TrustNet:   parseInt(row[13]),
			DealerNet:  parseInt(row[16]) + parseInt(row[19]),
		}
	}

	return flows
}

// parseMarginRows converts OTC margin rows. Layout: 0 code, 1 name,
// 2 previous margin balance, 6 margin balance.
func parseMarginRows(rows [][]string) map[string]market.MarginBalance {
	balances := make(map[string]market.MarginBalance, len(rows))

	for _, row := range rows {
		if len(row) < 7 {
			continue
		}

		code := strings.TrimSpace(row[0])
		marginBalance := parseInt(row[6])

		balances[code] = market.MarginBalance{
			Code:          code,
			MarginBalance: marginBalance,
			MarginChange:  marginBalance - parseInt(row[2]),
		}
	}

	return balances
}

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

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "---", "0")
	s = strings.ReplaceAll(s, "+", "")
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
