package tpex

import "testing"

func TestParseQuoteRows(t *testing.T) {
	rows := [][]string{
		// code, name, close, change, open, high, low, avg, shares
		{"6488", "環球晶", "450.00", "+10.00", "442.00", "455.00", "440.00", "448.00", "3,000,000"},
		{"5483", "中美晶", "180.50", "-2.50", "183.00", "184.00", "180.00", "181.50", "5,500,000"},
		{"too", "short"},
	}

	quotes := parseQuoteRows(rows)

	if len(quotes) != 2 {
		t.Fatalf("parsed %d quotes, want 2", len(quotes))
	}

	q := quotes["6488"]
	if q.Close != 450.0 {
		t.Errorf("6488 close = %v, want 450.0", q.Close)
	}
	if q.Change != 10.0 {
		t.Errorf("6488 change = %v, want 10.0", q.Change)
	}
	if q.Volume != 3000 {
		t.Errorf("6488 volume = %d lots, want 3000", q.Volume)
	}
	if q.PctChange != 2.27 {
		t.Errorf("6488 pct change = %v, want 2.27", q.PctChange)
	}

	q = quotes["5483"]
	if q.Change != -2.5 {
		t.Errorf("5483 change = %v, want -2.5", q.Change)
	}
	if q.PctChange != -1.37 {
		t.Errorf("5483 pct change = %v, want -1.37", q.PctChange)
	}
}

func TestParseInstitutionalRows(t *testing.T) {
	row := make([]string, 24)
	row[0] = "6488"
	row[1] = "環球晶"
	row[4] = "1,500,000"  // foreign net
	row[13] = "-200,000"  // trust net
	row[16] = "50,000"    // dealer proprietary net
	row[19] = "-10,000"   // dealer hedge net

	flows := parseInstitutionalRows([][]string{row, {"short", "row"}})

	if len(flows) != 1 {
		t.Fatalf("parsed %d flows, want 1", len(flows))
	}

	f := flows["6488"]
	if f.ForeignNet != 1_500_000 {
		t.Errorf("foreign net = %d, want 1500000", f.ForeignNet)
	}
	if f.TrustNet != -200_000 {
		t.Errorf("trust net = %d, want -200000", f.TrustNet)
	}
	if f.DealerNet != 40_000 {
		t.Errorf("dealer net = %d, want 40000", f.DealerNet)
	}
}

func TestParseMarginRows(t *testing.T) {
	// 0 code, 1 name, 2 prev margin balance, 6 margin balance
	rows := [][]string{
		{"6488", "環球晶", "12,000", "500", "300", "0", "12,200"},
		{"short"},
	}

	balances := parseMarginRows(rows)

	if len(balances) != 1 {
		t.Fatalf("parsed %d balances, want 1", len(balances))
	}

	b := balances["6488"]
	if b.MarginBalance != 12_200 {
		t.Errorf("margin balance = %d, want 12200", b.MarginBalance)
	}
	if b.MarginChange != 200 {
		t.Errorf("margin change = %d, want 200", b.MarginChange)
	}
	if b.ShortBalance != 0 {
		t.Errorf("short balance = %d, want 0", b.ShortBalance)
	}
}

func TestParsePlaceholders(t *testing.T) {
	if got := parseInt("--"); got != 0 {
		t.Errorf("parseInt(--) = %d, want 0", got)
	}
	if got := parseInt("1,234"); got != 1234 {
		t.Errorf("parseInt(1,234) = %d, want 1234", got)
	}
	if got := parseFloat("---"); got != 0 {
		t.Errorf("parseFloat(---) = %v, want 0", got)
	}
	if got := parseFloat("+3.50"); got != 3.5 {
		t.Errorf("parseFloat(+3.50) = %v, want 3.5", got)
	}
}
