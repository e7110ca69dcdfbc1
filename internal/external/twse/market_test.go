package twse

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

func TestParseMarketInstitutionalRows(t *testing.T) {
	rows := [][]string{
		{"自營商(自行買賣)", "5,000,000,000", "3,000,000,000", "2,000,000,000"},
		{"自營商(避險)", "8,000,000,000", "9,000,000,000", "-1,000,000,000"},
		{"投信", "6,500,000,000", "3,000,000,000", "3,500,000,000"},
		{"外資及陸資(不含外資自營商)", "90,000,000,000", "78,000,000,000", "12,000,000,000"},
		{"外資自營商", "100,000,000", "100,000,000", "0"},
		{"合計", "109,600,000,000", "93,100,000,000", "16,500,000,000"},
	}

	summary, ok := parseMarketInstitutionalRows(rows)
	if !ok {
		t.Fatal("total row not found")
	}
	if summary.ForeignNet != 120.0 {
		t.Errorf("foreign net = %v 億, want 120.0", summary.ForeignNet)
	}
	if summary.TrustNet != 35.0 {
		t.Errorf("trust net = %v 億, want 35.0", summary.TrustNet)
	}
	if summary.DealerNet != 20.0 {
		t.Errorf("dealer net = %v 億, want 20.0", summary.DealerNet)
	}
	if summary.TotalNet != 165.0 {
		t.Errorf("total net = %v 億, want 165.0", summary.TotalNet)
	}
}

func TestParseMarketInstitutionalRowsMissingTotal(t *testing.T) {
	rows := [][]string{
		{"投信", "1", "1", "0"},
	}
	if _, ok := parseMarketInstitutionalRows(rows); ok {
		t.Error("expected missing total row to be reported")
	}
}

func newMarketTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hc := httputil.New(5*time.Second, logger.NewNop()).DisableRetry()
	return NewClient(srv.URL, hc, logger.NewNop())
}

func TestFetchMarketMarginChange(t *testing.T) {
	c := newMarketTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"stat": "OK",
			"tables": [{"data": [
				["融資(交易單位)", "1", "2", "3", "4", "5"],
				["融券(交易單位)", "1", "2", "3", "4", "5"],
				["融資金額(仟元)", "280,000,000", "282,500,000", "0", "0", "282,500,000"]
			]}]
		}`))
	})

	change, err := c.FetchMarketMarginChange(context.Background(), time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchMarketMarginChange: %v", err)
	}
	// (282,500,000 - 280,000,000) thousand TWD = 25 億
	if change != 25.0 {
		t.Errorf("margin change = %v 億, want 25.0", change)
	}
}

func TestFetchMarketMarginChangeNoData(t *testing.T) {
	c := newMarketTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat": "很抱歉，沒有符合條件的資料!"}`))
	})

	_, err := c.FetchMarketMarginChange(context.Background(), time.Now())
	if !errors.Is(err, market.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchMarketInstitutional(t *testing.T) {
	c := newMarketTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"stat": "OK",
			"data": [
				["外資及陸資(不含外資自營商)", "90,000,000,000", "78,000,000,000", "12,000,000,000"],
				["合計", "109,600,000,000", "93,100,000,000", "16,500,000,000"]
			]
		}`))
	})

	summary, err := c.FetchMarketInstitutional(context.Background(), time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchMarketInstitutional: %v", err)
	}
	if summary.ForeignNet != 120.0 || summary.TotalNet != 165.0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}
