package finmind

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

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hc := httputil.New(5*time.Second, logger.NewNop()).DisableRetry()
	return NewClient(srv.URL, token, hc, logger.NewNop())
}

func TestFetchBrokerTrades(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{
			"msg": "success",
			"data": [
				{"securities_trader_id": "1020", "buy": 500000, "sell": 100000},
				{"securities_trader_id": "9200", "buy": 0, "sell": 300000}
			]
		}`))
	}, "tok123")

	trades, err := c.FetchBrokerTrades(context.Background(), "2330", time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchBrokerTrades: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("authorization header = %q, want Bearer tok123", gotAuth)
	}
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[0].BrokerID != "1020" || trades[0].Buy != 500_000 {
		t.Errorf("unexpected first trade: %+v", trades[0])
	}
}

func TestNewClientLeavesSharedClientClean(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"msg": "success", "data": [{"securities_trader_id": "1020", "buy": 1, "sell": 0}]}`))
	}))
	t.Cleanup(srv.Close)

	shared := httputil.New(5*time.Second, logger.NewNop()).DisableRetry()
	c := NewClient(srv.URL, "tok123", shared, logger.NewNop())

	if _, err := c.FetchBrokerTrades(context.Background(), "2330", time.Now()); err != nil {
		t.Fatalf("FetchBrokerTrades: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("client auth header = %q, want Bearer tok123", gotAuth)
	}

	// The shared client must not have picked up the bearer token.
	resp, err := shared.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("shared Get: %v", err)
	}
	resp.Body.Close()
	if gotAuth != "" {
		t.Errorf("shared client sent Authorization %q, want none", gotAuth)
	}
}

func TestFetchBrokerTradesNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"msg": "success", "data": []}`))
	}, "")

	_, err := c.FetchBrokerTrades(context.Background(), "2330", time.Now())
	if !errors.Is(err, market.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchBrokerTradesBadMsg(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"msg": "request error", "data": []}`))
	}, "")

	_, err := c.FetchBrokerTrades(context.Background(), "2330", time.Now())
	if !errors.Is(err, market.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchLendingBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("dataset"); got != "TaiwanDailyShortSaleBalances" {
			t.Errorf("dataset = %q", got)
		}
		w.Write([]byte(`{
			"msg": "success",
			"data": [{"date": "2026-01-30", "SBLShortSalesCurrentDayBalance": 123456}]
		}`))
	}, "")

	balance, err := c.FetchLendingBalance(context.Background(), "2330", time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchLendingBalance: %v", err)
	}
	if balance != 123_456 {
		t.Errorf("balance = %d, want 123456", balance)
	}
}

func TestFetchCandles(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("dataset"); got != "TaiwanStockPrice" {
			t.Errorf("dataset = %q", got)
		}
		w.Write([]byte(`{
			"msg": "success",
			"data": [
				{"date": "2026-01-29", "max": 612, "min": 600, "close": 605, "Trading_Volume": 24000000},
				{"date": "2026-01-30", "max": 615, "min": 605, "close": 610, "Trading_Volume": 25000000}
			]
		}`))
	}, "")

	candles, err := c.FetchCandles(context.Background(), "2330",
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchCandles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	last := candles[1]
	if last.Close != 610 || last.Volume != 25_000_000 {
		t.Errorf("unexpected last candle: %+v", last)
	}
	if !last.Date.Equal(time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last candle date = %v", last.Date)
	}
}

func TestHasToken(t *testing.T) {
	with := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "tok")
	without := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, "")

	if !with.HasToken() {
		t.Error("expected HasToken true")
	}
	if without.HasToken() {
		t.Error("expected HasToken false")
	}
}
