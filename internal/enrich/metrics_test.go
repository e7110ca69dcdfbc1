package enrich

import (
	"testing"

	"github.com/yhlin/chipmon/internal/market"
)

func TestBrokerBuySellDiff(t *testing.T) {
	trades := []market.BrokerTrade{
		{BrokerID: "1020", Buy: 5000, Sell: 1000},
		{BrokerID: "9200", Buy: 2000, Sell: 500},
		{BrokerID: "5850", Buy: 100, Sell: 3000},
		{BrokerID: "8880", Buy: 700, Sell: 700},
	}

	if got := BrokerBuySellDiff(trades); got != 1 {
		t.Errorf("diff = %d, want 1 (2 buyers - 1 seller, flat broker ignored)", got)
	}

	if got := BrokerBuySellDiff(nil); got != 0 {
		t.Errorf("diff of empty report = %d, want 0", got)
	}
}

func TestChipConcentration(t *testing.T) {
	// Two buyers and one seller, repeated across days for one broker.
	trades := []market.BrokerTrade{
		{BrokerID: "A", Buy: 300_000, Sell: 0},
		{BrokerID: "A", Buy: 200_000, Sell: 0},
		{BrokerID: "B", Buy: 100_000, Sell: 0},
		{BrokerID: "C", Buy: 0, Sell: 200_000},
	}

	// Nets: A +500k, B +100k, C -200k. With fewer than 15 brokers the
	// buyer and seller groups both cover everyone: (400k - 400k) = 0.
	conc, ok := ChipConcentration(trades, 5000)
	if !ok {
		t.Fatal("expected a value")
	}
	if conc != 0 {
		t.Errorf("concentration = %v, want 0", conc)
	}

	if _, ok := ChipConcentration(trades, 0); ok {
		t.Error("expected no value with zero volume")
	}
	if _, ok := ChipConcentration(nil, 5000); ok {
		t.Error("expected no value with no trades")
	}
}

func TestShortCoverDays(t *testing.T) {
	days, ok := ShortCoverDays(2_000_000, 1000)
	if !ok {
		t.Fatal("expected a value")
	}
	if days != 2.0 {
		t.Errorf("cover days = %v, want 2.0", days)
	}

	if _, ok := ShortCoverDays(2_000_000, 0); ok {
		t.Error("expected no value with zero volume")
	}
}

func TestVWAPApprox(t *testing.T) {
	candles := make([]market.Candle, 12)
	for i := range candles {
		candles[i] = market.Candle{High: 110, Low: 90, Close: 100, Volume: 1000}
	}

	vwap, ok := VWAPApprox(candles, 10)
	if !ok {
		t.Fatal("expected a value")
	}
	if vwap != 100.0 {
		t.Errorf("vwap = %v, want 100.0", vwap)
	}

	if _, ok := VWAPApprox(candles[:5], 10); ok {
		t.Error("expected no value below the sample floor")
	}

	zeroVol := []market.Candle{{High: 110, Low: 90, Close: 100}}
	if _, ok := VWAPApprox(zeroVol, 1); ok {
		t.Error("expected no value with zero total volume")
	}
}

func TestVWAPBias(t *testing.T) {
	bias, ok := VWAPBias(105, 100)
	if !ok {
		t.Fatal("expected a value")
	}
	if bias != 5.0 {
		t.Errorf("bias = %v, want 5.0", bias)
	}

	if _, ok := VWAPBias(105, 0); ok {
		t.Error("expected no value with non-positive vwap")
	}
	if _, ok := VWAPBias(0, 100); ok {
		t.Error("expected no value with non-positive close")
	}
}
