package enrich

import (
	"sort"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/stats"
)

// Metric names. Every name here must carry simulation bounds, checked
// at orchestrator construction.
const (
	MetricBrokerDiff    = "broker_buy_sell_diff"
	MetricConcentration = "chip_concentration_5d"
	MetricSBLBalance    = "sbl_sell_balance"
	MetricCoverDays     = "short_cover_days"
	MetricVWAP          = "vwap_20d_approx"
	MetricVWAPBias      = "vwap_bias"
)

// MetricNames returns every derived metric that can fall back to
// simulation, in output order.
func MetricNames() []string {
	return []string{
		MetricBrokerDiff,
		MetricConcentration,
		MetricSBLBalance,
		MetricCoverDays,
		MetricVWAP,
		MetricVWAPBias,
	}
}

// topGroupSize is the number of brokers counted on each side of the
// concentration ratio.
const topGroupSize = 15

// BrokerBuySellDiff counts net-buying brokers minus net-selling brokers
// in one day's branch report. Brokers with zero net position count for
// neither side.
func BrokerBuySellDiff(trades []market.BrokerTrade) int {
	buying, selling := 0, 0
	for _, t := range trades {
		switch net := t.Buy - t.Sell; {
		case net > 0:
			buying++
		case net < 0:
			selling++
		}
	}
	return buying - selling
}

// ChipConcentration computes the top-15 concentration ratio over a
// multi-day broker report: (sum of top 15 net buyers − |sum of top 15
// net sellers|) / total window volume × 100. Volume arrives in lots and
// is converted to shares before the division. Returns false when there
// are no trades or no volume to divide by.
func ChipConcentration(trades []market.BrokerTrade, volumeLots float64) (float64, bool) {
	if len(trades) == 0 || volumeLots <= 0 {
		return 0, false
	}

	netByBroker := make(map[string]int64)
	for _, t := range trades {
		netByBroker[t.BrokerID] += t.Buy - t.Sell
	}

	nets := make([]int64, 0, len(netByBroker))
	for _, net := range netByBroker {
		nets = append(nets, net)
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i] > nets[j] })

	var topBuyers, topSellers int64
	for i := 0; i < topGroupSize && i < len(nets); i++ {
		topBuyers += nets[i]
	}
	for i := len(nets) - 1; i >= len(nets)-topGroupSize && i >= 0; i-- {
		topSellers += nets[i]
	}

	volumeShares := volumeLots * market.SharesPerLot
	concentration := (float64(topBuyers) - absF(float64(topSellers))) / volumeShares * 100
	return stats.Round(concentration, 2), true
}

// ShortCoverDays computes how many average trading days the lending
// short balance represents: balance / average daily volume. Balance is
// in shares, volume in lots. Returns false when there is no volume.
func ShortCoverDays(balanceShares int64, avgVolumeLots float64) (float64, bool) {
	if avgVolumeLots <= 0 {
		return 0, false
	}
	days := float64(balanceShares) / (avgVolumeLots * market.SharesPerLot)
	return stats.Round(days, 2), true
}

// VWAPApprox computes the volume-weighted average price over a candle
// window using the typical price (high+low+close)/3. Returns false when
// fewer than minSamples candles are available or total volume is zero.
func VWAPApprox(candles []market.Candle, minSamples int) (float64, bool) {
	if len(candles) < minSamples {
		return 0, false
	}

	var tpVol, vol float64
	for _, c := range candles {
		typical := (c.High + c.Low + c.Close) / 3
		tpVol += typical * float64(c.Volume)
		vol += float64(c.Volume)
	}
	if vol <= 0 {
		return 0, false
	}

	return stats.Round(tpVol/vol, 2), true
}

// VWAPBias computes the percentage deviation of the closing price from
// the window VWAP. Undefined when either input is non-positive.
func VWAPBias(close, vwap float64) (float64, bool) {
	if vwap <= 0 || close <= 0 {
		return 0, false
	}
	return stats.Round((close-vwap)/vwap*100, 2), true
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
