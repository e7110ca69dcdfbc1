// Package riskmon assembles the daily market-level risk dashboard:
// whole-market institutional totals, margin financing change, the
// options put/call ratio, foreign futures positioning and a handful of
// international benchmarks. Unlike the per-security enrichment these
// indicators are observational; a source that yields nothing produces
// an indicator with no value rather than a synthesized one.
package riskmon

// Level is the traffic-light risk assessment of one indicator.
type Level string

const (
	LevelSafe    Level = "safe"
	LevelWatch   Level = "watch"
	LevelDanger  Level = "danger"
	LevelNeutral Level = "neutral"
	LevelNoData  Level = "no_data"
)

// Metric keys for the dashboard indicators.
const (
	MetricUS10Y          = "us_10y"
	MetricGold           = "gold"
	MetricUSDTWD         = "usd_twd"
	MetricSOX            = "sox"
	MetricVIX            = "vix"
	MetricForeignNet     = "foreign_net"
	MetricTrustNet       = "trust_net"
	MetricPCRatio        = "pc_ratio"
	MetricTotalNet       = "total_net"
	MetricForeignFutures = "foreign_futures"
	MetricMarginChange   = "margin_change"
)

// Indicator is one row of the dashboard. Value is nil when every
// source for the metric failed; ChangePct is nil for metrics whose
// source does not publish a day-over-day change.
type Indicator struct {
	Category  string   `json:"category"`
	Name      string   `json:"name"`
	Metric    string   `json:"metric"`
	Value     *float64 `json:"value"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	Unit      string   `json:"unit"`
	Level     Level    `json:"level"`
}

// assess maps an indicator value to a risk level. Only a few metrics
// carry calibrated thresholds; the rest read neutral.
func assess(metric string, value *float64) Level {
	if value == nil {
		return LevelNoData
	}
	v := *value

	switch metric {
	case MetricVIX:
		switch {
		case v < 20:
			return LevelSafe
		case v < 30:
			return LevelWatch
		default:
			return LevelDanger
		}
	case MetricForeignNet:
		switch {
		case v < 0:
			return LevelDanger
		case v < 100:
			return LevelWatch
		default:
			return LevelSafe
		}
	case MetricTotalNet:
		switch {
		case v < -200:
			return LevelDanger
		case v < 0:
			return LevelWatch
		default:
			return LevelSafe
		}
	}

	return LevelNeutral
}
