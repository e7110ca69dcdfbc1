package enrich

import "github.com/yhlin/chipmon/internal/market"

// Record is one entity's fully-assembled daily output: raw venue
// fields, trailing-window rollups and the derived metrics with their
// provenance. Pointer fields are absent when the trailing window could
// not be filled; absence is never written as zero.
type Record struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Date string `json:"date"`

	Close      float64 `json:"close"`
	Change     float64 `json:"change"`
	PctChange  float64 `json:"pct_change"`
	VolumeLots int64   `json:"volume_lots"`

	ForeignDailyLots *float64 `json:"foreign_daily_lots,omitempty"`
	TrustDailyLots   *float64 `json:"trust_daily_lots,omitempty"`
	DealerDailyLots  *float64 `json:"dealer_daily_lots,omitempty"`

	Foreign5dLots *float64 `json:"foreign_5d_lots,omitempty"`
	Trust5dLots   *float64 `json:"trust_5d_lots,omitempty"`
	Dealer5dLots  *float64 `json:"dealer_5d_lots,omitempty"`

	MarginDailyChange  *int64   `json:"margin_daily_change,omitempty"`
	Margin5dSum        *float64 `json:"margin_5d_sum,omitempty"`
	LendingDailyChange *int64   `json:"lending_daily_change,omitempty"`

	DistMA20 *float64 `json:"dist_ma20,omitempty"`

	Volume5dLots float64 `json:"volume_5d_lots"`

	Metrics    map[string]market.EnrichedValue `json:"metrics"`
	Provenance market.Provenance               `json:"provenance"`
	Simulated  bool                            `json:"simulated"`
}

// Metric returns one derived metric value, zero-valued when absent.
func (r *Record) Metric(name string) market.EnrichedValue {
	return r.Metrics[name]
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }
