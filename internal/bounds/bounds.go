// Package bounds holds the per-metric simulation bounds and rounding
// policy. A metric that can fall back to simulation without an entry
// here is a configuration error, caught before any fetching begins.
package bounds

import (
	"fmt"

	"github.com/yhlin/chipmon/internal/simulate"
	"github.com/yhlin/chipmon/internal/stats"
)

// Metric is the configuration for one derived metric.
type Metric struct {
	Low   float64 `yaml:"low" json:"low"`
	High  float64 `yaml:"high" json:"high"`
	Round string  `yaml:"round" json:"round"` // "decimals2", "integer" or "none"
}

// Config maps metric name to its bounds and rounding policy.
type Config struct {
	Metrics map[string]Metric `yaml:"metrics" json:"metrics"`
}

// Default returns the built-in configuration. The intervals match what
// the upstream datasets plausibly produce for a liquid Taiwan security.
func Default() *Config {
	return &Config{
		Metrics: map[string]Metric{
			"broker_buy_sell_diff":  {Low: -50, High: 50, Round: "integer"},
			"chip_concentration_5d": {Low: -10.0, High: 10.0, Round: "decimals2"},
			"sbl_sell_balance":      {Low: 0, High: 1_000_000, Round: "integer"},
			"short_cover_days":      {Low: 0.0, High: 30.0, Round: "decimals2"},
			"vwap_20d_approx":       {Low: 10.0, High: 1_000.0, Round: "decimals2"},
			"vwap_bias":             {Low: -15.0, High: 15.0, Round: "decimals2"},
		},
	}
}

// Validate checks every interval is well-formed, every rounding policy
// is known, and every required metric has an entry.
func (c *Config) Validate(required []string) error {
	for name, m := range c.Metrics {
		if err := m.bounds().Validate(); err != nil {
			return fmt.Errorf("metric %s: %w", name, err)
		}
		switch m.Round {
		case "", "none", "decimals2", "integer":
		default:
			return fmt.Errorf("metric %s: unknown rounding policy %q", name, m.Round)
		}
	}

	for _, name := range required {
		if _, ok := c.Metrics[name]; !ok {
			return fmt.Errorf("missing bounds for metric %s", name)
		}
	}

	return nil
}

// Bounds returns the simulation interval for a metric.
func (c *Config) Bounds(metric string) (simulate.Bounds, bool) {
	m, ok := c.Metrics[metric]
	if !ok {
		return simulate.Bounds{}, false
	}
	return m.bounds(), true
}

// Rounding returns the rounding policy for a metric. Unknown metrics
// round to two decimals, the policy for ratio metrics.
func (c *Config) Rounding(metric string) stats.Rounding {
	m, ok := c.Metrics[metric]
	if !ok {
		return stats.RoundTwoDecimals
	}
	switch m.Round {
	case "integer":
		return stats.RoundInteger
	case "none":
		return stats.RoundNone
	default:
		return stats.RoundTwoDecimals
	}
}

func (m Metric) bounds() simulate.Bounds {
	return simulate.Bounds{Low: m.Low, High: m.High}
}
