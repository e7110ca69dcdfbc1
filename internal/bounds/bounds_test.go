package bounds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhlin/chipmon/internal/stats"
)

var testRequired = []string{
	"broker_buy_sell_diff",
	"chip_concentration_5d",
	"sbl_sell_balance",
	"short_cover_days",
	"vwap_20d_approx",
	"vwap_bias",
}

func TestDefaultSatisfiesRequired(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate(testRequired))

	b, ok := cfg.Bounds("chip_concentration_5d")
	require.True(t, ok)
	assert.Equal(t, -10.0, b.Low)
	assert.Equal(t, 10.0, b.High)

	assert.Equal(t, stats.RoundInteger, cfg.Rounding("broker_buy_sell_diff"))
	assert.Equal(t, stats.RoundTwoDecimals, cfg.Rounding("short_cover_days"))
}

func TestValidateMissingMetric(t *testing.T) {
	cfg := &Config{Metrics: map[string]Metric{
		"chip_concentration_5d": {Low: -10, High: 10},
	}}

	err := cfg.Validate(testRequired)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing bounds")
}

func TestValidateInvertedInterval(t *testing.T) {
	cfg := &Config{Metrics: map[string]Metric{
		"short_cover_days": {Low: 30, High: 0},
	}}

	err := cfg.Validate(nil)
	require.Error(t, err)
}

func TestValidateUnknownRounding(t *testing.T) {
	cfg := &Config{Metrics: map[string]Metric{
		"short_cover_days": {Low: 0, High: 30, Round: "banker"},
	}}

	err := cfg.Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rounding")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bounds.yaml")

	content := `metrics:
  chip_concentration_5d:
    low: -5.0
    high: 5.0
    round: decimals2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, []string{"chip_concentration_5d"})
	require.NoError(t, err)

	b, ok := cfg.Bounds("chip_concentration_5d")
	require.True(t, ok)
	assert.Equal(t, -5.0, b.Low)
	assert.Equal(t, 5.0, b.High)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bounds.yaml")

	content := `metrics:
  chip_concentration_5d:
    low: -5.0
    high: 5.0
    rnd: integer
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("", testRequired)
	require.NoError(t, err)
	assert.Len(t, cfg.Metrics, 6)
}
