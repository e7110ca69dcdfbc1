package jobs

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/report"
	"github.com/yhlin/chipmon/internal/riskmon"
	"github.com/yhlin/chipmon/pkg/logger"
)

type fakeRiskRunner struct {
	report     *riskmon.Report
	history    *riskmon.History
	err        error
	gotDate    time.Time
	gotHistory bool
}

func (f *fakeRiskRunner) Run(_ context.Context, target time.Time) (*riskmon.Report, error) {
	f.gotDate = target
	return f.report, f.err
}

func (f *fakeRiskRunner) RunHistory(_ context.Context, _ time.Time) (*riskmon.History, error) {
	f.gotHistory = true
	return f.history, f.err
}

func TestDailyRiskJobRun(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRiskRunner{
		report:  &riskmon.Report{Date: "2026-01-30", Indicators: []riskmon.Indicator{{Metric: riskmon.MetricVIX}}},
		history: &riskmon.History{Samples: 5},
	}

	job := NewDailyRiskJob(runner, report.NewWriter(dir, logger.NewNop()), true, logger.NewNop())
	require.NoError(t, job.Run(context.Background()))

	want := market.LastTradingDay(time.Now())
	assert.Equal(t, want.Format(market.ISOLayout), runner.gotDate.Format(market.ISOLayout))
	assert.True(t, runner.gotHistory)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDailyRiskJobSkipsHistory(t *testing.T) {
	runner := &fakeRiskRunner{report: &riskmon.Report{Date: "2026-01-30"}}

	job := NewDailyRiskJob(runner, report.NewWriter(t.TempDir(), logger.NewNop()), false, logger.NewNop())
	require.NoError(t, job.Run(context.Background()))
	assert.False(t, runner.gotHistory)
}

func TestDailyRiskJobRunnerFailure(t *testing.T) {
	runner := &fakeRiskRunner{err: errors.New("boom")}
	job := NewDailyRiskJob(runner, report.NewWriter(t.TempDir(), logger.NewNop()), false, logger.NewNop())

	assert.Error(t, job.Run(context.Background()))
}

func TestDailyRiskJobSchedule(t *testing.T) {
	job := NewDailyRiskJob(&fakeRiskRunner{}, report.NewWriter(t.TempDir(), logger.NewNop()), false, logger.NewNop())

	assert.Equal(t, "daily_risk", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())
}
