package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/report"
	"github.com/yhlin/chipmon/internal/riskmon"
	"github.com/yhlin/chipmon/pkg/logger"
)

// RiskRunner runs one market risk dashboard.
type RiskRunner interface {
	Run(ctx context.Context, target time.Time) (*riskmon.Report, error)
	RunHistory(ctx context.Context, target time.Time) (*riskmon.History, error)
}

// DailyRiskJob runs the market risk dashboard for the last trading day
// and writes the JSON artifact. It fires half an hour after the
// enrichment batch so the two never compete for the venue rate budget.
type DailyRiskJob struct {
	runner      RiskRunner
	writer      *report.Writer
	withHistory bool
	schedule    string
	logger      *logger.Logger
}

// NewDailyRiskJob creates the job.
func NewDailyRiskJob(runner RiskRunner, writer *report.Writer, withHistory bool, log *logger.Logger) *DailyRiskJob {
	return &DailyRiskJob{
		runner:      runner,
		writer:      writer,
		withHistory: withHistory,
		schedule:    "0 30 18 * * 1-5",
		logger:      log.WithField("job", "daily_risk"),
	}
}

// Name returns the job name
func (j *DailyRiskJob) Name() string { return "daily_risk" }

// Schedule returns the cron schedule expression
func (j *DailyRiskJob) Schedule() string { return j.schedule }

// Run executes one dashboard run for the last trading day.
func (j *DailyRiskJob) Run(ctx context.Context) error {
	target := market.LastTradingDay(time.Now())

	j.logger.WithField("date", target.Format(market.ISOLayout)).Info("Daily risk dashboard starting")

	dashboard, err := j.runner.Run(ctx, target)
	if err != nil {
		return fmt.Errorf("risk run: %w", err)
	}

	var history *riskmon.History
	if j.withHistory {
		history, err = j.runner.RunHistory(ctx, target)
		if err != nil {
			return fmt.Errorf("risk history: %w", err)
		}
	}

	if _, err := j.writer.WriteRisk(target, dashboard, history); err != nil {
		return fmt.Errorf("risk report write: %w", err)
	}

	return nil
}
