// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yhlin/chipmon/internal/enrich"
	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/report"
	"github.com/yhlin/chipmon/internal/watchlist"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Runner runs one enrichment batch.
type Runner interface {
	Run(ctx context.Context, target time.Time, list *watchlist.Watchlist) ([]enrich.Record, error)
}

// Sink receives a completed run, e.g. the API run store.
type Sink interface {
	Put(date string, records []enrich.Record)
}

// DailyEnrichmentJob runs the enrichment pipeline for the last trading
// day and writes the report artifacts.
type DailyEnrichmentJob struct {
	runner   Runner
	list     *watchlist.Watchlist
	writer   *report.Writer
	sink     Sink
	schedule string
	logger   *logger.Logger
}

// NewDailyEnrichmentJob creates the job. sink may be nil when no API
// server is running. The TWSE after-trading tables settle in the late
// afternoon, so the default schedule fires at 18:00 on weekdays.
func NewDailyEnrichmentJob(runner Runner, list *watchlist.Watchlist, writer *report.Writer, sink Sink, log *logger.Logger) *DailyEnrichmentJob {
	return &DailyEnrichmentJob{
		runner:   runner,
		list:     list,
		writer:   writer,
		sink:     sink,
		schedule: "0 0 18 * * 1-5",
		logger:   log.WithField("job", "daily_enrichment"),
	}
}

// Name returns the job name
func (j *DailyEnrichmentJob) Name() string { return "daily_enrichment" }

// Schedule returns the cron schedule expression
func (j *DailyEnrichmentJob) Schedule() string { return j.schedule }

// Run executes one enrichment batch for the last trading day.
func (j *DailyEnrichmentJob) Run(ctx context.Context) error {
	target := market.LastTradingDay(time.Now())

	j.logger.WithField("date", target.Format(market.ISOLayout)).Info("Daily enrichment starting")

	records, err := j.runner.Run(ctx, target, j.list)
	if err != nil {
		return fmt.Errorf("enrichment run: %w", err)
	}

	if _, err := j.writer.WriteAll(target, records); err != nil {
		return fmt.Errorf("report write: %w", err)
	}

	if j.sink != nil {
		j.sink.Put(target.Format(market.ISOLayout), records)
	}

	return nil
}
