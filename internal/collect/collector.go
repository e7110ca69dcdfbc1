// Package collect drives a daily source across a list of candidate
// business dates, building an ordered metric series while tolerating
// per-date failures. A shortfall against the requested window is a
// first-class outcome for callers, never an error.
package collect

import (
	"context"
	"errors"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Collector gathers per-date values from a source, one date at a time,
// in chronological order.
type Collector struct {
	delay  time.Duration
	logger *logger.Logger
}

// New creates a Collector. delay is the mandatory pause between
// consecutive date fetches, a courtesy to rate-limited upstreams; zero
// disables it, which tests rely on.
func New(delay time.Duration, log *logger.Logger) *Collector {
	return &Collector{
		delay:  delay,
		logger: log.WithField("module", "collect"),
	}
}

// Series queries src for each candidate date in order and returns the
// observations that succeeded. A failure on one date never aborts the
// remaining dates: empty days are logged at debug (expected, e.g.
// holidays), transport and parse failures at warn. The result length is
// at most len(dates); callers enforce their own sufficiency policy.
//
// Cancelling the context stops collection early and returns what was
// gathered so far.
func (c *Collector) Series(ctx context.Context, src market.DailySource, entityID, metric string, dates []time.Time) market.Series {
	series := make(market.Series, 0, len(dates))

	for i, date := range dates {
		if ctx.Err() != nil {
			return series
		}

		value, err := src.FetchDaily(ctx, entityID, date)
		switch {
		case err == nil:
			series = append(series, market.Point{Date: date, Value: value})
		case errors.Is(err, market.ErrNoData):
			c.logger.WithFields(map[string]interface{}{
				"entity": entityID,
				"metric": metric,
				"date":   date.Format(market.ISOLayout),
			}).Debug("No data for date, skipping")
		default:
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"entity": entityID,
				"metric": metric,
				"date":   date.Format(market.ISOLayout),
			}).Warn("Fetch failed for date, skipping")
		}

		if c.delay > 0 && i < len(dates)-1 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return series
			}
		}
	}

	return series
}

// Gather runs fetch for each candidate date in order and concatenates
// the row sets that succeeded, under the same tolerance and pacing
// rules as Series. Used for sources that return multiple rows per date,
// such as broker trading reports.
func Gather[T any](ctx context.Context, c *Collector, entityID, metric string, dates []time.Time, fetch func(context.Context, time.Time) ([]T, error)) []T {
	var rows []T

	for i, date := range dates {
		if ctx.Err() != nil {
			return rows
		}

		batch, err := fetch(ctx, date)
		switch {
		case err == nil:
			rows = append(rows, batch...)
		case errors.Is(err, market.ErrNoData):
			c.logger.WithFields(map[string]interface{}{
				"entity": entityID,
				"metric": metric,
				"date":   date.Format(market.ISOLayout),
			}).Debug("No data for date, skipping")
		default:
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"entity": entityID,
				"metric": metric,
				"date":   date.Format(market.ISOLayout),
			}).Warn("Fetch failed for date, skipping")
		}

		if c.delay > 0 && i < len(dates)-1 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return rows
			}
		}
	}

	return rows
}
