// Package enrich composes the calendar, collectors, merger, statistics
// and simulator into the per-entity enrichment pipeline. Every output
// record is complete: a metric whose live data could not be obtained is
// filled with a bounded deterministic placeholder and stamped as
// simulated.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yhlin/chipmon/internal/bounds"
	"github.com/yhlin/chipmon/internal/collect"
	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/simulate"
	"github.com/yhlin/chipmon/internal/stats"
	"github.com/yhlin/chipmon/internal/watchlist"
	"github.com/yhlin/chipmon/pkg/logger"
)

// VenueClient fetches one venue's whole-market daily tables.
type VenueClient interface {
	FetchQuotes(ctx context.Context, date time.Time) (map[string]market.Quote, error)
	FetchInstitutional(ctx context.Context, date time.Time) (map[string]market.InstitutionalFlow, error)
	FetchMargin(ctx context.Context, date time.Time) (map[string]market.MarginBalance, error)
}

// DetailSource fetches per-security datasets that the venue tables do
// not carry: broker branch reports, lending balances and candle
// history.
type DetailSource interface {
	HasToken() bool
	FetchBrokerTrades(ctx context.Context, code string, date time.Time) ([]market.BrokerTrade, error)
	FetchLendingBalance(ctx context.Context, code string, date time.Time) (int64, error)
	FetchCandles(ctx context.Context, code string, start, end time.Time) ([]market.Candle, error)
}

// Options tunes window sizes and request pacing.
type Options struct {
	WindowDays     int
	WindowBuffer   int
	VWAPDays       int
	VWAPMinSamples int
	DateDelay      time.Duration
	EntityDelay    time.Duration
}

// Orchestrator runs the enrichment pipeline over a watchlist.
type Orchestrator struct {
	primary   VenueClient
	secondary VenueClient
	detail    DetailSource
	bounds    *bounds.Config
	sim       *simulate.Simulator
	opts      Options
	logger    *logger.Logger
}

// New builds an Orchestrator. Bounds for every simulatable metric are
// validated here, before any fetching: running with undefined bounds
// would be worse than failing fast.
func New(primary, secondary VenueClient, detail DetailSource, boundsCfg *bounds.Config, sim *simulate.Simulator, opts Options, log *logger.Logger) (*Orchestrator, error) {
	if err := boundsCfg.Validate(MetricNames()); err != nil {
		return nil, fmt.Errorf("bounds configuration: %w", err)
	}
	if opts.WindowDays <= 0 {
		return nil, fmt.Errorf("window days must be positive, got %d", opts.WindowDays)
	}

	return &Orchestrator{
		primary:   primary,
		secondary: secondary,
		detail:    detail,
		bounds:    boundsCfg,
		sim:       sim,
		opts:      opts,
		logger:    log.WithField("module", "enrich"),
	}, nil
}

// daySnapshot holds one date's merged dual-venue tables.
type daySnapshot struct {
	quotes  map[string]market.Quote
	flows   map[string]market.InstitutionalFlow
	margins map[string]market.MarginBalance
}

// run carries the per-invocation caches. Nothing here survives past one
// Run call.
type run struct {
	o         *Orchestrator
	target    time.Time
	history   []time.Time
	snapshots map[string]*daySnapshot
	collector *collect.Collector
}

// Run enriches every watchlist entry for the target date. Entities are
// processed independently: a failure on one is logged and the batch
// continues. The returned slice holds whatever was produced before ctx
// was cancelled, alongside ctx's error if any.
func (o *Orchestrator) Run(ctx context.Context, target time.Time, list *watchlist.Watchlist) ([]Record, error) {
	target = market.Day(target)

	r := &run{
		o:         o,
		target:    target,
		history:   market.PreviousBusinessDays(target, o.opts.WindowDays, o.opts.WindowBuffer),
		snapshots: make(map[string]*daySnapshot),
		collector: collect.New(0, o.logger),
	}

	o.logger.WithFields(map[string]interface{}{
		"date":     target.Format(market.ISOLayout),
		"entities": len(list.Entries),
	}).Info("Starting enrichment run")

	r.prefetch(ctx)

	records := make([]Record, 0, len(list.Entries))
	for i, entry := range list.Entries {
		if ctx.Err() != nil {
			return records, ctx.Err()
		}

		records = append(records, r.enrichEntity(ctx, entry.Code, entry.Name))

		if o.opts.EntityDelay > 0 && i < len(list.Entries)-1 {
			select {
			case <-time.After(o.opts.EntityDelay):
			case <-ctx.Done():
				return records, ctx.Err()
			}
		}
	}

	o.logger.WithField("records", len(records)).Info("Enrichment run complete")
	return records, ctx.Err()
}

// prefetch warms the snapshot cache for the target date and the history
// window, pacing requests by the configured date delay. Later snapshot
// lookups are pure cache reads.
func (r *run) prefetch(ctx context.Context) {
	dates := append([]time.Time{r.target}, r.history...)
	for i, date := range dates {
		if ctx.Err() != nil {
			return
		}
		r.snapshot(ctx, date)

		if r.o.opts.DateDelay > 0 && i < len(dates)-1 {
			select {
			case <-time.After(r.o.opts.DateDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// snapshot returns the merged dual-venue tables for a date, fetching
// and caching on first use. A venue that fails or has no data for the
// date contributes an empty table; the merge then simply carries the
// other venue.
func (r *run) snapshot(ctx context.Context, date time.Time) *daySnapshot {
	key := date.Format(market.DateKeyLayout)
	if s, ok := r.snapshots[key]; ok {
		return s
	}

	s := &daySnapshot{
		quotes: market.MergeVenues(
			venueTable(r.o.logger, date, "quotes", func() (map[string]market.Quote, error) { return r.o.primary.FetchQuotes(ctx, date) }),
			venueTable(r.o.logger, date, "quotes", func() (map[string]market.Quote, error) { return r.o.secondary.FetchQuotes(ctx, date) }),
		),
		flows: market.MergeVenues(
			venueTable(r.o.logger, date, "institutional", func() (map[string]market.InstitutionalFlow, error) { return r.o.primary.FetchInstitutional(ctx, date) }),
			venueTable(r.o.logger, date, "institutional", func() (map[string]market.InstitutionalFlow, error) { return r.o.secondary.FetchInstitutional(ctx, date) }),
		),
		margins: market.MergeVenues(
			venueTable(r.o.logger, date, "margin", func() (map[string]market.MarginBalance, error) { return r.o.primary.FetchMargin(ctx, date) }),
			venueTable(r.o.logger, date, "margin", func() (map[string]market.MarginBalance, error) { return r.o.secondary.FetchMargin(ctx, date) }),
		),
	}

	r.snapshots[key] = s
	return s
}

// venueTable fetches one venue table, degrading to an empty map on any
// failure. Holidays log at debug, real failures at warn.
func venueTable[R any](log *logger.Logger, date time.Time, table string, fetch func() (map[string]R, error)) map[string]R {
	rows, err := fetch()
	switch {
	case err == nil:
		return rows
	case errors.Is(err, market.ErrNoData):
		log.WithFields(map[string]interface{}{
			"table": table,
			"date":  date.Format(market.ISOLayout),
		}).Debug("No table data for date")
	default:
		log.WithError(err).WithFields(map[string]interface{}{
			"table": table,
			"date":  date.Format(market.ISOLayout),
		}).Warn("Table fetch failed")
	}
	return map[string]R{}
}

// enrichEntity assembles one entity's record: raw fields from the
// target-date snapshot, trailing rollups from the history snapshots,
// then each derived metric with simulation fallback.
func (r *run) enrichEntity(ctx context.Context, code, name string) Record {
	o := r.o
	snap := r.snapshot(ctx, r.target)

	rec := Record{
		Code:    code,
		Name:    name,
		Date:    r.target.Format(market.ISOLayout),
		Metrics: make(map[string]market.EnrichedValue, len(MetricNames())),
	}

	quote, hasQuote := snap.quotes[code]
	if hasQuote {
		rec.Close = quote.Close
		rec.Change = quote.Change
		rec.PctChange = quote.PctChange
		rec.VolumeLots = quote.Volume
	}

	if flow, ok := snap.flows[code]; ok {
		rec.ForeignDailyLots = ptrF(stats.Round(market.SharesToLotsF(flow.ForeignNet), 0))
		rec.TrustDailyLots = ptrF(stats.Round(market.SharesToLotsF(flow.TrustNet), 0))
		rec.DealerDailyLots = ptrF(stats.Round(market.SharesToLotsF(flow.DealerNet), 0))
	}

	if mb, ok := snap.margins[code]; ok {
		rec.MarginDailyChange = ptrI(mb.MarginChange)
		rec.LendingDailyChange = ptrI(mb.ShortChange)
	}

	w := o.opts.WindowDays

	volSeries := r.collector.Series(ctx, r.quoteVolumeSource(), code, "volume", r.history)
	if sum, ok := stats.TrailingSum(volSeries, w); ok {
		rec.Volume5dLots = sum
	} else if hasQuote {
		// Estimate from the target day when the window cannot be
		// filled, so the ratio metrics still have a denominator.
		rec.Volume5dLots = float64(quote.Volume * int64(w))
	}
	avgVolumeLots := rec.Volume5dLots / float64(w)

	rec.Foreign5dLots = r.trailingSum(ctx, code, "foreign_net", r.flowSource(func(f market.InstitutionalFlow) float64 {
		return market.SharesToLotsF(f.ForeignNet)
	}))
	rec.Trust5dLots = r.trailingSum(ctx, code, "trust_net", r.flowSource(func(f market.InstitutionalFlow) float64 {
		return market.SharesToLotsF(f.TrustNet)
	}))
	rec.Dealer5dLots = r.trailingSum(ctx, code, "dealer_net", r.flowSource(func(f market.InstitutionalFlow) float64 {
		return market.SharesToLotsF(f.DealerNet)
	}))
	rec.Margin5dSum = r.trailingSum(ctx, code, "margin_change", r.marginChangeSource())

	candles := r.fetchCandles(ctx, code)
	if ma20, ok := r.movingAverage(candles); ok && rec.Close > 0 {
		rec.DistMA20 = ptrF(stats.Round((rec.Close-ma20)/ma20*100, 2))
	}

	r.computeMetrics(ctx, code, &rec, avgVolumeLots, candles)

	contributions := make([]market.EnrichedValue, 0, len(MetricNames()))
	for _, metric := range MetricNames() {
		ev := rec.Metrics[metric]
		contributions = append(contributions, ev)
		if ev.Simulated {
			rec.Simulated = true
		}
	}
	rec.Provenance = market.CombineProvenance(contributions)

	o.logger.WithFields(map[string]interface{}{
		"code":       code,
		"provenance": string(rec.Provenance),
	}).Debug("Entity enriched")
	return rec
}

// computeMetrics fills the six derived metrics, falling back to the
// deterministic simulator whenever live data yields no usable value.
func (r *run) computeMetrics(ctx context.Context, code string, rec *Record, avgVolumeLots float64, candles []market.Candle) {
	o := r.o

	// Broker buy/sell house difference, target date only.
	trades := r.fetchBrokerTrades(ctx, code, []time.Time{r.target})
	if len(trades) > 0 {
		rec.Metrics[MetricBrokerDiff] = market.Fetched(float64(BrokerBuySellDiff(trades)))
	} else {
		rec.Metrics[MetricBrokerDiff] = r.simulate(code, MetricBrokerDiff)
	}

	// Concentration over the trailing window including the target date.
	windowDates := append(market.PreviousBusinessDays(r.target, o.opts.WindowDays-1, 0), r.target)
	trades5d := r.fetchBrokerTrades(ctx, code, windowDates)
	if conc, ok := ChipConcentration(trades5d, rec.Volume5dLots); ok {
		rec.Metrics[MetricConcentration] = market.Fetched(conc)
	} else {
		rec.Metrics[MetricConcentration] = r.simulate(code, MetricConcentration)
	}

	// Lending short balance, shared by the cover-days ratio.
	var sblValue market.EnrichedValue
	if balance, err := o.detail.FetchLendingBalance(ctx, code, r.target); err == nil {
		sblValue = market.Fetched(float64(balance))
	} else {
		r.logFetchFailure(code, MetricSBLBalance, err)
		sblValue = r.simulate(code, MetricSBLBalance)
	}
	rec.Metrics[MetricSBLBalance] = sblValue

	if days, ok := ShortCoverDays(int64(sblValue.Value), avgVolumeLots); ok {
		rec.Metrics[MetricCoverDays] = market.EnrichedValue{
			Value:      days,
			Provenance: sblValue.Provenance,
			Simulated:  sblValue.Simulated,
		}
	} else {
		rec.Metrics[MetricCoverDays] = r.simulate(code, MetricCoverDays)
	}

	// VWAP over the candle window, and its bias against the close.
	vwapValue, vwapOK := VWAPApprox(lastN(candles, o.opts.VWAPDays), o.opts.VWAPMinSamples)
	if vwapOK {
		rec.Metrics[MetricVWAP] = market.Fetched(vwapValue)
	} else if rec.Close > 0 {
		// Anchor the placeholder near the live close instead of the
		// static interval.
		b := simulate.Bounds{Low: rec.Close * 0.95, High: rec.Close * 1.05}
		rec.Metrics[MetricVWAP] = market.Simulated(stats.Round(o.sim.Value(code, r.target, MetricVWAP, b), 2))
	} else {
		rec.Metrics[MetricVWAP] = r.simulate(code, MetricVWAP)
	}

	vwap := rec.Metrics[MetricVWAP]
	if bias, ok := VWAPBias(rec.Close, vwap.Value); ok {
		rec.Metrics[MetricVWAPBias] = market.EnrichedValue{
			Value:      bias,
			Provenance: vwap.Provenance,
			Simulated:  vwap.Simulated,
		}
	} else {
		rec.Metrics[MetricVWAPBias] = r.simulate(code, MetricVWAPBias)
	}
}

// simulate draws the deterministic placeholder for a metric and applies
// its configured rounding. Bounds existence was validated at
// construction.
func (r *run) simulate(code, metric string) market.EnrichedValue {
	b, _ := r.o.bounds.Bounds(metric)
	v := r.o.sim.Value(code, r.target, metric, b)
	return market.Simulated(r.o.bounds.Rounding(metric).Apply(v))
}

func (r *run) trailingSum(ctx context.Context, code, metric string, src market.DailySource) *float64 {
	series := r.collector.Series(ctx, src, code, metric, r.history)
	sum, ok := stats.TrailingSum(series, r.o.opts.WindowDays)
	if !ok {
		return nil
	}
	return ptrF(stats.Round(sum, 0))
}

func (r *run) quoteVolumeSource() market.DailySource {
	return market.DailySourceFunc(func(ctx context.Context, entityID string, date time.Time) (float64, error) {
		q, ok := r.snapshot(ctx, date).quotes[entityID]
		if !ok {
			return 0, market.ErrNoData
		}
		return float64(q.Volume), nil
	})
}

func (r *run) flowSource(value func(market.InstitutionalFlow) float64) market.DailySource {
	return market.DailySourceFunc(func(ctx context.Context, entityID string, date time.Time) (float64, error) {
		f, ok := r.snapshot(ctx, date).flows[entityID]
		if !ok {
			return 0, market.ErrNoData
		}
		return value(f), nil
	})
}

func (r *run) marginChangeSource() market.DailySource {
	return market.DailySourceFunc(func(ctx context.Context, entityID string, date time.Time) (float64, error) {
		m, ok := r.snapshot(ctx, date).margins[entityID]
		if !ok {
			return 0, market.ErrNoData
		}
		return float64(m.MarginChange), nil
	})
}

// fetchBrokerTrades gathers the branch report across dates, pacing by
// the date delay. Without an API token the dataset is unavailable and
// the caller falls through to simulation.
func (r *run) fetchBrokerTrades(ctx context.Context, code string, dates []time.Time) []market.BrokerTrade {
	if !r.o.detail.HasToken() {
		return nil
	}

	paced := collect.New(r.o.opts.DateDelay, r.o.logger)
	return collect.Gather(ctx, paced, code, "broker_trades", dates, func(ctx context.Context, date time.Time) ([]market.BrokerTrade, error) {
		return r.o.detail.FetchBrokerTrades(ctx, code, date)
	})
}

// fetchCandles pulls enough calendar days of history to cover the VWAP
// window of trading days.
func (r *run) fetchCandles(ctx context.Context, code string) []market.Candle {
	start := r.target.AddDate(0, 0, -(r.o.opts.VWAPDays + 15))
	candles, err := r.o.detail.FetchCandles(ctx, code, start, r.target)
	if err != nil {
		r.logFetchFailure(code, "candles", err)
		return nil
	}
	return candles
}

// movingAverage is the mean close over the VWAP window, with the same
// strict sufficiency rule as the other rollups.
func (r *run) movingAverage(candles []market.Candle) (float64, bool) {
	series := make(market.Series, 0, len(candles))
	for _, c := range candles {
		series = append(series, market.Point{Date: c.Date, Value: c.Close})
	}
	return stats.TrailingAverage(series, r.o.opts.VWAPDays)
}

func (r *run) logFetchFailure(code, what string, err error) {
	entry := r.o.logger.WithFields(map[string]interface{}{
		"code": code,
		"what": what,
	})
	if errors.Is(err, market.ErrNoData) {
		entry.Debug("No data")
		return
	}
	entry.WithError(err).Warn("Fetch failed")
}

func lastN(candles []market.Candle, n int) []market.Candle {
	if len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}
