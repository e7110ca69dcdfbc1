package riskmon

import (
	"context"
	"errors"
	"time"

	"github.com/yhlin/chipmon/internal/collect"
	"github.com/yhlin/chipmon/internal/external/yahoo"
	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/stats"
	"github.com/yhlin/chipmon/pkg/logger"
)

// MarketVenue provides the whole-market TWSE summary tables.
type MarketVenue interface {
	FetchMarketInstitutional(ctx context.Context, date time.Time) (market.MarketInstitutional, error)
	FetchMarketMarginChange(ctx context.Context, date time.Time) (float64, error)
}

// DerivativesVenue provides the TAIFEX positioning statistics.
type DerivativesVenue interface {
	FetchPutCallRatio(ctx context.Context, date time.Time) (float64, error)
	FetchForeignFuturesNet(ctx context.Context, date time.Time) (int64, error)
}

// GlobalQuotes provides international benchmark snapshots.
type GlobalQuotes interface {
	FetchSnapshot(ctx context.Context, symbol string, date time.Time) (yahoo.Snapshot, error)
}

// Options holds the monitor's window parameters.
type Options struct {
	HistoryDays   int           // trailing window for institutional history stats
	HistoryBuffer int           // extra business days to absorb exchange holidays
	DateDelay     time.Duration // pause between per-date history requests
}

// Monitor builds the daily market risk dashboard.
type Monitor struct {
	spot   MarketVenue
	deriv  DerivativesVenue
	global GlobalQuotes
	opts   Options
	logger *logger.Logger
}

// New creates a Monitor.
func New(spot MarketVenue, deriv DerivativesVenue, global GlobalQuotes, opts Options, log *logger.Logger) *Monitor {
	return &Monitor{
		spot:   spot,
		deriv:  deriv,
		global: global,
		opts:   opts,
		logger: log.WithField("module", "riskmon"),
	}
}

// Report is one day's dashboard.
type Report struct {
	Date       string      `json:"date"`
	Indicators []Indicator `json:"indicators"`
}

// globalSymbols maps dashboard rows to Yahoo Finance symbols, in
// display order.
var globalSymbols = []struct {
	metric   string
	symbol   string
	category string
	name     string
	unit     string
}{
	{MetricUS10Y, "^TNX", "總經", "美債10年殖利率", "%"},
	{MetricGold, "GC=F", "總經", "黃金期貨", "$"},
	{MetricUSDTWD, "TWD=X", "貨幣", "美元/台幣匯率", ""},
	{MetricSOX, "^SOX", "現貨", "費城半導體指數", ""},
	{MetricVIX, "^VIX", "情緒", "恐慌指數", ""},
}

// Run assembles the dashboard for one trading day. Every indicator is
// fetched independently; a failed source leaves its row valueless and
// never aborts the rest. The returned error is non-nil only when the
// context was cancelled.
func (m *Monitor) Run(ctx context.Context, target time.Time) (*Report, error) {
	target = market.Day(target)
	report := &Report{Date: target.Format(market.ISOLayout)}

	for _, sym := range globalSymbols {
		var value, changePct *float64
		snap, err := m.global.FetchSnapshot(ctx, sym.symbol, target)
		if err != nil {
			m.logFetchErr(sym.metric, err)
		} else {
			value = &snap.Value
			changePct = snap.ChangePct
		}
		report.Indicators = append(report.Indicators, Indicator{
			Category:  sym.category,
			Name:      sym.name,
			Metric:    sym.metric,
			Value:     value,
			ChangePct: changePct,
			Unit:      sym.unit,
			Level:     assess(sym.metric, value),
		})
	}

	var foreignNet, trustNet, totalNet *float64
	if inst, err := m.spot.FetchMarketInstitutional(ctx, target); err != nil {
		m.logFetchErr("market_institutional", err)
	} else {
		foreignNet = &inst.ForeignNet
		trustNet = &inst.TrustNet
		totalNet = &inst.TotalNet
	}

	var pcRatio *float64
	if ratio, err := m.deriv.FetchPutCallRatio(ctx, target); err != nil {
		m.logFetchErr(MetricPCRatio, err)
	} else {
		pcRatio = &ratio
	}

	var futuresNet *float64
	if net, err := m.deriv.FetchForeignFuturesNet(ctx, target); err != nil {
		m.logFetchErr(MetricForeignFutures, err)
	} else {
		f := float64(net)
		futuresNet = &f
	}

	var marginChange *float64
	if change, err := m.spot.FetchMarketMarginChange(ctx, target); err != nil {
		m.logFetchErr(MetricMarginChange, err)
	} else {
		marginChange = &change
	}

	report.Indicators = append(report.Indicators,
		Indicator{Category: "籌碼", Name: "外資現貨", Metric: MetricForeignNet, Value: foreignNet, Unit: "億", Level: assess(MetricForeignNet, foreignNet)},
		Indicator{Category: "籌碼", Name: "投信現貨", Metric: MetricTrustNet, Value: trustNet, Unit: "億", Level: assess(MetricTrustNet, trustNet)},
		Indicator{Category: "籌碼", Name: "選擇權 P/C Ratio", Metric: MetricPCRatio, Value: pcRatio, Unit: "%", Level: assess(MetricPCRatio, pcRatio)},
		Indicator{Category: "籌碼", Name: "三大法人合計", Metric: MetricTotalNet, Value: totalNet, Unit: "億", Level: assess(MetricTotalNet, totalNet)},
		Indicator{Category: "籌碼", Name: "外資期貨未平倉", Metric: MetricForeignFutures, Value: futuresNet, Unit: "口", Level: assess(MetricForeignFutures, futuresNet)},
		Indicator{Category: "結算", Name: "融資餘額變化", Metric: MetricMarginChange, Value: marginChange, Unit: "億", Level: assess(MetricMarginChange, marginChange)},
	)

	m.logger.WithFields(map[string]interface{}{
		"date":       report.Date,
		"indicators": len(report.Indicators),
	}).Info("Risk dashboard assembled")
	return report, ctx.Err()
}

// Summary holds trailing statistics for one institutional flow series.
type Summary struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// History is the trailing institutional flow statistics over the
// configured window, in hundred-million TWD. Samples is the number of
// days that actually had data.
type History struct {
	Date    string  `json:"date"`
	Samples int     `json:"samples"`
	Foreign Summary `json:"foreign"`
	Trust   Summary `json:"trust"`
	Total   Summary `json:"total"`
}

// RunHistory gathers the market institutional summary over the trailing
// window and reduces it to per-flow statistics. Days with no data are
// skipped, the same tolerance the per-security collector applies.
func (m *Monitor) RunHistory(ctx context.Context, target time.Time) (*History, error) {
	target = market.Day(target)
	dates := market.PreviousBusinessDays(target, m.opts.HistoryDays, m.opts.HistoryBuffer)
	dates = append(dates, target)

	collector := collect.New(m.opts.DateDelay, m.logger)
	rows := collect.Gather(ctx, collector, "TAIEX", "market_institutional", dates,
		func(ctx context.Context, date time.Time) ([]market.MarketInstitutional, error) {
			inst, err := m.spot.FetchMarketInstitutional(ctx, date)
			if err != nil {
				return nil, err
			}
			return []market.MarketInstitutional{inst}, nil
		})

	if len(rows) > m.opts.HistoryDays {
		rows = rows[len(rows)-m.opts.HistoryDays:]
	}

	hist := &History{
		Date:    target.Format(market.ISOLayout),
		Samples: len(rows),
	}
	if len(rows) == 0 {
		return hist, ctx.Err()
	}

	hist.Foreign = summarize(rows, func(r market.MarketInstitutional) float64 { return r.ForeignNet })
	hist.Trust = summarize(rows, func(r market.MarketInstitutional) float64 { return r.TrustNet })
	hist.Total = summarize(rows, func(r market.MarketInstitutional) float64 { return r.TotalNet })
	return hist, ctx.Err()
}

func summarize(rows []market.MarketInstitutional, value func(market.MarketInstitutional) float64) Summary {
	s := Summary{Min: value(rows[0]), Max: value(rows[0])}
	sum := 0.0
	for _, r := range rows {
		v := value(r)
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = stats.Round(sum/float64(len(rows)), 2)
	return s
}

func (m *Monitor) logFetchErr(metric string, err error) {
	if errors.Is(err, market.ErrNoData) {
		m.logger.WithField("metric", metric).Debug("No data for indicator")
		return
	}
	m.logger.WithError(err).WithField("metric", metric).Warn("Indicator fetch failed")
}
