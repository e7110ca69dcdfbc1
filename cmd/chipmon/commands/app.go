package commands

import (
	"fmt"

	"github.com/yhlin/chipmon/internal/bounds"
	"github.com/yhlin/chipmon/internal/enrich"
	"github.com/yhlin/chipmon/internal/external/finmind"
	"github.com/yhlin/chipmon/internal/external/taifex"
	"github.com/yhlin/chipmon/internal/external/tpex"
	"github.com/yhlin/chipmon/internal/external/twse"
	"github.com/yhlin/chipmon/internal/external/yahoo"
	"github.com/yhlin/chipmon/internal/report"
	"github.com/yhlin/chipmon/internal/riskmon"
	"github.com/yhlin/chipmon/internal/simulate"
	"github.com/yhlin/chipmon/internal/watchlist"
	"github.com/yhlin/chipmon/pkg/config"
	"github.com/yhlin/chipmon/pkg/httputil"
	"github.com/yhlin/chipmon/pkg/logger"
)

// app bundles the wired dependencies shared by the commands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	orch    *enrich.Orchestrator
	riskMon *riskmon.Monitor
	list    *watchlist.Watchlist
	writer  *report.Writer
}

// buildApp loads configuration and wires the full pipeline. Each venue
// gets its own HTTP client so one venue's rate budget is never spent by
// another.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	newVenueHTTP := func() *httputil.Client {
		return httputil.New(cfg.Fetch.Timeout, log).
			WithRateLimit(cfg.Fetch.RatePerSec, cfg.Fetch.RateBurst)
	}

	twseClient := twse.NewClient(cfg.TWSE.BaseURL, newVenueHTTP(), log)
	tpexClient := tpex.NewClient(cfg.TPEx.BaseURL, newVenueHTTP(), log)
	finmindClient := finmind.NewClient(cfg.FinMind.BaseURL, cfg.FinMind.Token, newVenueHTTP(), log)
	taifexClient := taifex.NewClient(cfg.TAIFEX.BaseURL, newVenueHTTP(), log)
	yahooClient := yahoo.NewClient(cfg.Yahoo.BaseURL, newVenueHTTP(), log)

	boundsCfg, err := bounds.Load(cfg.Enrich.BoundsFile, enrich.MetricNames())
	if err != nil {
		return nil, fmt.Errorf("load bounds: %w", err)
	}

	orch, err := enrich.New(
		twseClient,
		tpexClient,
		finmindClient,
		boundsCfg,
		simulate.New(cfg.Enrich.SimulationSeed),
		enrich.Options{
			WindowDays:     cfg.Enrich.WindowDays,
			WindowBuffer:   cfg.Enrich.WindowBuffer,
			VWAPDays:       cfg.Enrich.VWAPDays,
			VWAPMinSamples: cfg.Enrich.VWAPMinSamples,
			DateDelay:      cfg.Fetch.DateDelay,
			EntityDelay:    cfg.Fetch.EntityDelay,
		},
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}

	riskMon := riskmon.New(twseClient, taifexClient, yahooClient, riskmon.Options{
		HistoryDays:   cfg.Risk.HistoryDays,
		HistoryBuffer: cfg.Risk.HistoryBuffer,
		DateDelay:     cfg.Fetch.DateDelay,
	}, log)

	list, err := watchlist.Load(cfg.Enrich.WatchlistFile)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		orch:    orch,
		riskMon: riskMon,
		list:    list,
		writer:  report.NewWriter(cfg.Enrich.OutputDir, log),
	}, nil
}
