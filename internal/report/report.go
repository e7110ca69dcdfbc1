// Package report renders enrichment records to JSON and CSV artifacts,
// one pair of files per run date.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yhlin/chipmon/internal/enrich"
	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/pkg/logger"
)

// Writer writes run artifacts under a base directory.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, log *logger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: log.WithField("module", "report"),
	}
}

// WriteAll writes the JSON and CSV artifacts for one run and returns
// their paths.
func (w *Writer) WriteAll(date time.Time, records []enrich.Record) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", w.dir, err)
	}

	stamp := date.Format(market.DateKeyLayout)
	jsonPath := filepath.Join(w.dir, fmt.Sprintf("chip_report_%s.json", stamp))
	csvPath := filepath.Join(w.dir, fmt.Sprintf("chip_report_%s.csv", stamp))

	if err := WriteJSON(jsonPath, date, records); err != nil {
		return nil, err
	}
	if err := WriteCSV(csvPath, records); err != nil {
		return nil, err
	}

	w.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"json":    jsonPath,
		"csv":     csvPath,
	}).Info("Report written")
	return []string{jsonPath, csvPath}, nil
}

// envelope is the JSON artifact layout.
type envelope struct {
	Date      string          `json:"date"`
	Generated string          `json:"generated_at"`
	Records   []enrich.Record `json:"records"`
}

// WriteJSON writes the full records, including provenance per metric.
func WriteJSON(path string, date time.Time, records []enrich.Record) error {
	data, err := json.MarshalIndent(envelope{
		Date:      date.Format(market.ISOLayout),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Records:   records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var csvHeader = []string{
	"code", "name", "date",
	"close", "pct_change", "volume_lots",
	"foreign_daily_lots", "foreign_5d_lots",
	"trust_daily_lots", "trust_5d_lots",
	"dealer_daily_lots", "dealer_5d_lots",
	"margin_daily_change", "margin_5d_sum",
	"lending_daily_change", "dist_ma20",
	"broker_buy_sell_diff", "chip_concentration_5d",
	"sbl_sell_balance", "short_cover_days",
	"vwap_20d_approx", "vwap_bias",
	"provenance", "simulated",
}

// WriteCSV writes a flat table with one row per entity. Absent window
// rollups render as empty cells, never as zero.
func WriteCSV(path string, records []enrich.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Code, r.Name, r.Date,
			formatF(r.Close), formatF(r.PctChange), strconv.FormatInt(r.VolumeLots, 10),
			formatFP(r.ForeignDailyLots), formatFP(r.Foreign5dLots),
			formatFP(r.TrustDailyLots), formatFP(r.Trust5dLots),
			formatFP(r.DealerDailyLots), formatFP(r.Dealer5dLots),
			formatIP(r.MarginDailyChange), formatFP(r.Margin5dSum),
			formatIP(r.LendingDailyChange), formatFP(r.DistMA20),
			formatF(r.Metric(enrich.MetricBrokerDiff).Value),
			formatF(r.Metric(enrich.MetricConcentration).Value),
			formatF(r.Metric(enrich.MetricSBLBalance).Value),
			formatF(r.Metric(enrich.MetricCoverDays).Value),
			formatF(r.Metric(enrich.MetricVWAP).Value),
			formatF(r.Metric(enrich.MetricVWAPBias).Value),
			string(r.Provenance), strconv.FormatBool(r.Simulated),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Code, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFP(v *float64) string {
	if v == nil {
		return ""
	}
	return formatF(*v)
}

func formatIP(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
