package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yhlin/chipmon/internal/market"
	"github.com/yhlin/chipmon/internal/riskmon"
)

// riskEnvelope is the risk dashboard JSON artifact layout. History is
// omitted when the trailing statistics were not requested.
type riskEnvelope struct {
	Date      string           `json:"date"`
	Generated string           `json:"generated_at"`
	Report    *riskmon.Report  `json:"report"`
	History   *riskmon.History `json:"history,omitempty"`
}

// WriteRisk writes the market risk dashboard for one date and returns
// the artifact path. history may be nil.
func (w *Writer) WriteRisk(date time.Time, report *riskmon.Report, history *riskmon.History) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("risk_report_%s.json", date.Format(market.DateKeyLayout)))

	data, err := json.MarshalIndent(riskEnvelope{
		Date:      date.Format(market.ISOLayout),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Report:    report,
		History:   history,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal risk report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	w.logger.WithFields(map[string]interface{}{
		"indicators": len(report.Indicators),
		"json":       path,
	}).Info("Risk report written")
	return path, nil
}
