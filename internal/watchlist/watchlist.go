// Package watchlist loads the set of securities the enrichment run
// covers.
package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one tracked security.
type Entry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Watchlist is the ordered set of tracked securities.
type Watchlist struct {
	Entries []Entry `json:"watchlist"`
}

// Codes returns the security codes in file order.
func (w *Watchlist) Codes() []string {
	codes := make([]string, 0, len(w.Entries))
	for _, e := range w.Entries {
		codes = append(codes, e.Code)
	}
	return codes
}

// Load reads a watchlist JSON file. Entries with an empty code are
// rejected so a malformed file fails loudly instead of silently
// shrinking the run.
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist %s: %w", path, err)
	}

	var w Watchlist
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist %s: %w", path, err)
	}

	if len(w.Entries) == 0 {
		return nil, fmt.Errorf("watchlist %s is empty", path)
	}

	for i := range w.Entries {
		w.Entries[i].Code = strings.TrimSpace(w.Entries[i].Code)
		w.Entries[i].Name = strings.TrimSpace(w.Entries[i].Name)
		if w.Entries[i].Code == "" {
			return nil, fmt.Errorf("watchlist %s: entry %d has no code", path, i)
		}
	}

	return &w, nil
}
