package handlers

import (
	"sync"

	"github.com/yhlin/chipmon/internal/enrich"
)

// RunStore keeps completed enrichment runs in memory, keyed by run
// date (YYYY-MM-DD). It exists so the API can serve results between
// runs; it is not a persistence layer.
type RunStore struct {
	mu     sync.RWMutex
	runs   map[string][]enrich.Record
	latest string
}

// NewRunStore creates an empty store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string][]enrich.Record)}
}

// Put stores a run's records and marks it as the latest.
func (s *RunStore) Put(date string, records []enrich.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[date] = records
	s.latest = date
}

// Get returns a run's records by date.
func (s *RunStore) Get(date string) ([]enrich.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.runs[date]
	return records, ok
}

// Latest returns the most recently stored run.
func (s *RunStore) Latest() (string, []enrich.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == "" {
		return "", nil, false
	}
	return s.latest, s.runs[s.latest], true
}
