// Package simulate synthesizes reproducible placeholder values for
// metrics whose live data could not be obtained. The same inputs always
// produce the same output, across runs and across processes, so reports
// stay diff-able even when an upstream source was down.
package simulate

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/yhlin/chipmon/internal/market"
)

// Bounds is the closed interval a simulated value must fall in.
type Bounds struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Validate checks the interval is well-formed.
func (b Bounds) Validate() error {
	if b.Low > b.High {
		return fmt.Errorf("bounds low %v > high %v", b.Low, b.High)
	}
	return nil
}

// Simulator produces deterministic pseudo-random metric values. The
// context seed is explicit configuration, never hidden state, so tests
// can vary it freely.
type Simulator struct {
	contextSeed string
}

// New creates a Simulator with the given context seed.
func New(contextSeed string) *Simulator {
	return &Simulator{contextSeed: contextSeed}
}

// Value returns a deterministic uniform sample for the (entity, date,
// metric) triple. The underlying draw is half-open, low + f*(high-low)
// with f in [0, 1), so the result lands in [bounds.Low, bounds.High)
// for non-degenerate bounds; callers that need the exact upper endpoint
// will never see it. It is a pure function of its inputs and the
// context seed; wall-clock time plays no part.
func (s *Simulator) Value(entityID string, date time.Time, metric string, bounds Bounds) float64 {
	key := fmt.Sprintf("%s_%s_%s_%s", entityID, date.Format(market.DateKeyLayout), metric, s.contextSeed)
	sum := sha256.Sum256([]byte(key))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))

	rng := rand.New(rand.NewSource(seed))
	return bounds.Low + rng.Float64()*(bounds.High-bounds.Low)
}
