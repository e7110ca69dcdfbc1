package market

// Provenance classifies where the values composing a record came from.
type Provenance string

const (
	ProvenanceFetched   Provenance = "fetched"
	ProvenanceSimulated Provenance = "simulated"
	ProvenancePartial   Provenance = "partial"
)

// EnrichedValue is a metric value stamped with its provenance.
type EnrichedValue struct {
	Value      float64    `json:"value"`
	Provenance Provenance `json:"provenance"`
	Simulated  bool       `json:"simulated"`
}

// Fetched wraps a live value.
func Fetched(v float64) EnrichedValue {
	return EnrichedValue{Value: v, Provenance: ProvenanceFetched}
}

// Simulated wraps a synthesized value.
func Simulated(v float64) EnrichedValue {
	return EnrichedValue{Value: v, Provenance: ProvenanceSimulated, Simulated: true}
}

// CombineProvenance reduces the contributions composing one record to an
// overall classification: fetched if nothing was simulated, simulated if
// everything was, partial for a mix. It is recomputed per record, never
// cached, since it depends on the exact contribution set.
func CombineProvenance(contributions []EnrichedValue) Provenance {
	anySimulated := false
	anyFetched := false
	for _, c := range contributions {
		if c.Simulated {
			anySimulated = true
		} else {
			anyFetched = true
		}
	}

	switch {
	case anySimulated && anyFetched:
		return ProvenancePartial
	case anySimulated:
		return ProvenanceSimulated
	default:
		return ProvenanceFetched
	}
}
