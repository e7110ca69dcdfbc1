package market

import "testing"

func TestCombineProvenance(t *testing.T) {
	tests := []struct {
		name          string
		contributions []EnrichedValue
		want          Provenance
	}{
		{
			name:          "all fetched",
			contributions: []EnrichedValue{Fetched(1), Fetched(2), Fetched(3)},
			want:          ProvenanceFetched,
		},
		{
			name:          "all simulated",
			contributions: []EnrichedValue{Simulated(1), Simulated(2)},
			want:          ProvenanceSimulated,
		},
		{
			name:          "mixed",
			contributions: []EnrichedValue{Fetched(1), Simulated(2)},
			want:          ProvenancePartial,
		},
		{
			name:          "single fetched",
			contributions: []EnrichedValue{Fetched(1)},
			want:          ProvenanceFetched,
		},
		{
			name:          "single simulated",
			contributions: []EnrichedValue{Simulated(1)},
			want:          ProvenanceSimulated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineProvenance(tt.contributions); got != tt.want {
				t.Errorf("CombineProvenance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEnrichedValueConstructors(t *testing.T) {
	f := Fetched(12.5)
	if f.Simulated || f.Provenance != ProvenanceFetched || f.Value != 12.5 {
		t.Errorf("Fetched(12.5) = %+v", f)
	}

	s := Simulated(-3.2)
	if !s.Simulated || s.Provenance != ProvenanceSimulated || s.Value != -3.2 {
		t.Errorf("Simulated(-3.2) = %+v", s)
	}
}
