package market

// MergeVenues unions two venues' per-entity rows into one map, with the
// primary venue winning on duplicate keys. A security is listed on
// exactly one venue, so collisions should not occur for legitimate
// data; when they do, the primary row is kept and no diagnostic is
// raised.
func MergeVenues[R any](primary, secondary map[string]R) map[string]R {
	merged := make(map[string]R, len(primary)+len(secondary))
	for code, row := range primary {
		merged[code] = row
	}
	for code, row := range secondary {
		if _, exists := merged[code]; !exists {
			merged[code] = row
		}
	}
	return merged
}
