package market

// SharesPerLot is the Taiwan market board lot size. Venue tables mix
// units: quote and margin volumes arrive in lots, institutional and
// broker-branch volumes in shares. All conversions go through these
// helpers so no metric silently mixes the two.
const SharesPerLot = 1000

// LotsToShares converts a lot count to shares.
func LotsToShares(lots int64) int64 {
	return lots * SharesPerLot
}

// LotsToSharesF converts a fractional lot count to shares.
func LotsToSharesF(lots float64) float64 {
	return lots * SharesPerLot
}

// SharesToLots converts shares to whole lots, truncating odd lots.
func SharesToLots(shares int64) int64 {
	return shares / SharesPerLot
}

// SharesToLotsF converts shares to fractional lots.
func SharesToLotsF(shares int64) float64 {
	return float64(shares) / SharesPerLot
}
