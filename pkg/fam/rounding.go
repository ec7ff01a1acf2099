package fam

import "math"

// roundedAccounts round to the nearest integer, half-away-from-zero;
// every other account rounds to 2 decimal places.
var roundedAccounts = map[AccountId]bool{
	"assets_total":                  true,
	"equity_and_liabilities_total": true,
}

// applyRoundingPolicy is invoked by the Engine after evaluation, never
// inside Op.
func applyRoundingPolicy(aid AccountId, v float64) float64 {
	if roundedAccounts[aid] {
		return roundHalfAwayFromZero(v, 0)
	}
	return roundHalfAwayFromZero(v, 2)
}

// roundHalfAwayFromZero rounds v to decimals places using half-away-from-
// zero tie-breaking: 150000.50 -> 150001, not banker's rounding.
func roundHalfAwayFromZero(v float64, decimals int) float64 {
	mult := math.Pow(10, float64(decimals))
	scaled := v * mult
	if scaled >= 0 {
		return math.Floor(scaled+0.5) / mult
	}
	return math.Ceil(scaled-0.5) / mult
}
