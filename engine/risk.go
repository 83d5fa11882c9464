package engine

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CheckEntryAllowed gates an entry on the configured asset allow-list and
// the market's required initial margin fraction. Both checks must pass.
// A margin fraction exactly at the ceiling is allowed; rejection is
// strictly greater-than. Pure function over its inputs.
func CheckEntryAllowed(asset string, marginFraction decimal.Decimal, p Params) Decision {
	if p.CheckAllowedAssets && !slices.Contains(p.AllowedAssets, asset) {
		return rejected(ReasonAssetNotAllowed,
			"%s is not in the allowed assets list", asset)
	}
	if marginFraction.GreaterThan(p.MaxInitialMarginFraction) {
		return rejected(ReasonMarginFractionTooHigh,
			"market requires initial margin fraction %s, ceiling is %s",
			marginFraction, p.MaxInitialMarginFraction)
	}
	return allowed()
}
