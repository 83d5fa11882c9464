package engine

import "github.com/shopspring/decimal"

// Quantize snaps value to the nearest integer multiple of granularity and
// rounds the result to precision decimal places.
//
// Both roundings are half-up (half away from zero; all venue values here
// are positive). The venue publishes tick and step sizes per market, so a
// quantized price is always a tick multiple and a quantized size a step
// multiple up to the given precision.
func Quantize(value, granularity decimal.Decimal, precision int32) (decimal.Decimal, error) {
	if granularity.Sign() <= 0 {
		return decimal.Zero, ErrInvalidGranularity
	}
	steps := value.Div(granularity).Round(0)
	return granularity.Mul(steps).Round(precision), nil
}

// TickPrecision derives the decimal precision implied by a tick or step
// size: 0.001 has precision 3, 1 has precision 0. Granularities coarser
// than one unit still quantize to whole units.
func TickPrecision(granularity decimal.Decimal) int32 {
	if exp := granularity.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}
