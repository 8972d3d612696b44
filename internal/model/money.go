package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of decimal places kept on every balance and
// transaction amount, matching the smallest unit of the external currency.
const AmountPrecision = 2

// IsFinite reports whether a raw externally supplied amount can be
// normalized at all. NaN and infinities are rejected before any other
// validation so they surface as a distinct error.
func IsFinite(raw float64) bool {
	return !math.IsNaN(raw) && !math.IsInf(raw, 0)
}

// RoundAmount normalizes a raw amount to AmountPrecision decimal places
// using round-half-up. Idempotent: RoundAmount of an already-rounded value
// is the value itself. The caller must reject non-finite values first, see
// IsFinite.
func RoundAmount(raw float64) decimal.Decimal {
	return decimal.NewFromFloat(raw).Round(AmountPrecision)
}

// FormatAmount renders an amount with exactly AmountPrecision decimal
// places, the way it is shown to players.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPrecision)
}
