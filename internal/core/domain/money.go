package domain

import "github.com/shopspring/decimal"

// The provider reports amounts in minor units (1/100 of the stored currency
// unit). This is the single conversion point between the two scales; getting
// the factor wrong silently corrupts every settlement, so both directions are
// pinned by tests.

// AmountFromMinorUnits converts a provider minor-unit amount to major units.
func AmountFromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// AmountToMinorUnits converts a stored major-unit amount to provider minor
// units, truncating any precision below one minor unit.
func AmountToMinorUnits(major decimal.Decimal) int64 {
	return major.Shift(2).IntPart()
}
