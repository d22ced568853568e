package utils

import "math"

// ToMinorUnits converts a decimal amount to the smallest currency unit (cents).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ToWholeUnits rounds a decimal amount to whole currency units.
func ToWholeUnits(amount float64) int64 {
	return int64(math.Round(amount))
}
