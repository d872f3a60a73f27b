package utils

import "cmp"

// IsInRange reports whether value lies within [min, max].
func IsInRange[T cmp.Ordered](min, value, max T) bool {
	return min <= value && value <= max
}

// IsIndex reports whether i indexes a sequence of length n.
func IsIndex(i, n int) bool {
	return IsInRange(0, i, n-1)
}
