// Package utils implements various helper functions.
package utils

import (
	"golang.org/x/exp/constraints"
)

// IsPowerOfTwo returns true if x is a strictly positive power of two.
func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// FloorMod returns the representative of x mod m in [0, m).
// Negative values of x are mapped with the floor convention,
// e.g. FloorMod(-1, 5) = 4. m must be strictly positive.
func FloorMod[T constraints.Signed](x, m T) T {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// Abs returns |x|.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
