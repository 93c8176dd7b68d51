package ring

import (
	"math/bits"
)

// BRedAdd reduces a 64 bit integer by q.
func BRedAdd(x, q uint64, u [2]uint64) (r uint64) {
	s0, _ := bits.Mul64(x, u[0])
	r = x - s0*q
	if r >= q {
		r -= q
	}
	return
}

// BRed evaluates x*y mod q with a Barrett reduction.
// Inputs must be in [0, q).
func BRed(x, y, q uint64, u [2]uint64) (r uint64) {

	var lhi, mhi, mlo, s0, s1, carry uint64

	ahi, alo := bits.Mul64(x, y)

	// (alo*ulo)>>64

	lhi, _ = bits.Mul64(alo, u[1])

	// ((ahi*ulo + alo*uhi) + (alo*ulo))>>64

	mhi, mlo = bits.Mul64(alo, u[0])

	s0, carry = bits.Add64(mlo, lhi, 0)

	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, u[1])

	_, carry = bits.Add64(mlo, s0, 0)

	lhi = mhi + carry

	// (ahi*uhi) + (((ahi*ulo + alo*uhi) + (alo*ulo))>>64)

	s0 = ahi*u[0] + s1 + lhi

	r = alo - s0*q

	if r >= q {
		r -= q
	}

	return
}

// CRed returns a mod q, where a is required to be in the range [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// ModSub returns a - b mod q for a, b in [0, q).
func ModSub(a, b, q uint64) uint64 {
	return CRed(a+q-b, q)
}

// ModNeg returns -a mod q for a in [0, q).
func ModNeg(a, q uint64) uint64 {
	if a == 0 {
		return 0
	}
	return q - a
}

// ModInt64 returns the representative of x mod q in [0, q),
// negative values being mapped with the floor convention.
func ModInt64(x int64, q uint64, u [2]uint64) uint64 {
	if x < 0 {
		return ModNeg(BRedAdd(uint64(-x), q, u), q)
	}
	return BRedAdd(uint64(x), q, u)
}
