// Package ring implements arithmetic over the polynomial ring Z_q[X]/(F(X)),
// where F is a monic polynomial of degree N (by default X^N + 1), together
// with samplers of random polynomials.
package ring

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/minihe/utils"
	"github.com/Pro7ech/minihe/utils/bignum"
)

// MaxModulus is the largest accepted ring modulus.
const MaxModulus = 1 << 61

// Ring is a struct storing the modulus, the reduction polynomial
// and the precomputed constants for fast modular reduction.
// A [Ring] is immutable and can be used concurrently.
type Ring struct {

	// Number of coefficients of the polynomials.
	N int

	// Coefficient modulus.
	Modulus uint64

	// Coefficients of the monic reduction polynomial of degree N,
	// ordered by increasing degree (len(PolyMod) = N+1).
	PolyMod []uint64

	// Barrett reduction constant floor(2^128/Modulus).
	BRedConstant [2]uint64

	// Degrees of the non-zero coefficients of PolyMod strictly below N.
	tail []int
}

// NewRing creates a new [Ring] Z_modulus[X]/(X^N + 1).
// Returns an error if N is not a power of two or if the modulus is
// smaller than 2 or larger than [MaxModulus].
func NewRing(N int, modulus uint64) (r *Ring, err error) {

	if !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("invalid ring degree: N=%d must be a power of two", N)
	}

	return NewRingFromPolyMod(modulus, CyclotomicPolyMod(N))
}

// NewRingFromPolyMod creates a new [Ring] Z_modulus[X]/(polyMod).
// The reduction polynomial is given by its N+1 coefficients ordered by
// increasing degree, and must be monic (leading coefficient equal to one).
func NewRingFromPolyMod(modulus uint64, polyMod []uint64) (r *Ring, err error) {

	N := len(polyMod) - 1

	if N < 1 || !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("invalid reduction polynomial: degree %d must be a power of two", N)
	}

	if modulus < 2 {
		return nil, fmt.Errorf("invalid modulus: %d < 2", modulus)
	}

	if modulus > MaxModulus {
		return nil, fmt.Errorf("invalid modulus: %d > 2^61", modulus)
	}

	if polyMod[N]%modulus != 1 {
		return nil, fmt.Errorf("invalid reduction polynomial: leading coefficient %d is not 1 mod %d", polyMod[N], modulus)
	}

	r = &Ring{
		N:            N,
		Modulus:      modulus,
		PolyMod:      make([]uint64, N+1),
		BRedConstant: GetBRedConstant(modulus),
	}

	for i, c := range polyMod {
		r.PolyMod[i] = BRedAdd(c, modulus, r.BRedConstant)
	}

	r.tail = []int{}
	for i := 0; i < N; i++ {
		if r.PolyMod[i] != 0 {
			r.tail = append(r.tail, i)
		}
	}

	return
}

// CyclotomicPolyMod returns the coefficients of X^N + 1.
func CyclotomicPolyMod(N int) (polyMod []uint64) {
	polyMod = make([]uint64, N+1)
	polyMod[0] = 1
	polyMod[N] = 1
	return
}

// LogN returns log2(N).
func (r Ring) LogN() int {
	return bits.Len64(uint64(r.N) - 1)
}

// NewPoly allocates a new zero [Poly] of N coefficients.
func (r Ring) NewPoly() Poly {
	return NewPoly(r.N)
}

// IsCyclotomic returns true if the reduction polynomial is X^N + 1.
func (r Ring) IsCyclotomic() bool {
	return len(r.tail) == 1 && r.tail[0] == 0 && r.PolyMod[0] == 1
}

// Equal returns true if the receiver and other define the same ring.
func (r Ring) Equal(other *Ring) bool {
	return r.N == other.N && r.Modulus == other.Modulus && cmp.Equal(r.PolyMod, other.PolyMod)
}

// String returns a short description of the ring.
func (r Ring) String() string {
	if r.IsCyclotomic() {
		return fmt.Sprintf("Z_%d[X]/(X^%d+1)", r.Modulus, r.N)
	}
	return fmt.Sprintf("Z_%d[X]/(F(X)), deg(F)=%d", r.Modulus, r.N)
}

// GetBRedConstant computes the constant for the Barrett reduction
// with a radix of 2^128: floor(2^128/q) split in [hi, lo] words.
func GetBRedConstant(q uint64) [2]uint64 {
	bigR := new(big.Int).Lsh(bignum.NewInt(1), 128)
	bigR.Quo(bigR, bignum.NewInt(q))
	mhi := new(big.Int).Rsh(bigR, 64).Uint64()
	mlo := bigR.Uint64()
	return [2]uint64{mhi, mlo}
}
