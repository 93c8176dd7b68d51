package ring

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/Pro7ech/minihe/utils/bignum"
)

// Add evaluates p3 = p1 + p2 mod (modulus, polyMod).
// p1 and p2 can be of any size, p3 must have N coefficients.
func (r Ring) Add(p1, p2, p3 Poly) {

	r.checkOut(p3)

	if len(p1) <= r.N && len(p2) <= r.N {
		q := r.Modulus
		for i := range p3 {
			var a, b uint64
			if i < len(p1) {
				a = BRedAdd(p1[i], q, r.BRedConstant)
			}
			if i < len(p2) {
				b = BRedAdd(p2[i], q, r.BRedConstant)
			}
			p3[i] = CRed(a+b, q)
		}
		return
	}

	buf := make([]uint64, max(len(p1), len(p2)))
	copy(buf, p1)
	r.reduceVec(buf)
	for i := range p2 {
		buf[i] = CRed(buf[i]+BRedAdd(p2[i], r.Modulus, r.BRedConstant), r.Modulus)
	}

	r.Reduce(buf, p3)
}

// AddNew evaluates p1 + p2 mod (modulus, polyMod) on a new polynomial.
func (r Ring) AddNew(p1, p2 Poly) (p3 Poly) {
	p3 = r.NewPoly()
	r.Add(p1, p2, p3)
	return
}

// Sub evaluates p3 = p1 - p2 mod modulus.
// All inputs must have N coefficients.
func (r Ring) Sub(p1, p2, p3 Poly) {
	r.checkOut(p1, p2, p3)
	q, u := r.Modulus, r.BRedConstant
	for i := range p3 {
		p3[i] = ModSub(BRedAdd(p1[i], q, u), BRedAdd(p2[i], q, u), q)
	}
}

// Neg evaluates p2 = -p1 mod modulus.
// All inputs must have N coefficients.
func (r Ring) Neg(p1, p2 Poly) {
	r.checkOut(p1, p2)
	q, u := r.Modulus, r.BRedConstant
	for i := range p2 {
		p2[i] = ModNeg(BRedAdd(p1[i], q, u), q)
	}
}

// AddScalar evaluates p2 = p1 + scalar mod modulus, i.e. adds
// scalar to the constant coefficient of p1.
func (r Ring) AddScalar(p1 Poly, scalar uint64, p2 Poly) {
	r.checkOut(p1, p2)
	q, u := r.Modulus, r.BRedConstant
	for i := range p2 {
		p2[i] = BRedAdd(p1[i], q, u)
	}
	p2[0] = CRed(p2[0]+BRedAdd(scalar, q, u), q)
}

// MulScalar evaluates p2 = p1 * scalar mod modulus, coefficient-wise.
// p1 must have N coefficients.
func (r Ring) MulScalar(p1 Poly, scalar uint64, p2 Poly) {
	r.checkOut(p1, p2)
	q, u := r.Modulus, r.BRedConstant
	s := BRedAdd(scalar, q, u)
	for i := range p2 {
		p2[i] = BRed(BRedAdd(p1[i], q, u), s, q, u)
	}
}

// ProductBufferSize returns the size of the scratch buffer used by
// [Ring.MulPolyWithBuffer] to store the product of two polynomials
// of N coefficients before reduction, i.e. 2N-1.
func (r Ring) ProductBufferSize() int {
	return 2*r.N - 1
}

// MulPoly evaluates p3 = p1 * p2 mod (modulus, polyMod).
// p1 and p2 can be of any size, p3 must have N coefficients.
// The method allocates its scratch buffer; use [Ring.MulPolyWithBuffer]
// in loops.
func (r Ring) MulPoly(p1, p2, p3 Poly) {
	r.MulPolyWithBuffer(p1, p2, make([]uint64, max(r.ProductBufferSize(), len(p1)+len(p2)-1)), p3)
}

// MulPolyNew evaluates p1 * p2 mod (modulus, polyMod) on a new polynomial.
func (r Ring) MulPolyNew(p1, p2 Poly) (p3 Poly) {
	p3 = r.NewPoly()
	r.MulPoly(p1, p2, p3)
	return
}

// MulPolyWithBuffer evaluates p3 = p1 * p2 mod (modulus, polyMod),
// using buf to store the intermediate product of len(p1)+len(p2)-1
// coefficients. A new buffer is allocated if buf is too small.
// p3 can alias p1 or p2, but buf must not alias any operand.
func (r Ring) MulPolyWithBuffer(p1, p2 Poly, buf []uint64, p3 Poly) {

	r.checkOut(p3)

	if len(p1) == 0 || len(p2) == 0 {
		p3.Zero()
		return
	}

	size := len(p1) + len(p2) - 1

	if len(buf) < size {
		buf = make([]uint64, size)
	}

	buf = buf[:size]
	clear(buf)

	q := r.Modulus
	u := r.BRedConstant

	for i := range p1 {

		a := BRedAdd(p1[i], q, u)

		if a == 0 {
			continue
		}

		acc := buf[i : i+len(p2)]

		for j := range p2 {
			acc[j] = CRed(acc[j]+BRed(a, BRedAdd(p2[j], q, u), q, u), q)
		}
	}

	r.Reduce(buf, p3)
}

// Reduce reduces the coefficients of p1, of any size, by the
// reduction polynomial and writes the remainder on p2.
// Coefficients of p1 are first reduced modulo modulus; p1 is
// used as scratch space and is modified if len(p1) > N.
func (r Ring) Reduce(p1 []uint64, p2 Poly) {

	r.checkOut(p2)

	r.reduceVec(p1)

	N := r.N
	q := r.Modulus
	u := r.BRedConstant

	// Long division by the monic polynomial F(X) = X^N + sum_{k in tail} f_k X^k:
	// the leading term c*X^i is cancelled by subtracting c*X^{i-N}*F(X).
	for i := len(p1) - 1; i >= N; i-- {

		c := p1[i]

		if c == 0 {
			continue
		}

		p1[i] = 0

		for _, k := range r.tail {
			j := i - N + k
			p1[j] = ModSub(p1[j], BRed(c, r.PolyMod[k], q, u), q)
		}
	}

	n := copy(p2, p1[:min(len(p1), N)])
	clear(p2[n:])
}

// ReduceInt64 maps the signed coefficients of p1, of any size, to the ring
// and writes the result on p2. Negative coefficients are mapped with the
// floor convention, i.e. -x is mapped to modulus - (x mod modulus).
func (r Ring) ReduceInt64(p1 []int64, p2 Poly) {
	buf := make([]uint64, len(p1))
	for i, c := range p1 {
		buf[i] = ModInt64(c, r.Modulus, r.BRedConstant)
	}
	r.Reduce(buf, p2)
}

// NewPolyFromInt64 returns a new polynomial from signed coefficients,
// reduced in the ring. See [Ring.ReduceInt64].
func (r Ring) NewPolyFromInt64(coeffs []int64) (p Poly) {
	p = r.NewPoly()
	r.ReduceInt64(coeffs, p)
	return
}

// Center returns the coefficients of p1 as signed integers in the range
// (-modulus/2, modulus/2].
func (r Ring) Center(p1 Poly) (coeffs []int64) {
	q, u := r.Modulus, r.BRedConstant
	coeffs = make([]int64, len(p1))
	for i, c := range p1 {
		if c = BRedAdd(c, q, u); c > q>>1 {
			coeffs[i] = -int64(q - c)
		} else {
			coeffs[i] = int64(c)
		}
	}
	return
}

// ScaleAndRound evaluates p2[i] = round(p1[i] * num / den) mod mod,
// where ties are rounded up.
// The computation is exact for p1[i] * num < den * 2^64, which
// is the case if p1[i] < den and num < den, and falls back on
// arbitrary precision arithmetic otherwise.
func ScaleAndRound(p1 []uint64, num, den, mod uint64, p2 []uint64) {

	if den == 0 || mod == 0 {
		panic(fmt.Errorf("invalid ScaleAndRound: den=%d, mod=%d must be non-zero", den, mod))
	}

	if len(p2) < len(p1) {
		panic(fmt.Errorf("invalid ScaleAndRound: len(p2)=%d < len(p1)=%d", len(p2), len(p1)))
	}

	half := den >> 1

	for i, c := range p1 {

		hi, lo := bits.Mul64(c, num)

		var carry uint64
		lo, carry = bits.Add64(lo, half, 0)
		hi += carry

		// floor((x + floor(den/2))/den) = round(x/den)
		if hi < den {
			quo, _ := bits.Div64(hi, lo, den)
			p2[i] = quo % mod
		} else {
			x := new(big.Int).Mul(bignum.NewInt(c), bignum.NewInt(num))
			bignum.DivRound(x, bignum.NewInt(den), x)
			p2[i] = x.Mod(x, bignum.NewInt(mod)).Uint64()
		}
	}
}

// reduceVec reduces the coefficients of p1 modulo modulus.
func (r Ring) reduceVec(p1 []uint64) {
	for i := range p1 {
		p1[i] = BRedAdd(p1[i], r.Modulus, r.BRedConstant)
	}
}

// checkOut panics if one of the operands does not have N coefficients.
func (r Ring) checkOut(p ...Poly) {
	for i := range p {
		if len(p[i]) != r.N {
			panic(fmt.Errorf("invalid operand %d: has %d coefficients but ring degree is %d", i, len(p[i]), r.N))
		}
	}
}
