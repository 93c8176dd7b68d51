package rlwe

import (
	"math"

	"github.com/Pro7ech/minihe/utils"
	"github.com/Pro7ech/minihe/utils/bignum"
	"github.com/montanaflynn/stats"
)

// NoiseStats is a struct storing statistics on the
// coefficients of the noise of a ciphertext.
type NoiseStats struct {
	Std    float64
	Mean   float64
	MaxAbs float64
}

// Log2Std returns log2(Std).
func (n NoiseStats) Log2Std() float64 {
	return math.Log2(n.Std)
}

// NoiseCiphertext returns the log2 of the standard deviation of the noise of the input
// ciphertext with respect to the given secret-key and parameters, that is of
// c0 + c1*sk - Delta*pt centered in (-Q/2, Q/2]. If pt is nil, the ciphertext is
// assumed to encrypt zero.
func NoiseCiphertext(ct *Ciphertext, pt *Plaintext, sk *SecretKey, params Parameters) (noise float64) {
	return NoiseCiphertextStats(ct, pt, sk, params).Log2Std()
}

// NoiseCiphertextStats returns statistics on the noise of the input ciphertext
// with respect to the given secret-key and parameters. See [NoiseCiphertext].
func NoiseCiphertextStats(ct *Ciphertext, pt *Plaintext, sk *SecretKey, params Parameters) (res NoiseStats) {

	rQ := params.RingQ()

	buff := rQ.NewPoly()

	rQ.MulPoly(ct.Value[1], sk.Value, buff)
	rQ.Add(buff, ct.Value[0], buff)

	if pt != nil {
		scaled := rQ.NewPoly()
		rQ.MulScalar(pt.Value, params.Delta(), scaled)
		rQ.Sub(buff, scaled, buff)
	}

	values := make(stats.Float64Data, rQ.N)
	for i, c := range rQ.Center(buff) {
		values[i] = float64(c)
	}

	// Errors are only returned on empty inputs, which
	// cannot happen since N > 1.
	res.Std, _ = stats.StandardDeviation(values)
	res.Mean, _ = stats.Mean(values)

	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	res.MaxAbs = max(utils.Abs(lo), utils.Abs(hi))

	return
}

// NoisePublicKey returns the log2 of the standard deviation of the input public-key with respect to the given secret-key and parameters.
func NoisePublicKey(pk *PublicKey, sk *SecretKey, params Parameters) (noise float64) {
	return NoiseCiphertext(pk.AsCiphertext(), nil, sk, params)
}

// maxBigFloatZ bounds z such that exp(-z^2) stays within the exponent range of big.Float.
const maxBigFloatZ = 1 << 15

// DecryptionFailureLog2 returns the log2 of an estimate of the probability
// that a ciphertext whose noise coefficients are centered Gaussian of standard
// deviation std fails to decrypt, i.e. that at least one of the N coefficients
// of the noise has a magnitude larger than [Parameters.DecryptionBound].
//
// The estimate is the union bound N * erfc(B/(std*sqrt(2))). Small
// probabilities use the asymptotic expansion erfc(z) ~ exp(-z^2)/(z*sqrt(pi)),
// evaluated in arbitrary precision.
// The returned value is at most 0.
func DecryptionFailureLog2(params Parameters, std float64) (log2p float64) {

	if std <= 0 {
		return math.Inf(-1)
	}

	z := params.DecryptionBound() / (std * math.Sqrt2)

	switch {
	case z < 5:
		log2p = math.Log2(float64(params.N()) * math.Erfc(z))
	case z < maxBigFloatZ:

		prec := uint(128)

		zBig := bignum.NewFloat(z, prec)

		// exp(-z^2)
		p := bignum.NewFloat(nil, prec).Mul(zBig, zBig)
		p.Neg(p)
		p = bignum.Exp(p)

		// z * sqrt(pi)
		den := bignum.Sqrt(bignum.NewFloat(math.Pi, prec))
		den.Mul(den, zBig)

		p.Quo(p, den)
		p.Mul(p, bignum.NewFloat(params.N(), prec))

		log2p = bignum.Log2(p)
	default:
		log2p = math.Log2(float64(params.N())/(z*math.Sqrt(math.Pi))) - z*z*math.Log2E
	}

	return math.Min(log2p, 0)
}
