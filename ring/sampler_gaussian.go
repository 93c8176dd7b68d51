package ring

import (
	"math"
	"math/rand/v2"

	"github.com/Pro7ech/minihe/utils/sampling"
)

// GaussianSampler keeps the state of a truncated Gaussian polynomial sampler.
type GaussianSampler struct {
	*sampling.Source
	Xe      DiscreteGaussian
	Modulus uint64
}

// NewGaussianSampler creates a new instance of [GaussianSampler] from a [sampling.Source],
// a modulus and a [DiscreteGaussian] distribution parameter.
func NewGaussianSampler(source *sampling.Source, modulus uint64, Xe DiscreteGaussian) (g *GaussianSampler) {
	g = new(GaussianSampler)
	g.Source = source
	g.Modulus = modulus
	g.Xe = Xe
	return
}

// GetSource returns the underlying [sampling.Source] used by the sampler.
func (g GaussianSampler) GetSource() *sampling.Source {
	return g.Source
}

// WithSource returns an instance of the underlying sampler with
// a new [sampling.Source].
// It can be used concurrently with the original sampler.
func (g GaussianSampler) WithSource(source *sampling.Source) Sampler {
	return &GaussianSampler{
		Source:  source,
		Modulus: g.Modulus,
		Xe:      g.Xe,
	}
}

// Read samples a truncated Gaussian polynomial on pol.
func (g *GaussianSampler) Read(pol Poly) {
	g.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadNew samples a new truncated Gaussian polynomial of N coefficients.
func (g *GaussianSampler) ReadNew(N int) (pol Poly) {
	pol = NewPoly(N)
	g.Read(pol)
	return pol
}

// ReadAndAdd samples a truncated Gaussian polynomial and adds it on pol.
func (g *GaussianSampler) ReadAndAdd(pol Poly) {
	g.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

func (g *GaussianSampler) read(pol Poly, f func(a, b, c uint64) uint64) {

	var coeff, sign uint64

	bound := g.Xe.Bound
	sigma := g.Xe.Sigma
	q := g.Modulus
	u := GetBRedConstant(q)

	/* #nosec G404: Source is cryptographically secure */
	r := rand.New(g.Source)

	for i := range pol {

		for {

			norm := r.NormFloat64()

			sign = math.Float64bits(norm) >> 63

			if v := math.Abs(norm * sigma); v <= bound {
				coeff = uint64(v + 0.5) // rounding
				break
			}
		}

		// Negative values are mapped to q - |x| and zero stays zero.
		coeff = BRedAdd(coeff, q, u)
		if sign == 1 {
			coeff = ModNeg(coeff, q)
		}

		pol[i] = f(pol[i], coeff, q)
	}
}
