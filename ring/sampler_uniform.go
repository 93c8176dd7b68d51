package ring

import (
	"math/bits"

	"github.com/Pro7ech/minihe/utils/sampling"
)

// UniformSampler represents the state of a sampler
// of polynomials with coefficients uniform in [0, modulus).
type UniformSampler struct {
	*sampling.Source
	Modulus uint64
}

// NewUniformSampler creates a new instance of [UniformSampler] from a
// [sampling.Source] and a modulus.
func NewUniformSampler(source *sampling.Source, modulus uint64) (u *UniformSampler) {
	u = new(UniformSampler)
	u.Modulus = modulus
	u.Source = source
	return
}

// GetSource returns the underlying [sampling.Source] used by the sampler.
func (u UniformSampler) GetSource() *sampling.Source {
	return u.Source
}

// WithSource returns an instance of the underlying sampler with
// a new [sampling.Source].
// It can be used concurrently with the original sampler.
func (u UniformSampler) WithSource(source *sampling.Source) Sampler {
	return &UniformSampler{
		Modulus: u.Modulus,
		Source:  source,
	}
}

// Read samples a uniform polynomial on pol.
func (u *UniformSampler) Read(pol Poly) {
	u.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadAndAdd samples a uniform polynomial and adds it on pol.
func (u *UniformSampler) ReadAndAdd(pol Poly) {
	u.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

// ReadNew generates a new polynomial of N coefficients
// following a uniform distribution over [0, modulus-1].
func (u *UniformSampler) ReadNew(N int) (pol Poly) {
	pol = NewPoly(N)
	u.Read(pol)
	return
}

func (u *UniformSampler) read(pol Poly, f func(a, b, c uint64) uint64) {

	var c uint64

	r := u.Source
	q := u.Modulus

	mask := uint64(1<<uint64(bits.Len64(q-1))) - 1

	for i := range pol {

		c = r.Uint64() & mask

		for c >= q {
			c = r.Uint64() & mask
		}

		pol[i] = f(pol[i], c, q)
	}
}
