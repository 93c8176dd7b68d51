package ring

import (
	"github.com/Pro7ech/minihe/utils/sampling"
)

// BinarySampler keeps the state of a sampler of polynomials
// with coefficients uniformly distributed in {0, 1}.
type BinarySampler struct {
	*sampling.Source
	Modulus uint64
}

// NewBinarySampler creates a new instance of [BinarySampler] from a
// [sampling.Source] and a modulus.
func NewBinarySampler(source *sampling.Source, modulus uint64) (b *BinarySampler) {
	return &BinarySampler{Source: source, Modulus: modulus}
}

// GetSource returns the underlying [sampling.Source] used by the sampler.
func (b BinarySampler) GetSource() *sampling.Source {
	return b.Source
}

// WithSource returns an instance of the underlying sampler with
// a new [sampling.Source].
// It can be used concurrently with the original sampler.
func (b BinarySampler) WithSource(source *sampling.Source) Sampler {
	return &BinarySampler{Source: source, Modulus: b.Modulus}
}

// Read samples a binary polynomial on pol.
func (b *BinarySampler) Read(pol Poly) {
	b.read(pol, func(a, b, c uint64) uint64 {
		return b
	})
}

// ReadNew samples a new binary polynomial of N coefficients.
func (b *BinarySampler) ReadNew(N int) (pol Poly) {
	pol = NewPoly(N)
	b.Read(pol)
	return
}

// ReadAndAdd samples a binary polynomial and adds it on pol.
func (b *BinarySampler) ReadAndAdd(pol Poly) {
	b.read(pol, func(a, b, c uint64) uint64 {
		return CRed(a+b, c)
	})
}

func (b *BinarySampler) read(pol Poly, f func(a, b, c uint64) uint64) {

	var randomBits uint64

	for i := range pol {

		// 64 coefficients per call to the source
		if i&63 == 0 {
			randomBits = b.Source.Uint64()
		}

		pol[i] = f(pol[i], randomBits&1, b.Modulus)

		randomBits >>= 1
	}
}
