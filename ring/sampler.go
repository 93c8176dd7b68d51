package ring

import (
	"fmt"

	"github.com/Pro7ech/minihe/utils/sampling"
)

// Sampler is an interface for random polynomial samplers.
// Its Read method populates the given polynomial according to the
// distribution of the sampler, with coefficients in [0, modulus).
type Sampler interface {
	GetSource() *sampling.Source
	Read(pol Poly)
	ReadNew(N int) (pol Poly)
	ReadAndAdd(pol Poly)
	WithSource(source *sampling.Source) Sampler
}

// NewSampler instantiates a new [Sampler] from the provided [sampling.Source],
// modulus and [DistributionParameters].
// It returns an error if the distribution is not supported or, for a
// [DiscreteGaussian], if [DiscreteGaussian.Validate] fails.
func NewSampler(source *sampling.Source, modulus uint64, X DistributionParameters) (Sampler, error) {
	switch X := X.(type) {
	case *DiscreteGaussian:
		if err := X.Validate(); err != nil {
			return nil, err
		}
		return NewGaussianSampler(source, modulus, *X), nil
	case *Binary:
		return NewBinarySampler(source, modulus), nil
	case *Uniform:
		return NewUniformSampler(source, modulus), nil
	default:
		return nil, fmt.Errorf("invalid distribution: want *ring.DiscreteGaussian, *ring.Binary or *ring.Uniform but have %T", X)
	}
}
