package rlwe

import (
	"github.com/Pro7ech/minihe/ring"
)

var (
	// exampleParameters are the reference parameters n=16, q=2^15, t=2^8.
	exampleParameters = ParametersLiteral{
		LogN: 4,
		Q:    32768,
		T:    256,
	}

	// testInsecure are insecure parameters used for the sole purpose of fast testing.
	testInsecure = []ParametersLiteral{
		exampleParameters,
		{
			LogN: 5,
			Q:    1 << 20,
			T:    16,
		},
		{
			LogN: 6,
			Q:    0x1fffffffffe00001,
			T:    65537,
			Xs:   &ring.DiscreteGaussian{Sigma: 3.2, Bound: 19.2},
		},
		// Cyclic convolution: X^4 - 1
		{
			LogN:    2,
			Q:       1 << 20,
			T:       16,
			PolyMod: []uint64{(1 << 20) - 1, 0, 0, 0, 1},
		},
	}
)
