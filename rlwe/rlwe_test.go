package rlwe

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils/buffer"
	"github.com/Pro7ech/minihe/utils/sampling"
)

var flagParamString = flag.String("params", "", "specify the test cryptographic parameters as a JSON string. Overrides the default test parameters.")

func testString(params Parameters, opname string) string {
	return fmt.Sprintf("%s/logN=%d/Q=%d/T=%d/Cyclotomic=%t",
		opname,
		params.LogN(),
		params.Q(),
		params.T(),
		params.RingQ().IsCyclotomic())
}

func TestRLWE(t *testing.T) {

	var err error

	defaultParamsLiteral := testInsecure

	if *flagParamString != "" {
		var jsonParams ParametersLiteral
		if err = json.Unmarshal([]byte(*flagParamString), &jsonParams); err != nil {
			t.Fatal(err)
		}
		defaultParamsLiteral = []ParametersLiteral{jsonParams} // the custom test suite reads the parameters from the -params flag
	}

	for _, paramsLit := range defaultParamsLiteral[:] {

		var params Parameters
		if params, err = NewParametersFromLiteral(paramsLit); err != nil {
			t.Fatal(err)
		}

		tc, err := NewTestContext(params)
		require.NoError(t, err)

		for _, testSet := range []func(tc *TestContext, t *testing.T){
			testParameters,
			testKeyGenerator,
			testEncryptor,
			testDecryptor,
			testEvaluator,
			testNoise,
			testWriteAndRead,
		} {
			testSet(tc, t)
			runtime.GC()
		}
	}

	testUserDefinedParameters(t)
}

type TestContext struct {
	params Parameters
	kgen   *KeyGenerator
	enc    *Encryptor
	encSk  *Encryptor
	dec    *Decryptor
	sk     *SecretKey
	pk     *PublicKey
	eval   *Evaluator
	source *sampling.Source
}

func NewTestContext(params Parameters) (tc *TestContext, err error) {

	source := sampling.NewSource([32]byte{'t', 'e', 's', 't'})

	kgen := NewKeyGenerator(params).WithSource(source.NewSource())

	sk, pk := kgen.GenKeyPairNew()

	var enc, encSk *Encryptor
	if enc, err = NewEncryptor(params, pk); err != nil {
		return
	}
	enc = enc.WithSource(source.NewSource())

	if encSk, err = NewEncryptor(params, sk); err != nil {
		return
	}
	encSk = encSk.WithSource(source.NewSource())

	var dec *Decryptor
	if dec, err = NewDecryptor(params, sk); err != nil {
		return
	}

	return &TestContext{
		params: params,
		kgen:   kgen,
		sk:     sk,
		pk:     pk,
		enc:    enc,
		encSk:  encSk,
		dec:    dec,
		eval:   NewEvaluator(params),
		source: source,
	}, nil
}

// randomValue returns a value uniformly distributed in [0, T).
func (tc *TestContext) randomValue() uint64 {
	return tc.source.Uint64() % tc.params.T()
}

// otherParameters returns valid parameters with a different ring degree.
func (tc *TestContext) otherParameters(t *testing.T) Parameters {
	lit := tc.params.ParametersLiteral()
	lit.LogN++
	lit.PolyMod = nil
	params, err := NewParametersFromLiteral(lit)
	require.NoError(t, err)
	return params
}

func testUserDefinedParameters(t *testing.T) {

	t.Run("Parameters/Example", func(t *testing.T) {
		params, err := NewParametersFromLiteral(exampleParameters)
		require.NoError(t, err)
		require.Equal(t, 16, params.N())
		require.Equal(t, uint64(32768), params.Q())
		require.Equal(t, uint64(256), params.T())
		require.Equal(t, uint64(128), params.Delta())
		require.Equal(t, 64.0, params.DecryptionBound())
		require.Equal(t, 12.0, params.NoiseBound())
		require.Equal(t, ring.CyclotomicPolyMod(16), []uint64(params.PolyMod()))
		require.True(t, params.Xe().Equal(&DefaultXe))
		require.True(t, params.Xs().Equal(&ring.Binary{}))
		require.InDelta(t, 2*math.Sqrt(17), params.NoiseFreshPK(), 1e-9)
	})

	t.Run("Parameters/Invalid", func(t *testing.T) {

		for _, tt := range []struct {
			name string
			lit  ParametersLiteral
		}{
			{"T=Q", ParametersLiteral{LogN: 4, Q: 256, T: 256}},
			{"T>Q", ParametersLiteral{LogN: 4, Q: 256, T: 512}},
			{"T<2", ParametersLiteral{LogN: 4, Q: 32768, T: 1}},
			{"LogN<MinLogN", ParametersLiteral{LogN: MinLogN - 1, Q: 32768, T: 256}},
			{"LogN>MaxLogN", ParametersLiteral{LogN: MaxLogN + 1, Q: 32768, T: 256}},
			{"PolyMod/Degree", ParametersLiteral{LogN: 4, Q: 32768, T: 256, PolyMod: ring.CyclotomicPolyMod(8)}},
			{"PolyMod/NotMonic", ParametersLiteral{LogN: 1, Q: 32768, T: 256, PolyMod: []uint64{1, 0, 2}}},
			{"Q>2^61", ParametersLiteral{LogN: 4, Q: 1<<61 + 1, T: 256}},
			{"Xe/Uniform", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xe: &ring.Uniform{}}},
			{"Xs/Uniform", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xs: &ring.Uniform{}}},
			{"Xe/NegativeSigma", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xe: &ring.DiscreteGaussian{Sigma: -1, Bound: 6}}},
			{"Xe/NaNSigma", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xe: &ring.DiscreteGaussian{Sigma: math.NaN(), Bound: 6}}},
			{"Xe/ZeroBound", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xe: &ring.DiscreteGaussian{Sigma: 2}}},
			{"Xe/BoundBelowSigma", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xe: &ring.DiscreteGaussian{Sigma: 2, Bound: 1}}},
			{"Xs/ZeroBound", ParametersLiteral{LogN: 4, Q: 32768, T: 256, Xs: &ring.DiscreteGaussian{Sigma: 1}}},
		} {
			t.Run(tt.name, func(t *testing.T) {
				params, err := NewParametersFromLiteral(tt.lit)
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidParameters), err)
				require.Equal(t, Parameters{}, params)
			})
		}
	})

	t.Run("Parameters/UnmarshalJSON", func(t *testing.T) {

		var err error

		// checks that parameters without distributions are unmarshalled with the defaults.
		dataWithoutDist := []byte(`{"LogN":4,"Q":32768,"T":256}`)
		var paramsWithoutDist Parameters
		require.NoError(t, json.Unmarshal(dataWithoutDist, &paramsWithoutDist))

		params, err := NewParametersFromLiteral(exampleParameters)
		require.NoError(t, err)
		require.True(t, params.Equal(&paramsWithoutDist))

		// checks that distributions are read from their map representation.
		dataWithDist := []byte(`{"LogN":4,"Q":32768,"T":256,"Xe":{"Type":"DiscreteGaussian","Sigma":3.2,"Bound":19.2},"Xs":{"Type":"DiscreteGaussian","Sigma":1,"Bound":6}}`)
		var paramsWithDist Parameters
		require.NoError(t, json.Unmarshal(dataWithDist, &paramsWithDist))
		require.True(t, paramsWithDist.Xe().Equal(&ring.DiscreteGaussian{Sigma: 3.2, Bound: 19.2}))
		require.True(t, paramsWithDist.Xs().Equal(&ring.DiscreteGaussian{Sigma: 1, Bound: 6}))

		// checks that a custom reduction polynomial is read.
		dataWithPolyMod := []byte(`{"LogN":1,"Q":32768,"T":256,"PolyMod":[3,1,1]}`)
		var paramsWithPolyMod Parameters
		require.NoError(t, json.Unmarshal(dataWithPolyMod, &paramsWithPolyMod))
		require.Equal(t, []uint64{3, 1, 1}, []uint64(paramsWithPolyMod.PolyMod()))
		require.False(t, paramsWithPolyMod.RingQ().IsCyclotomic())

		// checks that invalid parameters are reported.
		var paramsInvalid Parameters
		err = json.Unmarshal([]byte(`{"LogN":4,"Q":256,"T":256}`), &paramsInvalid)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		// checks that an unknown distribution is reported.
		var lit ParametersLiteral
		require.Error(t, json.Unmarshal([]byte(`{"LogN":4,"Q":32768,"T":256,"Xe":{"Type":"Laplace"}}`), &lit))
	})

	t.Run("Parameters/MarshalJSON", func(t *testing.T) {

		for _, lit := range testInsecure {

			params, err := NewParametersFromLiteral(lit)
			require.NoError(t, err)

			data, err := json.Marshal(params)
			require.NoError(t, err)

			var paramsNew Parameters
			require.NoError(t, json.Unmarshal(data, &paramsNew))
			require.True(t, params.Equal(&paramsNew), string(data))
		}
	})
}

func testParameters(tc *TestContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, "Parameters/Constants"), func(t *testing.T) {
		require.Equal(t, params.Q()/params.T(), params.Delta())
		require.Equal(t, float64(params.Q())/float64(2*params.T()), params.DecryptionBound())
		require.Equal(t, 1<<params.LogN(), params.N())
		require.Equal(t, params.N(), params.RingQ().N)
		require.Equal(t, params.Q(), params.RingQ().Modulus)
		require.Equal(t, params.T(), params.RingT().Modulus)
	})

	t.Run(testString(params, "Parameters/PolyMod"), func(t *testing.T) {
		polyMod := params.PolyMod()
		require.Equal(t, params.N()+1, len(polyMod))
		require.Equal(t, uint64(1), polyMod[params.N()])

		// PolyMod returns a copy
		polyMod[0]++
		require.NotEqual(t, polyMod, params.PolyMod())
	})

	t.Run(testString(params, "Parameters/Equal"), func(t *testing.T) {

		paramsCpy, err := NewParametersFromLiteral(params.ParametersLiteral())
		require.NoError(t, err)
		require.True(t, params.Equal(&paramsCpy))

		lit := params.ParametersLiteral()
		lit.T++
		paramsOther, err := NewParametersFromLiteral(lit)
		require.NoError(t, err)
		require.False(t, params.Equal(&paramsOther))
	})
}

func testKeyGenerator(tc *TestContext, t *testing.T) {

	params := tc.params
	kgen := tc.kgen
	sk := tc.sk
	pk := tc.pk

	t.Run(testString(params, "KeyGenerator/GenSecretKey"), func(t *testing.T) {

		require.Equal(t, params.N(), sk.N())

		if _, ok := params.Xs().(*ring.Binary); !ok {
			t.Skip("cannot run test for non binary distribution")
		}

		for _, c := range sk.Value {
			require.LessOrEqual(t, c, uint64(1))
		}
	})

	// Checks that b + a*sk = -e with |e| <= Bound
	t.Run(testString(params, "KeyGenerator/GenPublicKey"), func(t *testing.T) {

		require.Equal(t, params.N(), pk.N())

		stats := NoiseCiphertextStats(pk.AsCiphertext(), nil, sk, params)
		require.LessOrEqual(t, stats.MaxAbs, params.NoiseBound())

		require.GreaterOrEqual(t, math.Log2(params.NoiseFreshSK())+2, NoisePublicKey(pk, sk, params))
	})

	t.Run(testString(params, "KeyGenerator/GenPublicKey/Invalid"), func(t *testing.T) {

		other := tc.otherParameters(t)

		skOther := NewKeyGenerator(other).GenSecretKeyNew()

		pk, err := kgen.GenPublicKeyNew(skOther)
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)
		require.Nil(t, pk)

		_, err = kgen.GenPublicKeyNew(nil)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		require.True(t, errors.Is(kgen.GenPublicKey(sk, NewPublicKey(other)), ErrInvalidParameters))
		require.True(t, errors.Is(kgen.GenPublicKey(sk, nil), ErrInvalidParameters))
	})

	t.Run(testString(params, "KeyGenerator/WithSource"), func(t *testing.T) {

		seed := [32]byte{0x01}

		sk0, pk0 := kgen.WithSource(sampling.NewSource(seed)).GenKeyPairNew()
		sk1, pk1 := GenerateKeys(params, sampling.NewSource(seed))

		require.True(t, sk0.Equal(sk1))
		require.True(t, pk0.Equal(pk1))

		sk2, pk2 := GenerateKeys(params, sampling.NewSource([32]byte{0x02}))
		require.False(t, sk0.Equal(sk2) && pk0.Equal(pk2))
	})

	t.Run(testString(params, "KeyGenerator/ShallowCopy"), func(t *testing.T) {
		kgenCpy := kgen.ShallowCopy()
		require.False(t, kgen.EncryptorBuffers == kgenCpy.EncryptorBuffers)
		require.False(t, kgen.xuSampler == kgenCpy.xuSampler)
		require.False(t, kgen.xeSampler == kgenCpy.xeSampler)
		require.False(t, kgen.xaSampler == kgenCpy.xaSampler)
	})
}

func testEncryptor(tc *TestContext, t *testing.T) {

	params := tc.params
	sk, pk := tc.sk, tc.pk
	enc, encSk := tc.enc, tc.encSk
	dec := tc.dec

	t.Run(testString(params, "Encryptor/EncryptNew/Pk"), func(t *testing.T) {
		for range 64 {
			value := tc.randomValue()
			ct, err := enc.EncryptNew(int64(value))
			require.NoError(t, err)
			have, err := dec.DecryptInt(ct)
			require.NoError(t, err)
			require.Equal(t, value, have)
		}
	})

	t.Run(testString(params, "Encryptor/EncryptNew/Sk"), func(t *testing.T) {
		for range 64 {
			value := tc.randomValue()
			ct, err := encSk.EncryptNew(int64(value))
			require.NoError(t, err)
			have, err := dec.DecryptInt(ct)
			require.NoError(t, err)
			require.Equal(t, value, have)
		}
	})

	t.Run(testString(params, "Encryptor/EncryptNew/OutOfRange"), func(t *testing.T) {

		T := params.T()

		for _, tt := range []struct {
			value int64
			want  uint64
		}{
			{-1, T - 1},
			{-int64(T), 0},
			{int64(T) + 3, 3},
		} {
			ct, err := enc.EncryptNew(tt.value)
			require.NoError(t, err)
			have, err := dec.DecryptInt(ct)
			require.NoError(t, err)
			require.Equal(t, tt.want, have, tt.value)
		}
	})

	t.Run(testString(params, "Encryptor/Encrypt/Polynomial"), func(t *testing.T) {
		for _, e := range []*Encryptor{enc, encSk} {
			pt := NewPlaintext(params)
			pt.Randomize(params, tc.source.NewSource())

			ct := NewCiphertext(params)
			require.NoError(t, e.Encrypt(pt, ct))

			have, err := dec.DecryptNew(ct)
			require.NoError(t, err)
			require.True(t, pt.Equal(have))
		}
	})

	t.Run(testString(params, "Encryptor/EncryptZero/Pk"), func(t *testing.T) {

		var variance float64
		for range 8 {
			ct := NewCiphertext(params)
			require.NoError(t, enc.EncryptZero(ct))
			require.Equal(t, params.NoiseFreshPK()*params.NoiseFreshPK(), ct.NoiseVariance)

			std := NoiseCiphertextStats(ct, nil, sk, params).Std
			variance += std * std
		}

		require.GreaterOrEqual(t, 2*params.NoiseFreshPK(), math.Sqrt(variance/8))
	})

	t.Run(testString(params, "Encryptor/EncryptZero/Sk"), func(t *testing.T) {

		ct := NewCiphertext(params)
		require.NoError(t, encSk.Encrypt(nil, ct))
		require.Equal(t, params.NoiseFreshSK()*params.NoiseFreshSK(), ct.NoiseVariance)

		// c0 + c1*sk = -e
		require.LessOrEqual(t, NoiseCiphertextStats(ct, nil, sk, params).MaxAbs, params.NoiseBound())
	})

	t.Run(testString(params, "Encryptor/WithSource"), func(t *testing.T) {

		seed := [32]byte{0x01}

		for _, e := range []*Encryptor{enc, encSk} {

			ct0, err := e.WithSource(sampling.NewSource(seed)).EncryptNew(7)
			require.NoError(t, err)

			ct1, err := e.WithSource(sampling.NewSource(seed)).EncryptNew(7)
			require.NoError(t, err)

			require.True(t, ct0.Equal(ct1))

			ct2, err := e.WithSource(sampling.NewSource([32]byte{0x02})).EncryptNew(7)
			require.NoError(t, err)

			require.False(t, ct0.Equal(ct2))
		}
	})

	t.Run(testString(params, "Encryptor/ShallowCopy"), func(t *testing.T) {
		enc1 := enc
		enc2 := enc1.ShallowCopy()
		require.True(t, enc1.params.Equal(&enc2.params))
		require.True(t, enc1.encKey == enc2.encKey)
		require.False(t, enc1.EncryptorBuffers == enc2.EncryptorBuffers)
		require.False(t, enc1.xuSampler == enc2.xuSampler)
		require.False(t, enc1.xeSampler == enc2.xeSampler)
		require.False(t, enc1.xaSampler == enc2.xaSampler)
	})

	t.Run(testString(params, "Encryptor/WithKey"), func(t *testing.T) {

		enc1, err := enc.WithKey(sk)
		require.NoError(t, err)
		require.True(t, enc1.encKey == EncryptionKey(sk))
		require.True(t, enc.encKey == EncryptionKey(pk))
		require.True(t, enc1.EncryptorBuffers == enc.EncryptorBuffers)
		require.True(t, enc1.xeSampler == enc.xeSampler)

		enc2, err := enc.WithKey(nil)
		require.NoError(t, err)
		require.Error(t, enc2.EncryptZero(NewCiphertext(params)))

		_, err = enc.WithKey(NewSecretKey(tc.otherParameters(t)))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = enc.WithKey(NewPublicKey(tc.otherParameters(t)))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = NewEncryptor(params, NewPublicKey(tc.otherParameters(t)))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)
	})

	t.Run(testString(params, "Encryptor/InvalidShape"), func(t *testing.T) {

		other := tc.otherParameters(t)

		err := enc.Encrypt(NewPlaintext(params), NewCiphertext(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		err = enc.Encrypt(NewPlaintext(other), NewCiphertext(params))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		ct := NewCiphertext(params)
		ct.Value = append(ct.Value, params.RingQ().NewPoly())
		err = enc.EncryptZero(ct)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)
	})
}

func testDecryptor(tc *TestContext, t *testing.T) {

	params := tc.params
	dec := tc.dec

	// Checks round(c*T/Q) on noiseless ciphertexts (Delta*m + e, 0),
	// with ties rounded up.
	t.Run(testString(params, "Decryptor/Rounding"), func(t *testing.T) {

		Q, T, delta := params.Q(), params.T(), params.Delta()

		if Q%T != 0 || delta&1 == 1 {
			t.Skip("cannot run test: Q/T is not an even integer")
		}

		half := delta >> 1

		for _, m := range []uint64{0, 3, T - 1} {
			for _, tt := range []struct {
				c    uint64
				want uint64
			}{
				{(delta*m + half - 1) % Q, m},
				{(delta*m + half) % Q, (m + 1) % T},
				{(delta*m + Q - half) % Q, m},
				{(delta*m + Q - half - 1) % Q, (m + T - 1) % T},
			} {
				ct := NewCiphertext(params)
				ct.Value[0][0] = tt.c
				have, err := dec.DecryptInt(ct)
				require.NoError(t, err)
				require.Equal(t, tt.want, have, "m=%d c=%d", m, tt.c)
			}
		}
	})

	t.Run(testString(params, "Decryptor/InvalidShape"), func(t *testing.T) {

		other := tc.otherParameters(t)

		_, err := NewDecryptor(params, NewSecretKey(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = dec.WithKey(NewSecretKey(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = dec.DecryptNew(NewCiphertext(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		err = dec.Decrypt(NewCiphertext(params), NewPlaintext(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = dec.DecryptInt(nil)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)
	})

	t.Run(testString(params, "Decryptor/WithKey"), func(t *testing.T) {

		sk := tc.kgen.GenSecretKeyNew()

		ct := NewCiphertext(params)
		require.NoError(t, tc.encSk.WithSource(sampling.NewSource([32]byte{})).Encrypt(nil, ct))

		dec1, err := dec.WithKey(sk)
		require.NoError(t, err)
		require.True(t, dec1.sk == sk)
		require.True(t, dec.sk == tc.sk)

		pt, err := dec.DecryptNew(ct)
		require.NoError(t, err)
		require.True(t, pt.Equal(NewPlaintext(params)))
	})

	t.Run(testString(params, "Decryptor/ShallowCopy"), func(t *testing.T) {
		dec1 := dec.ShallowCopy()
		require.True(t, dec1.sk == dec.sk)
		require.False(t, &dec1.buff[0] == &dec.buff[0])
		require.False(t, &dec1.buffProduct[0] == &dec.buffProduct[0])
	})
}

func testEvaluator(tc *TestContext, t *testing.T) {

	params := tc.params
	enc := tc.enc
	dec := tc.dec
	eval := tc.eval
	T := params.T()

	t.Run(testString(params, "Evaluator/AddPlain"), func(t *testing.T) {
		for range 64 {

			a, b := tc.randomValue(), tc.randomValue()

			ct, err := enc.EncryptNew(int64(a))
			require.NoError(t, err)

			ctOut, err := eval.AddPlainNew(ct, int64(b))
			require.NoError(t, err)

			have, err := dec.DecryptInt(ctOut)
			require.NoError(t, err)
			require.Equal(t, (a+b)%T, have)

			// c1 and the noise are unchanged
			require.True(t, ct.Value[1].Equal(&ctOut.Value[1]))
			require.Equal(t, ct.NoiseVariance, ctOut.NoiseVariance)
		}
	})

	t.Run(testString(params, "Evaluator/AddPlain/InPlace"), func(t *testing.T) {

		a, b := tc.randomValue(), tc.randomValue()

		ct, err := enc.EncryptNew(int64(a))
		require.NoError(t, err)

		// Negative values are reduced modulo T
		require.NoError(t, eval.AddPlain(ct, int64(b), ct))
		require.NoError(t, eval.AddPlain(ct, -int64(b), ct))

		have, err := dec.DecryptInt(ct)
		require.NoError(t, err)
		require.Equal(t, a, have)
	})

	t.Run(testString(params, "Evaluator/AddPlaintext"), func(t *testing.T) {

		pt0, pt1 := NewPlaintext(params), NewPlaintext(params)
		pt0.Randomize(params, tc.source.NewSource())
		pt1.Randomize(params, tc.source.NewSource())

		ct := NewCiphertext(params)
		require.NoError(t, enc.Encrypt(pt0, ct))

		ctOut, err := eval.AddPlaintextNew(ct, pt1)
		require.NoError(t, err)

		have, err := dec.DecryptNew(ctOut)
		require.NoError(t, err)

		want := params.RingT().AddNew(pt0.Value, pt1.Value)
		require.Equal(t, want, have.Value)
	})

	t.Run(testString(params, "Evaluator/MulPlain"), func(t *testing.T) {

		rate, err := SuccessRate(params, tc.pk, tc.sk, tc.source.NewSource(), 256, 0,
			func(enc *Encryptor, eval *Evaluator, dec *Decryptor, source *sampling.Source) (ok bool, err error) {

				a, k := source.Uint64()%T, source.Uint64()%4

				var ct *Ciphertext
				if ct, err = enc.EncryptNew(int64(a)); err != nil {
					return
				}

				if err = eval.MulPlain(ct, int64(k), ct); err != nil {
					return
				}

				var have uint64
				if have, err = dec.DecryptInt(ct); err != nil {
					return
				}

				return have == (a*k)%T, nil
			})

		require.NoError(t, err)
		require.GreaterOrEqual(t, rate, 0.95)
	})

	t.Run(testString(params, "Evaluator/MulPlain/Zero"), func(t *testing.T) {

		ct, err := enc.EncryptNew(int64(tc.randomValue()))
		require.NoError(t, err)

		ctOut, err := eval.MulPlainNew(ct, 0)
		require.NoError(t, err)

		zero := params.RingQ().NewPoly()
		require.True(t, ctOut.Value[0].Equal(&zero))
		require.True(t, ctOut.Value[1].Equal(&zero))
		require.Equal(t, 0.0, ctOut.NoiseVariance)

		have, err := dec.DecryptInt(ctOut)
		require.NoError(t, err)
		require.Equal(t, uint64(0), have)
	})

	t.Run(testString(params, "Evaluator/MulPlain/Negative"), func(t *testing.T) {

		a := tc.randomValue()

		ct, err := enc.EncryptNew(int64(a))
		require.NoError(t, err)

		ct0, err := eval.MulPlainNew(ct, -1)
		require.NoError(t, err)

		// T-1 and -1 have the same centered representative
		ct1, err := eval.MulPlainNew(ct, int64(T)-1)
		require.NoError(t, err)
		require.True(t, ct0.Equal(ct1))
		require.Equal(t, ct.NoiseVariance, ct0.NoiseVariance)

		have, err := dec.DecryptInt(ct0)
		require.NoError(t, err)
		require.Equal(t, (T-a)%T, have)
	})

	t.Run(testString(params, "Evaluator/MulPlain/NoiseEstimate"), func(t *testing.T) {

		ct, err := enc.EncryptNew(1)
		require.NoError(t, err)

		ctOut, err := eval.MulPlainNew(ct, 3)
		require.NoError(t, err)

		require.Equal(t, 9*ct.NoiseVariance, ctOut.NoiseVariance)
		require.InDelta(t, math.Log2(3)+ct.LogNoise(), ctOut.LogNoise(), 1e-9)
	})

	t.Run(testString(params, "Evaluator/MulPlaintext"), func(t *testing.T) {

		pt := NewPlaintext(params)
		pt.Randomize(params, tc.source.NewSource())

		ct := NewCiphertext(params)
		require.NoError(t, enc.Encrypt(pt, ct))

		// Multiplication by the monomial X
		x := NewPlaintext(params)
		x.Value[1] = 1

		ctOut, err := eval.MulPlaintextNew(ct, x)
		require.NoError(t, err)
		require.Equal(t, ct.NoiseVariance, ctOut.NoiseVariance)

		have, err := dec.DecryptNew(ctOut)
		require.NoError(t, err)

		want := params.RingT().MulPolyNew(pt.Value, x.Value)
		require.Equal(t, want, have.Value)

		// In place
		ctCpy := ct.Clone()
		require.NoError(t, eval.MulPlaintext(ctCpy, x, ctCpy))
		require.True(t, ctOut.Equal(ctCpy))
	})

	t.Run(testString(params, "Evaluator/MulPlaintext/ConstantEqualsMulPlain"), func(t *testing.T) {

		ct, err := enc.EncryptNew(int64(tc.randomValue()))
		require.NoError(t, err)

		for _, k := range []int64{0, 1, 2, 5, -3} {

			ct0, err := eval.MulPlainNew(ct, k)
			require.NoError(t, err)

			ct1, err := eval.MulPlaintextNew(ct, NewPlaintextFromInt(params, k))
			require.NoError(t, err)

			require.True(t, ct0.Equal(ct1), k)
		}
	})

	t.Run(testString(params, "Evaluator/InvalidShape"), func(t *testing.T) {

		other := tc.otherParameters(t)

		_, err := eval.AddPlainNew(NewCiphertext(other), 1)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = eval.MulPlainNew(NewCiphertext(other), 1)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		err = eval.MulPlain(NewCiphertext(params), 1, NewCiphertext(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = eval.AddPlaintextNew(NewCiphertext(params), NewPlaintext(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = eval.MulPlaintextNew(NewCiphertext(params), NewPlaintext(other))
		require.True(t, errors.Is(err, ErrInvalidParameters), err)

		_, err = eval.AddPlainNew(nil, 1)
		require.True(t, errors.Is(err, ErrInvalidParameters), err)
	})

	t.Run(testString(params, "Evaluator/ShallowCopy"), func(t *testing.T) {
		eval1 := eval.ShallowCopy()
		require.True(t, eval1.params.Equal(&eval.params))
		require.False(t, eval1.EvaluatorBuffers == eval.EvaluatorBuffers)
	})
}

func testNoise(tc *TestContext, t *testing.T) {

	params := tc.params

	t.Run(testString(params, "Noise/NoiseCiphertext"), func(t *testing.T) {

		pt := NewPlaintext(params)
		pt.Randomize(params, tc.source.NewSource())

		ct := NewCiphertext(params)
		require.NoError(t, tc.encSk.Encrypt(pt, ct))

		stats := NoiseCiphertextStats(ct, pt, tc.sk, params)
		require.LessOrEqual(t, stats.MaxAbs, params.NoiseBound())
		require.LessOrEqual(t, math.Abs(stats.Mean), stats.MaxAbs)
		require.Equal(t, stats.Log2Std(), NoiseCiphertext(ct, pt, tc.sk, params))
	})

	t.Run(testString(params, "Noise/DecryptionFailureLog2"), func(t *testing.T) {

		bound := params.DecryptionBound()

		// Monotonic in the noise
		p0 := DecryptionFailureLog2(params, params.NoiseFreshPK())
		p1 := DecryptionFailureLog2(params, 10*params.NoiseFreshPK())
		require.Less(t, p0, p1)
		require.LessOrEqual(t, p1, 0.0)

		// Capped at probability one
		require.Equal(t, 0.0, DecryptionFailureLog2(params, bound*1e3))

		// No noise, no failure
		require.Equal(t, math.Inf(-1), DecryptionFailureLog2(params, 0))

		// The asymptotic expansion used beyond z=5 agrees with erfc
		below := DecryptionFailureLog2(params, bound/(math.Sqrt2*(5-1e-9)))
		above := DecryptionFailureLog2(params, bound/(math.Sqrt2*(5+1e-9)))
		require.InDelta(t, below, above, 0.1)

		// Probabilities far below the smallest float64
		tiny := DecryptionFailureLog2(params, bound/(math.Sqrt2*100))
		require.False(t, math.IsInf(tiny, -1))
		require.Less(t, tiny, -10000.0)

		// Closed form beyond the exponent range of big.Float
		below = DecryptionFailureLog2(params, bound/(math.Sqrt2*(maxBigFloatZ-1e-3)))
		above = DecryptionFailureLog2(params, bound/(math.Sqrt2*(maxBigFloatZ+1e-3)))
		require.InEpsilon(t, below, above, 1e-6)
	})
}

func testWriteAndRead(tc *TestContext, t *testing.T) {

	params := tc.params

	sk, pk := tc.sk, tc.pk

	t.Run(testString(params, "WriteAndRead/Plaintext"), func(t *testing.T) {
		op := NewPlaintext(params)
		op.Randomize(params, sampling.NewSource([32]byte{}))
		buffer.RequireSerializerCorrect(t, op)
	})

	t.Run(testString(params, "WriteAndRead/Ciphertext"), func(t *testing.T) {
		op := NewCiphertext(params)
		op.Randomize(params, sampling.NewSource([32]byte{}))
		buffer.RequireSerializerCorrect(t, op)
	})

	t.Run(testString(params, "WriteAndRead/Ciphertext/Fresh"), func(t *testing.T) {
		op, err := tc.enc.EncryptNew(1)
		require.NoError(t, err)
		buffer.RequireSerializerCorrect(t, op)
	})

	t.Run(testString(params, "WriteAndRead/Ciphertext/WithoutMetaData"), func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, pk.AsCiphertext())
	})

	t.Run(testString(params, "WriteAndRead/Ciphertext/WithoutMetaData/Reused"), func(t *testing.T) {

		want := pk.AsCiphertext()

		data, err := want.MarshalBinary()
		require.NoError(t, err)

		// The receiver already carries metadata, which must not survive the decoding.
		have := NewCiphertext(params)
		have.NoiseVariance = 5
		require.NoError(t, have.UnmarshalBinary(data))
		require.Nil(t, have.MetaData)
		require.True(t, want.Equal(have))
	})

	t.Run(testString(params, "Ciphertext/Copy"), func(t *testing.T) {

		src, err := tc.enc.EncryptNew(1)
		require.NoError(t, err)

		dst := NewCiphertext(params)
		dst.Copy(src)
		require.True(t, src.Equal(dst))
		require.NotSame(t, src.MetaData, dst.MetaData)

		// Copying an element without metadata drops the metadata of the receiver.
		dst.Copy(pk.AsCiphertext())
		require.Nil(t, dst.MetaData)
		require.True(t, pk.AsCiphertext().Equal(dst))
	})

	t.Run(testString(params, "WriteAndRead/Sk"), func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, sk)
	})

	t.Run(testString(params, "WriteAndRead/Pk"), func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, pk)
	})

	t.Run(testString(params, "WriteAndRead/MetaData"), func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, &MetaData{NoiseVariance: params.NoiseFreshPK()})
	})

	t.Run(testString(params, "WriteAndRead/Parameters"), func(t *testing.T) {
		buffer.RequireSerializerCorrect(t, &params)
	})

	t.Run(testString(params, "WriteAndRead/ParametersLiteral"), func(t *testing.T) {
		lit := params.ParametersLiteral()
		buffer.RequireSerializerCorrect(t, &lit)
	})
}
