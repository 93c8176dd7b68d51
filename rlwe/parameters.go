package rlwe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils/buffer"
)

const (
	// MinLogN is the log2 of the smallest supported ring degree.
	MinLogN = 1
	// MaxLogN is the log2 of the largest supported ring degree.
	MaxLogN = 17
)

// DefaultXe is the default error distribution: a discrete
// Gaussian of standard deviation 2 truncated at 6 sigma.
var DefaultXe = ring.DiscreteGaussian{Sigma: ring.DefaultSigma, Bound: ring.DefaultBound}

// DefaultXs is the default distribution of the secret and of the
// ephemeral encryption randomness: uniform in {0, 1}.
var DefaultXs = ring.Binary{}

// ParameterProvider is an interface for types that can provide [rlwe.Parameters].
type ParameterProvider interface {
	GetRLWEParameters() *Parameters
}

// Parameters represents a set of RLWE parameters. Its fields are private and
// immutable. See [rlwe.ParametersLiteral] for user-specified parameters.
type Parameters struct {
	logN  int
	q     uint64
	t     uint64
	xe    ring.DistributionParameters
	xs    ring.DistributionParameters
	ringQ *ring.Ring
}

// NewParameters returns a new set of RLWE parameters from the given ring degree logN,
// ciphertext modulus q, plaintext modulus t, reduction polynomial polyMod and
// error and secret distributions.
// If polyMod is nil, the reduction polynomial is X^N + 1.
// It returns the empty parameters Parameters{} and an error wrapping
// [ErrInvalidParameters] if the specified parameters are invalid.
func NewParameters(logN int, q, t uint64, polyMod []uint64, xe, xs ring.DistributionParameters) (params Parameters, err error) {

	if logN < MinLogN || logN > MaxLogN {
		return Parameters{}, fmt.Errorf("logN=%d must be in [%d, %d]: %w", logN, MinLogN, MaxLogN, ErrInvalidParameters)
	}

	N := 1 << logN

	if t < 2 {
		return Parameters{}, fmt.Errorf("plaintext modulus t=%d must be at least 2: %w", t, ErrInvalidParameters)
	}

	if t >= q {
		return Parameters{}, fmt.Errorf("plaintext modulus t=%d must be smaller than ciphertext modulus q=%d: %w", t, q, ErrInvalidParameters)
	}

	if polyMod == nil {
		polyMod = ring.CyclotomicPolyMod(N)
	}

	if len(polyMod) != N+1 {
		return Parameters{}, fmt.Errorf("reduction polynomial has degree %d but N=%d: %w", len(polyMod)-1, N, ErrInvalidParameters)
	}

	if err = checkDistributions(xe, xs); err != nil {
		return Parameters{}, err
	}

	var ringQ *ring.Ring
	if ringQ, err = ring.NewRingFromPolyMod(q, polyMod); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", err, ErrInvalidParameters)
	}

	return Parameters{
		logN:  logN,
		q:     q,
		t:     t,
		xe:    xe,
		xs:    xs,
		ringQ: ringQ,
	}, nil
}

// NewParametersFromLiteral instantiates a set of [rlwe.Parameters] from
// a [rlwe.ParametersLiteral] description.
// It returns the empty parameters Parameters{} and an error wrapping
// [ErrInvalidParameters] if the specified parameters are invalid.
//
// If the error distribution Xe is left unset, [DefaultXe] is used.
// If the secret distribution Xs is left unset, [DefaultXs] is used.
// If PolyMod is left unset, the reduction polynomial is X^N + 1.
func NewParametersFromLiteral(paramDef ParametersLiteral) (params Parameters, err error) {

	if paramDef.Xe == nil {
		// prevents the zero value of ParameterLiteral to result in a noise-less parameter instance.
		xe := DefaultXe
		paramDef.Xe = &xe
	}

	if paramDef.Xs == nil {
		xs := DefaultXs
		paramDef.Xs = &xs
	}

	var polyMod []uint64
	if len(paramDef.PolyMod) != 0 {
		polyMod = paramDef.PolyMod
	}

	return NewParameters(paramDef.LogN, paramDef.Q, paramDef.T, polyMod, paramDef.Xe, paramDef.Xs)
}

func checkDistributions(xe, xs ring.DistributionParameters) (err error) {
	switch xe := xe.(type) {
	case *ring.DiscreteGaussian:
		if err = xe.Validate(); err != nil {
			return fmt.Errorf("invalid Xe: %s: %w", err, ErrInvalidParameters)
		}
	default:
		return fmt.Errorf("invalid Xe: want *ring.DiscreteGaussian but have %T: %w", xe, ErrInvalidParameters)
	}

	switch xs := xs.(type) {
	case *ring.Binary:
	case *ring.DiscreteGaussian:
		if err = xs.Validate(); err != nil {
			return fmt.Errorf("invalid Xs: %s: %w", err, ErrInvalidParameters)
		}
	default:
		return fmt.Errorf("invalid Xs: want *ring.Binary or *ring.DiscreteGaussian but have %T: %w", xs, ErrInvalidParameters)
	}

	return
}

// GetRLWEParameters returns a pointer to the underlying [rlwe.Parameters].
func (p Parameters) GetRLWEParameters() *Parameters {
	return &p
}

// ParametersLiteral returns the [rlwe.ParametersLiteral] of the target [rlwe.Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {

	var polyMod ring.Poly
	if !p.ringQ.IsCyclotomic() {
		polyMod = p.PolyMod()
	}

	return ParametersLiteral{
		LogN:    p.logN,
		Q:       p.q,
		T:       p.t,
		PolyMod: polyMod,
		Xe:      p.Xe(),
		Xs:      p.Xs(),
	}
}

// N returns the ring degree.
func (p Parameters) N() int {
	return 1 << p.logN
}

// LogN returns the log2 of the ring degree.
func (p Parameters) LogN() int {
	return p.logN
}

// Q returns the ciphertext modulus.
func (p Parameters) Q() uint64 {
	return p.q
}

// T returns the plaintext modulus.
func (p Parameters) T() uint64 {
	return p.t
}

// Delta returns the scaling factor floor(Q/T) embedding
// plaintexts of Z_T into Z_Q.
func (p Parameters) Delta() uint64 {
	return p.q / p.t
}

// PolyMod returns a copy of the coefficients of the reduction
// polynomial, ordered by increasing degree.
func (p Parameters) PolyMod() ring.Poly {
	return *ring.Poly(p.ringQ.PolyMod).Clone()
}

// RingQ returns a pointer to the ring Z_Q[X]/(PolyMod).
func (p Parameters) RingQ() *ring.Ring {
	return p.ringQ
}

// RingT returns a new ring Z_T[X]/(PolyMod) on which plaintexts live.
func (p Parameters) RingT() *ring.Ring {
	r, err := ring.NewRingFromPolyMod(p.t, p.ringQ.PolyMod)
	if err != nil {
		// Sanity check, this error should not happen: the parameters have been checked.
		panic(fmt.Errorf("ring.NewRingFromPolyMod: %w", err))
	}
	return r
}

// Xe returns the [ring.DistributionParameters] of the error.
func (p Parameters) Xe() ring.DistributionParameters {
	switch xe := p.xe.(type) {
	case *ring.DiscreteGaussian:
		x := *xe
		return &x
	default:
		return p.xe
	}
}

// Xs returns the [ring.DistributionParameters] of the secret
// and of the ephemeral encryption randomness.
func (p Parameters) Xs() ring.DistributionParameters {
	switch xs := p.xs.(type) {
	case *ring.DiscreteGaussian:
		x := *xs
		return &x
	case *ring.Binary:
		return &ring.Binary{}
	default:
		return p.xs
	}
}

// NoiseBound returns the truncation bound of the error distribution.
func (p Parameters) NoiseBound() float64 {
	return p.xe.(*ring.DiscreteGaussian).Bound
}

// DecryptionBound returns Q/(2T), the largest magnitude the noise of
// a ciphertext can reach while still being correctly decrypted.
func (p Parameters) DecryptionBound() float64 {
	return float64(p.q) / float64(2*p.t)
}

// NoiseFreshPK returns the standard deviation
// of a fresh encryption with the public key.
// The noise of such encryption is e1 + e2*sk - e*u, where u and
// sk are distributed according to Xs, hence has variance
// sigma^2 * (1 + 2 * N * E[Xs^2]).
func (p Parameters) NoiseFreshPK() (std float64) {
	sigma := p.xe.(*ring.DiscreteGaussian).Sigma
	return sigma * math.Sqrt(1+2*float64(p.N())*p.secondMomentXs())
}

// NoiseFreshSK returns the standard deviation
// of a fresh encryption with the secret key.
func (p Parameters) NoiseFreshSK() (std float64) {
	return p.xe.(*ring.DiscreteGaussian).Sigma
}

// secondMomentXs returns E[x^2] for x sampled from Xs.
func (p Parameters) secondMomentXs() float64 {
	switch xs := p.xs.(type) {
	case *ring.DiscreteGaussian:
		return xs.Sigma * xs.Sigma
	default:
		return 0.5
	}
}

// Equal returns true if the receiver and other are the same parameters.
func (p Parameters) Equal(other *Parameters) (res bool) {
	res = p.logN == other.logN
	res = res && p.q == other.q
	res = res && p.t == other.t
	res = res && cmp.Equal(p.ringQ.PolyMod, other.ringQ.PolyMod)
	res = res && p.xe.Equal(other.xe)
	res = res && p.xs.Equal(other.xs)
	return
}

// BinarySize returns the serialized size of the object in bytes.
func (p Parameters) BinarySize() int {
	return p.ParametersLiteral().BinarySize()
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
func (p Parameters) WriteTo(w io.Writer) (n int64, err error) {
	return p.ParametersLiteral().WriteTo(w)
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
func (p *Parameters) ReadFrom(r io.Reader) (n int64, err error) {
	var paramsLit ParametersLiteral
	if n, err = paramsLit.ReadFrom(r); err != nil {
		return
	}
	*p, err = NewParametersFromLiteral(paramsLit)
	return
}

// MarshalBinary returns a []byte representation of the parameter set.
// This representation corresponds to the MarshalJSON representation.
func (p Parameters) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err := p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a []byte into a parameter set struct.
func (p *Parameters) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}

// ParametersLiteral is a literal representation of RLWE parameters. It has public fields and
// is used to express unchecked user-defined parameters literally into Go programs.
// The [NewParametersFromLiteral] function is used to generate the actual checked parameters
// from the literal representation.
//
// Users must set the ring degree (LogN), the ciphertext modulus Q and the plaintext
// modulus T. Optionally, users may specify the reduction polynomial (PolyMod, N+1
// coefficients of a monic polynomial ordered by increasing degree), the error
// distribution Xe and the secret distribution Xs.
type ParametersLiteral struct {
	LogN    int
	Q       uint64
	T       uint64
	PolyMod ring.Poly                   `json:",omitempty"`
	Xe      ring.DistributionParameters `json:",omitempty"`
	Xs      ring.DistributionParameters `json:",omitempty"`
}

// BinarySize returns the serialized size of the object in bytes.
// Unset distributions are serialized as the default ones.
func (p ParametersLiteral) BinarySize() (size int) {
	p.setDefaultDistributions()
	size++    // LogN
	size += 8 // Q
	size += 8 // T
	size += p.PolyMod.BinarySize()
	size += p.Xe.BinarySize()
	size += p.Xs.BinarySize()
	return
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
func (p ParametersLiteral) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		p.setDefaultDistributions()

		var inc int64

		if inc, err = buffer.WriteAsUint8(w, p.LogN); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64(w, p.Q); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64(w, p.T); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.PolyMod.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.Xe.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.Xs.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()
	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
func (p *ParametersLiteral) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var logN uint8
		if inc, err = buffer.ReadUint8(r, &logN); err != nil {
			return n + inc, err
		}

		p.LogN = int(logN)

		n += inc

		if inc, err = buffer.ReadUint64(r, &p.Q); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.ReadUint64(r, &p.T); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.PolyMod.ReadFrom(r); err != nil {
			return n + inc, err
		}

		n += inc

		if p.Xe, inc, err = ring.DistributionParametersFromReader(r); err != nil {
			return n + inc, err
		}

		n += inc

		if p.Xs, inc, err = ring.DistributionParametersFromReader(r); err != nil {
			return n + inc, err
		}

		n += inc

		return
	default:
		return p.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (p ParametersLiteral) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err = p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (p *ParametersLiteral) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}

// UnmarshalJSON reads a JSON representation on the receiver.
// Distributions are given as maps, for example
// {"Type":"DiscreteGaussian","Sigma":2,"Bound":12}.
func (p *ParametersLiteral) UnmarshalJSON(b []byte) (err error) {
	var pl struct {
		LogN    int
		Q       uint64
		T       uint64
		PolyMod []uint64
		Xe      map[string]interface{}
		Xs      map[string]interface{}
	}

	if err = json.Unmarshal(b, &pl); err != nil {
		return err
	}

	p.LogN = pl.LogN
	p.Q, p.T = pl.Q, pl.T
	p.PolyMod = pl.PolyMod

	if pl.Xe != nil {
		if p.Xe, err = ring.DistributionParametersFromMap(pl.Xe); err != nil {
			return err
		}
	}

	if pl.Xs != nil {
		if p.Xs, err = ring.DistributionParametersFromMap(pl.Xs); err != nil {
			return err
		}
	}

	return
}

func (p *ParametersLiteral) setDefaultDistributions() {
	if p.Xe == nil {
		xe := DefaultXe
		p.Xe = &xe
	}
	if p.Xs == nil {
		xs := DefaultXs
		p.Xs = &xs
	}
}
