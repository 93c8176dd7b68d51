package rlwe

import (
	"fmt"
	"io"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils"
	"github.com/Pro7ech/minihe/utils/sampling"
)

// Plaintext is a polynomial of Z_T[X]/(PolyMod), with
// coefficients in [0, T). An integer plaintext is
// encoded as the constant coefficient.
type Plaintext struct {
	Value ring.Poly
}

// NewPlaintext creates a new zero [rlwe.Plaintext].
func NewPlaintext(params ParameterProvider) (pt *Plaintext) {
	return &Plaintext{Value: ring.NewPoly(params.GetRLWEParameters().N())}
}

// NewPlaintextFromInt encodes value as the constant coefficient
// of a new [rlwe.Plaintext]. The value is reduced modulo T, negative
// values being mapped with the floor convention (e.g. -1 -> T-1).
func NewPlaintextFromInt(params ParameterProvider, value int64) (pt *Plaintext) {
	p := params.GetRLWEParameters()
	pt = NewPlaintext(p)
	pt.Value[0] = uint64(utils.FloorMod(value, int64(p.T())))
	return
}

// Int returns the constant coefficient of the plaintext.
func (pt Plaintext) Int() uint64 {
	return pt.Value[0]
}

// N returns the number of coefficients of the plaintext.
func (pt Plaintext) N() int {
	return pt.Value.N()
}

// Clone returns a deep copy of the receiver.
func (pt Plaintext) Clone() (ptCpy *Plaintext) {
	return &Plaintext{Value: *pt.Value.Clone()}
}

// Equal performs a deep equal.
func (pt *Plaintext) Equal(other *Plaintext) bool {
	return pt.Value.Equal(&other.Value)
}

// Randomize populates the receiver with uniform random coefficients in [0, T).
func (pt *Plaintext) Randomize(params ParameterProvider, source *sampling.Source) {
	ring.NewUniformSampler(source, params.GetRLWEParameters().T()).Read(pt.Value)
}

// BinarySize returns the serialized size of the object in bytes.
func (pt Plaintext) BinarySize() (size int) {
	return pt.Value.BinarySize()
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
func (pt Plaintext) WriteTo(w io.Writer) (n int64, err error) {
	return pt.Value.WriteTo(w)
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
func (pt *Plaintext) ReadFrom(r io.Reader) (n int64, err error) {
	return pt.Value.ReadFrom(r)
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pt Plaintext) MarshalBinary() (data []byte, err error) {
	return pt.Value.MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (pt *Plaintext) UnmarshalBinary(p []byte) (err error) {
	return pt.Value.UnmarshalBinary(p)
}

// checkShape returns an error wrapping [ErrInvalidParameters]
// if the plaintext does not match the parameters.
func (pt *Plaintext) checkShape(params Parameters) (err error) {
	if pt == nil {
		return fmt.Errorf("plaintext is nil: %w", ErrInvalidParameters)
	}
	if pt.N() != params.N() {
		return fmt.Errorf("plaintext has %d coefficients but parameters ring degree is %d: %w", pt.N(), params.N(), ErrInvalidParameters)
	}
	return
}
