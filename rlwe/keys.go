package rlwe

import (
	"fmt"
	"io"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils/structs"
)

// SecretKey is a type for RLWE secret keys.
// Its coefficients follow the secret distribution Xs,
// by default uniform in {0, 1}.
type SecretKey struct {
	Value ring.Poly
}

// NewSecretKey generates a new [rlwe.SecretKey] with zero values.
func NewSecretKey(params ParameterProvider) *SecretKey {
	return &SecretKey{Value: params.GetRLWEParameters().RingQ().NewPoly()}
}

// N returns the ring degree of the key.
func (sk SecretKey) N() int {
	return sk.Value.N()
}

// Equal performs a deep equal.
func (sk *SecretKey) Equal(other *SecretKey) bool {
	return sk.Value.Equal(&other.Value)
}

// Clone returns a deep copy of the receiver.
func (sk *SecretKey) Clone() *SecretKey {
	return &SecretKey{Value: *sk.Value.Clone()}
}

// BinarySize returns the serialized size of the object in bytes.
func (sk SecretKey) BinarySize() int {
	return sk.Value.BinarySize()
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
func (sk SecretKey) WriteTo(w io.Writer) (n int64, err error) {
	return sk.Value.WriteTo(w)
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
func (sk *SecretKey) ReadFrom(r io.Reader) (n int64, err error) {
	return sk.Value.ReadFrom(r)
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (sk SecretKey) MarshalBinary() (p []byte, err error) {
	return sk.Value.MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (sk *SecretKey) UnmarshalBinary(p []byte) (err error) {
	return sk.Value.UnmarshalBinary(p)
}

func (sk *SecretKey) isEncryptionKey() {}

// checkShape returns an error wrapping [ErrInvalidParameters]
// if the key does not match the parameters.
func (sk *SecretKey) checkShape(params Parameters) (err error) {
	if sk == nil {
		return fmt.Errorf("secret key is nil: %w", ErrInvalidParameters)
	}
	if sk.N() != params.N() {
		return fmt.Errorf("secret key ring degree %d does not match parameters ring degree %d: %w", sk.N(), params.N(), ErrInvalidParameters)
	}
	return
}

// PublicKey is a type for RLWE public keys.
// Value[0] = b = -(a*sk) - e and Value[1] = a, where a
// is uniform and e is sampled from the error distribution.
type PublicKey struct {
	Value structs.Vector[ring.Poly]
}

// NewPublicKey returns a new [rlwe.PublicKey] with zero values.
func NewPublicKey(params ParameterProvider) (pk *PublicKey) {
	rQ := params.GetRLWEParameters().RingQ()
	return &PublicKey{Value: structs.Vector[ring.Poly]{rQ.NewPoly(), rQ.NewPoly()}}
}

// N returns the ring degree of the key.
func (pk PublicKey) N() int {
	if len(pk.Value) == 0 {
		return 0
	}
	return pk.Value[0].N()
}

// AsCiphertext wraps the receiver into an [rlwe.Ciphertext].
// The returned ciphertext shares the backing arrays of the receiver.
func (pk *PublicKey) AsCiphertext() *Ciphertext {
	return &Ciphertext{Value: pk.Value}
}

// Equal performs a deep equal.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.Value.Equal(other.Value)
}

// Clone returns a deep copy of the receiver.
func (pk *PublicKey) Clone() *PublicKey {
	return &PublicKey{Value: pk.Value.Clone()}
}

// BinarySize returns the serialized size of the object in bytes.
func (pk PublicKey) BinarySize() int {
	return pk.Value.BinarySize()
}

// WriteTo writes the object on an [io.Writer]. It implements the [io.WriterTo]
// interface, and will write exactly object.BinarySize() bytes on w.
func (pk PublicKey) WriteTo(w io.Writer) (n int64, err error) {
	return pk.Value.WriteTo(w)
}

// ReadFrom reads on the object from an [io.Reader]. It implements the
// [io.ReaderFrom] interface.
func (pk *PublicKey) ReadFrom(r io.Reader) (n int64, err error) {
	return pk.Value.ReadFrom(r)
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (pk PublicKey) MarshalBinary() (p []byte, err error) {
	return pk.Value.MarshalBinary()
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (pk *PublicKey) UnmarshalBinary(p []byte) (err error) {
	return pk.Value.UnmarshalBinary(p)
}

func (pk *PublicKey) isEncryptionKey() {}

// checkShape returns an error wrapping [ErrInvalidParameters]
// if the key does not match the parameters.
func (pk *PublicKey) checkShape(params Parameters) (err error) {
	if pk == nil {
		return fmt.Errorf("public key is nil: %w", ErrInvalidParameters)
	}
	return checkPolys("public key", params, pk.Value)
}

// checkPolys checks that polys holds a pair of polynomials of N coefficients.
func checkPolys(name string, params Parameters, polys structs.Vector[ring.Poly]) (err error) {

	if len(polys) != 2 {
		return fmt.Errorf("%s has %d polynomials but should have 2: %w", name, len(polys), ErrInvalidParameters)
	}

	for i := range polys {
		if polys[i].N() != params.N() {
			return fmt.Errorf("%s polynomial %d has %d coefficients but parameters ring degree is %d: %w", name, i, polys[i].N(), params.N(), ErrInvalidParameters)
		}
	}

	return
}
