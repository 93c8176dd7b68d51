package rlwe

import (
	"fmt"

	"github.com/Pro7ech/minihe/ring"
)

// Decryptor is a structure used to decrypt [rlwe.Ciphertext].
// It stores the secret-key.
type Decryptor struct {
	params      Parameters
	buff        ring.Poly
	buffProduct []uint64
	sk          *SecretKey
}

// NewDecryptor instantiates a new [rlwe.Decryptor].
// Returns an error wrapping [ErrInvalidParameters] if the key does not
// match the parameters.
func NewDecryptor(params ParameterProvider, sk *SecretKey) (*Decryptor, error) {

	p := params.GetRLWEParameters()

	if err := sk.checkShape(*p); err != nil {
		return nil, fmt.Errorf("cannot NewDecryptor: %w", err)
	}

	return &Decryptor{
		params:      *p,
		buff:        p.RingQ().NewPoly(),
		buffProduct: make([]uint64, p.RingQ().ProductBufferSize()),
		sk:          sk,
	}, nil
}

// GetRLWEParameters returns the underlying [rlwe.Parameters] of the receiver.
func (d Decryptor) GetRLWEParameters() *Parameters {
	return &d.params
}

// DecryptNew decrypts an [rlwe.Ciphertext] and returns the result in a new [rlwe.Plaintext].
func (d Decryptor) DecryptNew(ct *Ciphertext) (pt *Plaintext, err error) {
	pt = NewPlaintext(d.params)
	return pt, d.Decrypt(ct, pt)
}

// DecryptInt decrypts an [rlwe.Ciphertext] and returns the constant
// coefficient of the plaintext, in [0, T).
func (d Decryptor) DecryptInt(ct *Ciphertext) (value uint64, err error) {
	var pt *Plaintext
	if pt, err = d.DecryptNew(ct); err != nil {
		return
	}
	return pt.Int(), nil
}

// Decrypt decrypts an [rlwe.Ciphertext] and writes the result on an [rlwe.Plaintext].
// It computes c = c0 + c1*sk mod Q and then round(c*T/Q) mod T on each coefficient.
//
// The result is correct as long as the magnitude of the ciphertext noise stays below
// Q/(2T). Past this bound the decryption silently returns a wrong plaintext.
func (d Decryptor) Decrypt(ct *Ciphertext, pt *Plaintext) (err error) {

	if err = ct.checkShape(d.params); err != nil {
		return fmt.Errorf("cannot Decrypt: %w", err)
	}

	if err = pt.checkShape(d.params); err != nil {
		return fmt.Errorf("cannot Decrypt: %w", err)
	}

	d.decrypt(ct, d.buff)

	ring.ScaleAndRound(d.buff, d.params.T(), d.params.Q(), d.params.T(), pt.Value)

	return
}

// decrypt evaluates c0 + c1*sk on pt.
func (d Decryptor) decrypt(ct *Ciphertext, pt ring.Poly) {
	rQ := d.params.RingQ()
	rQ.MulPolyWithBuffer(ct.Value[1], d.sk.Value, d.buffProduct, pt)
	rQ.Add(pt, ct.Value[0], pt)
}

// ShallowCopy creates a shallow copy of the receiver in which all the read-only data-
// structures are shared with the receiver and the temporary buffers are reallocated.
// The receiver and the returned object can be used concurrently.
func (d Decryptor) ShallowCopy() *Decryptor {
	return &Decryptor{
		params:      d.params,
		buff:        d.params.RingQ().NewPoly(),
		buffProduct: make([]uint64, d.params.RingQ().ProductBufferSize()),
		sk:          d.sk,
	}
}

// WithKey returns an instance of the receiver with a new decryption key.
// The returned object cannot be used concurrently with the receiver.
func (d Decryptor) WithKey(sk *SecretKey) (*Decryptor, error) {

	if err := sk.checkShape(d.params); err != nil {
		return nil, fmt.Errorf("cannot WithKey: %w", err)
	}

	return &Decryptor{
		params:      d.params,
		buff:        d.buff,
		buffProduct: d.buffProduct,
		sk:          sk,
	}, nil
}
