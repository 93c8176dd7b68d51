package rlwe

import (
	"fmt"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils/sampling"
)

// EncryptionKey is an interface for encryption keys.
// Valid encryption keys are [rlwe.SecretKey] and
// [rlwe.PublicKey] types.
type EncryptionKey interface {
	isEncryptionKey()
}

// Encryptor is a struct dedicated to encrypting [rlwe.Plaintext]
// into [rlwe.Ciphertext].
type Encryptor struct {
	params Parameters
	*EncryptorBuffers

	encKey    EncryptionKey
	xeSampler ring.Sampler
	xuSampler ring.Sampler
	xaSampler ring.Sampler
}

// EncryptorBuffers is a struct storing the read and write buffers
// of an encryptor.
type EncryptorBuffers struct {
	BuffQ [2]ring.Poly
	// BuffProduct stores the 2N-1 coefficients of a product
	// before its reduction by the reduction polynomial.
	BuffProduct []uint64
}

func newEncryptorBuffers(params Parameters) *EncryptorBuffers {
	rQ := params.RingQ()
	return &EncryptorBuffers{
		BuffQ:       [2]ring.Poly{rQ.NewPoly(), rQ.NewPoly()},
		BuffProduct: make([]uint64, rQ.ProductBufferSize()),
	}
}

// NewEncryptor creates a new [rlwe.Encryptor] from an [rlwe.EncryptionKey].
// The key can be nil, in which case it must be provided with [Encryptor.WithKey]
// before encrypting.
// The randomness of the encryptor is drawn from fresh seeds; see
// [Encryptor.WithSource] for reproducible encryptions.
// Returns an error wrapping [ErrInvalidParameters] if the key does
// not match the parameters.
func NewEncryptor(params ParameterProvider, key EncryptionKey) (enc *Encryptor, err error) {
	enc = newEncryptor(*params.GetRLWEParameters(), sampling.NewSource(sampling.NewSeed()))
	return enc.WithKey(key)
}

func newEncryptor(params Parameters, source *sampling.Source) *Encryptor {

	xeSampler, err := ring.NewSampler(source.NewSource(), params.Q(), params.Xe())

	// Sanity check, this error should not happen.
	if err != nil {
		panic(fmt.Errorf("newEncryptor: %w", err))
	}

	xuSampler, err := ring.NewSampler(source.NewSource(), params.Q(), params.Xs())

	// Sanity check, this error should not happen.
	if err != nil {
		panic(fmt.Errorf("newEncryptor: %w", err))
	}

	return &Encryptor{
		params:           params,
		EncryptorBuffers: newEncryptorBuffers(params),
		xeSampler:        xeSampler,
		xuSampler:        xuSampler,
		xaSampler:        ring.NewUniformSampler(source.NewSource(), params.Q()),
	}
}

// GetRLWEParameters returns the underlying [rlwe.Parameters] of the receiver.
func (enc Encryptor) GetRLWEParameters() *Parameters {
	return &enc.params
}

// EncryptNew encodes value as the constant coefficient of a plaintext
// of Z_T, see [NewPlaintextFromInt], and returns its encryption.
func (enc Encryptor) EncryptNew(value int64) (ct *Ciphertext, err error) {
	ct = NewCiphertext(enc.params)
	return ct, enc.Encrypt(NewPlaintextFromInt(enc.params, value), ct)
}

// Encrypt encrypts the input [rlwe.Plaintext] using the stored encryption key and writes the result on ct.
// If pt is nil, the method produces an encryption of zero.
//
// With an [rlwe.PublicKey] pk = (b, a), the encryption samples u from Xs and e1, e2 from Xe,
// and sets ct = (b*u + e1 + Delta*m, a*u + e2).
// With an [rlwe.SecretKey] sk, the encryption samples a uniform and e from Xe,
// and sets ct = (-(a*sk) - e + Delta*m, a).
//
// The method returns an error if no encryption key is stored or if the plaintext
// or the ciphertext do not match the parameters.
func (enc Encryptor) Encrypt(pt *Plaintext, ct *Ciphertext) (err error) {

	if pt == nil {
		return enc.EncryptZero(ct)
	}

	if err = pt.checkShape(enc.params); err != nil {
		return fmt.Errorf("cannot Encrypt: %w", err)
	}

	if err = enc.EncryptZero(ct); err != nil {
		return fmt.Errorf("cannot Encrypt: %w", err)
	}

	enc.addPtToCt(pt, ct)

	return
}

// EncryptZero generates an encryption of zero under the stored encryption key and writes the result on ct.
// The method returns an error if no encryption key is stored or if the ciphertext does not match the parameters.
func (enc Encryptor) EncryptZero(ct *Ciphertext) (err error) {

	if err = ct.checkShape(enc.params); err != nil {
		return fmt.Errorf("cannot EncryptZero: %w", err)
	}

	switch key := enc.encKey.(type) {
	case *PublicKey:
		enc.encryptZeroPk(key, ct)
	case *SecretKey:
		enc.encryptZeroSk(key, ct)
	default:
		return fmt.Errorf("cannot EncryptZero: encryption key is nil")
	}

	return
}

func (enc Encryptor) encryptZeroPk(pk *PublicKey, ct *Ciphertext) {

	rQ := enc.params.RingQ()

	u := enc.BuffQ[0]
	enc.xuSampler.Read(u)

	c0, c1 := ct.Value[0], ct.Value[1]

	// c0 = b*u + e1
	rQ.MulPolyWithBuffer(pk.Value[0], u, enc.BuffProduct, c0)
	enc.xeSampler.ReadAndAdd(c0)

	// c1 = a*u + e2
	rQ.MulPolyWithBuffer(pk.Value[1], u, enc.BuffProduct, c1)
	enc.xeSampler.ReadAndAdd(c1)

	if ct.MetaData != nil {
		ct.NoiseVariance = enc.params.NoiseFreshPK() * enc.params.NoiseFreshPK()
	}
}

func (enc Encryptor) encryptZeroSk(sk *SecretKey, ct *Ciphertext) {

	rQ := enc.params.RingQ()

	c0, c1 := ct.Value[0], ct.Value[1]

	// c1 = a
	enc.xaSampler.Read(c1)

	// c0 = -(a*sk) - e
	e := enc.BuffQ[0]
	enc.xeSampler.Read(e)
	rQ.MulPolyWithBuffer(c1, sk.Value, enc.BuffProduct, c0)
	rQ.Add(c0, e, c0)
	rQ.Neg(c0, c0)

	if ct.MetaData != nil {
		ct.NoiseVariance = enc.params.NoiseFreshSK() * enc.params.NoiseFreshSK()
	}
}

// addPtToCt adds Delta*(pt mod T) on c0.
func (enc Encryptor) addPtToCt(pt *Plaintext, ct *Ciphertext) {
	buff := enc.BuffQ[1]
	T, delta := enc.params.T(), enc.params.Delta()
	for i, c := range pt.Value {
		// (c mod T) * Delta < Q
		buff[i] = (c % T) * delta
	}
	enc.params.RingQ().Add(ct.Value[0], buff, ct.Value[0])
}

// WithSource returns an instance of the receiver whose randomness (the
// ephemeral u, the errors and the uniform masks) is drawn from sources
// derived from the provided source.
// Two encryptors obtained with sources of the same seed produce the
// same ciphertexts for the same plaintexts and keys.
// The returned object shares its buffers with the receiver and cannot
// be used concurrently with it.
func (enc Encryptor) WithSource(source *sampling.Source) *Encryptor {
	return &Encryptor{
		params:           enc.params,
		EncryptorBuffers: enc.EncryptorBuffers,
		encKey:           enc.encKey,
		xeSampler:        enc.xeSampler.WithSource(source.NewSource()),
		xuSampler:        enc.xuSampler.WithSource(source.NewSource()),
		xaSampler:        enc.xaSampler.WithSource(source.NewSource()),
	}
}

// ShallowCopy creates a shallow copy of the receiver in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// object can be used concurrently.
func (enc Encryptor) ShallowCopy() *Encryptor {
	return &Encryptor{
		params:           enc.params,
		EncryptorBuffers: newEncryptorBuffers(enc.params),
		encKey:           enc.encKey,
		xeSampler:        enc.xeSampler.WithSource(sampling.NewSource(sampling.NewSeed())),
		xuSampler:        enc.xuSampler.WithSource(sampling.NewSource(sampling.NewSeed())),
		xaSampler:        enc.xaSampler.WithSource(sampling.NewSource(sampling.NewSeed())),
	}
}

// WithKey returns an instance of the receiver with a new [rlwe.EncryptionKey].
// The returned object shares its buffers with the receiver and cannot
// be used concurrently with it.
// Returns an error wrapping [ErrInvalidParameters] if the key does
// not match the parameters.
func (enc Encryptor) WithKey(key EncryptionKey) (*Encryptor, error) {
	switch key := key.(type) {
	case *SecretKey:
		if key == nil {
			enc.encKey = nil
			return &enc, nil
		}
		if err := key.checkShape(enc.params); err != nil {
			return nil, fmt.Errorf("cannot WithKey: %w", err)
		}
	case *PublicKey:
		if key == nil {
			enc.encKey = nil
			return &enc, nil
		}
		if err := key.checkShape(enc.params); err != nil {
			return nil, fmt.Errorf("cannot WithKey: %w", err)
		}
	case nil:
		enc.encKey = nil
		return &enc, nil
	default:
		// Sanity check, this error should not happen.
		panic(fmt.Errorf("invalid key type, want *rlwe.SecretKey, *rlwe.PublicKey or nil but have %T", key))
	}
	enc.encKey = key
	return &enc, nil
}
