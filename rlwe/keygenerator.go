package rlwe

import (
	"fmt"

	"github.com/Pro7ech/minihe/ring"
	"github.com/Pro7ech/minihe/utils/sampling"
)

// KeyGenerator is a structure that stores the elements required to create new keys,
// as well as a memory buffer for intermediate values.
type KeyGenerator struct {
	*Encryptor
}

// NewKeyGenerator creates a new [rlwe.KeyGenerator], from which secret and public keys are generated.
// Its randomness is drawn from fresh seeds; see [KeyGenerator.WithSource] for reproducible keys.
func NewKeyGenerator(params ParameterProvider) *KeyGenerator {
	return &KeyGenerator{
		Encryptor: newEncryptor(*params.GetRLWEParameters(), sampling.NewSource(sampling.NewSeed())),
	}
}

// WithSource returns an instance of the receiver whose randomness is
// drawn from sources derived from the provided source.
// The returned object cannot be used concurrently with the receiver.
func (kgen KeyGenerator) WithSource(source *sampling.Source) *KeyGenerator {
	return &KeyGenerator{Encryptor: kgen.Encryptor.WithSource(source)}
}

// ShallowCopy creates a shallow copy of the receiver in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// object can be used concurrently.
func (kgen KeyGenerator) ShallowCopy() *KeyGenerator {
	return &KeyGenerator{Encryptor: kgen.Encryptor.ShallowCopy()}
}

// GenSecretKeyNew generates a new [rlwe.SecretKey].
// Distribution is set according to [rlwe.Parameters.Xs].
func (kgen KeyGenerator) GenSecretKeyNew() (sk *SecretKey) {
	sk = NewSecretKey(kgen.params)
	kgen.GenSecretKey(sk)
	return
}

// GenSecretKey generates a [rlwe.SecretKey].
// Distribution is set according to [rlwe.Parameters.Xs].
func (kgen KeyGenerator) GenSecretKey(sk *SecretKey) {
	kgen.GenSecretKeyFromSampler(kgen.xuSampler, sk)
}

// GenSecretKeyFromSampler generates a [rlwe.SecretKey] with coefficients
// sampled from the given [ring.Sampler].
func (kgen KeyGenerator) GenSecretKeyFromSampler(sampler ring.Sampler, sk *SecretKey) {
	sampler.Read(sk.Value)
}

// GenPublicKeyNew generates a new public key from the provided [rlwe.SecretKey].
// It returns an error wrapping [ErrInvalidParameters] if sk does not match
// the parameters of the key generator.
func (kgen KeyGenerator) GenPublicKeyNew(sk *SecretKey) (pk *PublicKey, err error) {
	pk = NewPublicKey(kgen.params)
	if err = kgen.GenPublicKey(sk, pk); err != nil {
		return nil, err
	}
	return
}

// GenPublicKey generates a public key (b, a) from the provided [rlwe.SecretKey],
// with a uniform and b = -(a*sk) - e.
// It returns an error wrapping [ErrInvalidParameters] if sk or pk does not
// match the parameters of the key generator.
func (kgen KeyGenerator) GenPublicKey(sk *SecretKey, pk *PublicKey) (err error) {

	if sk == nil {
		return fmt.Errorf("cannot GenPublicKey: secret key is nil: %w", ErrInvalidParameters)
	}

	enc, err := kgen.WithKey(sk)
	if err != nil {
		return fmt.Errorf("cannot GenPublicKey: %w", err)
	}

	if pk == nil {
		return fmt.Errorf("cannot GenPublicKey: public key is nil: %w", ErrInvalidParameters)
	}

	if err = enc.EncryptZero(pk.AsCiphertext()); err != nil {
		return fmt.Errorf("cannot GenPublicKey: %w", err)
	}

	return
}

// GenKeyPairNew generates a new [rlwe.SecretKey] and a corresponding [rlwe.PublicKey].
// Distribution of the SecretKey is set according to [rlwe.Parameters.Xs].
func (kgen KeyGenerator) GenKeyPairNew() (sk *SecretKey, pk *PublicKey) {
	sk = kgen.GenSecretKeyNew()

	var err error

	// Sanity check, this error should not happen
	// since sk is generated with the parameters of the key generator.
	if pk, err = kgen.GenPublicKeyNew(sk); err != nil {
		panic(err)
	}

	return
}

// GenerateKeys is a shorthand for NewKeyGenerator(params).WithSource(source).GenKeyPairNew().
// If source is nil, the randomness is drawn from a fresh seed.
func GenerateKeys(params ParameterProvider, source *sampling.Source) (sk *SecretKey, pk *PublicKey) {
	kgen := NewKeyGenerator(params)
	if source != nil {
		kgen = kgen.WithSource(source)
	}
	return kgen.GenKeyPairNew()
}
