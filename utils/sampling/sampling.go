// Package sampling implements secure and deterministic sampling of bytes and integers.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// childContext is the blake3 key derivation context used to
// derive the seeds of child sources.
const childContext = "minihe 2024-06 sampling.Source child seed"

// NewSeed returns a new seed of 32 bytes sampled from crypto/rand.
func NewSeed() (seed [32]byte) {
	if _, err := rand.Read(seed[:]); err != nil {
		// Sanity check, this error should not happen.
		panic(fmt.Errorf("crypto/rand.Read: %w", err))
	}
	return
}

// Source is a deterministic stream of random bytes keyed by a 32 bytes
// seed, expanded with the blake2b XOF. It implements [math/rand/v2.Source]
// and [io.Reader].
//
// Two sources instantiated with the same seed produce the same stream.
// Concurrent calls are serialized, but the resulting stream is then not
// deterministic: use [Source.NewSource] to obtain one source per goroutine.
type Source struct {
	mu   sync.Mutex
	seed [32]byte
	xof  blake2b.XOF
	buf  [8]byte
}

// NewSource instantiates a new [Source] from the given seed.
func NewSource(seed [32]byte) *Source {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, seed[:])
	if err != nil {
		// Sanity check, this error should not happen: the key is 32 bytes.
		panic(fmt.Errorf("blake2b.NewXOF: %w", err))
	}
	return &Source{seed: seed, xof: xof}
}

// Seed returns the seed used to instantiate the receiver.
func (s *Source) Seed() [32]byte {
	return s.seed
}

// Read fills p with the next len(p) bytes of the stream.
func (s *Source) Read(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xof.Read(p)
}

// Uint64 returns the next 8 bytes of the stream as an uint64.
func (s *Source) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.xof.Read(s.buf[:]); err != nil {
		// Sanity check, this error should not happen: the XOF has no output limit.
		panic(fmt.Errorf("blake2b.XOF.Read: %w", err))
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// NewSeed derives a new seed from the stream of the receiver.
// The 32 bytes read on the stream are passed through the blake3
// key derivation function, so that child seeds never equal raw
// bytes of the parent stream.
func (s *Source) NewSeed() (seed [32]byte) {
	var material [32]byte
	if _, err := s.Read(material[:]); err != nil {
		// Sanity check, this error should not happen.
		panic(err)
	}
	blake3.DeriveKey(childContext, material[:], seed[:])
	return
}

// NewSource returns a new [Source] seeded from the receiver's stream.
// The returned source is deterministic given the receiver's seed and
// the number of bytes read so far from the receiver.
func (s *Source) NewSource() *Source {
	return NewSource(s.NewSeed())
}

// Reset resets the receiver to its initial state.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xof.Reset()
}
