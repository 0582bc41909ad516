// Package entropy provides the seedable randomness source behind every
// stochastic choice in the kernel. Injecting a Source keeps decision
// sequences reproducible in tests; production runs seed from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// seeded is a deterministic Source backed by math/rand.
type seeded struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return &seeded{rng: mathrand.New(mathrand.NewSource(seed))}
}

// NewSystem returns a Source seeded from the operating system's entropy.
func NewSystem() Source {
	return NewSeeded(CryptoSeed())
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// CryptoSeed draws a seed from crypto/rand. On the (practically
// impossible) failure path it returns a fixed seed rather than aborting
// startup.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
