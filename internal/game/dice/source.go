package dice

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// float53 converts the top 53 bits of u into a float64 in [0, 1).
func float53(u uint64) float64 {
	return float64(u>>11) / (1 << 53)
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, 1).
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure float in [0, 1).
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float53(binary.LittleEndian.Uint64(buf[:]))
}

// seededSource is a replayable PCG-backed Source.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source. Two sources built from the
// same seed produce the same sequence.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns the next value in the seeded sequence.
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// scriptedSource replays a fixed list of values, cycling when exhausted.
type scriptedSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewScriptedSource returns a Source that yields values in order and wraps
// around at the end. With no values it always yields 0.
//
// Precondition: every value should lie in [0, 1).
func NewScriptedSource(values ...float64) Source {
	cp := make([]float64, len(values))
	copy(cp, values)
	return &scriptedSource{values: cp}
}

// Float64 returns the next scripted value.
func (s *scriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
