// internal/sampler/rng.go
package sampler

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"sync"
	"time"
)

// Source produces pseudo-random values in [0,1).
// *math/rand.Rand satisfies this interface, as does Mulberry32.
type Source interface {
	Float64() float64
}

// zeroSeedReplacement is used whenever a caller hands us a zero seed.
// Mulberry32 works with zero, but a zero seed almost always means "unset".
const zeroSeedReplacement uint32 = 0x9E3779B9

// Mulberry32 is a small, fast, deterministic 32-bit generator.
// It is not safe for concurrent use; wrap it with Locked when shared.
type Mulberry32 struct {
	state uint32
}

// NewSource returns a Mulberry32 generator seeded with seed.
func NewSource(seed uint32) *Mulberry32 {
	if seed == 0 {
		seed = zeroSeedReplacement
	}
	return &Mulberry32{state: seed}
}

// Float64 returns the next value in [0,1).
func (m *Mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// HashSeed derives a stable, non-zero seed from an arbitrary identifier.
func HashSeed(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	seed := h.Sum32()
	if seed == 0 {
		return zeroSeedReplacement
	}
	return seed
}

// FromSession returns a deterministic source for the given session identifier.
// The same identifier always yields the same sequence.
func FromSession(id string) *Mulberry32 {
	return NewSource(HashSeed(id))
}

// NewEntropySource returns a generator seeded from the operating system's
// entropy pool, falling back to the wall clock if that is unavailable.
func NewEntropySource() *Mulberry32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return NewSource(uint32(time.Now().UnixNano()))
	}
	return NewSource(binary.LittleEndian.Uint32(buf[:]))
}

// lockedSource serializes access to an underlying Source.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

// Locked wraps src so it can be shared between goroutines.
// Wrapping an already locked source returns it unchanged.
func Locked(src Source) Source {
	if l, ok := src.(*lockedSource); ok {
		return l
	}
	return &lockedSource{src: src}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}
