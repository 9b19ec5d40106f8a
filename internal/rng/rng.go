// Package rng provides the seedable random source shared by the simulator.
// Every generator component takes a Source so that runs are reproducible
// for a given seed.
package rng

import (
	"io"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// Source is the subset of *rand.Rand the simulator draws from.
type Source interface {
	Float64() float64
	IntN(n int) int
	Uint64() uint64
}

// New returns a PCG-backed source seeded with seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform returns a value in [lo, hi).
func Uniform(r Source, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Centered returns a value in [-width/2, width/2).
func Centered(r Source, width float64) float64 {
	return (r.Float64() - 0.5) * width
}

// Chance reports true with probability p.
func Chance(r Source, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

// Pick returns k distinct values from [0, n) in ascending order.
func Pick(r Source, n, k int) []int {
	if k > n {
		k = n
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	// Partial Fisher-Yates over the first k slots.
	for i := 0; i < k; i++ {
		j := i + r.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	out := perm[:k]
	slices.Sort(out)
	return out
}

// Reader adapts a Source into an io.Reader.
func Reader(r Source) io.Reader {
	return &reader{src: r}
}

type reader struct {
	src Source
}

func (r *reader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := r.src.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}

// UUID draws a version 4 UUID from r, so ids follow the run's seed.
func UUID(r Source) uuid.UUID {
	id, err := uuid.NewRandomFromReader(Reader(r))
	if err != nil {
		return uuid.New()
	}
	return id
}

// Scripted replays a fixed list of Float64 draws, cycling when exhausted.
// IntN and Uint64 derive from the same script. Used to pin random draws in tests.
type Scripted struct {
	Values []float64
	next   int
}

// Float64 returns the next scripted value.
func (s *Scripted) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// IntN scales the next scripted value into [0, n).
func (s *Scripted) IntN(n int) int {
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Uint64 scales the next scripted value over the uint64 range.
func (s *Scripted) Uint64() uint64 {
	return uint64(s.Float64() * (1 << 63))
}
