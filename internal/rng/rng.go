package rng

import (
	"math/rand/v2"
	"sync"
	"time"
)

// #region source

// Source is the random source shared by example backfill and fallback selection.
// Implementations must be safe for concurrent use.
type Source interface {
	IntN(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a seeded Source. The same seed yields the same sequence.
func New(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// FromConfig returns New(seed), or a clock-seeded source when seed is 0.
func FromConfig(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return New(seed)
}

func (s *lockedSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// #endregion source

// #region sample

// Sample picks up to n distinct indices from [0, size) uniformly at random.
func Sample(src Source, size, n int) []int {
	if n > size {
		n = size
	}
	if n <= 0 {
		return nil
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	// partial Fisher-Yates
	for i := 0; i < n; i++ {
		j := i + src.IntN(size-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:n]
}

// #endregion sample
