package corpus

import "sync/atomic"

// #region store

// Store holds the current corpus behind a copy-on-write pointer.
// Readers take a snapshot with Current; a reload publishes a new Corpus with Swap
// and never mutates one that readers may hold.
type Store struct {
	current atomic.Pointer[Corpus]
}

// NewStore returns a Store holding c (or an empty corpus when c is nil).
func NewStore(c *Corpus) *Store {
	s := &Store{}
	if c == nil {
		c = Empty()
	}
	s.current.Store(c)
	return s
}

// Current returns the corpus snapshot in effect.
func (s *Store) Current() *Corpus {
	return s.current.Load()
}

// Swap publishes c and returns the previous snapshot. A nil c is ignored.
func (s *Store) Swap(c *Corpus) *Corpus {
	if c == nil {
		return s.current.Load()
	}
	return s.current.Swap(c)
}

// #endregion store
