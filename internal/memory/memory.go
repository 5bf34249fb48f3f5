package memory

import (
	"sort"
	"time"

	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region store

// Store is a bounded FIFO of past belief embeddings. The engine owns it and
// appends only after a fully successful step; on overflow the oldest entry
// is evicted.
type Store struct {
	capacity int
	entries  []Entry
}

// NewStore creates a Store with the given capacity (minimum 1).
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

// Append inserts an entry, evicting the oldest when the store is full.
// The embedding is copied.
func (s *Store) Append(timestamp time.Time, embedding []float64) {
	for len(s.entries) >= s.capacity {
		n := copy(s.entries, s.entries[1:])
		s.entries = s.entries[:n]
	}
	s.entries = append(s.entries, Entry{
		Timestamp: timestamp,
		Embedding: numeric.Clone(embedding),
	})
}

// Restore clears the store and re-inserts the given entries in order,
// applying the usual eviction when they exceed capacity.
func (s *Store) Restore(entries []Entry) {
	s.entries = s.entries[:0]
	for _, e := range entries {
		s.Append(e.Timestamp, e.Embedding)
	}
}

// Entries returns the entries oldest-first. The returned slice is a copy;
// the embeddings are shared and must not be modified.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Cap returns the store capacity.
func (s *Store) Cap() int {
	return s.capacity
}

// #endregion store

// #region nearest

// Nearest returns the k stored entries most similar to query by cosine,
// best first. Entries with a different dimension than query are skipped.
func (s *Store) Nearest(query []float64, k int) []Scored {
	if k <= 0 || len(query) == 0 {
		return nil
	}
	scored := make([]Scored, 0, len(s.entries))
	for _, e := range s.entries {
		if len(e.Embedding) != len(query) {
			continue
		}
		scored = append(scored, Scored{Entry: e, Score: numeric.Cosine(query, e.Embedding)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// #endregion nearest
