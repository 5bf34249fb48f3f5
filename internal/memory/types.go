package memory

import "time"

// #region entry

// Entry is one remembered belief embedding.
type Entry struct {
	Timestamp time.Time
	Embedding []float64
}

// #endregion entry

// #region scored

// Scored pairs an entry with its similarity to a query embedding.
type Scored struct {
	Entry Entry
	Score float64
}

// #endregion scored
