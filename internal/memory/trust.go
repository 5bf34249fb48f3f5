package memory

import "github.com/syntrometry/syntrocore/internal/numeric"

// #region trust

// Trust scores how familiar the current embedding is relative to the store,
// as the mean cosine similarity against every stored embedding mapped onto
// [0, 1]. An empty store scores 1.0 (no history to contradict the present);
// a near-zero or non-finite current vector scores 0.0. Entries whose
// dimension differs from current are skipped, and when every entry is
// skipped the neutral 0.5 is returned.
func Trust(current []float64, s *Store) float64 {
	if s == nil || s.Len() == 0 {
		return 1.0
	}
	if !numeric.Finite(current) || numeric.Norm(current) < numeric.Epsilon {
		return 0.0
	}
	var sum float64
	var counted int
	for _, e := range s.entries {
		if len(e.Embedding) != len(current) {
			continue
		}
		sum += numeric.Cosine(current, e.Embedding)
		counted++
	}
	if counted == 0 {
		return 0.5
	}
	return numeric.Clamp01((sum/float64(counted) + 1) / 2)
}

// #endregion trust
