package score

import (
	"math"

	"github.com/syntrometry/syntrocore/internal/cascade"
	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region affinity

// Affinity computes cosine similarity between two vectors of possibly
// unequal length. The shorter vector is extended with trailing zeros to
// match the longer one. Returns 0 when either input is empty or the
// product of the norms falls below the degeneracy threshold; the result
// is clamped to [-1, 1].
func Affinity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	padA := numeric.PadTo(a, n)
	padB := numeric.PadTo(b, n)
	return numeric.Clamp(numeric.Cosine(padA, padB), -1, 1)
}

// AdjacentAffinities scores each adjacent pair of cascade levels, stopping
// at the first empty level.
func AdjacentAffinities(h cascade.History) []float64 {
	out := []float64{}
	for i := 0; i+1 < len(h); i++ {
		if len(h[i]) == 0 || len(h[i+1]) == 0 {
			break
		}
		out = append(out, Affinity(h[i], h[i+1]))
	}
	return out
}

// #endregion affinity

// #region coherence

// Scorer computes the coherence of a reduced representation.
type Scorer struct {
	config Config
}

// NewScorer creates a Scorer.
func NewScorer(config Config) *Scorer {
	return &Scorer{config: config}
}

// Coherence maps a vector's peakedness |mean|/stddev onto [0, 1]. Vectors
// shorter than 2 elements score 0, as do degenerate vectors whose variance
// vanishes (no dispersion to normalize by).
func (s *Scorer) Coherence(v []float64) float64 {
	if len(v) < 2 || !numeric.Finite(v) {
		return 0
	}
	mean, variance := numeric.MeanVariance(v)
	if variance < numeric.Epsilon {
		return 0
	}
	return numeric.Clamp01(math.Abs(mean) / math.Sqrt(variance) * s.config.RIHScale)
}

// #endregion coherence
