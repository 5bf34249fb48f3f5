package perturb

import (
	"math"
	"math/rand"
	"time"

	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region operator

// Operator disturbs state vectors before they reach the belief embedder.
type Operator struct {
	config Config
	rng    *rand.Rand
}

// NewOperator creates an Operator. rng may be nil (a time-seeded source is used).
func NewOperator(config Config, rng *rand.Rand) *Operator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Operator{config: config, rng: rng}
}

// #endregion operator

// #region apply

// Apply returns a perturbed copy of v with every element clamped to [-1, 1].
// Continuous mode adds Gaussian noise with stddev = scale; discrete mode
// quantizes to the nearest metron multiple and ignores scale. A wrong-length
// or non-finite input degrades to a zero vector of the configured dimension.
func (o *Operator) Apply(v []float64, scale float64) []float64 {
	if len(v) != o.config.Dim || !numeric.Finite(v) {
		return numeric.Zeros(o.config.Dim)
	}
	out := make([]float64, len(v))
	switch o.config.Mode {
	case ModeDiscrete:
		if o.config.Metron < numeric.Epsilon {
			for i, x := range v {
				out[i] = numeric.Clamp(x, -1, 1)
			}
			return out
		}
		for i, x := range v {
			out[i] = numeric.Clamp(math.Round(x/o.config.Metron)*o.config.Metron, -1, 1)
		}
	default:
		for i, x := range v {
			out[i] = numeric.Clamp(x+o.rng.NormFloat64()*scale, -1, 1)
		}
	}
	return out
}

// #endregion apply
