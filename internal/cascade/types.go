package cascade

import "github.com/syntrometry/syntrocore/internal/numeric"

// #region mode

// Mode selects the reduction rule applied at each level.
type Mode string

const (
	// ModePyramidal slides a stage-wide mean window over the level.
	ModePyramidal Mode = "pyramidal"
	// ModeAveraging collapses the whole level to its single mean.
	ModeAveraging Mode = "averaging"
)

// #endregion mode

// #region config

// Config holds the cascade shape knobs.
type Config struct {
	Levels int // reduction levels beyond the initial vector
	Stage  int // window size for the pyramidal rule, minimum 2
	Mode   Mode
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Levels: 3,
		Stage:  2,
		Mode:   ModePyramidal,
	}
}

// #endregion config

// #region history

// History is the ordered sequence of cascade levels. Index 0 is a copy of
// the initial vector; each later index holds one further reduction. Once a
// level is empty, every deeper level is empty too.
type History [][]float64

// LastActive returns the deepest non-empty level, or nil when all are empty.
func (h History) LastActive() []float64 {
	for i := len(h) - 1; i >= 0; i-- {
		if len(h[i]) > 0 {
			return h[i]
		}
	}
	return nil
}

// Lengths returns the per-level lengths.
func (h History) Lengths() []int {
	out := make([]int, len(h))
	for i, level := range h {
		out[i] = len(level)
	}
	return out
}

// Features returns the per-level mean and population variance.
// Empty levels contribute zeros.
func (h History) Features() (means, variances []float64) {
	means = make([]float64, len(h))
	variances = make([]float64, len(h))
	for i, level := range h {
		means[i], variances[i] = numeric.MeanVariance(level)
	}
	return means, variances
}

// #endregion history
