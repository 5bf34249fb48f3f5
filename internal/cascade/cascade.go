package cascade

import "github.com/syntrometry/syntrocore/internal/numeric"

// #region reducer

// Reducer applies one window-aggregation step to a level vector.
type Reducer struct {
	config Config
}

// NewReducer creates a Reducer. A stage below 2 is raised to 2.
func NewReducer(config Config) *Reducer {
	if config.Stage < 2 {
		config.Stage = 2
	}
	return &Reducer{config: config}
}

// Apply reduces one level. Pyramidal mode produces len(v)-stage+1 sliding
// window means and an empty vector when len(v) < stage; averaging mode
// produces the single whole-vector mean. Empty or non-finite input yields
// an empty vector.
func (r *Reducer) Apply(v []float64) []float64 {
	if len(v) == 0 || !numeric.Finite(v) {
		return []float64{}
	}
	if r.config.Mode == ModeAveraging {
		return []float64{numeric.Mean(v)}
	}
	stage := r.config.Stage
	if len(v) < stage {
		return []float64{}
	}
	out := make([]float64, len(v)-stage+1)
	for i := range out {
		var sum float64
		for j := 0; j < stage; j++ {
			sum += v[i+j]
		}
		out[i] = sum / float64(stage)
	}
	return out
}

// #endregion reducer

// #region processor

// Processor runs the full cascade: repeated reduction of an initial vector
// into a fixed-depth level history.
type Processor struct {
	config  Config
	reducer *Reducer
}

// NewProcessor creates a Processor with one reducer shared across levels.
func NewProcessor(config Config) *Processor {
	if config.Levels < 0 {
		config.Levels = 0
	}
	return &Processor{config: config, reducer: NewReducer(config)}
}

// Process builds a levels+1 deep history from initial. history[0] is a copy
// of initial; reduction stops once a level comes out empty and the remaining
// slots are padded with empty vectors. The caller's slice is never mutated.
// An empty or non-finite initial vector yields a single-empty-level history.
func (p *Processor) Process(initial []float64) History {
	if len(initial) == 0 || !numeric.Finite(initial) {
		return History{{}}
	}
	history := make(History, 0, p.config.Levels+1)
	history = append(history, numeric.Clone(initial))
	current := history[0]
	for level := 0; level < p.config.Levels; level++ {
		if len(current) == 0 {
			history = append(history, []float64{})
			continue
		}
		current = p.reducer.Apply(current)
		history = append(history, current)
	}
	return history
}

// #endregion processor
