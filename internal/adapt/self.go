package adapt

import "github.com/syntrometry/syntrocore/internal/numeric"

// #region tracker

// Tracker maintains the agent's slow-moving internal state vector as an
// exponential blend of past self and fresh embeddings.
type Tracker struct {
	config SelfConfig
}

// NewTracker creates a Tracker.
func NewTracker(config SelfConfig) *Tracker {
	return &Tracker{config: config}
}

// Update blends embedding into self: self*decay + embedding*(trust*rate),
// where rate = BaseLearnRate*(0.5+integration). A self state whose length
// differs from the embedding is discarded and restarted from zeros; reset
// reports that recovery. An empty embedding leaves self untouched.
func (t *Tracker) Update(self, embedding []float64, trust, integration float64) (next []float64, reset bool) {
	if len(embedding) == 0 {
		return numeric.Clone(self), false
	}
	if len(self) != len(embedding) {
		self = numeric.Zeros(len(embedding))
		reset = true
	}
	gain := trust * t.config.BaseLearnRate * (0.5 + integration)
	next = make([]float64, len(self))
	for i := range self {
		next[i] = self[i]*t.config.Decay + embedding[i]*gain
	}
	return next, reset
}

// #endregion tracker
