package engine

// #region imports
import (
	"time"

	"github.com/syntrometry/syntrocore/internal/adapt"
	"github.com/syntrometry/syntrocore/internal/cascade"
	"github.com/syntrometry/syntrocore/internal/perturb"
	"github.com/syntrometry/syntrocore/internal/score"
)

// #endregion

// #region config

// Config wires every stage of the step pipeline.
type Config struct {
	StateDim     int // core state width fed to the cascade
	FeatureDim   int // context feature slots appended to the belief input
	EmbeddingDim int // belief embedding width; the self state lives here

	BaseNoise      float64 // perturbation scale before reflexivity modulation
	MemoryCapacity int
	Seed           int64 // RNG seed; 0 = time-seeded

	Perturb perturb.Config
	Cascade cascade.Config
	Score   score.Config
	Adapt   adapt.Config
	Self    adapt.SelfConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		StateDim:       8,
		FeatureDim:     4,
		EmbeddingDim:   16,
		BaseNoise:      0.15,
		MemoryCapacity: 32,
		Perturb:        perturb.DefaultConfig(8),
		Cascade:        cascade.DefaultConfig(),
		Score:          score.DefaultConfig(),
		Adapt:          adapt.DefaultConfig(),
		Self:           adapt.DefaultSelfConfig(),
	}
}

// #endregion config

// #region step-input

// StepInput is one tick's worth of observations.
type StepInput struct {
	RawState   []float64 // at least StateDim values; the first StateDim are used
	Features   []float64 // context feature slots, zero-padded when short
	EventLabel string    // optional annotation carried into the step log
	Reward     float64
}

// #endregion step-input

// #region step-result

// StepResult is the complete outcome of one cognitive step.
type StepResult struct {
	StepID     string
	EventLabel string
	Reward     float64

	History        cascade.History
	CascadeLengths []int
	LevelMeans     []float64
	LevelVariances []float64

	Coherence  float64
	Affinities []float64
	Trust      float64
	Variance   float64

	Integration float64
	Reflexivity float64
	RulesFired  []string

	EmbeddingNorm float64
	SelfNorm      float64

	Degraded  bool
	CreatedAt time.Time
}

// #endregion step-result
