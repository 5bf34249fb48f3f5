package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/syntrometry/syntrocore/internal/cascade"
	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/persist"
	"github.com/syntrometry/syntrocore/internal/perturb"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string          `json:"description"`
	Start       json.RawMessage `json:"start_state,omitempty"` // snapshot document; empty = fresh defaults
	Config      FixtureConfig   `json:"config"`
	Steps       []FixtureStep   `json:"steps"`
	Expected    []Expected      `json:"expected_results,omitempty"`
}

// FixtureConfig mirrors the engine configuration with JSON tags. Zero
// values fall back to the engine defaults.
type FixtureConfig struct {
	StateDim       int     `json:"state_dim,omitempty"`
	FeatureDim     int     `json:"feature_dim,omitempty"`
	EmbeddingDim   int     `json:"embedding_dim,omitempty"`
	BaseNoise      float64 `json:"base_noise,omitempty"`
	MemoryCapacity int     `json:"memory_capacity,omitempty"`
	Seed           int64   `json:"seed,omitempty"`

	PerturbMode string  `json:"perturb_mode,omitempty"` // "continuous" | "discrete"
	Metron      float64 `json:"metron,omitempty"`

	Levels      int    `json:"levels,omitempty"`
	Stage       int    `json:"stage,omitempty"`
	CascadeMode string `json:"cascade_mode,omitempty"` // "pyramidal" | "averaging"

	RIHScale float64 `json:"rih_scale,omitempty"`
}

// FixtureStep mirrors engine.StepInput with JSON tags.
type FixtureStep struct {
	StepID     string    `json:"step_id,omitempty"`
	RawState   []float64 `json:"raw_state"`
	Features   []float64 `json:"features,omitempty"`
	EventLabel string    `json:"event_label,omitempty"`
	Reward     float64   `json:"reward,omitempty"`
}

// Expected pins the metrics a replayed step must reproduce. Pointer fields
// absent from the fixture are skipped during comparison.
type Expected struct {
	Coherence   *float64 `json:"coherence,omitempty"`
	Trust       *float64 `json:"trust,omitempty"`
	Integration *float64 `json:"integration,omitempty"`
	Reflexivity *float64 `json:"reflexivity,omitempty"`
	Degraded    *bool    `json:"degraded,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToEngineConfig converts the fixture config to a domain config, filling
// omitted fields from the defaults.
func (fc *FixtureConfig) ToEngineConfig() engine.Config {
	config := engine.DefaultConfig()
	if fc.StateDim > 0 {
		config.StateDim = fc.StateDim
	}
	if fc.FeatureDim > 0 {
		config.FeatureDim = fc.FeatureDim
	}
	if fc.EmbeddingDim > 0 {
		config.EmbeddingDim = fc.EmbeddingDim
	}
	if fc.BaseNoise > 0 {
		config.BaseNoise = fc.BaseNoise
	}
	if fc.MemoryCapacity > 0 {
		config.MemoryCapacity = fc.MemoryCapacity
	}
	config.Seed = fc.Seed

	if fc.PerturbMode != "" {
		config.Perturb.Mode = perturb.Mode(fc.PerturbMode)
	}
	if fc.Metron > 0 {
		config.Perturb.Metron = fc.Metron
	}
	if fc.Levels > 0 {
		config.Cascade.Levels = fc.Levels
	}
	if fc.Stage > 0 {
		config.Cascade.Stage = fc.Stage
	}
	if fc.CascadeMode != "" {
		config.Cascade.Mode = cascade.Mode(fc.CascadeMode)
	}
	if fc.RIHScale > 0 {
		config.Score.RIHScale = fc.RIHScale
	}
	return config
}

// StartSnapshot decodes the embedded start state, or returns fresh defaults
// when the fixture carries none.
func (f *Fixture) StartSnapshot(cfg persist.Config) (persist.Snapshot, error) {
	if len(f.Start) == 0 {
		return persist.DefaultSnapshot(cfg), nil
	}
	snap, _, err := persist.DecodeSnapshot(f.Start, cfg)
	if err != nil {
		return persist.Snapshot{}, fmt.Errorf("decode start state: %w", err)
	}
	return snap, nil
}

// ToStepInput converts a FixtureStep to a domain StepInput.
func (fs *FixtureStep) ToStepInput() engine.StepInput {
	return engine.StepInput{
		RawState:   fs.RawState,
		Features:   fs.Features,
		EventLabel: fs.EventLabel,
		Reward:     fs.Reward,
	}
}

// #endregion fixture-loader
