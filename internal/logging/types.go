package logging

import "time"

// #region step-entry
// StepEntry is a single row in the step_log table.
type StepEntry struct {
	SnapshotID  string
	StepID      string
	EventLabel  string
	Reward      float64
	InputsJSON  string
	MetricsJSON string
	Decision    string // "committed" | "degraded"
	Reason      string
	CreatedAt   time.Time
}
// #endregion step-entry

// #region records
// InputsRecord captures the raw inputs presented to the engine for one step.
// Serialized as JSON into step_log.inputs_json for deterministic replay.
type InputsRecord struct {
	RawState []float64 `json:"raw_state"`
	Features []float64 `json:"features,omitempty"`
}

// MetricsRecord captures the exact scalar outputs of one step as evaluated
// at runtime. Serialized as JSON into step_log.metrics_json.
type MetricsRecord struct {
	Coherence     float64 `json:"coherence"`
	Trust         float64 `json:"trust"`
	Variance      float64 `json:"variance"`
	Integration   float64 `json:"integration"`
	Reflexivity   float64 `json:"reflexivity"`
	EmbeddingNorm float64 `json:"embedding_norm"`
	SelfNorm      float64 `json:"self_norm"`

	// Cascade shape at decision time (for replay interpretability)
	CascadeLengths []int `json:"cascade_lengths,omitempty"`

	// Adaptation rules that fired this step
	RulesFired []string `json:"rules_fired,omitempty"`

	Degraded bool `json:"degraded"`
}
// #endregion records
