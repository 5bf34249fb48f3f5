package diag

import (
	"fmt"
	"math"
)

// #region config

// ValidateConfig holds the post-step check bounds.
type ValidateConfig struct {
	MaxSelfNorm      float64 // L2 cap on the self state
	MaxEmbeddingNorm float64 // L2 cap on the belief embedding
	ParamMin         float64
	ParamMax         float64
}

// DefaultValidateConfig returns sensible defaults.
func DefaultValidateConfig() ValidateConfig {
	return ValidateConfig{
		MaxSelfNorm:      10.0,
		MaxEmbeddingNorm: 10.0,
		ParamMin:         0.05,
		ParamMax:         0.95,
	}
}

// #endregion config

// #region validator

// StepValues are the scalar outputs checked after a committed step.
type StepValues struct {
	Coherence     float64
	Trust         float64
	Integration   float64
	Reflexivity   float64
	EmbeddingNorm float64
	SelfNorm      float64
}

// Validator runs lightweight post-step validation. Informational only: a
// failed check is recorded and logged, the step result stands.
type Validator struct {
	config ValidateConfig
}

// NewValidator creates a Validator with the given configuration.
func NewValidator(config ValidateConfig) *Validator {
	return &Validator{config: config}
}

// Run checks that every scalar output landed in its contract range.
func (v *Validator) Run(values StepValues) Result {
	var checks []Check
	passed := true
	var failReasons []string

	add := func(name string, value float64, pass bool) {
		checks = append(checks, Check{Name: name, Value: value, Pass: pass})
		if !pass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s out of range: %.4f", name, value))
		}
	}

	unit := func(x float64) bool {
		return !math.IsNaN(x) && x >= 0 && x <= 1
	}
	param := func(x float64) bool {
		return !math.IsNaN(x) && x >= v.config.ParamMin && x <= v.config.ParamMax
	}
	norm := func(x, cap float64) bool {
		return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0 && x <= cap
	}

	add("coherence", values.Coherence, unit(values.Coherence))
	add("trust", values.Trust, unit(values.Trust))
	add("integration", values.Integration, param(values.Integration))
	add("reflexivity", values.Reflexivity, param(values.Reflexivity))
	add("embedding_norm", values.EmbeddingNorm, norm(values.EmbeddingNorm, v.config.MaxEmbeddingNorm))
	add("self_norm", values.SelfNorm, norm(values.SelfNorm, v.config.MaxSelfNorm))

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("validation failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("validation failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{Passed: passed, Checks: checks, Reason: reason}
}

// #endregion validator
