package diag

import "time"

// #region anomaly

// Kind classifies a recoverable fault.
type Kind string

const (
	// KindInvalidInput marks wrong-length, empty, or non-finite vectors at
	// a component boundary.
	KindInvalidInput Kind = "invalid_input"
	// KindDegenerateNumeric marks near-zero norms or variances caught
	// before a ratio computation.
	KindDegenerateNumeric Kind = "degenerate_numeric"
	// KindDimensionMismatch marks a persistent vector that had to be
	// reinitialized to match the expected dimension.
	KindDimensionMismatch Kind = "dimension_mismatch"
	// KindUpstreamFailure marks an error returned by the external belief
	// transform.
	KindUpstreamFailure Kind = "upstream_failure"
)

// Anomaly is one recoverable fault observed during a step. Nothing in the
// core treats an anomaly as fatal.
type Anomaly struct {
	Kind      Kind
	Component string
	Detail    string
	CreatedAt time.Time
}

// #endregion anomaly

// #region recorder

// Recorder receives anomalies as they happen.
type Recorder interface {
	Record(a Anomaly)
}

// #endregion recorder

// #region check

// Check is one named post-step validation with its observed value.
type Check struct {
	Name  string
	Value float64
	Pass  bool
}

// Result bundles a validation pass over one step's outputs.
type Result struct {
	Passed bool
	Checks []Check
	Reason string
}

// #endregion check
