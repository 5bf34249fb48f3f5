package adapt

// #region params

// Params are the two self-tuned control scalars.
type Params struct {
	Integration float64 // reliance on fresh input
	Reflexivity float64 // reliance on internal state
}

// DefaultParams returns the neutral midpoint for both parameters.
func DefaultParams() Params {
	return Params{Integration: 0.5, Reflexivity: 0.5}
}

// #endregion params

// #region inputs

// Inputs are the per-step scores the adapter reacts to. Deltas are against
// the previous step's values.
type Inputs struct {
	Trust         float64
	RIH           float64
	RIHDelta      float64
	Variance      float64
	VarianceDelta float64
}

// #endregion inputs

// #region result

// Result carries the adapted parameters and the names of the rules that fired.
type Result struct {
	Params Params
	Fired  []string
}

// #endregion result

// #region config

// Config holds the adapter thresholds and the parameter bounds.
type Config struct {
	LearnRate    float64 // multiplier on the accumulated delta
	HighRIH      float64 // coherence above this counts as high performance
	HighTrust    float64
	RisingRIH    float64 // coherence delta above this counts as rising
	RisingTrust  float64
	LowRIH       float64 // coherence below this counts as low performance
	LowTrust     float64
	FallingRIH   float64 // coherence delta below this counts as falling
	FallingTrust float64
	VarianceHigh float64 // variance above this counts as dispersed
	VarianceLow  float64 // variance below this counts as settled
	Reversion    float64 // pull toward the 0.5 midpoint
	Min          float64
	Max          float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LearnRate:    0.05,
		HighRIH:      0.7,
		HighTrust:    0.7,
		RisingRIH:    0.02,
		RisingTrust:  0.6,
		LowRIH:       0.3,
		LowTrust:     0.4,
		FallingRIH:   -0.03,
		FallingTrust: 0.7,
		VarianceHigh: 0.5,
		VarianceLow:  0.05,
		Reversion:    0.02,
		Min:          0.05,
		Max:          0.95,
	}
}

// #endregion config

// #region self-config

// SelfConfig holds the self-state blending knobs.
type SelfConfig struct {
	Decay         float64 // per-step retention of the previous self state
	BaseLearnRate float64 // scaled by (0.5 + integration) each step
}

// DefaultSelfConfig returns sensible defaults.
func DefaultSelfConfig() SelfConfig {
	return SelfConfig{
		Decay:         0.98,
		BaseLearnRate: 0.05,
	}
}

// #endregion self-config
