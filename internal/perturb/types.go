package perturb

// #region mode

// Mode selects how the operator disturbs a vector.
type Mode string

const (
	// ModeContinuous adds independent Gaussian noise to every element.
	ModeContinuous Mode = "continuous"
	// ModeDiscrete snaps every element to the nearest metron multiple.
	ModeDiscrete Mode = "discrete"
)

// #endregion mode

// #region config

// Config holds tuning knobs for the perturbation operator.
type Config struct {
	Mode   Mode    // continuous or discrete
	Dim    int     // expected input length
	Metron float64 // quantization step size, discrete mode only
}

// DefaultConfig returns sensible defaults for the given dimension.
func DefaultConfig(dim int) Config {
	return Config{
		Mode:   ModeContinuous,
		Dim:    dim,
		Metron: 0.1,
	}
}

// #endregion config
