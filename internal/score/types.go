package score

// #region config

// Config holds tuning knobs for coherence scoring.
type Config struct {
	RIHScale float64 // multiplier on |mean|/stddev before clamping to [0,1]
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RIHScale: 1.0,
	}
}

// #endregion config
