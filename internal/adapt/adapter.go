package adapt

import (
	"math"

	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region adapter

// Adapter nudges the control parameters once per step through an ordered
// rule table. Heuristic and additive, no gradients.
type Adapter struct {
	config Config
}

// NewAdapter creates an Adapter.
func NewAdapter(config Config) *Adapter {
	return &Adapter{config: config}
}

// #endregion adapter

// #region rules

// delta accumulates the per-step parameter adjustments.
type delta struct {
	integration float64
	reflexivity float64
}

// rule is one policy entry: when the predicate holds, apply contributes to
// the accumulated delta. Evaluation order is part of the contract.
type rule struct {
	name  string
	when  func(in Inputs, p Params, cfg Config) bool
	apply func(in Inputs, p Params, cfg Config, d *delta)
}

var rules = []rule{
	{
		name: "high_performance",
		when: func(in Inputs, p Params, cfg Config) bool {
			return (in.RIH > cfg.HighRIH && in.Trust > cfg.HighTrust) ||
				(in.RIHDelta > cfg.RisingRIH && in.Trust > cfg.RisingTrust)
		},
		apply: func(in Inputs, p Params, cfg Config, d *delta) {
			d.integration += 1.0
			d.reflexivity -= 1.0
		},
	},
	{
		name: "low_performance",
		when: func(in Inputs, p Params, cfg Config) bool {
			return in.RIH < cfg.LowRIH || in.Trust < cfg.LowTrust ||
				(in.RIHDelta < cfg.FallingRIH && in.Trust < cfg.FallingTrust)
		},
		apply: func(in Inputs, p Params, cfg Config, d *delta) {
			d.integration -= 1.0
			d.reflexivity += 1.2
		},
	},
	{
		name: "variance_pressure",
		when: func(in Inputs, p Params, cfg Config) bool {
			return in.Variance > cfg.VarianceHigh || in.VarianceDelta > 0
		},
		apply: func(in Inputs, p Params, cfg Config, d *delta) {
			d.integration += 0.6 * numeric.Clamp(in.Variance-cfg.VarianceHigh, 0, 1)
			d.reflexivity += 0.4 * numeric.Clamp(in.VarianceDelta, 0, 0.1)
		},
	},
	{
		name: "variance_floor",
		when: func(in Inputs, p Params, cfg Config) bool {
			return in.Variance < cfg.VarianceLow && in.VarianceDelta <= 0
		},
		apply: func(in Inputs, p Params, cfg Config, d *delta) {
			d.reflexivity += 0.3
		},
	},
	{
		name: "mean_reversion",
		when: func(in Inputs, p Params, cfg Config) bool {
			return true
		},
		apply: func(in Inputs, p Params, cfg Config, d *delta) {
			d.integration += (0.5 - p.Integration) * cfg.Reversion
			d.reflexivity += (0.5 - p.Reflexivity) * cfg.Reversion
		},
	},
}

// #endregion rules

// #region step

// Step runs the rule table against the pre-step parameter values, applies
// the accumulated delta scaled by the learn rate, and clamps both
// parameters into [Min, Max]. Non-finite inputs are zeroed first.
func (a *Adapter) Step(p Params, in Inputs) Result {
	in = sanitize(in)
	var d delta
	fired := make([]string, 0, len(rules))
	for _, r := range rules {
		if !r.when(in, p, a.config) {
			continue
		}
		r.apply(in, p, a.config, &d)
		fired = append(fired, r.name)
	}
	next := Params{
		Integration: numeric.Clamp(p.Integration+d.integration*a.config.LearnRate, a.config.Min, a.config.Max),
		Reflexivity: numeric.Clamp(p.Reflexivity+d.reflexivity*a.config.LearnRate, a.config.Min, a.config.Max),
	}
	return Result{Params: next, Fired: fired}
}

func sanitize(in Inputs) Inputs {
	for _, f := range []*float64{&in.Trust, &in.RIH, &in.RIHDelta, &in.Variance, &in.VarianceDelta} {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	return in
}

// #endregion step
