package adapt

import (
	"math"
	"testing"
)

func TestStepHighPerformance(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	res := a.Step(DefaultParams(), Inputs{Trust: 0.8, RIH: 0.8})

	if res.Params.Integration <= 0.5 {
		t.Fatalf("integration should rise on high performance, got %f", res.Params.Integration)
	}
	if res.Params.Reflexivity >= 0.5 {
		t.Fatalf("reflexivity should fall on high performance, got %f", res.Params.Reflexivity)
	}
	if res.Fired[0] != "high_performance" {
		t.Fatalf("expected high_performance first, got %v", res.Fired)
	}
}

func TestStepLowPerformance(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	res := a.Step(DefaultParams(), Inputs{Trust: 0.5, RIH: 0.1})

	if res.Params.Integration >= 0.5 {
		t.Fatalf("integration should fall on low performance, got %f", res.Params.Integration)
	}
	if res.Params.Reflexivity <= 0.5 {
		t.Fatalf("reflexivity should rise on low performance, got %f", res.Params.Reflexivity)
	}
}

func TestStepVariancePressure(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	res := a.Step(DefaultParams(), Inputs{Trust: 0.5, RIH: 0.5, Variance: 2.0, VarianceDelta: 0.5})

	// dIntegration = 0.6*clamp(1.5,0,1) = 0.6; dReflexivity = 0.4*clamp(0.5,0,0.1) = 0.04
	wantI := 0.5 + 0.6*0.05
	wantR := 0.5 + 0.04*0.05
	if math.Abs(res.Params.Integration-wantI) > 1e-12 {
		t.Fatalf("expected integration %f, got %f", wantI, res.Params.Integration)
	}
	if math.Abs(res.Params.Reflexivity-wantR) > 1e-12 {
		t.Fatalf("expected reflexivity %f, got %f", wantR, res.Params.Reflexivity)
	}
}

func TestStepVarianceFloor(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	res := a.Step(DefaultParams(), Inputs{Trust: 0.5, RIH: 0.5, Variance: 0.01})

	// Only variance_floor and mean_reversion fire
	wantR := 0.5 + 0.3*0.05
	if math.Abs(res.Params.Reflexivity-wantR) > 1e-12 {
		t.Fatalf("expected reflexivity %f, got %f", wantR, res.Params.Reflexivity)
	}
	if res.Params.Integration != 0.5 {
		t.Fatalf("integration should hold at midpoint, got %f", res.Params.Integration)
	}
}

func TestStepMeanReversion(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	p := Params{Integration: 0.9, Reflexivity: 0.9}
	// Inputs chosen so only mean_reversion fires
	res := a.Step(p, Inputs{Trust: 0.5, RIH: 0.5, Variance: 0.2})

	if res.Params.Integration >= 0.9 || res.Params.Integration < 0.89 {
		t.Fatalf("expected a small pull toward 0.5, got %f", res.Params.Integration)
	}
	if len(res.Fired) != 1 || res.Fired[0] != "mean_reversion" {
		t.Fatalf("expected only mean_reversion, got %v", res.Fired)
	}
}

func TestStepBoundsUnderExtremes(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	p := DefaultParams()

	for step := 0; step < 200; step++ {
		res := a.Step(p, Inputs{Trust: 0, RIH: 0, Variance: 10})
		p = res.Params
		if p.Integration < 0.05 || p.Integration > 0.95 {
			t.Fatalf("integration escaped bounds at step %d: %f", step, p.Integration)
		}
		if p.Reflexivity < 0.05 || p.Reflexivity > 0.95 {
			t.Fatalf("reflexivity escaped bounds at step %d: %f", step, p.Reflexivity)
		}
	}

	// Sustained starvation drives the parameters to their rails
	if p.Integration != 0.05 {
		t.Fatalf("expected integration at floor, got %f", p.Integration)
	}
	if p.Reflexivity != 0.95 {
		t.Fatalf("expected reflexivity at cap, got %f", p.Reflexivity)
	}
}

func TestStepSanitizesInputs(t *testing.T) {
	a := NewAdapter(DefaultConfig())
	res := a.Step(DefaultParams(), Inputs{Trust: math.NaN(), RIH: math.Inf(1), Variance: math.NaN()})

	if math.IsNaN(res.Params.Integration) || math.IsNaN(res.Params.Reflexivity) {
		t.Fatalf("non-finite inputs leaked into parameters: %+v", res.Params)
	}
	if res.Params.Integration < 0.05 || res.Params.Integration > 0.95 {
		t.Fatalf("integration out of bounds: %f", res.Params.Integration)
	}
}
