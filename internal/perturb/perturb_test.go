package perturb

import (
	"math"
	"math/rand"
	"testing"
)

func TestApplyZeroScalePassthrough(t *testing.T) {
	op := NewOperator(DefaultConfig(4), rand.New(rand.NewSource(1)))
	in := []float64{0.1, -0.2, 0.3, -0.4}

	out := op.Apply(in, 0)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("zero scale should be identity at %d: %f != %f", i, out[i], in[i])
		}
	}
}

func TestApplyBounded(t *testing.T) {
	op := NewOperator(DefaultConfig(8), rand.New(rand.NewSource(7)))
	in := make([]float64, 8)

	for step := 0; step < 100; step++ {
		out := op.Apply(in, 5.0)
		for i, x := range out {
			if x < -1 || x > 1 {
				t.Fatalf("element %d out of bounds: %f", i, x)
			}
		}
	}
}

func TestApplyDeterministicWithSeed(t *testing.T) {
	in := []float64{0.5, -0.5, 0.25}
	a := NewOperator(DefaultConfig(3), rand.New(rand.NewSource(42))).Apply(in, 0.1)
	b := NewOperator(DefaultConfig(3), rand.New(rand.NewSource(42))).Apply(in, 0.1)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed should reproduce output, index %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestApplyDiscreteQuantizes(t *testing.T) {
	cfg := DefaultConfig(4)
	cfg.Mode = ModeDiscrete
	op := NewOperator(cfg, rand.New(rand.NewSource(1)))

	out := op.Apply([]float64{0.234, -0.06, 0.97, 2.0}, 0.5)
	want := []float64{0.2, -0.1, 1.0, 1.0}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestApplyInvalidInputDegrades(t *testing.T) {
	op := NewOperator(DefaultConfig(4), rand.New(rand.NewSource(1)))

	// Wrong length
	out := op.Apply([]float64{1, 2}, 0.1)
	if len(out) != 4 {
		t.Fatalf("expected dim 4 fallback, got %d", len(out))
	}
	for i, x := range out {
		if x != 0 {
			t.Fatalf("fallback should be zeros, index %d = %f", i, x)
		}
	}

	// NaN input
	out = op.Apply([]float64{0, math.NaN(), 0, 0}, 0.1)
	for i, x := range out {
		if x != 0 {
			t.Fatalf("NaN input should degrade to zeros, index %d = %f", i, x)
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	op := NewOperator(DefaultConfig(3), rand.New(rand.NewSource(3)))
	in := []float64{0.1, 0.2, 0.3}

	op.Apply(in, 1.0)
	if in[0] != 0.1 || in[1] != 0.2 || in[2] != 0.3 {
		t.Fatalf("input mutated: %v", in)
	}
}
