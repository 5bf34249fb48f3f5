package score

import (
	"math"
	"testing"

	"github.com/syntrometry/syntrocore/internal/cascade"
)

func TestAffinitySelf(t *testing.T) {
	v := []float64{0.2, -0.7, 0.4}
	if got := Affinity(v, v); math.Abs(got-1) > 1e-12 {
		t.Fatalf("self affinity should be 1, got %f", got)
	}
}

func TestAffinityZeroVector(t *testing.T) {
	v := []float64{1, 2, 3}
	if got := Affinity(v, []float64{0, 0, 0}); got != 0 {
		t.Fatalf("zero vector should score 0, got %f", got)
	}
	if got := Affinity(v, nil); got != 0 {
		t.Fatalf("empty vector should score 0, got %f", got)
	}
}

func TestAffinitySymmetric(t *testing.T) {
	a := []float64{0.3, 0.1, -0.5, 0.8}
	b := []float64{-0.2, 0.9}
	if Affinity(a, b) != Affinity(b, a) {
		t.Fatalf("affinity not symmetric: %f != %f", Affinity(a, b), Affinity(b, a))
	}
}

func TestAffinityBounded(t *testing.T) {
	a := []float64{1, 1}
	b := []float64{-1, -1}
	got := Affinity(a, b)
	if math.Abs(got+1) > 1e-12 {
		t.Fatalf("opposite vectors should score -1, got %f", got)
	}
	if got < -1 || got > 1 {
		t.Fatalf("affinity out of bounds: %f", got)
	}
}

func TestAffinityPadsShorter(t *testing.T) {
	// [1,1] extends to [1,1,0,0]; cos = 2 / (2*sqrt(2))
	got := Affinity([]float64{1, 1, 1, 1}, []float64{1, 1})
	want := math.Sqrt2 / 2
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestAdjacentAffinities(t *testing.T) {
	h := cascade.History{{1, 1, 1}, {1, 1}, {}, {}}
	got := AdjacentAffinities(h)
	if len(got) != 1 {
		t.Fatalf("expected scoring to stop at the empty level, got %d scores", len(got))
	}
	if got[0] <= 0 || got[0] > 1 {
		t.Fatalf("adjacent affinity out of range: %f", got[0])
	}
}

func TestCoherenceConstantVector(t *testing.T) {
	s := NewScorer(DefaultConfig())
	if got := s.Coherence([]float64{0.4, 0.4, 0.4, 0.4}); got != 0 {
		t.Fatalf("zero-variance vector should score 0, got %f", got)
	}
}

func TestCoherenceZeroMean(t *testing.T) {
	s := NewScorer(Config{RIHScale: 10})
	if got := s.Coherence([]float64{1, -1, 1, -1}); got != 0 {
		t.Fatalf("zero-mean vector should score 0 regardless of scale, got %f", got)
	}
}

func TestCoherenceShortVector(t *testing.T) {
	s := NewScorer(DefaultConfig())
	if got := s.Coherence([]float64{0.5}); got != 0 {
		t.Fatalf("single element should score 0, got %f", got)
	}
	if got := s.Coherence(nil); got != 0 {
		t.Fatalf("empty vector should score 0, got %f", got)
	}
}

func TestCoherencePeaked(t *testing.T) {
	s := NewScorer(DefaultConfig())
	// mean 0.5, stddev 0.1 → ratio 5, clamped to 1
	got := s.Coherence([]float64{0.4, 0.6, 0.4, 0.6})
	if got != 1 {
		t.Fatalf("strongly peaked vector should clamp to 1, got %f", got)
	}

	// scale shrinks the score below the clamp
	weak := NewScorer(Config{RIHScale: 0.1})
	gotWeak := weak.Coherence([]float64{0.4, 0.6, 0.4, 0.6})
	if gotWeak <= 0 || gotWeak >= 1 {
		t.Fatalf("scaled score should land strictly inside (0,1), got %f", gotWeak)
	}
}
