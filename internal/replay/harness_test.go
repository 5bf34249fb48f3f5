package replay

import (
	"testing"

	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/persist"
)

// helper: deterministic engine config for replay runs.
func seededConfig(seed int64) engine.Config {
	config := engine.DefaultConfig()
	config.Seed = seed
	return config
}

// helper: a short session of ramp inputs.
func sessionSteps(n int) []engine.StepInput {
	steps := make([]engine.StepInput, 0, n)
	for i := 0; i < n; i++ {
		raw := make([]float64, 8)
		for j := range raw {
			raw[j] = float64(i)*0.1 + float64(j)*0.05
		}
		steps = append(steps, engine.StepInput{
			RawState:   raw,
			Features:   []float64{0.3, 0.1},
			EventLabel: "tick",
			Reward:     0.05,
		})
	}
	return steps
}

func freshStart(config engine.Config) persist.Snapshot {
	return persist.DefaultSnapshot(persist.Config{
		EmbeddingDim:   config.EmbeddingDim,
		MemoryCapacity: config.MemoryCapacity,
	})
}

// 1. Replaying the same session twice reproduces every metric exactly.
func TestReplay_Deterministic(t *testing.T) {
	config := seededConfig(42)
	start := freshStart(config)
	steps := sessionSteps(5)

	first := Replay(start, config, steps)
	if len(first) != 5 {
		t.Fatalf("expected 5 results, got %d", len(first))
	}
	for i, r := range first {
		if r.Degraded {
			t.Fatalf("step %d degraded during a healthy replay", i)
		}
	}

	second := Replay(start, config, steps)
	outcomes := Compare(second, Record(first))
	summary := Summarize(outcomes)
	if !summary.AllMatch {
		for _, o := range outcomes {
			if !o.Match {
				t.Errorf("step %d mismatched: %v", o.Index, o.Mismatches)
			}
		}
		t.Fatalf("expected a deterministic replay, %d/%d matched", summary.Matches, summary.TotalSteps)
	}
}

// 2. Compare flags metric drift and names the metric.
func TestCompare_FlagsMismatch(t *testing.T) {
	config := seededConfig(7)
	results := Replay(freshStart(config), config, sessionSteps(2))
	expected := Record(results)

	drifted := results[1].Coherence + 0.5
	expected[1].Coherence = &drifted

	outcomes := Compare(results, expected)
	if outcomes[0].Match != true {
		t.Fatal("untouched step should match")
	}
	if outcomes[1].Match {
		t.Fatal("drifted coherence should mismatch")
	}
	if len(outcomes[1].Mismatches) != 1 {
		t.Fatalf("expected exactly one mismatch, got %v", outcomes[1].Mismatches)
	}

	summary := Summarize(outcomes)
	if summary.Matches != 1 || summary.Mismatches != 1 || summary.AllMatch {
		t.Fatalf("summary miscounted: %+v", summary)
	}
}

// 3. More expectations than results → explicit mismatch, no panic.
func TestCompare_MissingResult(t *testing.T) {
	config := seededConfig(7)
	results := Replay(freshStart(config), config, sessionSteps(1))
	expected := Record(results)
	expected = append(expected, Expected{})

	outcomes := Compare(results, expected)
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[1].Match {
		t.Fatal("missing result should mismatch")
	}
}

// 4. Expectations with no pinned fields match anything.
func TestCompare_EmptyExpectation(t *testing.T) {
	config := seededConfig(9)
	results := Replay(freshStart(config), config, sessionSteps(2))

	outcomes := Compare(results, []Expected{{}, {}})
	for _, o := range outcomes {
		if !o.Match {
			t.Fatalf("empty expectation should match, got %v", o.Mismatches)
		}
	}
}

// 5. Replay starting from a mid-session snapshot continues from that state.
func TestReplay_FromSnapshot(t *testing.T) {
	config := seededConfig(13)
	start := freshStart(config)
	start.Integration = 0.7
	start.Reflexivity = 0.3

	results := Replay(start, config, sessionSteps(1))
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	// One adapter tick cannot move a parameter further than this.
	if diff := results[0].Integration - 0.7; diff > 0.1 || diff < -0.1 {
		t.Fatalf("integration should continue from the snapshot, got %f", results[0].Integration)
	}
}
