package replay

import (
	"fmt"
	"math"

	"github.com/syntrometry/syntrocore/internal/diag"
	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/persist"
)

// #region types

// Tolerance is the maximum absolute difference allowed when comparing a
// replayed metric against a recorded expectation.
const Tolerance = 1e-6

// Outcome captures one replayed step checked against its expectation.
type Outcome struct {
	Index      int
	StepID     string
	Match      bool
	Mismatches []string
	Result     engine.StepResult
}

// Summary provides aggregate stats from a replay comparison.
type Summary struct {
	TotalSteps int
	Matches    int
	Mismatches int
	AllMatch   bool
}

// #endregion types

// #region replay

// Replay restores the start snapshot and runs every recorded step through a
// fresh engine. Operates entirely in-memory; anomalies are collected, not
// persisted.
func Replay(start persist.Snapshot, config engine.Config, steps []engine.StepInput) []engine.StepResult {
	e := engine.New(config, nil, &diag.ListRecorder{})
	e.Restore(start)

	results := make([]engine.StepResult, 0, len(steps))
	for _, in := range steps {
		results = append(results, e.Step(in))
	}
	return results
}

// Compare checks replayed results against expectations within Tolerance.
// One outcome per expectation; results beyond the expectations are ignored.
func Compare(results []engine.StepResult, expected []Expected) []Outcome {
	outcomes := make([]Outcome, 0, len(expected))
	for i, want := range expected {
		out := Outcome{Index: i, Match: true}
		if i >= len(results) {
			out.Match = false
			out.Mismatches = []string{"no result produced for this step"}
			outcomes = append(outcomes, out)
			continue
		}

		got := results[i]
		out.StepID = got.StepID
		out.Result = got

		checkMetric(&out, "coherence", want.Coherence, got.Coherence)
		checkMetric(&out, "trust", want.Trust, got.Trust)
		checkMetric(&out, "integration", want.Integration, got.Integration)
		checkMetric(&out, "reflexivity", want.Reflexivity, got.Reflexivity)
		if want.Degraded != nil && *want.Degraded != got.Degraded {
			out.Match = false
			out.Mismatches = append(out.Mismatches,
				fmt.Sprintf("degraded: got %v, want %v", got.Degraded, *want.Degraded))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func checkMetric(out *Outcome, name string, want *float64, got float64) {
	if want == nil {
		return
	}
	if math.Abs(got-*want) > Tolerance {
		out.Match = false
		out.Mismatches = append(out.Mismatches,
			fmt.Sprintf("%s: got %.6f, want %.6f", name, got, *want))
	}
}

// Summarize computes aggregate stats from comparison outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{TotalSteps: len(outcomes), AllMatch: true}
	for _, o := range outcomes {
		if o.Match {
			s.Matches++
		} else {
			s.Mismatches++
			s.AllMatch = false
		}
	}
	return s
}

// Record derives fixture expectations from a finished run, for exporting
// fixtures that pin current behavior.
func Record(results []engine.StepResult) []Expected {
	expected := make([]Expected, 0, len(results))
	for _, r := range results {
		coherence, trust := r.Coherence, r.Trust
		integration, reflexivity := r.Integration, r.Reflexivity
		degraded := r.Degraded
		expected = append(expected, Expected{
			Coherence:   &coherence,
			Trust:       &trust,
			Integration: &integration,
			Reflexivity: &reflexivity,
			Degraded:    &degraded,
		})
	}
	return expected
}

// #endregion replay
