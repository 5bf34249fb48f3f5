package engine

// #region imports
import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/syntrometry/syntrocore/internal/adapt"
	"github.com/syntrometry/syntrocore/internal/belief"
	"github.com/syntrometry/syntrocore/internal/cascade"
	"github.com/syntrometry/syntrocore/internal/diag"
	"github.com/syntrometry/syntrocore/internal/memory"
	"github.com/syntrometry/syntrocore/internal/numeric"
	"github.com/syntrometry/syntrocore/internal/persist"
	"github.com/syntrometry/syntrocore/internal/perturb"
	"github.com/syntrometry/syntrocore/internal/score"
)

// #endregion

// #region engine-struct

// Engine runs the tick-driven cognitive step pipeline: perturb the incoming
// state, pass it through the belief transform, reduce it through the cascade,
// score the result, and adapt the control parameters. Not safe for concurrent
// use; callers run one Step at a time.
type Engine struct {
	config   Config
	op       *perturb.Operator
	proc     *cascade.Processor
	scorer   *score.Scorer
	adapter  *adapt.Adapter
	tracker  *adapt.Tracker
	embedder belief.Embedder
	mem      *memory.Store
	recorder diag.Recorder

	params    adapt.Params
	selfState []float64

	lastCoherence float64
	lastVariance  float64
	lastTrust     float64
	lastResult    *StepResult // cached for degraded fallback

	steps int
}

// #endregion

// #region constructor

// New creates a fully wired engine starting from freshly-initialized state.
// A nil embedder falls back to the deterministic hash embedder; a nil
// recorder logs anomalies to the process log.
func New(config Config, embedder belief.Embedder, recorder diag.Recorder) *Engine {
	config.Perturb.Dim = config.StateDim
	if config.MemoryCapacity < 1 {
		config.MemoryCapacity = 1
	}
	if embedder == nil {
		embedder = belief.NewHashEmbedder(config.EmbeddingDim, config.StateDim)
	}
	if recorder == nil {
		recorder = diag.LogRecorder{}
	}

	var rng *rand.Rand
	if config.Seed != 0 {
		rng = rand.New(rand.NewSource(config.Seed))
	}

	return &Engine{
		config:    config,
		op:        perturb.NewOperator(config.Perturb, rng),
		proc:      cascade.NewProcessor(config.Cascade),
		scorer:    score.NewScorer(config.Score),
		adapter:   adapt.NewAdapter(config.Adapt),
		tracker:   adapt.NewTracker(config.Self),
		embedder:  embedder,
		recorder:  recorder,
		params:    adapt.DefaultParams(),
		selfState: numeric.Zeros(config.EmbeddingDim),
		mem:       memory.NewStore(config.MemoryCapacity),
		lastTrust: 1.0,
	}
}

// #endregion

// #region accessors

// Params returns the current control parameters.
func (e *Engine) Params() adapt.Params {
	return e.params
}

// SelfState returns a copy of the current self state.
func (e *Engine) SelfState() []float64 {
	return numeric.Clone(e.selfState)
}

// Memory exposes the bounded episodic store.
func (e *Engine) Memory() *memory.Store {
	return e.mem
}

// PersistConfig derives the snapshot validation config for this engine.
func (e *Engine) PersistConfig() persist.Config {
	return persist.Config{
		EmbeddingDim:   e.config.EmbeddingDim,
		MemoryCapacity: e.config.MemoryCapacity,
	}
}

// #endregion

// #region step

// Step advances the engine by one tick. It never fails: when the belief
// transform or the cascade cannot produce usable values the previous result
// is returned with Degraded set and no state is mutated.
func (e *Engine) Step(in StepInput) StepResult {
	stepID := uuid.New().String()

	// 1. extract core dims
	core := e.coreState(in.RawState)
	features := numeric.PadTo(in.Features, e.config.FeatureDim)[:e.config.FeatureDim]
	if !numeric.Finite(features) {
		e.anomaly(diag.KindInvalidInput, "step", "non-finite context features")
		features = numeric.Zeros(e.config.FeatureDim)
	}

	// 2. perturb, noise shrinking as coherence rises
	noise := e.config.BaseNoise * e.params.Reflexivity * (1 - e.lastCoherence)
	perturbed := e.op.Apply(core, noise)

	// 3. belief embedding
	embedding, err := e.embedder.Embed(concat(perturbed, features, e.selfState))
	if err != nil {
		return e.degrade(stepID, in, "belief embed failed: "+err.Error())
	}
	if len(embedding) != e.config.EmbeddingDim || !numeric.Finite(embedding) {
		return e.degrade(stepID, in, "belief embedding unusable")
	}

	// 4. project back to state space
	projected, err := e.embedder.Project(embedding)
	if err != nil {
		return e.degrade(stepID, in, "belief project failed: "+err.Error())
	}
	if len(projected) != e.config.StateDim || !numeric.Finite(projected) {
		return e.degrade(stepID, in, "projection unusable")
	}

	// 5. cascade
	history := e.proc.Process(projected)
	last := history.LastActive()
	if len(last) == 0 {
		return e.degrade(stepID, in, "cascade produced no levels")
	}

	// 6. scores
	coherence := e.scorer.Coherence(last)
	affinities := score.AdjacentAffinities(history)
	means, variances := history.Features()
	_, variance := numeric.MeanVariance(last)

	// 7. trust against episodic memory
	trust := memory.Trust(embedding, e.mem)

	// 8. parameter adaptation
	adapted := e.adapter.Step(e.params, adapt.Inputs{
		Trust:         trust,
		RIH:           coherence,
		RIHDelta:      coherence - e.lastCoherence,
		Variance:      variance,
		VarianceDelta: variance - e.lastVariance,
	})

	// 9. self state update
	nextSelf, reset := e.tracker.Update(e.selfState, embedding, trust, adapted.Params.Integration)
	if reset {
		e.anomaly(diag.KindDimensionMismatch, "self", "self state reinitialized to embedding dim")
	}

	// 10. commit
	e.mem.Append(time.Now().UTC(), embedding)
	e.params = adapted.Params
	e.selfState = nextSelf
	e.lastCoherence = coherence
	e.lastVariance = variance
	e.lastTrust = trust
	e.steps++

	result := StepResult{
		StepID:         stepID,
		EventLabel:     in.EventLabel,
		Reward:         in.Reward,
		History:        history,
		CascadeLengths: history.Lengths(),
		LevelMeans:     means,
		LevelVariances: variances,
		Coherence:      coherence,
		Affinities:     affinities,
		Trust:          trust,
		Variance:       variance,
		Integration:    e.params.Integration,
		Reflexivity:    e.params.Reflexivity,
		RulesFired:     adapted.Fired,
		EmbeddingNorm:  numeric.Norm(embedding),
		SelfNorm:       numeric.Norm(e.selfState),
		CreatedAt:      time.Now().UTC(),
	}
	e.lastResult = &result

	log.Printf("[ENGINE] step %d: rih=%.3f trust=%.3f integration=%.3f reflexivity=%.3f fired=%v",
		e.steps, coherence, trust, e.params.Integration, e.params.Reflexivity, adapted.Fired)

	return result
}

func (e *Engine) coreState(raw []float64) []float64 {
	if len(raw) < e.config.StateDim {
		e.anomaly(diag.KindInvalidInput, "step", "raw state shorter than state dim")
	}
	if !numeric.Finite(raw) {
		e.anomaly(diag.KindInvalidInput, "step", "non-finite raw state")
		return numeric.Zeros(e.config.StateDim)
	}
	return numeric.PadTo(raw, e.config.StateDim)[:e.config.StateDim]
}

// #endregion step

// #region degrade

// degrade records the failure and replays the previous result without
// touching memory, parameters, or the self state.
func (e *Engine) degrade(stepID string, in StepInput, detail string) StepResult {
	e.anomaly(diag.KindUpstreamFailure, "engine", detail)
	log.Printf("[ENGINE] degraded step: %s", detail)

	result := e.baseline()
	result.StepID = stepID
	result.EventLabel = in.EventLabel
	result.Reward = in.Reward
	result.Degraded = true
	result.CreatedAt = time.Now().UTC()
	return result
}

// baseline is the last committed result, or a synthetic one from the cached
// scalars when no step has committed yet.
func (e *Engine) baseline() StepResult {
	if e.lastResult != nil {
		return *e.lastResult
	}
	return StepResult{
		Coherence:   e.lastCoherence,
		Variance:    e.lastVariance,
		Trust:       e.lastTrust,
		Integration: e.params.Integration,
		Reflexivity: e.params.Reflexivity,
		SelfNorm:    numeric.Norm(e.selfState),
	}
}

func (e *Engine) anomaly(kind diag.Kind, component, detail string) {
	e.recorder.Record(diag.Anomaly{Kind: kind, Component: component, Detail: detail})
}

// #endregion degrade

// #region snapshot

// Snapshot exports the persistent state. Identity fields (snapshot ID,
// parent, created-at) are left for the caller to assign.
func (e *Engine) Snapshot() persist.Snapshot {
	snap := persist.Snapshot{
		Version:       persist.SchemaVersion,
		Integration:   e.params.Integration,
		Reflexivity:   e.params.Reflexivity,
		LastCoherence: e.lastCoherence,
		LastVariance:  e.lastVariance,
		LastTrust:     e.lastTrust,
		SelfState:     numeric.Clone(e.selfState),
		Memory:        e.mem.Entries(),
	}
	if carrier, ok := e.embedder.(belief.WeightCarrier); ok {
		weights, err := carrier.ExportWeights()
		if err != nil {
			log.Printf("[ENGINE] weight export failed: %v", err)
		} else {
			snap.ModelWeights = weights
		}
	}
	return snap
}

// Restore applies a snapshot. Callers should sanitize with persist.Sanitize
// first; Restore still guards the dimensions it cannot accept.
func (e *Engine) Restore(snap persist.Snapshot) {
	e.params = adapt.Params{Integration: snap.Integration, Reflexivity: snap.Reflexivity}

	if len(snap.SelfState) == e.config.EmbeddingDim && numeric.Finite(snap.SelfState) {
		e.selfState = numeric.Clone(snap.SelfState)
	} else {
		e.anomaly(diag.KindDimensionMismatch, "restore", "self state reinitialized")
		e.selfState = numeric.Zeros(e.config.EmbeddingDim)
	}

	e.mem.Restore(snap.Memory)
	e.lastCoherence = snap.LastCoherence
	e.lastVariance = snap.LastVariance
	e.lastTrust = snap.LastTrust
	e.lastResult = nil

	if carrier, ok := e.embedder.(belief.WeightCarrier); ok && len(snap.ModelWeights) > 0 {
		if err := carrier.ImportWeights(snap.ModelWeights); err != nil {
			e.anomaly(diag.KindUpstreamFailure, "restore", "weight import failed: "+err.Error())
			log.Printf("[ENGINE] weight import failed: %v", err)
		}
	}
}

// #endregion snapshot

// #region helpers

func concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// #endregion helpers
