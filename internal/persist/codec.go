package persist

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/syntrometry/syntrocore/internal/diag"
	"github.com/syntrometry/syntrocore/internal/memory"
	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region json-mirror

// snapshotJSON mirrors Snapshot for the exported JSON form.
type snapshotJSON struct {
	Version       int               `json:"version"`
	MemoryBuffer  []memoryEntryJSON `json:"memory_buffer"`
	LastCoherence float64           `json:"last_coherence"`
	LastVariance  float64           `json:"last_variance"`
	LastTrust     float64           `json:"last_trust"`
	Integration   float64           `json:"integration"`
	Reflexivity   float64           `json:"reflexivity"`
	SelfState     []float64         `json:"self_state"`
	ModelWeights  []byte            `json:"model_weights,omitempty"`
}

type memoryEntryJSON struct {
	Timestamp string    `json:"timestamp"`
	Embedding []float64 `json:"embedding"`
}

// #endregion json-mirror

// #region encode

// EncodeSnapshot renders the snapshot as indented JSON.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	out := snapshotJSON{
		Version:       snap.Version,
		MemoryBuffer:  make([]memoryEntryJSON, 0, len(snap.Memory)),
		LastCoherence: snap.LastCoherence,
		LastVariance:  snap.LastVariance,
		LastTrust:     snap.LastTrust,
		Integration:   snap.Integration,
		Reflexivity:   snap.Reflexivity,
		SelfState:     snap.SelfState,
		ModelWeights:  snap.ModelWeights,
	}
	for _, e := range snap.Memory {
		out.MemoryBuffer = append(out.MemoryBuffer, memoryEntryJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Embedding: e.Embedding,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// #endregion encode

// #region decode

// DecodeSnapshot parses an exported snapshot and sanitizes it against cfg.
// Malformed JSON is an error; a parseable snapshot with untrustworthy
// fields comes back with those fields reset to defaults and one anomaly
// per recovery.
func DecodeSnapshot(data []byte, cfg Config) (Snapshot, []diag.Anomaly, error) {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := Snapshot{
		Version:       raw.Version,
		Integration:   raw.Integration,
		Reflexivity:   raw.Reflexivity,
		LastCoherence: raw.LastCoherence,
		LastVariance:  raw.LastVariance,
		LastTrust:     raw.LastTrust,
		SelfState:     raw.SelfState,
		ModelWeights:  raw.ModelWeights,
	}
	for _, e := range raw.MemoryBuffer {
		ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		if err != nil {
			ts = time.Time{}
		}
		snap.Memory = append(snap.Memory, memory.Entry{Timestamp: ts, Embedding: e.Embedding})
	}

	snap, anomalies := Sanitize(snap, cfg)
	return snap, anomalies, nil
}

// Sanitize validates a loaded snapshot against the expected shape. The
// version tag and the embedding dimension are checked before any stored
// vector is trusted; offending fields fall back to freshly-initialized
// defaults instead of failing the load.
func Sanitize(snap Snapshot, cfg Config) (Snapshot, []diag.Anomaly) {
	var anomalies []diag.Anomaly
	note := func(kind diag.Kind, detail string) {
		anomalies = append(anomalies, diag.Anomaly{
			Kind:      kind,
			Component: "persist",
			Detail:    detail,
			CreatedAt: time.Now().UTC(),
		})
	}

	if snap.Version != SchemaVersion {
		note(diag.KindInvalidInput, fmt.Sprintf("schema version %d, want %d: resetting to defaults", snap.Version, SchemaVersion))
		fresh := DefaultSnapshot(cfg)
		fresh.SnapshotID = snap.SnapshotID
		fresh.ParentID = snap.ParentID
		fresh.CreatedAt = snap.CreatedAt
		return fresh, anomalies
	}

	if len(snap.SelfState) != cfg.EmbeddingDim || !numeric.Finite(snap.SelfState) {
		note(diag.KindDimensionMismatch, fmt.Sprintf("self state length %d, want %d: reinitialized", len(snap.SelfState), cfg.EmbeddingDim))
		snap.SelfState = numeric.Zeros(cfg.EmbeddingDim)
	}

	kept := snap.Memory[:0]
	dropped := 0
	for _, e := range snap.Memory {
		if len(e.Embedding) != cfg.EmbeddingDim || !numeric.Finite(e.Embedding) {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	if dropped > 0 {
		note(diag.KindDimensionMismatch, fmt.Sprintf("dropped %d memory entries with wrong dimension", dropped))
	}
	if cfg.MemoryCapacity > 0 && len(kept) > cfg.MemoryCapacity {
		note(diag.KindInvalidInput, fmt.Sprintf("memory over capacity %d, keeping newest %d", len(kept), cfg.MemoryCapacity))
		kept = kept[len(kept)-cfg.MemoryCapacity:]
	}
	snap.Memory = kept

	snap.Integration = sanitizeParam(snap.Integration, &anomalies, "integration")
	snap.Reflexivity = sanitizeParam(snap.Reflexivity, &anomalies, "reflexivity")
	snap.LastCoherence = sanitizeUnit(snap.LastCoherence)
	snap.LastVariance = sanitizeNonNegative(snap.LastVariance)
	snap.LastTrust = sanitizeUnit(snap.LastTrust)

	return snap, anomalies
}

func sanitizeParam(x float64, anomalies *[]diag.Anomaly, name string) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		*anomalies = append(*anomalies, diag.Anomaly{
			Kind:      diag.KindInvalidInput,
			Component: "persist",
			Detail:    fmt.Sprintf("%s non-finite: reset to 0.5", name),
			CreatedAt: time.Now().UTC(),
		})
		return 0.5
	}
	return numeric.Clamp(x, 0.05, 0.95)
}

func sanitizeUnit(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return numeric.Clamp01(x)
}

func sanitizeNonNegative(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

// #endregion decode

// #region vector-encoding

func encodeVector(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

// #endregion vector-encoding
