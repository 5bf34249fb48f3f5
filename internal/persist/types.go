package persist

import (
	"time"

	"github.com/syntrometry/syntrocore/internal/memory"
	"github.com/syntrometry/syntrocore/internal/numeric"
)

// #region schema-version

// SchemaVersion tags the persisted snapshot layout. Snapshots carrying a
// different tag are not trusted field-by-field; they decode to defaults.
const SchemaVersion = 1

// #endregion schema-version

// #region config

// Config describes the shape a loaded snapshot must satisfy.
type Config struct {
	EmbeddingDim   int // expected self-state and memory embedding length
	MemoryCapacity int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EmbeddingDim:   16,
		MemoryCapacity: 32,
	}
}

// #endregion config

// #region snapshot

// Snapshot is the complete persisted state of one agent at one point in
// its history.
type Snapshot struct {
	SnapshotID    string
	ParentID      string
	Version       int
	Integration   float64
	Reflexivity   float64
	LastCoherence float64
	LastVariance  float64
	LastTrust     float64
	SelfState     []float64
	Memory        []memory.Entry
	ModelWeights  []byte // opaque, owned by the belief transform
	CreatedAt     time.Time
}

// DefaultSnapshot returns a freshly-initialized agent state: neutral
// parameters, zero self state, empty memory, full trust.
func DefaultSnapshot(cfg Config) Snapshot {
	return Snapshot{
		Version:     SchemaVersion,
		Integration: 0.5,
		Reflexivity: 0.5,
		LastTrust:   1.0,
		SelfState:   numeric.Zeros(cfg.EmbeddingDim),
	}
}

// #endregion snapshot
