package persist

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/syntrometry/syntrocore/internal/memory"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS agent_snapshots (
	snapshot_id    TEXT PRIMARY KEY,
	parent_id      TEXT,
	version        INTEGER NOT NULL,
	integration    REAL NOT NULL,
	reflexivity    REAL NOT NULL,
	last_coherence REAL NOT NULL,
	last_variance  REAL NOT NULL,
	last_trust     REAL NOT NULL,
	self_state     BLOB NOT NULL,
	memory_json    TEXT NOT NULL,
	model_weights  BLOB,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES agent_snapshots(snapshot_id)
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	snapshot_id    TEXT NOT NULL,
	FOREIGN KEY (snapshot_id) REFERENCES agent_snapshots(snapshot_id)
);

CREATE TABLE IF NOT EXISTS step_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id    TEXT NOT NULL,
	step_id        TEXT NOT NULL,
	event_label    TEXT,
	reward         REAL NOT NULL,
	inputs_json    TEXT,
	metrics_json   TEXT,
	decision       TEXT NOT NULL,
	reason         TEXT,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (snapshot_id) REFERENCES agent_snapshots(snapshot_id)
);
`

// #endregion schema

// #region store-struct

// Store manages versioned agent snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already-open database. The caller owns the handle.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region create-initial

// CreateInitial writes a freshly-initialized snapshot and points the active
// marker at it.
func (s *Store) CreateInitial(cfg Config) (Snapshot, error) {
	snap := DefaultSnapshot(cfg)
	snap.SnapshotID = uuid.New().String()
	snap.CreatedAt = time.Now().UTC()

	if err := s.insert(snap, true); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// #endregion create-initial

// #region commit

// Commit inserts a new snapshot and moves the active pointer atomically.
func (s *Store) Commit(snap Snapshot) error {
	return s.insert(snap, false)
}

// Adopt inserts an externally-sourced snapshot and makes it active even
// when no active pointer exists yet. Used by the import tooling.
func (s *Store) Adopt(snap Snapshot) error {
	return s.insert(snap, true)
}

func (s *Store) insert(snap Snapshot, initial bool) error {
	memJSON, err := encodeMemory(snap.Memory)
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if snap.ParentID != "" {
		parentPtr = snap.ParentID
	}
	var weightsPtr interface{}
	if len(snap.ModelWeights) > 0 {
		weightsPtr = snap.ModelWeights
	}

	_, err = tx.Exec(
		`INSERT INTO agent_snapshots (snapshot_id, parent_id, version, integration, reflexivity,
		 last_coherence, last_variance, last_trust, self_state, memory_json, model_weights, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.SnapshotID, parentPtr, snap.Version, snap.Integration, snap.Reflexivity,
		snap.LastCoherence, snap.LastVariance, snap.LastTrust,
		encodeVector(snap.SelfState), memJSON, weightsPtr,
		snap.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if initial {
		_, err = tx.Exec(
			`INSERT INTO active_snapshot (id, snapshot_id) VALUES (1, ?)
			 ON CONFLICT(id) DO UPDATE SET snapshot_id = excluded.snapshot_id`,
			snap.SnapshotID,
		)
	} else {
		_, err = tx.Exec(
			`UPDATE active_snapshot SET snapshot_id = ? WHERE id = 1`, snap.SnapshotID,
		)
	}
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion commit

// #region get

// GetCurrent reads the active snapshot.
func (s *Store) GetCurrent() (Snapshot, error) {
	var snapshotID string
	err := s.db.QueryRow(`SELECT snapshot_id FROM active_snapshot WHERE id = 1`).Scan(&snapshotID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetSnapshot(snapshotID)
}

// GetSnapshot retrieves a specific snapshot by ID.
func (s *Store) GetSnapshot(id string) (Snapshot, error) {
	row := s.db.QueryRow(
		`SELECT snapshot_id, parent_id, version, integration, reflexivity,
		 last_coherence, last_variance, last_trust, self_state, memory_json, model_weights, created_at
		 FROM agent_snapshots WHERE snapshot_id = ?`, id,
	)
	snap, err := scanSnapshot(row.Scan)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns the most recent snapshots, newest first.
func (s *Store) ListSnapshots(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT snapshot_id, parent_id, version, integration, reflexivity,
		 last_coherence, last_variance, last_trust, self_state, memory_json, model_weights, created_at
		 FROM agent_snapshots ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanSnapshot(scan func(dest ...interface{}) error) (Snapshot, error) {
	var snap Snapshot
	var parentID sql.NullString
	var selfBlob []byte
	var memJSON string
	var weights []byte
	var createdStr string

	err := scan(&snap.SnapshotID, &parentID, &snap.Version, &snap.Integration, &snap.Reflexivity,
		&snap.LastCoherence, &snap.LastVariance, &snap.LastTrust, &selfBlob, &memJSON, &weights, &createdStr)
	if err != nil {
		return Snapshot{}, err
	}

	if parentID.Valid {
		snap.ParentID = parentID.String
	}
	snap.SelfState = decodeVector(selfBlob)
	snap.Memory, err = decodeMemory(memJSON)
	if err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal memory: %w", err)
	}
	snap.ModelWeights = weights
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return snap, nil
}

// #endregion get

// #region rollback

// Rollback points the active marker at a previous snapshot.
func (s *Store) Rollback(targetID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM agent_snapshots WHERE snapshot_id = ?`, targetID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("snapshot %s not found", targetID)
	}

	_, err = s.db.Exec(`UPDATE active_snapshot SET snapshot_id = ? WHERE id = 1`, targetID)
	if err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region memory-encoding

func encodeMemory(entries []memory.Entry) (string, error) {
	out := make([]memoryEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, memoryEntryJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Embedding: e.Embedding,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMemory(data string) ([]memory.Entry, error) {
	var raw []memoryEntryJSON
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	out := make([]memory.Entry, 0, len(raw))
	for _, e := range raw {
		ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		if err != nil {
			ts = time.Time{}
		}
		out = append(out, memory.Entry{Timestamp: ts, Embedding: e.Embedding})
	}
	return out, nil
}

// #endregion memory-encoding
