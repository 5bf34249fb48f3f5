package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE step_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id  TEXT NOT NULL,
		step_id      TEXT NOT NULL,
		event_label  TEXT,
		reward       REAL NOT NULL,
		inputs_json  TEXT,
		metrics_json TEXT,
		decision     TEXT NOT NULL,
		reason       TEXT,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-step-tests
func TestLogStep_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := StepEntry{
		SnapshotID:  "snap-1",
		StepID:      "step-1",
		EventLabel:  "observe",
		Reward:      0.25,
		InputsJSON:  `{"raw_state":[0.1,0.2]}`,
		MetricsJSON: `{"coherence":0.8}`,
		Decision:    "committed",
		Reason:      "all checks passed",
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogStep(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM step_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var stepID, decision string
	var reward float64
	db.QueryRow("SELECT step_id, decision, reward FROM step_log").Scan(&stepID, &decision, &reward)
	if stepID != "step-1" {
		t.Errorf("expected step_id 'step-1', got %q", stepID)
	}
	if decision != "committed" {
		t.Errorf("expected decision 'committed', got %q", decision)
	}
	if reward != 0.25 {
		t.Errorf("expected reward 0.25, got %f", reward)
	}
}

func TestLogStep_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := StepEntry{
		SnapshotID: "snap-2",
		StepID:     "step-2",
		Decision:   "degraded",
	}

	before := time.Now().UTC()
	if err := LogStep(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM step_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogStep_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := StepEntry{
		SnapshotID: "snap-3",
		StepID:     "step-3",
		Decision:   "committed",
		CreatedAt:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	if err := LogStep(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var eventLabel, inputsJSON, metricsJSON, reason sql.NullString
	db.QueryRow("SELECT event_label, inputs_json, metrics_json, reason FROM step_log").Scan(
		&eventLabel, &inputsJSON, &metricsJSON, &reason,
	)
	if eventLabel.Valid {
		t.Error("expected NULL event_label for empty string")
	}
	if inputsJSON.Valid {
		t.Error("expected NULL inputs_json for empty string")
	}
	if metricsJSON.Valid {
		t.Error("expected NULL metrics_json for empty string")
	}
	if reason.Valid {
		t.Error("expected NULL reason for empty string")
	}
}

func TestLogStep_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	entry := StepEntry{
		SnapshotID: "snap-4",
		StepID:     "step-4",
		Decision:   "committed",
	}

	if err := LogStep(db, entry); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-step-tests

// #region recent-steps-tests
func TestRecentSteps_NewestFirst(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"step-a", "step-b", "step-c"} {
		entry := StepEntry{
			SnapshotID: "snap-1",
			StepID:     id,
			Reward:     float64(i),
			Decision:   "committed",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		if err := LogStep(db, entry); err != nil {
			t.Fatalf("log %s: %v", id, err)
		}
	}

	recent, err := RecentSteps(db, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].StepID != "step-c" || recent[1].StepID != "step-b" {
		t.Fatalf("expected newest first, got %q then %q", recent[0].StepID, recent[1].StepID)
	}
	if !recent[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("timestamp drifted: %v", recent[0].CreatedAt)
	}
}

func TestRecentSteps_EmptyOptionals(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := StepEntry{SnapshotID: "snap-1", StepID: "step-1", Decision: "degraded"}
	if err := LogStep(db, entry); err != nil {
		t.Fatalf("log: %v", err)
	}

	recent, err := RecentSteps(db, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(recent))
	}
	if recent[0].EventLabel != "" || recent[0].Reason != "" {
		t.Fatalf("NULL columns should scan as empty strings: %+v", recent[0])
	}
	if recent[0].Decision != "degraded" {
		t.Fatalf("decision drifted: %q", recent[0].Decision)
	}
}

// #endregion recent-steps-tests

// #region null-if-empty-tests
func TestNullIfEmpty_Empty(t *testing.T) {
	if result := nullIfEmpty(""); result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestNullIfEmpty_NonEmpty(t *testing.T) {
	if result := nullIfEmpty("hello"); result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
