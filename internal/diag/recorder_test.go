package diag

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func tempDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, "diag.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestListRecorder(t *testing.T) {
	var r ListRecorder
	r.Record(Anomaly{Kind: KindInvalidInput, Component: "perturb", Detail: "wrong length"})
	r.Record(Anomaly{Kind: KindDegenerateNumeric, Component: "score", Detail: "zero variance"})

	if len(r.Anomalies) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(r.Anomalies))
	}
	if r.Anomalies[0].Kind != KindInvalidInput || r.Anomalies[1].Kind != KindDegenerateNumeric {
		t.Fatalf("order lost: %+v", r.Anomalies)
	}

	r.Reset()
	if len(r.Anomalies) != 0 {
		t.Fatalf("reset should drop all anomalies, got %d", len(r.Anomalies))
	}
}

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	db := tempDB(t)
	r, err := NewSQLiteRecorder(db)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.Record(Anomaly{Kind: KindInvalidInput, Component: "perturb", Detail: "first", CreatedAt: base})
	r.Record(Anomaly{Kind: KindDimensionMismatch, Component: "self", Detail: "second", CreatedAt: base.Add(time.Second)})
	r.Record(Anomaly{Kind: KindUpstreamFailure, Component: "belief", Detail: "third", CreatedAt: base.Add(2 * time.Second)})

	recent, err := r.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	if recent[0].Detail != "third" || recent[1].Detail != "second" {
		t.Fatalf("expected newest first, got %q then %q", recent[0].Detail, recent[1].Detail)
	}
	if recent[0].Kind != KindUpstreamFailure || recent[0].Component != "belief" {
		t.Fatalf("fields drifted: %+v", recent[0])
	}
	if !recent[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("timestamp drifted: %v", recent[0].CreatedAt)
	}
}

func TestSQLiteRecorderFillsTimestamp(t *testing.T) {
	db := tempDB(t)
	r, err := NewSQLiteRecorder(db)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	r.Record(Anomaly{Kind: KindInvalidInput, Component: "cascade", Detail: "no timestamp"})
	recent, err := r.Recent(1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 row, got %d", len(recent))
	}
	if recent[0].CreatedAt.IsZero() {
		t.Fatal("recorder should stamp anomalies that carry no timestamp")
	}
}
