package diag

import (
	"database/sql"
	"log"
	"time"
)

// #region log-recorder

// LogRecorder writes anomalies to the process log.
type LogRecorder struct{}

// Record logs the anomaly.
func (LogRecorder) Record(a Anomaly) {
	log.Printf("[DIAG] %s in %s: %s", a.Kind, a.Component, a.Detail)
}

// #endregion log-recorder

// #region list-recorder

// ListRecorder collects anomalies in memory, oldest first.
type ListRecorder struct {
	Anomalies []Anomaly
}

// Record appends the anomaly.
func (r *ListRecorder) Record(a Anomaly) {
	r.Anomalies = append(r.Anomalies, a)
}

// Reset drops all collected anomalies.
func (r *ListRecorder) Reset() {
	r.Anomalies = r.Anomalies[:0]
}

// #endregion list-recorder

// #region sqlite-recorder

// SQLiteRecorder persists anomalies to the anomaly_log table.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates the anomaly_log table if needed and returns a recorder.
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	r := &SQLiteRecorder{db: db}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS anomaly_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		component TEXT NOT NULL,
		detail TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

// Record inserts the anomaly. Insert failures are logged, never propagated;
// diagnostics must not break the step loop.
func (r *SQLiteRecorder) Record(a Anomaly) {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO anomaly_log (kind, component, detail, created_at) VALUES (?, ?, ?, ?)`,
		string(a.Kind), a.Component, a.Detail, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		log.Printf("[DIAG] anomaly insert failed: %v", err)
	}
}

// Recent returns up to limit anomalies, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]Anomaly, error) {
	rows, err := r.db.Query(
		`SELECT kind, component, detail, created_at FROM anomaly_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Anomaly
	for rows.Next() {
		var a Anomaly
		var kind, createdAt string
		if err := rows.Scan(&kind, &a.Component, &a.Detail, &createdAt); err != nil {
			return nil, err
		}
		a.Kind = Kind(kind)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// #endregion sqlite-recorder
