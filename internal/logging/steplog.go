package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-step
// LogStep writes a provenance entry to the step_log table.
func LogStep(db *sql.DB, entry StepEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO step_log (snapshot_id, step_id, event_label, reward, inputs_json, metrics_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SnapshotID,
		entry.StepID,
		nullIfEmpty(entry.EventLabel),
		entry.Reward,
		nullIfEmpty(entry.InputsJSON),
		nullIfEmpty(entry.MetricsJSON),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log step: %w", err)
	}
	return nil
}
// #endregion log-step

// #region recent-steps
// RecentSteps returns up to limit step entries, newest first.
func RecentSteps(db *sql.DB, limit int) ([]StepEntry, error) {
	rows, err := db.Query(
		`SELECT snapshot_id, step_id, event_label, reward, inputs_json, metrics_json, decision, reason, created_at
		 FROM step_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent steps: %w", err)
	}
	defer rows.Close()

	var out []StepEntry
	for rows.Next() {
		var entry StepEntry
		var eventLabel, inputsJSON, metricsJSON, reason sql.NullString
		var createdAt string
		err := rows.Scan(
			&entry.SnapshotID, &entry.StepID, &eventLabel, &entry.Reward,
			&inputsJSON, &metricsJSON, &entry.Decision, &reason, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan step row: %w", err)
		}
		entry.EventLabel = eventLabel.String
		entry.InputsJSON = inputsJSON.String
		entry.MetricsJSON = metricsJSON.String
		entry.Reason = reason.String
		entry.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, entry)
	}
	return out, rows.Err()
}
// #endregion recent-steps

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
