package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/logging"
	"github.com/syntrometry/syntrocore/internal/persist"
	"github.com/syntrometry/syntrocore/internal/replay"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to syntrocore.db")
	last := flag.Int("last", 4, "number of most recent step log rows to export")
	seed := flag.Int64("seed", 0, "RNG seed the session ran with")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N] [--seed N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *seed, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

// stepRow holds a parsed step_log row with its recorded inputs and metrics.
type stepRow struct {
	StepID     string
	EventLabel string
	Reward     float64
	Inputs     logging.InputsRecord
	Metrics    logging.MetricsRecord
	Decision   string
}

func run(dbPath string, last int, seed int64, outPath string) error {
	store, err := persist.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	db := store.DB()

	// Get initial snapshot (first version with no parent)
	var initID string
	err = db.QueryRow(
		`SELECT snapshot_id FROM agent_snapshots WHERE parent_id IS NULL ORDER BY created_at ASC LIMIT 1`,
	).Scan(&initID)
	if err != nil {
		return fmt.Errorf("find initial snapshot: %w", err)
	}

	start, err := store.GetSnapshot(initID)
	if err != nil {
		return fmt.Errorf("get initial snapshot: %w", err)
	}

	// Query last N replayable rows (DESC then reverse for chronological order)
	rows, err := db.Query(
		`SELECT step_id, event_label, reward, inputs_json, metrics_json, decision FROM (
			SELECT id, step_id, event_label, reward, inputs_json, metrics_json, decision FROM step_log
			WHERE inputs_json IS NOT NULL
			ORDER BY id DESC LIMIT ?
		) sub ORDER BY id ASC`, last,
	)
	if err != nil {
		return fmt.Errorf("query step log: %w", err)
	}
	defer rows.Close()

	var steps []stepRow
	for rows.Next() {
		var r stepRow
		var eventLabel, inputsJSON, metricsJSON sql.NullString
		if err := rows.Scan(&r.StepID, &eventLabel, &r.Reward, &inputsJSON, &metricsJSON, &r.Decision); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		r.EventLabel = eventLabel.String
		if !inputsJSON.Valid || inputsJSON.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(inputsJSON.String), &r.Inputs); err != nil {
			continue
		}
		if len(r.Inputs.RawState) == 0 {
			continue // not replayable without the raw state
		}
		if metricsJSON.Valid && metricsJSON.String != "" {
			if err := json.Unmarshal([]byte(metricsJSON.String), &r.Metrics); err != nil {
				continue
			}
		}
		steps = append(steps, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	if len(steps) == 0 {
		return fmt.Errorf("no replayable rows found in last %d step_log entries", last)
	}

	fmt.Printf("Found %d replayable steps\n", len(steps))

	fixture, err := buildFixture(start, steps, seed)
	if err != nil {
		return err
	}
	return writeFixture(fixture, outPath)
}

// #endregion extract

// #region output

func buildFixture(start persist.Snapshot, steps []stepRow, seed int64) (replay.Fixture, error) {
	startJSON, err := persist.EncodeSnapshot(start)
	if err != nil {
		return replay.Fixture{}, fmt.Errorf("encode start state: %w", err)
	}

	config := engine.DefaultConfig()
	fixtureSteps := make([]replay.FixtureStep, len(steps))
	expected := make([]replay.Expected, len(steps))

	for i, r := range steps {
		fixtureSteps[i] = replay.FixtureStep{
			StepID:     r.StepID,
			RawState:   r.Inputs.RawState,
			Features:   r.Inputs.Features,
			EventLabel: r.EventLabel,
			Reward:     r.Reward,
		}
		coherence, trust := r.Metrics.Coherence, r.Metrics.Trust
		degraded := r.Decision == "degraded"
		expected[i] = replay.Expected{
			Coherence: &coherence,
			Trust:     &trust,
			Degraded:  &degraded,
		}
	}

	return replay.Fixture{
		Description: fmt.Sprintf("Real session export: %d steps from production DB", len(steps)),
		Start:       json.RawMessage(startJSON),
		Config: replay.FixtureConfig{
			StateDim:       config.StateDim,
			FeatureDim:     config.FeatureDim,
			EmbeddingDim:   config.EmbeddingDim,
			BaseNoise:      config.BaseNoise,
			MemoryCapacity: config.MemoryCapacity,
			Seed:           seed,
			PerturbMode:    string(config.Perturb.Mode),
			Metron:         config.Perturb.Metron,
			Levels:         config.Cascade.Levels,
			Stage:          config.Cascade.Stage,
			CascadeMode:    string(config.Cascade.Mode),
			RIHScale:       config.Score.RIHScale,
		},
		Steps:    fixtureSteps,
		Expected: expected,
	}, nil
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d steps)\n", outPath, len(data), len(fixture.Steps))
	return nil
}

// #endregion output
