package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/logging"
	"github.com/syntrometry/syntrocore/internal/persist"
	"github.com/syntrometry/syntrocore/internal/replay"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to syntrocore.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	seed := flag.Int64("seed", 0, "RNG seed the session ran with (DB mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/syntrocore.db [--seed N]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *seed)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	config := f.Config.ToEngineConfig()
	start, err := f.StartSnapshot(persist.Config{
		EmbeddingDim:   config.EmbeddingDim,
		MemoryCapacity: config.MemoryCapacity,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "start state: %v\n", err)
		return 2
	}

	inputs := make([]engine.StepInput, len(f.Steps))
	ids := make([]string, len(f.Steps))
	for i := range f.Steps {
		inputs[i] = f.Steps[i].ToStepInput()
		ids[i] = f.Steps[i].StepID
	}

	results := replay.Replay(start, config, inputs)
	outcomes := replay.Compare(results, f.Expected)
	return printComparison(outcomes, ids)
}

// #endregion fixture-mode

// #region db-mode

// stepRow holds a parsed step_log row.
type stepRow struct {
	StepID     string
	EventLabel string
	Reward     float64
	Inputs     logging.InputsRecord
	Metrics    logging.MetricsRecord
	Decision   string
}

func runDBMode(dbPath string, seed int64) int {
	store, err := persist.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	db := store.DB()

	// Get initial snapshot (first version with no parent)
	var initID string
	err = db.QueryRow(
		`SELECT snapshot_id FROM agent_snapshots WHERE parent_id IS NULL ORDER BY created_at ASC LIMIT 1`,
	).Scan(&initID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "find initial snapshot: %v\n", err)
		return 2
	}

	start, err := store.GetSnapshot(initID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get initial snapshot: %v\n", err)
		return 2
	}

	config := engine.DefaultConfig()
	config.Seed = seed
	sanitized, _ := persist.Sanitize(start, persist.Config{
		EmbeddingDim:   config.EmbeddingDim,
		MemoryCapacity: config.MemoryCapacity,
	})

	steps, err := readStepLog(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read step log: %v\n", err)
		return 2
	}
	if len(steps) == 0 {
		fmt.Fprintln(os.Stderr, "no replayable entries found in step_log")
		return 2
	}

	inputs := make([]engine.StepInput, len(steps))
	expected := make([]replay.Expected, len(steps))
	ids := make([]string, len(steps))
	for i, r := range steps {
		inputs[i] = engine.StepInput{
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
		ids[i] = r.StepID
	}

	results := replay.Replay(sanitized, config, inputs)
	outcomes := replay.Compare(results, expected)
	return printComparison(outcomes, ids)
}

func readStepLog(db *sql.DB) ([]stepRow, error) {
	rows, err := db.Query(
		`SELECT step_id, event_label, reward, inputs_json, metrics_json, decision
		 FROM step_log WHERE inputs_json IS NOT NULL ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query step_log: %w", err)
	}
	defer rows.Close()

	var out []stepRow
	for rows.Next() {
		var r stepRow
		var eventLabel, inputsJSON, metricsJSON sql.NullString
		if err := rows.Scan(&r.StepID, &eventLabel, &r.Reward, &inputsJSON, &metricsJSON, &r.Decision); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.EventLabel = eventLabel.String
		if !inputsJSON.Valid || inputsJSON.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(inputsJSON.String), &r.Inputs); err != nil {
			continue
		}
		if metricsJSON.Valid && metricsJSON.String != "" {
			if err := json.Unmarshal([]byte(metricsJSON.String), &r.Metrics); err != nil {
				continue
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion db-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(outcomes []replay.Outcome, ids []string) int {
	fmt.Printf("%-12s| %-6s| %s\n", "Step", "Match", "Detail")
	fmt.Printf("%-12s+%-7s+%s\n", "------------", "-------", "--------------------------------")

	for i, o := range outcomes {
		id := o.StepID
		if i < len(ids) && ids[i] != "" {
			id = ids[i]
		}
		if o.Match {
			fmt.Printf("%-12s| %-6s| rih=%.4f trust=%.4f\n",
				shortID(id), "OK", o.Result.Coherence, o.Result.Trust)
		} else {
			fmt.Printf("%-12s| %-6s| %s\n", shortID(id), "DIFF", strings.Join(o.Mismatches, "; "))
		}
	}

	summary := replay.Summarize(outcomes)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n",
		summary.TotalSteps, summary.Matches, summary.Mismatches)

	if !summary.AllMatch {
		return 1
	}
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
