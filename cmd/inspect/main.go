package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/syntrometry/syntrocore/internal/logging"
	"github.com/syntrometry/syntrocore/internal/numeric"
	"github.com/syntrometry/syntrocore/internal/persist"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to syntrocore.db")
	last := flag.Int("last", 20, "show N most recent snapshots")
	snapshot := flag.String("snapshot", "", "show single snapshot detail")
	steps := flag.Bool("steps", false, "include recent step log entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/syntrocore.db [--last N] [--snapshot id] [--steps] [--json]")
		os.Exit(2)
	}

	store, err := persist.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *snapshot != "" {
		err = runDetailMode(store, *snapshot, *jsonOut)
	} else {
		err = runListMode(store, *last, *steps, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SnapshotID  string  `json:"snapshot_id"`
	Coherence   float64 `json:"coherence"`
	Trust       float64 `json:"trust"`
	Integration float64 `json:"integration"`
	Reflexivity float64 `json:"reflexivity"`
	SelfNorm    float64 `json:"self_norm"`
	MemoryLen   int     `json:"memory_len"`
	CreatedAt   string  `json:"created_at"`
}

func runListMode(store *persist.Store, last int, includeSteps, jsonOut bool) error {
	snaps, err := store.ListSnapshots(last)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(os.Stderr, "no snapshots found")
		return nil
	}

	// Store returns newest first; reverse for chronological output.
	rows := make([]listRow, len(snaps))
	for i, snap := range snaps {
		rows[len(snaps)-1-i] = listRow{
			SnapshotID:  snap.SnapshotID,
			Coherence:   snap.LastCoherence,
			Trust:       snap.LastTrust,
			Integration: snap.Integration,
			Reflexivity: snap.Reflexivity,
			SelfNorm:    numeric.Norm(snap.SelfState),
			MemoryLen:   len(snap.Memory),
			CreatedAt:   snap.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		if err := printJSON(rows); err != nil {
			return err
		}
	} else {
		fmt.Printf("%-12s  %8s  %8s  %6s  %6s  %9s  %5s  %s\n",
			"Snapshot", "RIH", "Trust", "Integ", "Reflex", "Self Norm", "Mem", "Time")
		fmt.Printf("%-12s+-%8s+-%8s+-%6s+-%6s+-%9s+-%5s+-%s\n",
			"------------", "--------", "--------", "------", "------", "---------", "-----", "--------------------")
		for _, r := range rows {
			fmt.Printf("%-12s  %8.4f  %8.4f  %6.3f  %6.3f  %9.4f  %5d  %s\n",
				shortID(r.SnapshotID), r.Coherence, r.Trust, r.Integration, r.Reflexivity,
				r.SelfNorm, r.MemoryLen, r.CreatedAt)
		}
	}

	if includeSteps {
		return printRecentSteps(store, last, jsonOut)
	}
	return nil
}

func printRecentSteps(store *persist.Store, limit int, jsonOut bool) error {
	entries, err := logging.RecentSteps(store.DB(), limit)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(entries)
	}
	fmt.Printf("\nRecent steps (newest first):\n")
	for _, e := range entries {
		label := e.EventLabel
		if label == "" {
			label = "-"
		}
		fmt.Printf("  %-12s  %-10s  reward=%.3f  event=%s\n",
			shortID(e.StepID), e.Decision, e.Reward, label)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	SnapshotID  string  `json:"snapshot_id"`
	ParentID    string  `json:"parent_id,omitempty"`
	Version     int     `json:"version"`
	CreatedAt   string  `json:"created_at"`
	Coherence   float64 `json:"coherence"`
	Variance    float64 `json:"variance"`
	Trust       float64 `json:"trust"`
	Integration float64 `json:"integration"`
	Reflexivity float64 `json:"reflexivity"`
	SelfNorm    float64 `json:"self_norm"`
	MemoryLen   int     `json:"memory_len"`
	HasWeights  bool    `json:"has_weights"`
}

func runDetailMode(store *persist.Store, snapshotID string, jsonOut bool) error {
	snap, err := store.GetSnapshot(snapshotID)
	if err != nil {
		return err
	}

	out := detailOutput{
		SnapshotID:  snap.SnapshotID,
		ParentID:    snap.ParentID,
		Version:     snap.Version,
		CreatedAt:   snap.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Coherence:   snap.LastCoherence,
		Variance:    snap.LastVariance,
		Trust:       snap.LastTrust,
		Integration: snap.Integration,
		Reflexivity: snap.Reflexivity,
		SelfNorm:    numeric.Norm(snap.SelfState),
		MemoryLen:   len(snap.Memory),
		HasWeights:  len(snap.ModelWeights) > 0,
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Snapshot:    %s\n", out.SnapshotID)
	fmt.Printf("Parent:      %s\n", out.ParentID)
	fmt.Printf("Schema:      v%d\n", out.Version)
	fmt.Printf("Created:     %s\n", out.CreatedAt)
	fmt.Printf("Coherence:   %.4f\n", out.Coherence)
	fmt.Printf("Variance:    %.4f\n", out.Variance)
	fmt.Printf("Trust:       %.4f\n", out.Trust)
	fmt.Printf("Integration: %.3f\n", out.Integration)
	fmt.Printf("Reflexivity: %.3f\n", out.Reflexivity)
	fmt.Printf("Self Norm:   %.4f\n", out.SelfNorm)
	fmt.Printf("Memory:      %d entries\n", out.MemoryLen)
	fmt.Printf("Weights:     %v\n", out.HasWeights)

	if len(snap.Memory) > 0 {
		fmt.Printf("\nMemory buffer (oldest first):\n")
		for i, e := range snap.Memory {
			fmt.Printf("  [%2d]  %s  norm=%.4f\n",
				i, e.Timestamp.Format("15:04:05.000"), numeric.Norm(e.Embedding))
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
