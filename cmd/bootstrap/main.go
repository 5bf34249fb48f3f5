package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/numeric"
	"github.com/syntrometry/syntrocore/internal/persist"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("SYNTRO_DB", "syntrocore.db"), "path to syntrocore.db (created if missing)")
	snapshotPath := flag.String("snapshot", "", "exported snapshot JSON to import; omit for fresh defaults")
	flag.Parse()

	config := engine.DefaultConfig()
	pcfg := persist.Config{
		EmbeddingDim:   config.EmbeddingDim,
		MemoryCapacity: config.MemoryCapacity,
	}

	fmt.Println("=== Store Bootstrap Tool ===")
	fmt.Printf("  DB: %s\n", *dbPath)

	store, err := persist.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	if *snapshotPath == "" {
		snap, err := store.CreateInitial(pcfg)
		if err != nil {
			log.Fatalf("create initial snapshot: %v", err)
		}
		fmt.Printf("  Created fresh snapshot %s\n", snap.SnapshotID)
		return
	}

	data, err := os.ReadFile(*snapshotPath)
	if err != nil {
		log.Fatalf("read snapshot file: %v", err)
	}

	snap, anomalies, err := persist.DecodeSnapshot(data, pcfg)
	if err != nil {
		log.Fatalf("decode snapshot: %v", err)
	}
	for _, a := range anomalies {
		log.Printf("[BOOTSTRAP] recovered field: %s in %s: %s", a.Kind, a.Component, a.Detail)
	}

	// Imported snapshots get a fresh identity; the source lineage stays behind.
	snap.SnapshotID = uuid.New().String()
	snap.ParentID = ""
	snap.CreatedAt = time.Now().UTC()

	if err := store.Adopt(snap); err != nil {
		log.Fatalf("adopt snapshot: %v", err)
	}

	fmt.Printf("\n=== Bootstrap Complete ===\n")
	fmt.Printf("  Snapshot:     %s\n", snap.SnapshotID)
	fmt.Printf("  Integration:  %.3f | Reflexivity: %.3f\n", snap.Integration, snap.Reflexivity)
	fmt.Printf("  Self norm:    %.4f\n", numeric.Norm(snap.SelfState))
	fmt.Printf("  Memory:       %d entries\n", len(snap.Memory))
	fmt.Printf("  Recovered:    %d fields\n", len(anomalies))
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
