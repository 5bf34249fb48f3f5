package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syntrometry/syntrocore/internal/belief"
	"github.com/syntrometry/syntrocore/internal/diag"
	"github.com/syntrometry/syntrocore/internal/engine"
	"github.com/syntrometry/syntrocore/internal/logging"
	"github.com/syntrometry/syntrocore/internal/persist"
)

// #region main
func main() {
	dbPath := envOr("SYNTRO_DB", "syntrocore.db")
	embedderKind := envOr("SYNTRO_EMBEDDER", "net")

	config := engine.DefaultConfig()
	if v := os.Getenv("SYNTRO_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Fatalf("invalid SYNTRO_SEED %q: %v", v, err)
		}
		config.Seed = seed
	}

	// Initialize snapshot store
	store, err := persist.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	pcfg := persist.Config{
		EmbeddingDim:   config.EmbeddingDim,
		MemoryCapacity: config.MemoryCapacity,
	}

	// Ensure an active snapshot exists
	current, err := store.GetCurrent()
	if err != nil {
		log.Println("No active snapshot found, creating initial state...")
		current, err = store.CreateInitial(pcfg)
		if err != nil {
			log.Fatalf("failed to create initial snapshot: %v", err)
		}
	}

	// Anomalies go to the process log and the anomaly_log table
	recorder, err := diag.NewSQLiteRecorder(store.DB())
	if err != nil {
		log.Fatalf("failed to init anomaly log: %v", err)
	}

	embedder, err := buildEmbedder(embedderKind, config)
	if err != nil {
		log.Fatalf("failed to build %s embedder: %v", embedderKind, err)
	}

	eng := engine.New(config, embedder, recorder)
	sanitized, anomalies := persist.Sanitize(current, pcfg)
	for _, a := range anomalies {
		recorder.Record(a)
	}
	eng.Restore(sanitized)

	validator := diag.NewValidator(diag.DefaultValidateConfig())

	fmt.Println("Syntrometric cognitive core ready.")
	fmt.Printf("  DB: %s | Embedder: %s | Snapshot: %s\n", dbPath, embedderKind, shortID(current.SnapshotID))
	fmt.Println("Enter state values with an optional event label (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	activeID := current.SnapshotID
	turnNum := 0

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		raw, label := parseLine(line)
		if len(raw) == 0 {
			fmt.Println("need at least one numeric state value, e.g.: 0.1 0.4 -0.2 observe")
			continue
		}

		turnNum++
		turnID := fmt.Sprintf("turn-%d", turnNum)

		res := eng.Step(engine.StepInput{
			RawState:   raw,
			EventLabel: label,
		})

		decision := "committed"
		reason := ""
		if res.Degraded {
			decision = "degraded"
			reason = "cached result replayed"
		} else {
			check := validator.Run(diag.StepValues{
				Coherence:     res.Coherence,
				Trust:         res.Trust,
				Integration:   res.Integration,
				Reflexivity:   res.Reflexivity,
				EmbeddingNorm: res.EmbeddingNorm,
				SelfNorm:      res.SelfNorm,
			})
			reason = check.Reason
			if !check.Passed {
				log.Printf("[AGENT] validation warning: %s", check.Reason)
			}

			// Commit new snapshot version
			snap := eng.Snapshot()
			snap.SnapshotID = uuid.New().String()
			snap.ParentID = activeID
			snap.CreatedAt = time.Now().UTC()
			if err := store.Commit(snap); err != nil {
				log.Printf("commit error: %v", err)
			} else {
				activeID = snap.SnapshotID
			}
		}

		// Log step provenance
		inputsJSON, _ := json.Marshal(logging.InputsRecord{RawState: raw})
		metricsJSON, _ := json.Marshal(logging.MetricsRecord{
			Coherence:      res.Coherence,
			Trust:          res.Trust,
			Variance:       res.Variance,
			Integration:    res.Integration,
			Reflexivity:    res.Reflexivity,
			EmbeddingNorm:  res.EmbeddingNorm,
			SelfNorm:       res.SelfNorm,
			CascadeLengths: res.CascadeLengths,
			RulesFired:     res.RulesFired,
			Degraded:       res.Degraded,
		})
		err = logging.LogStep(store.DB(), logging.StepEntry{
			SnapshotID:  activeID,
			StepID:      res.StepID,
			EventLabel:  res.EventLabel,
			Reward:      res.Reward,
			InputsJSON:  string(inputsJSON),
			MetricsJSON: string(metricsJSON),
			Decision:    decision,
			Reason:      reason,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			log.Printf("logging error: %v", err)
		}

		suffix := ""
		if res.Degraded {
			suffix = " (degraded)"
		}
		fmt.Printf("[%s] rih=%.4f trust=%.4f integration=%.3f reflexivity=%.3f%s\n",
			turnID, res.Coherence, res.Trust, res.Integration, res.Reflexivity, suffix)
	}
}
// #endregion main

// #region helpers
func buildEmbedder(kind string, config engine.Config) (belief.Embedder, error) {
	switch kind {
	case "hash":
		return belief.NewHashEmbedder(config.EmbeddingDim, config.StateDim), nil
	case "net":
		inSize := config.StateDim + config.FeatureDim + config.EmbeddingDim
		return belief.NewNetEmbedder(inSize, config.EmbeddingDim, config.StateDim)
	default:
		return nil, fmt.Errorf("unknown embedder %q (want hash or net)", kind)
	}
}

// parseLine splits a REPL line into numeric state values and a label built
// from the remaining tokens.
func parseLine(line string) ([]float64, string) {
	tokens := strings.Fields(strings.ReplaceAll(line, ",", " "))
	var raw []float64
	var words []string
	for _, tok := range tokens {
		if x, err := strconv.ParseFloat(tok, 64); err == nil {
			raw = append(raw, x)
			continue
		}
		words = append(words, tok)
	}
	return raw, strings.Join(words, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
