// Package cli implements the topic-gate CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/topic-gate/internal/gate"
	"github.com/rcliao/topic-gate/internal/similarity"
	"github.com/rcliao/topic-gate/internal/store"
)

var (
	dbPath        string
	backendFlag   string
	thresholdFlag float64
	metricFlag    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "topic-gate",
	Short: "Topic coverage gate for content pipelines",
	Long:  "Checks whether a topic duplicates previously produced content. Deterministic token-overlap scoring, SQLite or flat-JSON backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Store path (default: $TOPIC_GATE_DB or ~/.topic-gate/topics.db)")
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: sqlite or json (default: $TOPIC_GATE_BACKEND or sqlite)")
	RootCmd.PersistentFlags().Float64Var(&thresholdFlag, "threshold", 0, "Coverage threshold in [0,1] (default: $TOPIC_GATE_THRESHOLD or 0.35)")
	RootCmd.PersistentFlags().StringVar(&metricFlag, "metric", "jaccard", "Similarity metric: jaccard or overlap")
}

func getBackend() string {
	if backendFlag != "" {
		return backendFlag
	}
	if env := os.Getenv("TOPIC_GATE_BACKEND"); env != "" {
		return env
	}
	return "sqlite"
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("TOPIC_GATE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	if getBackend() == "json" {
		return filepath.Join(home, ".topic-gate", "knowledge")
	}
	return filepath.Join(home, ".topic-gate", "topics.db")
}

func getThreshold() float64 {
	if thresholdFlag > 0 {
		return thresholdFlag
	}
	if env := os.Getenv("TOPIC_GATE_THRESHOLD"); env != "" {
		if v, err := strconv.ParseFloat(env, 64); err == nil && v > 0 {
			return v
		}
	}
	return gate.DefaultThreshold
}

func openStore() (store.Store, error) {
	if getBackend() == "json" {
		return store.NewJSONStore(getDBPath())
	}
	return store.NewSQLiteStore(getDBPath())
}

func openGate() (*gate.Gate, store.Store, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	g := gate.New(s, gate.Config{
		Threshold: getThreshold(),
		Metric:    similarity.ByName(metricFlag),
	})
	return g, s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
