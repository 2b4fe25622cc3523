// Package testutil provides shared test infrastructure: a quiet logger
// and helpers for writing exported run directories to disk.
package testutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// TestLogger returns a logger configured for test output (warns only).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// WriteRunDir lays out a benchmark run export under a temp directory:
// <dir>/json/<ordinal>.json, one file per result, matching the runner's
// on-disk format. Returns the run directory root.
func WriteRunDir(t *testing.T, results map[int]map[string]any) string {
	t.Helper()

	dir := t.TempDir()
	jsonDir := filepath.Join(dir, "json")
	if err := os.MkdirAll(jsonDir, 0o755); err != nil {
		t.Fatalf("testutil: create json dir: %v", err)
	}

	for ordinal, result := range results {
		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("testutil: marshal result %d: %v", ordinal, err)
		}
		path := filepath.Join(jsonDir, fmt.Sprintf("%d.json", ordinal))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("testutil: write result %d: %v", ordinal, err)
		}
	}

	return dir
}
