// Package load reads benchmark run exports from disk: the per-query JSON
// files the runner writes under <output_dir>/json/. This is the
// inspector's only data-fetching layer — read-only, nothing is written.
package load

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ashita-ai/tenken/internal/model"
)

// defaultConcurrency bounds parallel file reads when the caller passes
// no limit.
const defaultConcurrency = 8

// Result reads a single result file.
func Result(path string) (model.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Result{}, fmt.Errorf("read result file: %w", err)
	}
	var r model.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Result{}, fmt.Errorf("parse result file %s: %w", filepath.Base(path), err)
	}
	r.Ordinal = ordinalOf(path)
	return r, nil
}

// RunDir reads every result file of a run directory, sorted by ordinal
// regardless of directory order. It accepts either the run's output
// directory (containing a json/ subdirectory) or the json/ directory
// itself. Reads run concurrently, bounded (non-positive means the
// default). A malformed file degrades to an error-state result — one
// bad export never aborts the run.
func RunDir(ctx context.Context, dir string, concurrency int) ([]model.Result, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	jsonDir := dir
	if info, err := os.Stat(filepath.Join(dir, "json")); err == nil && info.IsDir() {
		jsonDir = filepath.Join(dir, "json")
	}

	entries, err := os.ReadDir(jsonDir)
	if err != nil {
		return nil, fmt.Errorf("read run directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(jsonDir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no result files in %s", jsonDir)
	}

	results := make([]model.Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Result(path)
			if err != nil {
				// Degrade, don't abort: the inspector shows the error
				// in place of the result.
				r = model.Result{
					Ordinal: ordinalOf(path),
					Error:   err.Error(),
				}
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Ordinal < results[j].Ordinal })
	return results, nil
}

// ordinalOf parses the numeric file stem ("3.json" → 3). Non-numeric
// stems sort last in file-name order via a large sentinel.
func ordinalOf(path string) int {
	stem := strings.TrimSuffix(filepath.Base(path), ".json")
	n := 0
	for _, r := range stem {
		if r < '0' || r > '9' {
			return 1 << 30
		}
		n = n*10 + int(r-'0')
	}
	if stem == "" {
		return 1 << 30
	}
	return n
}
