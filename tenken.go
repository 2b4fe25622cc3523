// Package tenken is the public API for embedding the Tenken run inspector.
//
// Consumers import this package to load a benchmark run export and drive
// inspection without forking the CLI:
//
//	insp, err := tenken.New(
//	    tenken.WithRunDir("results/2025-06-12"),
//	    tenken.WithModel("gpt-4o"),
//	    tenken.WithLogger(logger),
//	)
//	if err != nil { ... }
//	session := insp.Session(0)
//
// The import graph enforces a strict no-cycle rule: tenken (root) imports
// internal/*, but internal/* never imports tenken (root). Public types
// (Step, RunSummary, etc.) are standalone structs with no internal
// imports; conversion helpers (toPublicStep, toPublicRunSummary) live
// here because this is the only file that sees both sides of the
// boundary.
package tenken

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/ashita-ai/tenken/internal/config"
	"github.com/ashita-ai/tenken/internal/inspect"
	"github.com/ashita-ai/tenken/internal/load"
	"github.com/ashita-ai/tenken/internal/mcp"
	"github.com/ashita-ai/tenken/internal/model"
	"github.com/ashita-ai/tenken/internal/pricing"
	"github.com/ashita-ai/tenken/internal/step"
	"github.com/ashita-ai/tenken/internal/summary"
	"github.com/ashita-ai/tenken/internal/tui"
)

// Inspector holds a loaded run and its pricing context. Construct with
// New(). Inspector has no public fields — use New() options to
// configure it.
type Inspector struct {
	cfg       config.Config
	results   []model.Result
	table     *pricing.Table
	modelName string
	logger    *slog.Logger
	version   string
}

// New loads a benchmark run and returns a ready Inspector. It reads the
// run directory (or the in-memory records) eagerly; no goroutines are
// started.
func New(opts ...Option) (*Inspector, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	// Load configuration (env vars), then apply option overrides.
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.runDir != "" {
		cfg.RunDir = o.runDir
	}
	if o.pricingFile != "" {
		cfg.PricingFile = o.pricingFile
	}
	if o.modelName != "" {
		cfg.Model = o.modelName
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	table, err := loadTable(cfg.PricingFile)
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}

	var results []model.Result
	switch {
	case o.records != nil:
		results = []model.Result{{ToolCalls: o.records, Ordinal: 0}}
	case cfg.RunDir != "":
		results, err = load.RunDir(context.Background(), cfg.RunDir, cfg.LoadConcurrency)
		if err != nil {
			return nil, fmt.Errorf("load run: %w", err)
		}
	default:
		return nil, fmt.Errorf("no run to inspect: set TENKEN_RUN_DIR or pass WithRunDir/WithRecords")
	}

	logger.Info("tenken starting", "version", version, "results", len(results))

	return &Inspector{
		cfg:       cfg,
		results:   results,
		table:     table,
		modelName: cfg.Model,
		logger:    logger,
		version:   version,
	}, nil
}

func loadTable(path string) (*pricing.Table, error) {
	if path != "" {
		return pricing.LoadFile(path)
	}
	return pricing.Load()
}

// Results reports how many results the run holds.
func (i *Inspector) Results() int { return len(i.results) }

// Steps returns the normalized step sequence of one result. Out-of-range
// indices return nil.
func (i *Inspector) Steps(result int) []Step {
	if result < 0 || result >= len(i.results) {
		return nil
	}
	steps := step.Normalize(i.results[result].ToolCalls)
	out := make([]Step, 0, len(steps))
	for _, st := range steps {
		out = append(out, toPublicStep(st))
	}
	return out
}

// Session opens an inspection session over one result's records. The
// session owns selection, panel, and search state; multiple sessions
// over the same result are independent. Out-of-range indices return an
// empty session.
func (i *Inspector) Session(result int) *inspect.Session {
	s := inspect.NewSession(i.logger)
	if result >= 0 && result < len(i.results) {
		s.SetRecords(i.results[result].ToolCalls)
	}
	return s
}

// Summary aggregates one result. Out-of-range indices return a zero
// summary.
func (i *Inspector) Summary(result int) ResultSummary {
	if result < 0 || result >= len(i.results) {
		return ResultSummary{}
	}
	return toPublicResultSummary(summary.ForResult(i.results[result], i.table, i.modelName))
}

// RunSummary aggregates the whole run.
func (i *Inspector) RunSummary() RunSummary {
	return toPublicRunSummary(summary.ForRun(i.results, i.table, i.modelName))
}

// RunTUI starts the interactive terminal surface and blocks until the
// user quits.
func (i *Inspector) RunTUI() error {
	return tui.Run(i.results, i.table, i.modelName, i.logger)
}

// ServeMCP serves the inspection tools over stdio and blocks until the
// client disconnects.
func (i *Inspector) ServeMCP() error {
	return mcp.New(i.results, i.table, i.modelName, i.logger).ServeStdio()
}

func toPublicStep(st step.Step) Step {
	return Step{
		Index:  st.Index,
		Kind:   StepKind(st.Kind),
		Label:  st.Label,
		Detail: st.Detail,
	}
}

func toPublicResultSummary(s summary.ResultSummary) ResultSummary {
	return ResultSummary{
		TotalTokens:      s.TotalTokens,
		InputTokens:      s.InputTokens,
		OutputTokens:     s.OutputTokens,
		ToolCalls:        s.ToolCalls,
		ToolUsage:        s.ToolUsage,
		WebSearchCalls:   s.Cost.WebSearchCalls,
		ExecutionSeconds: s.ExecutionSeconds,
		CostUSD:          s.Cost.TotalUSD,
		CostEstimated:    !s.Cost.MissingModelPricing,
	}
}

func toPublicRunSummary(s summary.RunSummary) RunSummary {
	return RunSummary{
		Results:          s.Results,
		Errors:           s.Errors,
		TotalTokens:      s.TotalTokens,
		ToolCalls:        s.ToolCalls,
		ToolUsage:        s.ToolUsage,
		WebSearchCalls:   s.WebSearchCalls,
		TotalCostUSD:     s.TotalCostUSD,
		ExecutionSeconds: s.ExecutionSeconds,
	}
}
