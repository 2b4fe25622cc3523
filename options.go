package tenken

import (
	"log/slog"
)

// Option configures an Inspector.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported — callers use the With* functions.
type resolvedOptions struct {
	logger      *slog.Logger
	runDir      string
	pricingFile string
	modelName   string
	version     string
	records     []any
}

// WithLogger sets the structured logger for the Inspector.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithRunDir overrides the run export directory from config
// (TENKEN_RUN_DIR env var). The directory may be the export root or its
// json/ subdirectory.
func WithRunDir(dir string) Option {
	return func(o *resolvedOptions) { o.runDir = dir }
}

// WithPricingFile overrides the embedded pricing table with an external
// JSON file (TENKEN_PRICING_FILE env var).
func WithPricingFile(path string) Option {
	return func(o *resolvedOptions) { o.pricingFile = path }
}

// WithModel sets the model name used for cost attribution
// (TENKEN_MODEL env var). Prefix matching applies, so a dated snapshot
// name resolves to its base model's rates.
func WithModel(name string) Option {
	return func(o *resolvedOptions) { o.modelName = name }
}

// WithVersion sets the version string reported in logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithRecords builds the Inspector over an in-memory record list
// instead of a run directory. The records become a single synthetic
// result; WithRunDir is ignored when set.
func WithRecords(records []any) Option {
	return func(o *resolvedOptions) { o.records = records }
}
