package tenken

// StepKind classifies a normalized agent step.
type StepKind string

const (
	StepKindTool      StepKind = "tool"
	StepKindWebSearch StepKind = "web_search"
)

// Step is the public representation of one normalized agent step.
// It is a curated view of internal/step.Step for embedding consumers.
// No internal package imports — safe to use from outside the module.
type Step struct {
	Index  int
	Kind   StepKind
	Label  string
	Detail string
}

// SearchState is the live position of an in-panel search.
type SearchState struct {
	Query        string
	MatchCount   int
	CurrentMatch int // -1 when no match is selected
}

// ResultSummary aggregates one result's usage, tool activity, and
// estimated cost.
type ResultSummary struct {
	TotalTokens      int
	InputTokens      int
	OutputTokens     int
	ToolCalls        int
	ToolUsage        map[string]int
	WebSearchCalls   int
	ExecutionSeconds float64
	CostUSD          float64
	CostEstimated    bool // false when the model was not in the pricing table
}

// RunSummary aggregates a whole run.
type RunSummary struct {
	Results          int
	Errors           int
	TotalTokens      int
	ToolCalls        int
	ToolUsage        map[string]int
	WebSearchCalls   int
	TotalCostUSD     float64
	ExecutionSeconds float64
}
