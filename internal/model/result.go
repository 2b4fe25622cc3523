// Package model holds the benchmark-run data shapes the inspector consumes.
package model

// Result is one benchmark query result as exported by the runner
// (<output_dir>/json/<ordinal>.json). Tool calls, reasoning, and usage
// stay loosely typed: the wire shapes vary across executor versions and
// normalization happens downstream in internal/step.
type Result struct {
	ID             string         `json:"id"`
	Query          string         `json:"query"`
	ExpectedAnswer string         `json:"expected_answer"`
	AgentResponse  string         `json:"agent_response"`
	ToolCalls      []any          `json:"tool_calls"`
	Reasoning      []any          `json:"reasoning"`
	Usage          map[string]any `json:"usage"`
	ExecutionTime  float64        `json:"execution_time_seconds"`
	Error          string         `json:"error,omitempty"`

	// Ordinal is parsed from the file name and drives result ordering.
	// Not part of the wire format.
	Ordinal int `json:"-"`
}

// UsageTokens reads an integer token counter from the usage map,
// tolerating the float64 values JSON decoding produces and missing keys.
func (r Result) UsageTokens(key string) int {
	if r.Usage == nil {
		return 0
	}
	switch v := r.Usage[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
