// Package summary aggregates token usage, tool activity, and cost for a
// result or a whole run. The per-result line feeds the summary leaf of
// the inspection panel; the run aggregate backs the summary command.
package summary

import (
	"fmt"

	"github.com/ashita-ai/tenken/internal/model"
	"github.com/ashita-ai/tenken/internal/pricing"
	"github.com/ashita-ai/tenken/internal/step"
)

// ResultSummary is the per-result rollup.
type ResultSummary struct {
	TotalTokens      int               `json:"total_tokens"`
	InputTokens      int               `json:"input_tokens"`
	OutputTokens     int               `json:"output_tokens"`
	CachedTokens     int               `json:"cached_tokens"`
	ReasoningTokens  int               `json:"reasoning_tokens"`
	ToolCalls        int               `json:"tool_calls"`
	ToolUsage        map[string]int    `json:"tool_usage"`
	ExecutionSeconds float64           `json:"execution_time_seconds"`
	Cost             pricing.Breakdown `json:"cost"`
}

// ForResult summarizes one result. The tool-usage counter is keyed by
// normalized step label, so legacy and current web-search records
// aggregate under the same key. A nil pricing table skips cost.
func ForResult(r model.Result, tbl *pricing.Table, modelName string) ResultSummary {
	// Not every executor version writes total_tokens; derive it when absent.
	total := r.UsageTokens("total_tokens")
	if total == 0 {
		total = r.UsageTokens("input_tokens") + r.UsageTokens("output_tokens")
	}

	s := ResultSummary{
		TotalTokens:      total,
		InputTokens:      r.UsageTokens("input_tokens"),
		OutputTokens:     r.UsageTokens("output_tokens"),
		CachedTokens:     r.UsageTokens("cached_tokens"),
		ReasoningTokens:  r.UsageTokens("reasoning_tokens"),
		ToolCalls:        len(r.ToolCalls),
		ToolUsage:        map[string]int{},
		ExecutionSeconds: r.ExecutionTime,
	}
	for _, st := range step.Normalize(r.ToolCalls) {
		s.ToolUsage[st.Label]++
	}
	if tbl != nil {
		s.Cost = tbl.Calculate(modelName, r.Usage, r.ToolCalls)
	}
	return s
}

// Line is the one-line form shown in the panel header.
func (s ResultSummary) Line() string {
	return fmt.Sprintf("Total tokens: %d, tool calls: %d", s.TotalTokens, s.ToolCalls)
}

// RunSummary is the whole-run aggregate.
type RunSummary struct {
	Results          int            `json:"results"`
	Errors           int            `json:"errors"`
	TotalTokens      int            `json:"total_tokens"`
	ToolCalls        int            `json:"tool_calls"`
	ToolUsage        map[string]int `json:"tool_usage"`
	WebSearchCalls   int            `json:"web_search_calls"`
	TotalCostUSD     float64        `json:"total_cost_usd"`
	ExecutionSeconds float64        `json:"execution_time_seconds"`
}

// ForRun aggregates every result of a run.
func ForRun(results []model.Result, tbl *pricing.Table, modelName string) RunSummary {
	run := RunSummary{Results: len(results), ToolUsage: map[string]int{}}
	for _, r := range results {
		if r.Error != "" {
			run.Errors++
		}
		rs := ForResult(r, tbl, modelName)
		run.TotalTokens += rs.TotalTokens
		run.ToolCalls += rs.ToolCalls
		run.WebSearchCalls += rs.Cost.WebSearchCalls
		run.TotalCostUSD += rs.Cost.TotalUSD
		run.ExecutionSeconds += rs.ExecutionSeconds
		for label, n := range rs.ToolUsage {
			run.ToolUsage[label] += n
		}
	}
	return run
}
