package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/tenken/internal/pricing"
)

func table(t *testing.T) *pricing.Table {
	t.Helper()
	tbl, err := pricing.Load()
	require.NoError(t, err)
	return tbl
}

func TestFindModelKey(t *testing.T) {
	tbl := table(t)

	assert.Equal(t, "gpt-4o", tbl.FindModelKey("gpt-4o"))
	// Dated variants resolve by longest prefix: gpt-4o-mini-2024-07-18
	// must hit gpt-4o-mini, not gpt-4o.
	assert.Equal(t, "gpt-4o-mini", tbl.FindModelKey("gpt-4o-mini-2024-07-18"))
	assert.Equal(t, "gpt-4.1", tbl.FindModelKey("gpt-4.1-2025-04-14"))
	assert.Equal(t, "", tbl.FindModelKey("claude-3"))
}

func TestCalculate_BasicTokenPricing(t *testing.T) {
	tbl := table(t)
	usage := map[string]any{
		"input_tokens":  float64(1_000_000),
		"output_tokens": float64(500_000),
	}

	b := tbl.Calculate("gpt-4o", usage, nil)
	assert.False(t, b.MissingModelPricing)
	assert.Equal(t, "gpt-4o", b.ModelKey)
	assert.InDelta(t, 2.5, b.InputCostUSD, 1e-9)
	assert.InDelta(t, 5.0, b.OutputCostUSD, 1e-9)
	assert.InDelta(t, 7.5, b.TotalUSD, 1e-9)
}

func TestCalculate_CachedAndReasoningClamping(t *testing.T) {
	tbl := table(t)
	// Cached tokens exceed input tokens and reasoning exceeds output:
	// both must clamp so nothing is double-counted.
	usage := map[string]any{
		"input_tokens":     float64(100),
		"cached_tokens":    float64(500),
		"output_tokens":    float64(200),
		"reasoning_tokens": float64(900),
	}

	b := tbl.Calculate("gpt-4o", usage, nil)
	assert.Zero(t, b.InputCostUSD, "all input tokens priced at the cached rate")
	assert.InDelta(t, 100.0/1e6*1.25, b.CachedInputCostUSD, 1e-9)
	assert.Zero(t, b.OutputCostUSD, "all output tokens priced at the reasoning rate")
	// gpt-4o has no reasoning rate; falls back to the output rate.
	assert.InDelta(t, 200.0/1e6*10.0, b.ReasoningOutputCostUSD, 1e-9)
}

func TestCalculate_UnpricedModel(t *testing.T) {
	tbl := table(t)
	b := tbl.Calculate("claude-3", map[string]any{"input_tokens": float64(1000)}, []any{
		map[string]any{"type": "web_search"},
	})
	assert.True(t, b.MissingModelPricing)
	assert.Zero(t, b.TotalUSD)
	assert.Equal(t, 1, b.WebSearchCalls, "web-search calls still counted for display")
}

func TestCalculate_WebSearchRateByPrefix(t *testing.T) {
	tbl := table(t)
	calls := []any{
		map[string]any{"type": "web_search"},
		map[string]any{"type": "web_search"},
	}

	b := tbl.Calculate("gpt-4o", nil, calls)
	assert.Equal(t, 2, b.WebSearchCalls)
	assert.InDelta(t, 0.05, b.WebSearchCostUSD, 1e-9, "gpt-4o prefix rate, not the default")

	b = tbl.Calculate("o3", nil, calls)
	assert.InDelta(t, 0.02, b.WebSearchCostUSD, 1e-9, "default per-call rate")
}

func TestWebSearchCalls_AllWireShapes(t *testing.T) {
	calls := []any{
		map[string]any{"type": "web_search", "action_type": "search"},
		map[string]any{"raw_items": map[string]any{"type": "web_search_call"}},
		map[string]any{"name": "hosted_web_search"},
		map[string]any{"name": "Web-Search-Tool"},
		map[string]any{"name": "file_lookup"},
		"garbage",
	}
	assert.Equal(t, 4, pricing.WebSearchCalls(calls))
}

func TestRounding(t *testing.T) {
	tbl := table(t)
	usage := map[string]any{"input_tokens": float64(333)}
	b := tbl.Calculate("gpt-4o", usage, nil)
	// Costs are rounded to 6 decimals for display.
	assert.InDelta(t, 0.000833, b.InputCostUSD, 1e-6)
	assert.InDelta(t, b.TotalUSD, b.InputCostUSD, 1e-9)
}
