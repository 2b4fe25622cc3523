package tenken_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/tenken"
	"github.com/ashita-ai/tenken/internal/testutil"
)

func TestNew_RequiresARun(t *testing.T) {
	_, err := tenken.New(tenken.WithLogger(testutil.TestLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run to inspect")
}

func TestNew_WithRecords(t *testing.T) {
	insp, err := tenken.New(
		tenken.WithLogger(testutil.TestLogger()),
		tenken.WithRecords([]any{
			map[string]any{"name": "lookup", "arguments": `{"q":"x"}`},
			map[string]any{"type": "web_search", "action_type": "open_page", "url": "https://example.com"},
		}),
	)
	require.NoError(t, err)
	require.Equal(t, 1, insp.Results())

	steps := insp.Steps(0)
	require.Len(t, steps, 2)
	assert.Equal(t, tenken.StepKindTool, steps[0].Kind)
	assert.Equal(t, "lookup", steps[0].Label)
	assert.Equal(t, "Open Page", steps[1].Label)
	assert.Equal(t, "https://example.com", steps[1].Detail)

	assert.Nil(t, insp.Steps(3), "out-of-range result index")
}

func TestNew_WithRunDir(t *testing.T) {
	dir := testutil.WriteRunDir(t, map[int]map[string]any{
		1: {
			"id":    "q1",
			"query": "capital of France",
			"tool_calls": []any{
				map[string]any{"name": "lookup"},
			},
			"usage":                  map[string]any{"input_tokens": 1000, "output_tokens": 200},
			"execution_time_seconds": 2.0,
		},
		2: {
			"id":                     "q2",
			"query":                  "tallest mountain",
			"usage":                  map[string]any{"input_tokens": 500, "output_tokens": 100},
			"execution_time_seconds": 1.0,
			"error":                  "timeout",
		},
	})

	insp, err := tenken.New(
		tenken.WithLogger(testutil.TestLogger()),
		tenken.WithRunDir(dir),
		tenken.WithModel("gpt-4o"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, insp.Results())

	run := insp.RunSummary()
	assert.Equal(t, 2, run.Results)
	assert.Equal(t, 1, run.Errors)
	assert.Equal(t, 1800, run.TotalTokens)
	assert.Greater(t, run.TotalCostUSD, 0.0)

	one := insp.Summary(0)
	assert.Equal(t, 1200, one.TotalTokens)
	assert.Equal(t, 1, one.ToolCalls)
	assert.True(t, one.CostEstimated)
}

func TestSession_Independent(t *testing.T) {
	insp, err := tenken.New(
		tenken.WithLogger(testutil.TestLogger()),
		tenken.WithRecords([]any{
			map[string]any{"name": "lookup", "arguments": `{"q":"alpha"}`},
		}),
	)
	require.NoError(t, err)

	a := insp.Session(0)
	b := insp.Session(0)
	a.SelectStep(0)
	a.Search("alpha")

	assert.Equal(t, 1, a.SearchState().MatchCount)
	assert.Equal(t, 0, b.SearchState().MatchCount, "sessions do not share state")
}
