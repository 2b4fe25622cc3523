// Package pricing estimates the provider cost of a benchmark result from
// its token usage and tool calls. The rate table is embedded so cost
// figures work regardless of working directory; an external table can be
// loaded to override it.
package pricing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ysmood/gson"
)

//go:embed pricing.json
var embeddedTable []byte

// ModelRates is the per-token rate card of one model, in USD per million
// tokens. Zero-valued fields fall back: cached input to the input rate,
// reasoning output to the output rate.
type ModelRates struct {
	InputPerMillion           float64  `json:"input_per_million"`
	CachedInputPerMillion     *float64 `json:"cached_input_per_million"`
	OutputPerMillion          float64  `json:"output_per_million"`
	ReasoningOutputPerMillion *float64 `json:"reasoning_output_per_million"`
}

// Table is a loaded pricing table.
type Table struct {
	Version  string                `json:"version"`
	Currency string                `json:"currency"`
	Models   map[string]ModelRates `json:"models"`
	Tools    struct {
		WebSearch struct {
			DefaultPerCallUSD    float64            `json:"default_per_call_usd"`
			PerCallByModelPrefix map[string]float64 `json:"per_call_by_model_prefix"`
		} `json:"web_search"`
	} `json:"tools"`
}

// Load returns the embedded pricing table.
func Load() (*Table, error) {
	return parse(embeddedTable)
}

// LoadFile reads a pricing table from disk, for rate overrides.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing table: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse pricing table: %w", err)
	}
	return &t, nil
}

// FindModelKey resolves a reported model name against the table,
// matching dated or suffixed variants (gpt-4.1-2025-04-14) to their base
// entry by longest prefix. Empty result means the model is unpriced.
func (t *Table) FindModelKey(model string) string {
	if _, ok := t.Models[model]; ok {
		return model
	}
	keys := make([]string, 0, len(t.Models))
	for k := range t.Models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, prefix := range keys {
		if strings.HasPrefix(model, prefix) {
			return prefix
		}
	}
	return ""
}

func (t *Table) webSearchRate(model string) float64 {
	for prefix, rate := range t.Tools.WebSearch.PerCallByModelPrefix {
		if strings.HasPrefix(model, prefix) {
			return rate
		}
	}
	return t.Tools.WebSearch.DefaultPerCallUSD
}

// Breakdown is the itemized cost estimate of one result.
type Breakdown struct {
	TotalUSD                float64 `json:"total_usd"`
	InputCostUSD            float64 `json:"input_cost_usd"`
	CachedInputCostUSD      float64 `json:"cached_input_cost_usd"`
	OutputCostUSD           float64 `json:"output_cost_usd"`
	ReasoningOutputCostUSD  float64 `json:"reasoning_output_cost_usd"`
	WebSearchCostUSD        float64 `json:"web_search_cost_usd"`
	WebSearchCalls          int     `json:"web_search_calls"`
	ModelKey                string  `json:"model_key,omitempty"`
	MissingModelPricing     bool    `json:"missing_model_pricing"`
}

// Calculate prices a result's usage map and tool calls for a model.
// Cached tokens are clamped into the input total and reasoning tokens
// into the output total before pricing, so double-counting is impossible.
// An unpriced model yields a zero-cost breakdown with the flag set —
// web-search calls are still counted for display.
func (t *Table) Calculate(model string, usage map[string]any, toolCalls []any) Breakdown {
	inputTokens := usageInt(usage, "input_tokens")
	outputTokens := usageInt(usage, "output_tokens")
	cachedTokens := usageInt(usage, "cached_tokens")
	reasoningTokens := usageInt(usage, "reasoning_tokens")

	webCalls := WebSearchCalls(toolCalls)

	key := t.FindModelKey(model)
	if key == "" {
		return Breakdown{WebSearchCalls: webCalls, MissingModelPricing: true}
	}
	rates := t.Models[key]

	inputRate := rates.InputPerMillion
	cachedRate := inputRate
	if rates.CachedInputPerMillion != nil {
		cachedRate = *rates.CachedInputPerMillion
	}
	outputRate := rates.OutputPerMillion
	reasoningRate := outputRate
	if rates.ReasoningOutputPerMillion != nil {
		reasoningRate = *rates.ReasoningOutputPerMillion
	}

	cached := clamp(cachedTokens, 0, inputTokens)
	nonCached := inputTokens - cached
	reasoning := clamp(reasoningTokens, 0, outputTokens)
	nonReasoning := outputTokens - reasoning

	inputCost := float64(nonCached) / 1e6 * inputRate
	cachedCost := float64(cached) / 1e6 * cachedRate
	outputCost := float64(nonReasoning) / 1e6 * outputRate
	reasoningCost := float64(reasoning) / 1e6 * reasoningRate
	webCost := float64(webCalls) * t.webSearchRate(model)

	return Breakdown{
		TotalUSD:               round6(inputCost + cachedCost + outputCost + reasoningCost + webCost),
		InputCostUSD:           round6(inputCost),
		CachedInputCostUSD:     round6(cachedCost),
		OutputCostUSD:          round6(outputCost),
		ReasoningOutputCostUSD: round6(reasoningCost),
		WebSearchCostUSD:       round6(webCost),
		WebSearchCalls:         webCalls,
		ModelKey:               key,
	}
}

// WebSearchCalls counts web-search invocations across every wire shape
// recorded runs contain: the current executor format, the legacy
// raw_items envelope, and a name-based fallback for imported data.
func WebSearchCalls(toolCalls []any) int {
	count := 0
	for _, call := range toolCalls {
		j := gson.New(call)
		if s, _ := j.Get("type").Val().(string); s == "web_search" {
			count++
			continue
		}
		if s, _ := j.Get("raw_items").Get("type").Val().(string); s == "web_search_call" {
			count++
			continue
		}
		name, _ := j.Get("name").Val().(string)
		name = strings.ToLower(name)
		if strings.Contains(name, "web_search") || strings.Contains(name, "web-search") {
			count++
		}
	}
	return count
}

func usageInt(usage map[string]any, key string) int {
	switch v := usage[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
