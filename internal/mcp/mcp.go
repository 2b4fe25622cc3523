// Package mcp implements the Model Context Protocol server for Tenken.
//
// The MCP server exposes run inspection over stdio: listing the
// normalized step sequence, searching step payloads, rendering a
// single step, and summarizing a run. It gives MCP-compatible AI
// agents the same view of a benchmark run that the terminal surface
// shows a human.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/tenken/internal/inspect"
	"github.com/ashita-ai/tenken/internal/model"
	"github.com/ashita-ai/tenken/internal/pricing"
	"github.com/ashita-ai/tenken/internal/searchtext"
	"github.com/ashita-ai/tenken/internal/step"
	"github.com/ashita-ai/tenken/internal/summary"
)

// Server wraps the MCP server around a loaded benchmark run.
type Server struct {
	mcpServer *mcpserver.MCPServer
	results   []model.Result
	table     *pricing.Table
	modelName string
	logger    *slog.Logger
}

// New creates and configures a new MCP server over the given results.
func New(results []model.Result, table *pricing.Table, modelName string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		results:   results,
		table:     table,
		modelName: modelName,
		logger:    logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"tenken",
		"0.1.0",
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
	)

	s.registerResources()
	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp: serving on stdio", "results", len(s.results))
	return mcpserver.ServeStdio(s.mcpServer)
}

func (s *Server) registerResources() {
	// tenken://run/summary — aggregate metrics for the whole run.
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"tenken://run/summary",
			"Run Summary",
			mcplib.WithResourceDescription("Aggregate token, tool-call, and cost metrics for the loaded run"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleRunSummaryResource,
	)
}

func (s *Server) registerTools() {
	// list_steps — normalized step sequence of one result.
	s.mcpServer.AddTool(
		mcplib.NewTool("list_steps",
			mcplib.WithDescription("List the normalized agent step sequence of one benchmark result"),
			mcplib.WithNumber("result", mcplib.Description("Result ordinal within the run"), mcplib.Required()),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleListSteps,
	)

	// search_steps — per-step match counts for a query.
	s.mcpServer.AddTool(
		mcplib.NewTool("search_steps",
			mcplib.WithDescription("Search the step payloads of one result and report per-step match counts with snippets"),
			mcplib.WithNumber("result", mcplib.Description("Result ordinal within the run"), mcplib.Required()),
			mcplib.WithString("query", mcplib.Description("Case-insensitive search text"), mcplib.Required()),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleSearchSteps,
	)

	// step_detail — rendered detail panel of one step.
	s.mcpServer.AddTool(
		mcplib.NewTool("step_detail",
			mcplib.WithDescription("Render the full detail panel of one step, including decoded arguments and response"),
			mcplib.WithNumber("result", mcplib.Description("Result ordinal within the run"), mcplib.Required()),
			mcplib.WithNumber("index", mcplib.Description("Zero-based step index"), mcplib.Required()),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleStepDetail,
	)

	// run_summary — aggregate metrics, optionally for a single result.
	s.mcpServer.AddTool(
		mcplib.NewTool("run_summary",
			mcplib.WithDescription("Summarize token usage, tool calls, execution time, and estimated cost"),
			mcplib.WithNumber("result", mcplib.Description("Result ordinal; omit for the whole run"), mcplib.DefaultNumber(-1)),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleRunSummary,
	)
}

func (s *Server) handleRunSummaryResource(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	run := summary.ForRun(s.results, s.table, s.modelName)

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal run summary: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      "tenken://run/summary",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// resultByOrdinal resolves the result a tool call addresses. Ordinals
// follow the exported file names, not slice positions.
func (s *Server) resultByOrdinal(ordinal int) (model.Result, bool) {
	for _, r := range s.results {
		if r.Ordinal == ordinal {
			return r, true
		}
	}
	return model.Result{}, false
}

func (s *Server) handleListSteps(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ordinal := request.GetInt("result", -1)
	r, ok := s.resultByOrdinal(ordinal)
	if !ok {
		return errorResult(fmt.Sprintf("no result with ordinal %d", ordinal)), nil
	}

	steps := step.Normalize(r.ToolCalls)
	out := make([]map[string]any, 0, len(steps))
	for _, st := range steps {
		out = append(out, map[string]any{
			"index":  st.Index,
			"kind":   string(st.Kind),
			"label":  st.Label,
			"detail": st.Detail,
		})
	}

	resultData, _ := json.MarshalIndent(map[string]any{
		"result": ordinal,
		"query":  r.Query,
		"steps":  out,
	}, "", "  ")

	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}

func (s *Server) handleSearchSteps(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ordinal := request.GetInt("result", -1)
	query := request.GetString("query", "")
	if query == "" {
		return errorResult("query is required"), nil
	}
	r, ok := s.resultByOrdinal(ordinal)
	if !ok {
		return errorResult(fmt.Sprintf("no result with ordinal %d", ordinal)), nil
	}

	steps := step.Normalize(r.ToolCalls)
	matches := make([]map[string]any, 0)
	total := 0
	for _, st := range steps {
		text := searchtext.Build(st.Raw)
		count := searchtext.CountMatches(text, query)
		if count == 0 {
			continue
		}
		pos := searchtext.FirstMatch(text, query)
		total += count
		matches = append(matches, map[string]any{
			"index":   st.Index,
			"label":   st.Label,
			"matches": count,
			"snippet": searchtext.Snippet(text, pos, len(query)),
		})
	}

	resultData, _ := json.MarshalIndent(map[string]any{
		"result": ordinal,
		"query":  query,
		"total":  total,
		"steps":  matches,
	}, "", "  ")

	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}

func (s *Server) handleStepDetail(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ordinal := request.GetInt("result", -1)
	index := request.GetInt("index", -1)
	r, ok := s.resultByOrdinal(ordinal)
	if !ok {
		return errorResult(fmt.Sprintf("no result with ordinal %d", ordinal)), nil
	}

	session := inspect.NewSession(s.logger)
	session.SetRecords(r.ToolCalls)
	if index < 0 || index >= len(session.Steps()) {
		return errorResult(fmt.Sprintf("step index %d out of range (result has %d steps)", index, len(session.Steps()))), nil
	}
	session.SelectStep(index)

	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: session.Panel().PlainText()},
		},
	}, nil
}

func (s *Server) handleRunSummary(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	ordinal := request.GetInt("result", -1)

	var payload any
	if ordinal >= 0 {
		r, ok := s.resultByOrdinal(ordinal)
		if !ok {
			return errorResult(fmt.Sprintf("no result with ordinal %d", ordinal)), nil
		}
		payload = summary.ForResult(r, s.table, s.modelName)
	} else {
		payload = summary.ForRun(s.results, s.table, s.modelName)
	}

	resultData, _ := json.MarshalIndent(payload, "", "  ")

	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(resultData)},
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
