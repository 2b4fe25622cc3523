// Package main provides the tenken CLI entry point.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashita-ai/tenken"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	// Global flags
	runDir      string
	modelName   string
	pricingFile string
	verbose     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "tenken",
		Short: "Inspect benchmark run exports step by step",
		Long: `Tenken loads a benchmark run export (a directory of per-question JSON
result files) and lets you inspect each agent's tool calls, web searches,
token usage, and estimated cost.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&runDir, "run", "r", "", "Run export directory (or its json/ subdirectory)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model name for cost attribution")
	rootCmd.PersistentFlags().StringVar(&pricingFile, "pricing", "", "Pricing table JSON (default: embedded table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(stepsCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(mcpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newInspector applies the global flags and builds the Inspector.
// Logs go to stderr so stdout stays clean for command output (and for
// the MCP protocol).
func newInspector() (*tenken.Inspector, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return tenken.New(
		tenken.WithLogger(logger),
		tenken.WithRunDir(runDir),
		tenken.WithModel(modelName),
		tenken.WithPricingFile(pricingFile),
		tenken.WithVersion(version),
	)
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Open the interactive inspection surface",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				runDir = args[0]
			}
			insp, err := newInspector()
			if err != nil {
				return err
			}
			return insp.RunTUI()
		},
	}
}

func stepsCmd() *cobra.Command {
	var result int

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Print the normalized step sequence of one result",
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := newInspector()
			if err != nil {
				return err
			}
			steps := insp.Steps(result)
			if steps == nil {
				return fmt.Errorf("result %d out of range (run has %d results)", result, insp.Results())
			}
			for _, st := range steps {
				line := fmt.Sprintf("%3d  %-12s %s", st.Index+1, st.Kind, st.Label)
				if st.Detail != "" {
					line += "  " + st.Detail
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&result, "result", 0, "Result position within the run (0-based)")
	return cmd
}

func searchCmd() *cobra.Command {
	var result int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search step payloads and print per-step match counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := newInspector()
			if err != nil {
				return err
			}
			session := insp.Session(result)
			query := args[0]

			total := 0
			for i, st := range session.Steps() {
				p := session.PreviewFor(i, query)
				if p.Matches == 0 {
					continue
				}
				total += p.Matches
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-20s %3d  %s\n", st.Index+1, st.Label, p.Matches, p.Snippet)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", total)
			return nil
		},
	}

	cmd.Flags().IntVar(&result, "result", 0, "Result position within the run (0-based)")
	return cmd
}

func summaryCmd() *cobra.Command {
	var result int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print token, tool-call, and cost totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := newInspector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if result >= 0 {
				s := insp.Summary(result)
				fmt.Fprintf(out, "Total tokens: %d, tool calls: %d\n", s.TotalTokens, s.ToolCalls)
				printToolUsage(out, s.ToolUsage)
				fmt.Fprintf(out, "Execution: %.1fs\n", s.ExecutionSeconds)
				if s.CostEstimated {
					fmt.Fprintf(out, "Estimated cost: $%.6f (%d web search calls)\n", s.CostUSD, s.WebSearchCalls)
				}
				return nil
			}

			s := insp.RunSummary()
			fmt.Fprintf(out, "Results: %d (%d errored)\n", s.Results, s.Errors)
			fmt.Fprintf(out, "Total tokens: %d, tool calls: %d\n", s.TotalTokens, s.ToolCalls)
			printToolUsage(out, s.ToolUsage)
			fmt.Fprintf(out, "Execution: %.1fs\n", s.ExecutionSeconds)
			fmt.Fprintf(out, "Estimated cost: $%.6f (%d web search calls)\n", s.TotalCostUSD, s.WebSearchCalls)
			return nil
		},
	}

	cmd.Flags().IntVar(&result, "result", -1, "Single result position; omit for the whole run")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the inspection tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			insp, err := newInspector()
			if err != nil {
				return err
			}
			return insp.ServeMCP()
		},
	}
}

func printToolUsage(out io.Writer, usage map[string]int) {
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %d\n", name, usage[name])
	}
}
