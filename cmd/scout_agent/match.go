package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-sourcer/internal/observability"
	"github.com/jonathan/talent-sourcer/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank published profiles against a hiring requirement",
	Long:  "Vectorize the published profiles and the requirement text, score cosine similarity, and print one ranked page of matches.",
	RunE:  runMatch,
}

var (
	matchConfig   string
	matchState    string
	matchText     string
	matchSources  []string
	matchKeyword  string
	matchMinScore float64
	matchCursor   string
	matchPageSize int
	matchJSON     bool
)

func init() {
	matchCmd.Flags().StringVarP(&matchText, "text", "t", "", "Requirement text (required)")
	matchCmd.Flags().StringSliceVar(&matchSources, "source", nil, "Only match profiles carrying this source (repeatable)")
	matchCmd.Flags().StringVar(&matchKeyword, "keyword", "", "Only match profiles containing this keyword")
	matchCmd.Flags().Float64Var(&matchMinScore, "min-score", 0, "Drop results scoring below this value")
	matchCmd.Flags().StringVar(&matchCursor, "cursor", "", "Pagination cursor from a previous page")
	matchCmd.Flags().IntVar(&matchPageSize, "page-size", 0, "Results per page (0 uses the configured default)")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print the full result page as JSON")
	matchCmd.Flags().StringVarP(&matchConfig, "config", "c", "", "Path to config JSON file")
	matchCmd.Flags().StringVarP(&matchState, "state", "s", "state.json", "Path to pipeline state file")

	matchCmd.MarkFlagRequired("text")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	engine, state, _, err := newEngine(matchConfig, matchState)
	if err != nil {
		return err
	}
	if state.Snapshot == nil {
		return fmt.Errorf("no published snapshot; run resolve first")
	}

	req := types.Requirement{
		Text: matchText,
		Filters: types.RequirementFilters{
			Sources:  matchSources,
			Keyword:  matchKeyword,
			MinScore: matchMinScore,
		},
	}

	result, err := engine.Query(cmd.Context(), req, matchCursor, matchPageSize)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if matchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(os.Stdout, "Snapshot %d: %d matches\n", result.SnapshotVersion, result.Total)
	observability.NewPrinter(os.Stdout).PrintMatches(result.Results)
	if result.NextCursor != "" {
		fmt.Fprintf(os.Stdout, "Next page: --cursor %s\n", result.NextCursor)
	}
	return nil
}
