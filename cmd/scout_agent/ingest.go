package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest raw record batches into the working set",
	Long:  "Validate raw record batch files against the batch schema, normalize them into the canonical record schema, and add them to the pipeline state.",
	RunE:  runIngest,
}

var (
	ingestInputs []string
	ingestConfig string
	ingestState  string
)

func init() {
	ingestCmd.Flags().StringSliceVarP(&ingestInputs, "in", "i", nil, "Raw batch JSON file (repeatable)")
	ingestCmd.Flags().StringVarP(&ingestConfig, "config", "c", "", "Path to config JSON file")
	ingestCmd.Flags().StringVarP(&ingestState, "state", "s", "state.json", "Path to pipeline state file")

	ingestCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, _ []string) error {
	engine, state, _, err := newEngine(ingestConfig, ingestState)
	if err != nil {
		return err
	}

	total := 0
	for _, path := range ingestInputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read batch file %s: %w", path, err)
		}

		n, diags, err := engine.IngestRaw(data)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		total += n
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "warning: [%s] %s: %s\n", d.Stage, d.Subject, d.Message)
		}
	}

	state.Records = engine.WorkingSet()
	if err := saveState(ingestState, state); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Ingested %d records (%d total in working set)\n", total, engine.RecordCount())
	return nil
}
