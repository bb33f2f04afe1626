package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-sourcer/internal/observability"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run a resolution-and-merge pass over the working set",
	Long:  "Cluster the working set into candidate identities, merge each cluster into a profile, and publish the result as the next snapshot in the pipeline state.",
	RunE:  runResolve,
}

var (
	resolveConfig  string
	resolveState   string
	resolveVerbose bool
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveConfig, "config", "c", "", "Path to config JSON file")
	resolveCmd.Flags().StringVarP(&resolveState, "state", "s", "state.json", "Path to pipeline state file")
	resolveCmd.Flags().BoolVarP(&resolveVerbose, "verbose", "v", false, "Print merged profiles and diagnostics")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	engine, state, _, err := newEngine(resolveConfig, resolveState)
	if err != nil {
		return err
	}
	if engine.RecordCount() == 0 {
		return fmt.Errorf("working set is empty; run ingest first")
	}

	snap, err := engine.RunPass(cmd.Context())
	if err != nil {
		return fmt.Errorf("resolution pass failed: %w", err)
	}

	state.Snapshot = snap
	state.Records = engine.WorkingSet()
	if err := saveState(resolveState, state); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Published snapshot %d: %d identities, %d profiles, %d splits\n",
		snap.Version, len(snap.Identities), len(snap.Profiles), len(snap.Splits))

	if resolveVerbose {
		printer := observability.NewPrinter(os.Stdout)
		for i := range snap.Profiles {
			printer.PrintProfile(&snap.Profiles[i])
		}
		if len(snap.Splits) > 0 {
			ids := make([]string, 0, len(snap.Splits))
			for _, split := range snap.Splits {
				ids = append(ids, split.PreviousID)
			}
			printer.PrintSplits(ids)
		}
		printer.PrintDiagnostics(snap.Diagnostics)
	}
	return nil
}
