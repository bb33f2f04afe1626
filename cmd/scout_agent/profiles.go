package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-sourcer/internal/observability"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List or show merged profiles from the published snapshot",
	RunE:  runProfiles,
}

var (
	profilesConfig string
	profilesState  string
	profilesID     string
	profilesJSON   bool
)

func init() {
	profilesCmd.Flags().StringVar(&profilesID, "id", "", "Show one profile by identity ID")
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "Print profiles as JSON")
	profilesCmd.Flags().StringVarP(&profilesConfig, "config", "c", "", "Path to config JSON file")
	profilesCmd.Flags().StringVarP(&profilesState, "state", "s", "state.json", "Path to pipeline state file")

	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(_ *cobra.Command, _ []string) error {
	_, state, _, err := newEngine(profilesConfig, profilesState)
	if err != nil {
		return err
	}
	if state.Snapshot == nil {
		return fmt.Errorf("no published snapshot; run resolve first")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	printer := observability.NewPrinter(os.Stdout)

	if profilesID != "" {
		profile, ok := state.Snapshot.Profile(profilesID)
		if !ok {
			return fmt.Errorf("profile not found: %s", profilesID)
		}
		if profilesJSON {
			return enc.Encode(profile)
		}
		printer.PrintProfile(&profile)
		return nil
	}

	if profilesJSON {
		return enc.Encode(state.Snapshot.Profiles)
	}
	fmt.Fprintf(os.Stdout, "Snapshot %d: %d profiles\n", state.Snapshot.Version, len(state.Snapshot.Profiles))
	for i := range state.Snapshot.Profiles {
		printer.PrintProfile(&state.Snapshot.Profiles[i])
	}
	return nil
}
