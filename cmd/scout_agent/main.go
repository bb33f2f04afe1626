// Package main provides the entry point for the talent sourcer CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "scout_agent",
	Short:   "Talent sourcing pipeline",
	Long:    "Talent sourcer normalizes public developer and researcher profiles, resolves them into identities, and ranks merged profiles against hiring requirements.",
	Version: "0.3.0",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
