// Package main provides the entry point for the onionscrap CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for onionscrap.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onionscrap",
		Short: "Crawl and analyze Tor hidden services",
		Long: `Onionscrap crawls Tor hidden services (.onion addresses) and analyzes
the retrieved content with an LLM for OSINT triage.

By default, onionscrap starts an embedded Tor daemon automatically.
Use --external-tor to use an existing Tor proxy instead. Analysis
requires an OpenRouter API key in the OPENROUTER_API_KEY environment
variable.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHuntCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
