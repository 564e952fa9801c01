// Package main provides the entry point for the deckforge CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrCompletedWithWarnings signals that a conversion succeeded but
// produced warnings or recovered from errors. Execute maps it to exit
// code 2 so scripts can tell clean runs from degraded ones.
var ErrCompletedWithWarnings = errors.New("completed with warnings")

// NewRootCmd creates the root command for deckforge.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deckforge",
		Short: "Convert structured documents into presentation decks",
		Long: `Deckforge converts structured documents (markdown, JSON outlines, HTML)
into presentation deck artifacts.

The conversion runs through a staged pipeline that checkpoints its state
after every stage, retries transient failures with exponential backoff,
and degrades gracefully when non-critical stages fail. Failed runs leave
behind partial results and can be resumed from the point of failure.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCheckpointsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Exit codes: 0 on success, 1 on failure,
// 2 when the conversion succeeded with warnings.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, ErrCompletedWithWarnings) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
