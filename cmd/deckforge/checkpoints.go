package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/checkpoint"
	"github.com/deckforge/deckforge/internal/config"
)

// NewCheckpointsCmd creates the checkpoints command group.
func NewCheckpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Inspect and manage pipeline checkpoints",
		Long: `Checkpoints manages the per-input checkpoint store.

Each input document gets its own checkpoint directory derived from the
input path, under the XDG data directory unless --dir is given.`,
	}

	cmd.AddCommand(newCheckpointsListCmd())
	cmd.AddCommand(newCheckpointsCleanupCmd())

	return cmd
}

// newCheckpointsListCmd creates the checkpoints list command.
func newCheckpointsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <input>",
		Short: "List checkpoints for an input document",
		Long: `List shows all checkpoints recorded for an input document,
newest first.

Examples:
  deckforge checkpoints list slides.md
  deckforge checkpoints list --dir /tmp/checkpoints slides.md`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckpointsListCmd,
	}

	cmd.Flags().StringP("dir", "d", "",
		"Checkpoint directory (default: per-input directory under the XDG data dir)")

	return cmd
}

// runCheckpointsListCmd executes the checkpoints list command.
func runCheckpointsListCmd(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd, args[0])
	if err != nil {
		return err
	}

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No checkpoints found in %s\n", store.Dir())
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Checkpoints in %s:\n\n", store.Dir())
	fmt.Fprintf(cmd.OutOrStdout(), "%-45s %-20s %s\n", "ID", "STAGE", "CREATED")
	for _, entry := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%-45s %-20s %s\n",
			entry.ID, entry.Stage, entry.Timestamp.Format("2006-01-02 15:04:05"))
	}

	return nil
}

// newCheckpointsCleanupCmd creates the checkpoints cleanup command.
func newCheckpointsCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup <input>",
		Short: "Delete old checkpoints for an input document",
		Long: `Cleanup deletes all but the most recent checkpoints of an input
document.

Examples:
  # Keep the default number of recent checkpoints
  deckforge checkpoints cleanup slides.md

  # Keep only the two most recent checkpoints
  deckforge checkpoints cleanup --keep 2 slides.md

  # Delete every checkpoint
  deckforge checkpoints cleanup --keep 0 slides.md`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckpointsCleanupCmd,
	}

	cmd.Flags().StringP("dir", "d", "",
		"Checkpoint directory (default: per-input directory under the XDG data dir)")
	cmd.Flags().IntP("keep", "k", config.DefaultKeepCheckpoints,
		"How many recent checkpoints to keep")

	return cmd
}

// runCheckpointsCleanupCmd executes the checkpoints cleanup command.
func runCheckpointsCleanupCmd(cmd *cobra.Command, args []string) error {
	keep, err := cmd.Flags().GetInt("keep")
	if err != nil {
		return err
	}

	store, err := openStore(cmd, args[0])
	if err != nil {
		return err
	}

	before, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	if err := store.Cleanup(keep); err != nil {
		return fmt.Errorf("failed to clean up checkpoints: %w", err)
	}

	after, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d checkpoint(s), %d remaining in %s\n",
		len(before)-len(after), len(after), store.Dir())
	return nil
}

// openStore opens the checkpoint store for an input, honoring the --dir
// flag when present.
func openStore(cmd *cobra.Command, input string) (*checkpoint.Store, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = checkpoint.DirForInput(config.DefaultCheckpointRoot(), input)
	}
	return checkpoint.NewStore(dir)
}
