package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/database"
	"github.com/deckforge/deckforge/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [input]",
		Short: "Show past conversion runs",
		Long: `History lists past conversion runs recorded in the run database.

With an input argument, only runs for that document are shown.

Examples:
  # Show the most recent runs
  deckforge history

  # Show the runs of one document
  deckforge history slides.md

  # Show more runs
  deckforge history --limit 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	// Open read-only: reporting no history should not create an empty
	// database file.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No run history found.")
		return nil
	}
	defer db.Close() //nolint:errcheck // Close error is not actionable here

	var runs []database.RunSummary
	if len(args) == 1 {
		runs, err = db.ListRunsForInput(cmd.Context(), args[0], limit)
	} else {
		runs, err = db.ListRuns(cmd.Context(), limit)
	}
	if err != nil {
		return fmt.Errorf("failed to query run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No run history found.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-19s %-9s %-7s %-30s %s\n",
		"WHEN", "STATUS", "STAGES", "INPUT", "OUTPUT")
	for _, run := range runs {
		status := "ok"
		switch {
		case !run.Success:
			status = "failed"
		case run.RecoveredFromErrors > 0:
			status = "degraded"
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%-19s %-9s %d/%d     %-30s %s\n",
			run.Timestamp.Format("2006-01-02 15:04:05"),
			status,
			run.StagesCompleted, len(model.StageOrder),
			truncatePath(run.InputPath, 30),
			run.OutputPath,
		)
	}

	return nil
}

// truncatePath shortens long paths from the left, keeping the file name
// visible.
func truncatePath(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen+3:]
}
