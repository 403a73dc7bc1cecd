package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs history shows by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded crawl runs",
		Long: `History lists the crawl runs recorded in the journal, newest first.

The first column is the run ID prefix accepted by "minispider report".

Examples:
  # Show the last 20 runs
  minispider history

  # Show every run as JSON
  minispider history --limit 0 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	addJournalFlags(cmd)
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to show (0 shows all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("invalid limit %d: must be 0 or more", limit)
	}

	w, err := newReportWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	journal, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer journal.Close()

	runs, err := journal.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	_, err = w.WriteHistory(runs)
	return err
}
