package main

import (
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Show a recorded crawl run",
		Long: `Report prints the summary of a crawl run from the journal: its settings,
counters, the pages it saved and the fetches that failed.

The run ID may be shortened to any unique prefix, as shown by "minispider history".
With --verbose every fetch of the run is listed.

Examples:
  # Show a run
  minispider report 0f8fad5b

  # Show a run as Markdown
  minispider report 0f8fad5b --markdown > run.md`,
		Args: cobra.ExactArgs(1),
		RunE: runReportCmd,
	}

	addJournalFlags(cmd)

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	w, err := newReportWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	journal, err := openJournal(cmd)
	if err != nil {
		return err
	}
	defer journal.Close()

	rep, err := journal.Report(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	_, err = w.Write(rep)
	return err
}
