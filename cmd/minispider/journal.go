package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/minispider/internal/config"
	"github.com/nao1215/minispider/internal/database"
	"github.com/nao1215/minispider/internal/report"
	"github.com/spf13/cobra"
)

// errNoJournal is returned when history or report is used before any run
// was recorded.
var errNoJournal = errors.New("no crawl journal found (run \"minispider crawl\" first)")

// addJournalFlags adds the flags shared by the commands that read the journal.
func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("conf", "c", "",
		"Configuration file path, used to find journal_dir")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// openJournal opens the existing journal configured for cmd.
func openJournal(cmd *cobra.Command) (*database.Journal, error) {
	confPath, err := cmd.Flags().GetString("conf")
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	path, err := config.FindConfigFile(confPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := config.LoadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if _, err := os.Stat(filepath.Join(cfg.JournalDir, database.FileName)); os.IsNotExist(err) {
		return nil, errNoJournal
	}

	journal, err := database.Open(cfg.JournalDir, database.Options{EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return journal, nil
}

// newReportWriter returns the writer selected by the --json and --markdown
// flags of cmd.
func newReportWriter(cmd *cobra.Command, out io.Writer) (report.Writer, error) {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	switch {
	case asJSON:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion())), nil
	case asMarkdown:
		return report.NewMarkdownWriter(out), nil
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(getVerboseFlag(cmd))), nil
	}
}
