package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/minispider/internal/config"
	"github.com/nao1215/minispider/internal/crawler"
	"github.com/nao1215/minispider/internal/database"
	spiderlog "github.com/nao1215/minispider/internal/log"
	"github.com/nao1215/minispider/internal/model"
	"github.com/nao1215/minispider/internal/report"
	"github.com/nao1215/minispider/internal/transport"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl from the seed URLs and save matching pages",
		Long: `Crawl reads the seed URLs and fetches them with a pool of workers.
Links found in HTML pages are followed breadth-first up to the maximum depth,
and every page whose URL matches target_url is saved to the output directory.

Settings come from the configuration file (spider.yaml, spider.yml or
spider.toml in the current directory, or the XDG config directory) and can
be overridden with flags.

Examples:
  # Crawl with ./spider.yaml, or the defaults if there is none
  minispider crawl

  # Use a specific configuration file
  minispider crawl -c conf/spider.toml

  # Follow links two levels deep with 16 workers
  minispider crawl --depth 2 --threads 16

  # Print the summary as Markdown and keep a copy
  minispider crawl --markdown --report-file reports/run.md`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("conf", "c", "",
		"Configuration file path (default: spider.yaml in current or XDG config directory)")

	cmd.Flags().StringP("seeds", "s", "",
		"Seed URL list file (overrides url_list_file)")
	cmd.Flags().StringP("output", "o", "",
		"Output directory for saved pages (overrides output_directory)")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (overrides max_depth)")
	cmd.Flags().IntP("threads", "t", config.DefaultThreadCount,
		"Number of concurrent workers (overrides thread_count)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address host:port (overrides proxy)")

	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown")
	cmd.Flags().String("report-file", "",
		"Also write the run summary as Markdown to this file")
	cmd.Flags().Bool("no-journal", false,
		"Do not record the run in the journal")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	reportFile, err := cmd.Flags().GetString("report-file")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, crawlOutput{
		stdout:     cmd.OutOrStdout(),
		stderr:     cmd.ErrOrStderr(),
		reportFile: reportFile,
	})
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	confPath, err := cmd.Flags().GetString("conf")
	if err != nil {
		return nil, err
	}

	path, err := config.FindConfigFile(confPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := config.LoadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seeds") {
		if cfg.URLListFile, err = flags.GetString("seeds"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputDirectory, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("depth") {
		if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("threads") {
		if cfg.ThreadCount, err = flags.GetInt("threads"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}

	noJournal, err := flags.GetBool("no-journal")
	if err != nil {
		return nil, err
	}
	if noJournal {
		cfg.Journal = false
	}

	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// crawlOutput holds where runCrawl prints.
type crawlOutput struct {
	stdout     io.Writer
	stderr     io.Writer
	reportFile string
}

// runCrawl runs one crawl with a validated configuration and prints its
// summary. The crawl error, if any, is returned after the summary has been
// printed and the run has been closed in the journal.
func runCrawl(ctx context.Context, cfg *config.Config, out crawlOutput) error {
	logger, closer, err := spiderlog.NewSpiderLogger(spiderlog.Options{
		Dir:     cfg.LogDir,
		Console: out.stderr,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.ConfigFilePath != "" {
		logger.Debug("configuration loaded", "path", cfg.ConfigFilePath)
	}

	seeds, err := config.LoadSeeds(cfg.URLListFile)
	if err != nil {
		return fmt.Errorf("failed to load seeds: %w", err)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDirectory, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fetcher, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []crawler.SpiderOption{
		crawler.WithThreadCount(cfg.ThreadCount),
		crawler.WithFetcher(fetcher),
		crawler.WithLogger(logger),
	}

	run := model.Run{
		StartedAt: time.Now().UTC(),
		Seeds:     seeds,
		Settings:  runSettings(cfg),
	}

	var journal *database.Journal
	if cfg.Journal {
		journal, err = database.Open(cfg.JournalDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()

		run, err = journal.StartRun(ctx, seeds, run.Settings)
		if err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
		opts = append(opts, crawler.WithRecorder(journal.Recorder(run.ID)))
		logger.Info("run started", "run_id", run.ID, "journal", journal.Path())
	}

	spider := crawler.NewSpider(policy, opts...)
	stats, crawlErr := spider.Crawl(ctx, seeds)

	run.FinishedAt = time.Now().UTC()
	run.Fetched = stats.Fetched
	run.Failed = stats.Failed
	run.Saved = stats.Saved
	run.Queued = stats.Queued
	if crawlErr != nil {
		run.Error = crawlErr.Error()
	}

	logger.Info("crawl finished",
		"fetched", stats.Fetched,
		"failed", stats.Failed,
		"saved", stats.Saved,
		"queued", stats.Queued,
		"visited", stats.Visited,
	)

	// The run is closed and reported even when ctx was cancelled.
	finishCtx := context.WithoutCancel(ctx)
	rep := &model.RunReport{Run: run}
	if journal != nil {
		if err := journal.FinishRun(finishCtx, run); err != nil {
			logger.Error("failed to finish run", "run_id", run.ID, "error", err)
		} else if stored, err := journal.Report(finishCtx, run.ID); err != nil {
			logger.Error("failed to load run report", "run_id", run.ID, "error", err)
		} else {
			rep = stored
		}
	}

	if err := writeCrawlReport(cfg, out, rep); err != nil {
		logger.Error("failed to write report", "error", err)
	}

	if crawlErr != nil {
		if errors.Is(crawlErr, crawler.ErrNoSeeds) {
			return fmt.Errorf("%w in %s", crawlErr, cfg.URLListFile)
		}
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}
	return nil
}

// newFetcher builds the HTTP client and fetcher for cfg. When a proxy is
// configured it is checked before any page is requested.
func newFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*crawler.Fetcher, error) {
	client, err := transport.NewClient(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	if cfg.Proxy != "" {
		status := transport.CheckProxy(ctx, cfg.Proxy)
		if status != transport.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status.Error(), cfg.Proxy)
		}
		logger.Info("proxy connection verified", "address", cfg.Proxy)
	}

	return crawler.NewFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithHeaders(cfg.Headers),
		crawler.WithCookie(cfg.Cookie),
		crawler.WithSiteRequests(cfg.SiteOverrides()),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRequestsPerSecond(cfg.RequestsPerSecond),
	), nil
}

// runSettings records the crawl settings of cfg for the journal.
func runSettings(cfg *config.Config) model.RunSettings {
	return model.RunSettings{
		MaxDepth:        cfg.MaxDepth,
		CrawlInterval:   cfg.CrawlInterval,
		CrawlTimeout:    cfg.CrawlTimeout,
		TargetPattern:   cfg.TargetURL,
		OutputDirectory: cfg.OutputDirectory,
		ThreadCount:     cfg.ThreadCount,
	}
}

// writeCrawlReport prints the run summary and, if requested, writes a
// Markdown copy to the report file.
func writeCrawlReport(cfg *config.Config, out crawlOutput, rep *model.RunReport) error {
	var console report.Writer = report.NewSimpleWriter(out.stdout)
	if cfg.MarkdownReport {
		console = report.NewMarkdownWriter(out.stdout)
	}

	if out.reportFile == "" {
		_, err := console.Write(rep)
		return err
	}

	dir := filepath.Dir(out.reportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(out.reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	_, err = report.NewMultiWriter(console, report.NewMarkdownWriter(f)).Write(rep)
	return err
}
