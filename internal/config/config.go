package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/minispider/internal/crawler"
)

// Default configuration values.
// They match the behavior of the classic mini spider so that an empty
// configuration file crawls the same way.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "minispider"

	// DefaultURLListFile is the seed list read when none is configured.
	DefaultURLListFile = "./urls"

	// DefaultOutputDirectory is where matching pages are saved.
	DefaultOutputDirectory = "./output"

	// DefaultMaxDepth follows links one level away from the seeds.
	DefaultMaxDepth = 1

	// DefaultCrawlInterval is the pause each worker takes after every item.
	DefaultCrawlInterval = 1 * time.Second

	// DefaultCrawlTimeout bounds each fetch.
	DefaultCrawlTimeout = 1 * time.Second

	// DefaultTargetURL saves images.
	DefaultTargetURL = `.*\.(gif|png|jpg|bmp)$`

	// DefaultThreadCount is the number of concurrent workers.
	DefaultThreadCount = crawler.DefaultThreadCount

	// DefaultLogDir is where the log files are written.
	DefaultLogDir = "./log"
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, then the configuration file, then CLI
// flags, and passed through the application rather than kept in globals.
type Config struct {
	// URLListFile is the file with one seed URL per line.
	URLListFile string

	// OutputDirectory is where pages matching TargetURL are written.
	// It is created if it does not exist.
	OutputDirectory string

	// MaxDepth is the deepest level fetched. 0 fetches only the seeds.
	MaxDepth int

	// CrawlInterval is how long each worker pauses after every item.
	CrawlInterval time.Duration

	// CrawlTimeout bounds each HTTP request.
	CrawlTimeout time.Duration

	// TargetURL is the regular expression selecting pages to save.
	// It is matched from the start of the URL.
	TargetURL string

	// ThreadCount is the number of concurrent workers.
	ThreadCount int

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Headers are extra headers sent with every request.
	Headers map[string]string

	// Cookie is sent as the Cookie header with every request.
	Cookie string

	// Sites holds per-host cookie and header overrides.
	Sites map[string]SiteConfig

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string

	// MaxBodySize is the maximum response body size in bytes to read.
	// 0 uses the fetcher default.
	MaxBodySize int64

	// RequestsPerSecond caps the combined request rate of all workers.
	// 0 disables the cap.
	RequestsPerSecond float64

	// LogDir is where spider.log and spider.log.wf are written.
	LogDir string

	// Journal enables recording the run in the SQLite journal.
	Journal bool

	// JournalDir is the directory of the journal database.
	// Defaults to the XDG data directory.
	JournalDir string

	// Verbose enables debug output on stderr.
	Verbose bool

	// MarkdownReport prints the run summary as Markdown.
	MarkdownReport bool

	// ConfigFilePath is the configuration file that was loaded, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		URLListFile:     DefaultURLListFile,
		OutputDirectory: DefaultOutputDirectory,
		MaxDepth:        DefaultMaxDepth,
		CrawlInterval:   DefaultCrawlInterval,
		CrawlTimeout:    DefaultCrawlTimeout,
		TargetURL:       DefaultTargetURL,
		ThreadCount:     DefaultThreadCount,
		UserAgent:       crawler.DefaultUserAgent,
		MaxBodySize:     crawler.DefaultMaxBodySize,
		LogDir:          DefaultLogDir,
		Journal:         true,
		JournalDir:      XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for minispider.
// On Linux: ~/.local/share/minispider
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for minispider.
// On Linux: ~/.config/minispider
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.URLListFile == "" {
		return ErrNoSeedFile
	}
	if c.OutputDirectory == "" {
		return ErrNoOutputDirectory
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.CrawlInterval < time.Second {
		return ErrInvalidCrawlInterval
	}
	if c.CrawlTimeout <= 0 {
		return ErrInvalidCrawlTimeout
	}
	if c.ThreadCount <= 0 {
		return ErrInvalidThreadCount
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}
	if _, err := crawler.CompileTargetPattern(c.TargetURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTargetURL, err)
	}
	return nil
}

// Policy builds the crawl policy shared by the workers.
func (c *Config) Policy() (crawler.Policy, error) {
	re, err := crawler.CompileTargetPattern(c.TargetURL)
	if err != nil {
		return crawler.Policy{}, fmt.Errorf("%w: %w", ErrInvalidTargetURL, err)
	}
	return crawler.Policy{
		MaxDepth:        c.MaxDepth,
		CrawlInterval:   c.CrawlInterval,
		CrawlTimeout:    c.CrawlTimeout,
		TargetPattern:   re,
		OutputDirectory: c.OutputDirectory,
	}, nil
}

// SiteOverrides converts Sites into the fetcher's per-host settings.
func (c *Config) SiteOverrides() map[string]crawler.SiteRequest {
	overrides := make(map[string]crawler.SiteRequest, len(c.Sites))
	for host, site := range c.Sites {
		overrides[host] = crawler.SiteRequest{
			Cookie:  site.Cookie,
			Headers: site.Headers,
		}
	}
	return overrides
}
