package config

import "time"

// SiteConfig holds request settings for a single host.
type SiteConfig struct {
	// Cookie replaces the global cookie for this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty" toml:"cookie,omitempty"`

	// Headers are added to the global headers for this host.
	Headers map[string]string `yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// SpiderSection is the [spider] section of the configuration file.
// Durations are whole seconds.
type SpiderSection struct {
	URLListFile       string            `yaml:"url_list_file" toml:"url_list_file"`
	OutputDirectory   string            `yaml:"output_directory" toml:"output_directory"`
	MaxDepth          int               `yaml:"max_depth" toml:"max_depth"`
	CrawlInterval     int               `yaml:"crawl_interval" toml:"crawl_interval"`
	CrawlTimeout      int               `yaml:"crawl_timeout" toml:"crawl_timeout"`
	TargetURL         string            `yaml:"target_url" toml:"target_url"`
	ThreadCount       int               `yaml:"thread_count" toml:"thread_count"`
	UserAgent         string            `yaml:"user_agent" toml:"user_agent"`
	Headers           map[string]string `yaml:"headers,omitempty" toml:"headers,omitempty"`
	Cookie            string            `yaml:"cookie,omitempty" toml:"cookie,omitempty"`
	Proxy             string            `yaml:"proxy,omitempty" toml:"proxy,omitempty"`
	MaxBodySize       int64             `yaml:"max_body_size" toml:"max_body_size"`
	RequestsPerSecond float64           `yaml:"requests_per_second" toml:"requests_per_second"`
	LogDir            string            `yaml:"log_dir" toml:"log_dir"`
	Journal           bool              `yaml:"journal" toml:"journal"`
	JournalDir        string            `yaml:"journal_dir" toml:"journal_dir"`
}

// File represents the structure of a minispider configuration file.
type File struct {
	// Spider holds the crawl settings.
	Spider SpiderSection `yaml:"spider" toml:"spider"`

	// Sites maps host names to host-specific request settings.
	// Keys are host names without scheme or port (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty" toml:"sites,omitempty"`
}

// newFile returns a File whose values are the current settings of c, so
// keys absent from a decoded file keep those settings.
func newFile(c *Config) *File {
	return &File{
		Spider: SpiderSection{
			URLListFile:       c.URLListFile,
			OutputDirectory:   c.OutputDirectory,
			MaxDepth:          c.MaxDepth,
			CrawlInterval:     int(c.CrawlInterval / time.Second),
			CrawlTimeout:      int(c.CrawlTimeout / time.Second),
			TargetURL:         c.TargetURL,
			ThreadCount:       c.ThreadCount,
			UserAgent:         c.UserAgent,
			Headers:           c.Headers,
			Cookie:            c.Cookie,
			Proxy:             c.Proxy,
			MaxBodySize:       c.MaxBodySize,
			RequestsPerSecond: c.RequestsPerSecond,
			LogDir:            c.LogDir,
			Journal:           c.Journal,
			JournalDir:        c.JournalDir,
		},
		Sites: c.Sites,
	}
}

// Apply copies the file's settings into c.
func (f *File) Apply(c *Config) {
	s := f.Spider
	c.URLListFile = s.URLListFile
	c.OutputDirectory = s.OutputDirectory
	c.MaxDepth = s.MaxDepth
	c.CrawlInterval = time.Duration(s.CrawlInterval) * time.Second
	c.CrawlTimeout = time.Duration(s.CrawlTimeout) * time.Second
	c.TargetURL = s.TargetURL
	c.ThreadCount = s.ThreadCount
	c.UserAgent = s.UserAgent
	c.Headers = s.Headers
	c.Cookie = s.Cookie
	c.Proxy = s.Proxy
	c.MaxBodySize = s.MaxBodySize
	c.RequestsPerSecond = s.RequestsPerSecond
	c.LogDir = s.LogDir
	c.Journal = s.Journal
	c.JournalDir = s.JournalDir
	c.Sites = f.Sites
}
