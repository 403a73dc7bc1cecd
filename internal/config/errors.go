package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and LoadSeeds() so callers
// can use errors.Is() while still printing a readable message.
var (
	// ErrNoSeedFile is returned when url_list_file is empty.
	ErrNoSeedFile = errors.New("no seed file specified: set url_list_file or use --seeds")

	// ErrSeedFileNotFound is returned when the seed file does not exist.
	ErrSeedFileNotFound = errors.New("seed file not found")

	// ErrNoOutputDirectory is returned when output_directory is empty.
	ErrNoOutputDirectory = errors.New("no output directory specified")

	// ErrInvalidMaxDepth is returned when max_depth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidCrawlInterval is returned when crawl_interval is less than
	// one second.
	ErrInvalidCrawlInterval = errors.New("invalid crawl interval: must be positive")

	// ErrInvalidCrawlTimeout is returned when crawl_timeout is not positive.
	ErrInvalidCrawlTimeout = errors.New("invalid crawl timeout: must be positive")

	// ErrInvalidTargetURL is returned when target_url is not a valid
	// regular expression.
	ErrInvalidTargetURL = errors.New("invalid target url pattern")

	// ErrInvalidThreadCount is returned when thread_count is not positive.
	ErrInvalidThreadCount = errors.New("invalid thread count: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRequestsPerSecond is returned when requests_per_second is
	// negative. Use 0 to disable the global rate limit.
	ErrInvalidRequestsPerSecond = errors.New("invalid requests per second: must be non-negative")
)
