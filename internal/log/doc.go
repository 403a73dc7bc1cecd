// Package log provides the crawl logger, built on top of the standard slog
// package.
//
// NewSpiderLogger writes every record to up to three places:
//   - <dir>/spider.log for info and above,
//   - <dir>/spider.log.wf for warnings and errors only,
//   - the console, at debug level in verbose mode and warn level otherwise.
//
// Log files rotate through lumberjack and keep seven backups.
//
// # Security Features
//
// All output passes through SecureHandler, which masks credentials a crawl
// may carry: Cookie and Authorization values, header maps holding them,
// bearer and basic tokens, and passwords embedded in URLs.
//
// # Usage
//
//	logger, closer, err := log.NewSpiderLogger(log.Options{
//	    Dir:     "./log",
//	    Console: os.Stderr,
//	    Verbose: verbose,
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
//	logger.Info("saved page", "url", u, "path", path)
package log
