// Package database provides the SQLite crawl journal for minispider.
//
// The journal stores one row per crawl run (seeds, settings, counters,
// start and finish times) and one row per fetch made during a run. It is a
// record of what happened: a new run never reads it back to skip URLs.
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, so the
// journal is a single file and the binary cross-compiles freely.
package database
