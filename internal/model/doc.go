// Package model defines the data shared by the crawler, the journal and the
// report writers.
//
// This package contains the following main types:
//   - FetchRecord: What happened to one crawled URL
//   - Run: One crawl run with its settings and counters
//   - RunReport: A run together with its fetch records
//
// The types are kept in their own package so that crawler, database and
// report can all use them without importing each other. They serialize to
// JSON for the journal and for JSON reports.
package model
