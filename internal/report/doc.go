// Package report renders crawl runs for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown tables and a mermaid chart for sharing
//   - JSONWriter: Structured JSON output for tool integration
//
// Writers implement the Writer interface and render a model.RunReport (one
// run with its fetch records) or a list of runs from the journal.
package report
