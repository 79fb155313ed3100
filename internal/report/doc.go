// Package report renders check results.
//
// Per-URL writers implement Writer:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter / FullJSONWriter: structured JSON
//   - MarkdownWriter: Markdown with severity tables and a mermaid chart
//
// Batch writers implement TableWriter and emit one row per URL in the
// published feature column order followed by the verdict:
//   - CSVWriter
//   - XLSXWriter
package report
