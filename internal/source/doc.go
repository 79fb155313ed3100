// Package source collects candidate URLs from local inputs: URL list
// files, plain text documents and HTML documents.
//
// Only local files and readers are handled. Nothing in this package
// performs network I/O; harvested URLs are handed to the checker as-is.
package source
