// Package model defines the data structures shared by the phishscan
// packages.
//
// This package contains the following main types:
//   - Label: the binary verdict returned by a classifier
//   - CheckReport: the result of checking one URL (features, verdict,
//     optional reputation data)
//   - ReputationReport: enrichment data collected about the URL's domain
//   - SimpleReport: a summarized, human-readable view of a CheckReport
//
// Models live in their own package so that pipeline, classifier, server,
// database and report can share them without import cycles. All of them
// serialize to JSON for report output and the HTTP API.
package model
