// Package database provides SQLite-based storage for phishscan verdicts.
//
// VerdictDB keeps one row per checked URL: the label, score, classifier
// name and a few reputation facts. Feature vectors are not persisted; they
// can always be recomputed from the URL.
//
// URLs are indexed by a SHA3-256 fingerprint so lookups do not depend on
// the length of the stored URL.
package database
