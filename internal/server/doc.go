// Package server exposes phishscan over HTTP.
//
// POST /predict classifies one URL, sent either as the form field
// input_data or as a JSON body {"url": "..."}. GET /schema lists the
// feature columns and GET /healthz reports liveness.
//
// Failures are reported to clients with a fixed message; the cause is
// only written to the log.
package server
