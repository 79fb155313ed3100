package server

import "errors"

var (
	// ErrNoInput is returned when a predict request carries no URL.
	ErrNoInput = errors.New("no input data provided")

	// ErrNoVerdict is returned when the check finished without a label.
	ErrNoVerdict = errors.New("check produced no verdict")
)

// Client-facing error messages. They never include the underlying cause.
const (
	msgNoInput          = "No input data provided"
	msgProcessing       = "Error processing input"
	msgMethodNotAllowed = "Method not allowed"
	msgTooLarge         = "Request body too large"
)
