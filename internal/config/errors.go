package config

import "errors"

// Configuration validation errors returned by Validate and ValidateCheck.
var (
	// ErrNoTarget is returned when no URL, list file or document is given.
	ErrNoTarget = errors.New("no target specified: provide a URL, --list, --html or --text")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of
	// --json, --markdown and --csv is given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown, --csv")

	// ErrConflictingModels is returned when both a model file and a remote
	// model server are configured.
	ErrConflictingModels = errors.New("conflicting models: --model and --remote-model cannot be used together")

	// ErrInvalidRemoteURL is returned when the remote model URL is not an
	// absolute http(s) URL.
	ErrInvalidRemoteURL = errors.New("invalid remote model URL: must be an absolute http or https URL")

	// ErrInvalidReputationRate is returned for a negative rate or a
	// non-positive burst with rate limiting on.
	ErrInvalidReputationRate = errors.New("invalid reputation rate: rate must be non-negative and burst positive")

	// ErrInvalidBlocklistTTL is returned when the blocklist TTL is negative.
	ErrInvalidBlocklistTTL = errors.New("invalid blocklist ttl: must be non-negative")

	// ErrInvalidMaxRequestBytes is returned when the request size limit is
	// not positive.
	ErrInvalidMaxRequestBytes = errors.New("invalid max request size: must be positive")
)
