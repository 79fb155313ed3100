package classifier

import "errors"

// Sentinel errors for classifier operations.
var (
	// ErrSchemaMismatch is returned when a model refers to feature names
	// that are not part of the published schema.
	ErrSchemaMismatch = errors.New("model does not match the feature schema")

	// ErrInvalidModel is returned when a model file is structurally invalid
	// (bad threshold, no weights, unparsable YAML).
	ErrInvalidModel = errors.New("invalid model")

	// ErrEmptyResponse is returned when a remote model answers without
	// any prediction.
	ErrEmptyResponse = errors.New("model server returned no prediction")

	// ErrUnexpectedStatus is returned when a remote model answers with a
	// non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("model server returned unexpected status")

	// ErrNoEndpoint is returned when a RemoteClassifier is created without
	// an endpoint URL.
	ErrNoEndpoint = errors.New("model server endpoint is required")
)
