package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

// instancesRequest is the payload sent to a model server: a single-row
// table keyed by feature name.
type instancesRequest struct {
	Instances []feature.Vector `json:"instances"`
}

// predictionsResponse is the payload returned by a model server.
type predictionsResponse struct {
	Predictions []int `json:"predictions"`
}

// RemoteClassifier sends feature vectors to an external model server.
// The server receives {"instances":[{...}]} and answers
// {"predictions":[0|1]}. RemoteClassifier is safe for concurrent use.
type RemoteClassifier struct {
	// endpoint is the full URL the vectors are POSTed to.
	endpoint string

	// client is the HTTP client used for requests.
	client *http.Client

	// apiKey is sent as a bearer token when non-empty.
	apiKey string

	// maxBodySize limits the size of the response body.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration
}

// RemoteOption configures a RemoteClassifier.
type RemoteOption func(*RemoteClassifier)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(c *RemoteClassifier) {
		c.client = client
	}
}

// WithAPIKey sets a bearer token sent with every request.
func WithAPIKey(key string) RemoteOption {
	return func(c *RemoteClassifier) {
		c.apiKey = key
	}
}

// WithMaxResponseSize sets the maximum accepted response body size.
func WithMaxResponseSize(size int64) RemoteOption {
	return func(c *RemoteClassifier) {
		c.maxBodySize = size
	}
}

// WithRemoteTimeout sets the per-request timeout.
func WithRemoteTimeout(timeout time.Duration) RemoteOption {
	return func(c *RemoteClassifier) {
		c.timeout = timeout
	}
}

// NewRemoteClassifier creates a classifier backed by the model server at
// endpoint.
func NewRemoteClassifier(endpoint string, opts ...RemoteOption) (*RemoteClassifier, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	c := &RemoteClassifier{
		endpoint:    endpoint,
		client:      http.DefaultClient,
		maxBodySize: 1024 * 1024, // 1MB
		timeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns "remote".
func (c *RemoteClassifier) Name() string {
	return "remote"
}

// Predict implements Classifier.
func (c *RemoteClassifier) Predict(ctx context.Context, v feature.Vector) (Prediction, error) {
	unknown := Prediction{Label: model.LabelUnknown}

	body, err := json.Marshal(instancesRequest{Instances: []feature.Vector{v}})
	if err != nil {
		return unknown, fmt.Errorf("failed to encode instances: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return unknown, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return unknown, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unknown, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var out predictionsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBodySize)).Decode(&out); err != nil {
		return unknown, fmt.Errorf("failed to decode model server response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return unknown, ErrEmptyResponse
	}

	return predictionFromClass(out.Predictions[0])
}
