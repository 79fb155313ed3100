package model

import (
	"time"

	"github.com/nao1215/phishscan/internal/feature"
)

// CheckReport is the result of checking one URL.
// It is filled progressively by the pipeline steps: feature extraction,
// classification and, optionally, reputation lookups.
type CheckReport struct {
	// URL is the input exactly as received.
	URL string `json:"url"`

	// DateChecked is when the check started.
	DateChecked time.Time `json:"date_checked"`

	// Features is the extracted feature vector in published column order.
	Features feature.Vector `json:"features"`

	// Label is the classifier verdict. LabelUnknown if classification did
	// not run or failed.
	Label Label `json:"prediction"`

	// Score is the classifier's phishing probability in [0,1] when the
	// classifier reports one, otherwise 0 or 1 matching Label.
	Score float64 `json:"score"`

	// ClassifierName identifies the model that produced Label.
	ClassifierName string `json:"classifier,omitempty"`

	// Reputation holds domain enrichment data when it was requested.
	Reputation *ReputationReport `json:"reputation,omitempty"`

	// PerformedSteps lists the names of pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut indicates the check was cut short by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error is the first error encountered, if any.
	Error error `json:"-"`

	// ErrorMessage mirrors Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCheckReport creates a new CheckReport for rawURL.
func NewCheckReport(rawURL string) *CheckReport {
	return &CheckReport{
		URL:         rawURL,
		DateChecked: time.Now(),
		Label:       LabelUnknown,
	}
}

// AddStep records that a pipeline step was executed.
func (r *CheckReport) AddStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}

// SetError records err as the report error if none was set yet.
func (r *CheckReport) SetError(err error) {
	if err == nil || r.Error != nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}

// IsPhishing reports whether the classifier flagged the URL.
func (r *CheckReport) IsPhishing() bool {
	return r.Label == LabelPhishing
}
