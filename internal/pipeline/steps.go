package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/reputation"
)

// Step names as they appear in CheckReport.PerformedSteps.
const (
	StepExtract    = "extract"
	StepClassify   = "classify"
	StepReputation = "reputation"
)

// ExtractStep computes the feature vector of the report URL.
// It never fails.
type ExtractStep struct {
	extractor *feature.Extractor
}

// NewExtractStep creates an ExtractStep. A nil extractor uses the
// default settings.
func NewExtractStep(extractor *feature.Extractor) *ExtractStep {
	if extractor == nil {
		extractor = feature.NewExtractor()
	}
	return &ExtractStep{extractor: extractor}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return StepExtract
}

// Do executes the extraction step.
func (s *ExtractStep) Do(_ context.Context, report *model.CheckReport) error {
	report.Features = s.extractor.Extract(report.URL)
	return nil
}

// ClassifyStep runs the classifier on the extracted vector.
// It must run after ExtractStep.
type ClassifyStep struct {
	classifier classifier.Classifier
}

// NewClassifyStep creates a ClassifyStep.
func NewClassifyStep(c classifier.Classifier) *ClassifyStep {
	return &ClassifyStep{classifier: c}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return StepClassify
}

// Do executes the classification step. On failure the report label
// stays LabelUnknown.
func (s *ClassifyStep) Do(ctx context.Context, report *model.CheckReport) error {
	p, err := s.classifier.Predict(ctx, report.Features)
	if err != nil {
		report.Label = model.LabelUnknown
		return fmt.Errorf("classification failed: %w", err)
	}
	report.Label = p.Label
	report.Score = p.Score
	report.ClassifierName = classifier.NameOf(s.classifier)
	return nil
}

// ReputationStep attaches domain reputation data to the report.
type ReputationStep struct {
	service reputation.Service
	logger  *slog.Logger
}

// ReputationStepOption configures a ReputationStep.
type ReputationStepOption func(*ReputationStep)

// WithReputationLogger sets a custom logger for the reputation step.
func WithReputationLogger(logger *slog.Logger) ReputationStepOption {
	return func(s *ReputationStep) {
		s.logger = logger
	}
}

// NewReputationStep creates a ReputationStep.
func NewReputationStep(service reputation.Service, opts ...ReputationStepOption) *ReputationStep {
	s := &ReputationStep{
		service: service,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ReputationStep) Name() string {
	return StepReputation
}

// Do executes the reputation step. Partial source failures are kept in
// the reputation report; only a lookup where every source failed, or one
// that could not start, is returned as an error.
func (s *ReputationStep) Do(ctx context.Context, report *model.CheckReport) error {
	rep, err := s.service.Lookup(ctx, report.URL)
	if rep != nil {
		report.Reputation = rep
	}
	if err != nil {
		if errors.Is(err, reputation.ErrAllSourcesFailed) {
			s.logger.Warn("no reputation source answered", "url", report.URL)
		}
		return fmt.Errorf("reputation lookup failed: %w", err)
	}
	return nil
}

// NewCheckPipeline builds the standard check pipeline: extraction,
// classification and, when service is non-nil, reputation. The pipeline
// continues after a failed step so that a verdict survives a failed
// lookup.
func NewCheckPipeline(
	extractor *feature.Extractor,
	c classifier.Classifier,
	service reputation.Service,
	opts ...Option,
) *Pipeline {
	opts = append([]Option{WithContinueOnError(true)}, opts...)
	p := New(opts...)
	p.Add(NewExtractStep(extractor), NewClassifyStep(c))
	if service != nil {
		p.Add(NewReputationStep(service, WithReputationLogger(p.logger)))
	}
	return p
}
