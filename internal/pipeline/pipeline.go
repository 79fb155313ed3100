package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/phishscan/internal/model"
)

// Step is one stage of a URL check. Do fills in its part of report and
// returns an error when it could not.
type Step interface {
	Do(ctx context.Context, report *model.CheckReport) error
	Name() string
}

// StepFunc adapts a function to the Step interface.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, report *model.CheckReport) error
}

// NewStepFunc creates a Step called name that runs fn.
func NewStepFunc(name string, fn func(ctx context.Context, report *model.CheckReport) error) StepFunc {
	return StepFunc{name: name, fn: fn}
}

// Do calls the wrapped function.
func (s StepFunc) Do(ctx context.Context, report *model.CheckReport) error {
	return s.fn(ctx, report)
}

// Name returns the step name.
func (s StepFunc) Name() string {
	return s.name
}

// Pipeline runs steps in order against one CheckReport.
// It keeps no per-check state, so one Pipeline may serve many checks.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. A nil logger keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithContinueOnError makes the pipeline run the remaining steps after
// a failure. The failure is still recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add appends steps and returns p.
func (p *Pipeline) Add(steps ...Step) *Pipeline {
	p.steps = append(p.steps, steps...)
	return p
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.Name())
	}
	return names
}

// Execute runs every step on report.
//
// A cancelled context stops the run before the next step and marks the
// report as timed out. A failing step is recorded in the report; the
// error is returned right away unless the pipeline continues on error.
// Every step that ran, successful or not, is listed in
// report.PerformedSteps.
func (p *Pipeline) Execute(ctx context.Context, report *model.CheckReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("check cancelled", "url", report.URL, "next_step", step.Name(), "reason", err)
			report.TimedOut = true
			report.SetError(err)
			return err
		}

		err := p.runStep(ctx, step, report)
		report.AddStep(step.Name())
		if err == nil {
			continue
		}

		report.SetError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			report.TimedOut = true
		}
		if !p.continueOnError {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step, report *model.CheckReport) error {
	start := time.Now()
	err := step.Do(ctx, report)
	elapsed := time.Since(start)
	if err != nil {
		p.logger.Error("step failed", "step", step.Name(), "url", report.URL, "elapsed", elapsed, "error", err)
		return err
	}
	p.logger.Debug("step done", "step", step.Name(), "url", report.URL, "elapsed", elapsed)
	return nil
}

// Run checks rawURL with a fresh report. The report is returned even
// when err is not nil.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (*model.CheckReport, error) {
	report := model.NewCheckReport(rawURL)
	err := p.Execute(ctx, report)
	return report, err
}
