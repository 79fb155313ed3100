package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nao1215/phishscan/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noop returns a step that succeeds without touching the report.
func noop(name string) StepFunc {
	return NewStepFunc(name, func(context.Context, *model.CheckReport) error { return nil })
}

// failing returns a step that fails with err.
func failing(name string, err error) StepFunc {
	return NewStepFunc(name, func(context.Context, *model.CheckReport) error { return err })
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(nil))
	if p.logger == nil {
		t.Error("expected slog.Default when the logger is nil")
	}
	if p.continueOnError {
		t.Error("continueOnError should default to false")
	}
	if len(p.Steps()) != 0 {
		t.Errorf("Steps() = %v, expected none", p.Steps())
	}

	if !New(WithContinueOnError(true)).continueOnError {
		t.Error("WithContinueOnError(true) not applied")
	}
}

func TestPipeline_Add(t *testing.T) {
	t.Parallel()

	p := New().Add(noop(StepExtract)).Add(noop(StepClassify), noop(StepReputation))

	want := []string{StepExtract, StepClassify, StepReputation}
	got := p.Steps()
	if len(got) != len(want) {
		t.Fatalf("Steps() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Steps()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	errLookup := errors.New("whois refused")

	tests := []struct {
		name            string
		continueOnError bool
		steps           []Step
		wantErr         error
		wantSteps       []string
		wantLabel       model.Label
		wantTimedOut    bool
		wantRecorded    bool
	}{
		{
			name: "all steps succeed",
			steps: []Step{
				noop("extract"),
				NewStepFunc("label", func(_ context.Context, r *model.CheckReport) error {
					r.Label = model.LabelPhishing
					return nil
				}),
			},
			wantSteps: []string{"extract", "label"},
			wantLabel: model.LabelPhishing,
		},
		{
			name: "stops at the first failure",
			steps: []Step{
				noop("extract"),
				failing("lookup", errLookup),
				noop("never"),
			},
			wantErr:      errLookup,
			wantSteps:    []string{"extract", "lookup"},
			wantLabel:    model.LabelUnknown,
			wantRecorded: true,
		},
		{
			name:            "continues after a failure",
			continueOnError: true,
			steps: []Step{
				failing("lookup", errLookup),
				NewStepFunc("label", func(_ context.Context, r *model.CheckReport) error {
					r.Label = model.LabelBenign
					return nil
				}),
			},
			wantSteps:    []string{"lookup", "label"},
			wantLabel:    model.LabelBenign,
			wantRecorded: true,
		},
		{
			name:            "deadline in a step marks the report",
			continueOnError: true,
			steps: []Step{
				failing("slow", context.DeadlineExceeded),
			},
			wantSteps:    []string{"slow"},
			wantLabel:    model.LabelUnknown,
			wantTimedOut: true,
			wantRecorded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(WithContinueOnError(tt.continueOnError), WithLogger(discardLogger())).Add(tt.steps...)
			report := model.NewCheckReport("http://a.com/")
			err := p.Execute(context.Background(), report)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Execute() error = %v, want %v", err, tt.wantErr)
			}
			if len(report.PerformedSteps) != len(tt.wantSteps) {
				t.Fatalf("PerformedSteps = %v, want %v", report.PerformedSteps, tt.wantSteps)
			}
			for i, name := range tt.wantSteps {
				if report.PerformedSteps[i] != name {
					t.Errorf("PerformedSteps[%d] = %q, want %q", i, report.PerformedSteps[i], name)
				}
			}
			if report.Label != tt.wantLabel {
				t.Errorf("Label = %v, want %v", report.Label, tt.wantLabel)
			}
			if report.TimedOut != tt.wantTimedOut {
				t.Errorf("TimedOut = %v, want %v", report.TimedOut, tt.wantTimedOut)
			}
			if recorded := report.Error != nil; recorded != tt.wantRecorded {
				t.Errorf("report.Error = %v, want recorded %v", report.Error, tt.wantRecorded)
			}
		})
	}
}

func TestPipeline_ExecuteCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	ran := 0
	p := New(WithContinueOnError(true), WithLogger(discardLogger())).Add(
		NewStepFunc("first", func(context.Context, *model.CheckReport) error {
			ran++
			cancel()
			return nil
		}),
		NewStepFunc("second", func(context.Context, *model.CheckReport) error {
			ran++
			return nil
		}),
	)

	report := model.NewCheckReport("http://a.com/")
	err := p.Execute(ctx, report)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ran != 1 {
		t.Errorf("ran %d steps, expected 1", ran)
	}
	if !report.TimedOut {
		t.Error("expected TimedOut after cancellation")
	}
	if report.ErrorMessage == "" {
		t.Error("expected the cancellation to be recorded")
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(discardLogger())).Add(NewStepFunc("wait", func(ctx context.Context, _ *model.CheckReport) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	report, err := p.Run(ctx, "http://a.com/")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if report == nil || report.URL != "http://a.com/" {
		t.Fatalf("report = %+v", report)
	}
	if !report.TimedOut {
		t.Error("expected TimedOut")
	}
}

func TestPipeline_Reusable(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(discardLogger())).Add(noop(StepExtract))
	for _, u := range []string{"http://a.com", "http://b.com"} {
		report, err := p.Run(context.Background(), u)
		if err != nil {
			t.Fatalf("Run(%q) error: %v", u, err)
		}
		if len(report.PerformedSteps) != 1 {
			t.Errorf("Run(%q) PerformedSteps = %v", u, report.PerformedSteps)
		}
	}
}
