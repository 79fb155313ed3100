package classifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

func TestParseLinearModel(t *testing.T) {
	t.Parallel()

	t.Run("valid model", func(t *testing.T) {
		t.Parallel()

		m, err := ParseLinearModel([]byte(`
name: test
bias: -1
threshold: 0.7
weights:
  IpAddress: 2
  NumDots: 0.5
`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Name() != "test" {
			t.Errorf("Name() = %q", m.Name())
		}
		if m.Threshold() != 0.7 {
			t.Errorf("Threshold() = %v", m.Threshold())
		}
		if m.Weight(feature.IPAddress) != 2 || m.Weight(feature.NumDots) != 0.5 {
			t.Error("weights not loaded")
		}
		if m.Weight(feature.Feature(-3)) != 0 {
			t.Error("invalid feature must have weight 0")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		m, err := ParseLinearModel([]byte("weights:\n  NoHttps: 1\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Name() != "linear" {
			t.Errorf("Name() = %q, expected linear", m.Name())
		}
		if m.Threshold() != DefaultThreshold {
			t.Errorf("Threshold() = %v, expected %v", m.Threshold(), DefaultThreshold)
		}
	})

	testCases := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"unknown feature", "weights:\n  NumDot: 1\n", ErrSchemaMismatch},
		{"no weights", "bias: 1\n", ErrInvalidModel},
		{"threshold too high", "threshold: 1\nweights:\n  NumDots: 1\n", ErrInvalidModel},
		{"threshold zero", "threshold: 0\nweights:\n  NumDots: 1\n", ErrInvalidModel},
		{"broken yaml", "weights: [\n", ErrInvalidModel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLinearModel([]byte(tc.data))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadLinearModel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	if err := os.WriteFile(path, []byte("name: disk\nweights:\n  AtSymbol: 1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := LoadLinearModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name() != "disk" {
		t.Errorf("Name() = %q", m.Name())
	}

	if _, err := LoadLinearModel(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBaseline(t *testing.T) {
	t.Parallel()

	m := Baseline()
	ctx := context.Background()

	testCases := []struct {
		url      string
		expected model.Label
	}{
		{"https://www.example.com/", model.LabelBenign},
		{"https://a.com", model.LabelBenign},
		{"http://192.168.1.1/login.php?user=admin", model.LabelPhishing},
		{"http://paypal.com.secure-update.paypal.com//confirm_account/~user/%20x", model.LabelPhishing},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()

			p, err := m.Predict(ctx, feature.Extract(tc.url))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Label != tc.expected {
				t.Errorf("Predict(%q) = %v (score %.3f), expected %v", tc.url, p.Label, p.Score, tc.expected)
			}
			if p.Score < 0 || p.Score > 1 {
				t.Errorf("score %v out of range", p.Score)
			}
		})
	}
}

func TestLinearModel_PredictCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := Baseline().Predict(ctx, feature.Extract("http://a.com"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if p.Label != model.LabelUnknown {
		t.Errorf("Label = %v, expected UNKNOWN", p.Label)
	}
}

func TestLinearModel_ScoreIsMonotonic(t *testing.T) {
	t.Parallel()

	m, err := ParseLinearModel([]byte("weights:\n  NumSensitiveWords: 1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var v feature.Vector
	prev := m.Score(v)
	for i := 1; i <= 5; i++ {
		v[feature.NumSensitiveWords] = i
		s := m.Score(v)
		if s <= prev {
			t.Fatalf("score did not increase at %d: %v <= %v", i, s, prev)
		}
		prev = s
	}
}
