package classifier

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

// DefaultThreshold is the decision threshold used when a model file does
// not set one.
const DefaultThreshold = 0.5

//go:embed baseline.yaml
var baselineYAML []byte

// modelFile is the on-disk YAML representation of a LinearModel.
type modelFile struct {
	Name      string             `yaml:"name"`
	Bias      float64            `yaml:"bias"`
	Threshold *float64           `yaml:"threshold"`
	Weights   map[string]float64 `yaml:"weights"`
}

// LinearModel is a logistic regression over the feature vector:
//
//	score = sigmoid(bias + sum(weight[f] * v[f]))
//
// A vector is labelled phishing when score >= threshold.
// LinearModel is immutable and safe for concurrent use.
type LinearModel struct {
	name      string
	bias      float64
	threshold float64
	weights   [feature.NumFeatures]float64
}

// ParseLinearModel decodes a LinearModel from YAML. Weight keys must be
// published feature names; an unknown name returns ErrSchemaMismatch.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var mf modelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(mf.Weights) == 0 {
		return nil, fmt.Errorf("%w: no weights", ErrInvalidModel)
	}

	m := &LinearModel{
		name:      mf.Name,
		bias:      mf.Bias,
		threshold: DefaultThreshold,
	}
	if m.name == "" {
		m.name = "linear"
	}
	if mf.Threshold != nil {
		if *mf.Threshold <= 0 || *mf.Threshold >= 1 {
			return nil, fmt.Errorf("%w: threshold %v must be in (0,1)", ErrInvalidModel, *mf.Threshold)
		}
		m.threshold = *mf.Threshold
	}

	var unknown []string
	for name, w := range mf.Weights {
		f, ok := feature.ParseFeatureName(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		m.weights[f] = w
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown features %v", ErrSchemaMismatch, unknown)
	}
	return m, nil
}

// LoadLinearModel reads and parses a YAML model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's flags or config
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	m, err := ParseLinearModel(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	return m, nil
}

// Baseline returns the model embedded in the binary.
func Baseline() *LinearModel {
	m, err := ParseLinearModel(baselineYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded baseline model is invalid: %v", err))
	}
	return m
}

// Name returns the model name from the YAML file.
func (m *LinearModel) Name() string {
	return m.name
}

// Threshold returns the decision threshold.
func (m *LinearModel) Threshold() float64 {
	return m.threshold
}

// Weight returns the weight of feature f.
func (m *LinearModel) Weight(f feature.Feature) float64 {
	if !f.Valid() {
		return 0
	}
	return m.weights[f]
}

// Score returns the phishing probability of v.
func (m *LinearModel) Score(v feature.Vector) float64 {
	z := m.bias
	for i, x := range v {
		z += m.weights[i] * float64(x)
	}
	return 1 / (1 + math.Exp(-z))
}

// Predict implements Classifier. It never fails except on a cancelled context.
func (m *LinearModel) Predict(ctx context.Context, v feature.Vector) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{Label: model.LabelUnknown}, err
	}
	score := m.Score(v)
	label := model.LabelBenign
	if score >= m.threshold {
		label = model.LabelPhishing
	}
	return Prediction{Label: label, Score: score}, nil
}
