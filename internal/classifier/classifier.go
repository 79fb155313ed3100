package classifier

import (
	"context"

	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
)

// Prediction is the output of a Classifier for one vector.
type Prediction struct {
	// Label is the predicted class.
	Label model.Label

	// Score is the phishing probability in [0,1]. Classifiers that only
	// produce a class report 0 or 1.
	Score float64
}

// Classifier predicts whether a feature vector describes a phishing URL.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, v feature.Vector) (Prediction, error)
}

// Named is implemented by classifiers that can identify themselves in
// reports and logs.
type Named interface {
	Name() string
}

// NameOf returns c's name, or "custom" when c does not implement Named.
func NameOf(c Classifier) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return "custom"
}

// Func adapts an ordinary function to the Classifier interface.
type Func func(ctx context.Context, v feature.Vector) (Prediction, error)

// Predict calls f(ctx, v).
func (f Func) Predict(ctx context.Context, v feature.Vector) (Prediction, error) {
	return f(ctx, v)
}

// predictionFromClass builds a Prediction for a classifier that only
// returns a class.
func predictionFromClass(class int) (Prediction, error) {
	label, err := model.LabelFromClass(class)
	if err != nil {
		return Prediction{Label: model.LabelUnknown}, err
	}
	return Prediction{Label: label, Score: float64(class)}, nil
}
