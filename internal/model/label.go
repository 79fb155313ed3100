package model

import (
	"encoding/json"
	"fmt"
)

// Label is the verdict of a classifier for one URL.
// The numeric values of LabelBenign and LabelPhishing are the classifier's
// output classes and appear as-is in JSON.
type Label int

const (
	// LabelUnknown means no classifier produced a verdict (classification
	// was skipped or failed).
	LabelUnknown Label = -1

	// LabelBenign is the classifier's class 0.
	LabelBenign Label = 0

	// LabelPhishing is the classifier's class 1.
	LabelPhishing Label = 1
)

// String returns a human-readable representation of the label.
func (l Label) String() string {
	switch l {
	case LabelBenign:
		return "BENIGN"
	case LabelPhishing:
		return "PHISHING"
	default:
		return "UNKNOWN"
	}
}

// Known reports whether l is one of the classifier's output classes.
func (l Label) Known() bool {
	return l == LabelBenign || l == LabelPhishing
}

// LabelFromClass converts a raw classifier class (0 or 1) into a Label.
func LabelFromClass(class int) (Label, error) {
	switch class {
	case 0:
		return LabelBenign, nil
	case 1:
		return LabelPhishing, nil
	default:
		return LabelUnknown, fmt.Errorf("unexpected classifier class %d", class)
	}
}

// MarshalJSON encodes the label as its numeric class.
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(l))
}

// UnmarshalJSON decodes a numeric class. Values other than 0 and 1 decode
// to LabelUnknown.
func (l *Label) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	label, err := LabelFromClass(n)
	if err != nil {
		label = LabelUnknown
	}
	*l = label
	return nil
}
