package model

import (
	"encoding/json"
	"testing"
)

func TestLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		label    Label
		expected string
		known    bool
	}{
		{LabelBenign, "BENIGN", true},
		{LabelPhishing, "PHISHING", true},
		{LabelUnknown, "UNKNOWN", false},
		{Label(7), "UNKNOWN", false},
	}

	for _, tc := range testCases {
		if got := tc.label.String(); got != tc.expected {
			t.Errorf("Label(%d).String() = %q, expected %q", tc.label, got, tc.expected)
		}
		if got := tc.label.Known(); got != tc.known {
			t.Errorf("Label(%d).Known() = %v, expected %v", tc.label, got, tc.known)
		}
	}
}

func TestLabelFromClass(t *testing.T) {
	t.Parallel()

	if l, err := LabelFromClass(0); err != nil || l != LabelBenign {
		t.Errorf("LabelFromClass(0) = %v, %v", l, err)
	}
	if l, err := LabelFromClass(1); err != nil || l != LabelPhishing {
		t.Errorf("LabelFromClass(1) = %v, %v", l, err)
	}
	if l, err := LabelFromClass(2); err == nil || l != LabelUnknown {
		t.Errorf("LabelFromClass(2) = %v, %v; expected error", l, err)
	}
}

func TestLabelJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		Prediction Label `json:"prediction"`
	}{LabelPhishing})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"prediction":1}` {
		t.Errorf("got %s", data)
	}

	var l Label
	if err := json.Unmarshal([]byte("0"), &l); err != nil || l != LabelBenign {
		t.Errorf("Unmarshal(0) = %v, %v", l, err)
	}
	if err := json.Unmarshal([]byte("5"), &l); err != nil || l != LabelUnknown {
		t.Errorf("Unmarshal(5) = %v, %v", l, err)
	}
	if err := json.Unmarshal([]byte(`"x"`), &l); err == nil {
		t.Error("expected error for non-numeric label")
	}
}
