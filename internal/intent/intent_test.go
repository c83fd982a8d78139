package intent

import (
	"testing"
)

// #region classify-tests
func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLabel string
		wantConf  float64
	}{
		{"no keywords", "Hello there.", Understanding, 0.5},
		{"planning", "Let's set a goal and a timeline for your plan", GoalSetting, 0.8},
		{"problem", "What problem are you stuck on?", ProblemSolving, 0.7},
		{"feedback", "Thank you, that's great work", Feedback, 0.7},
		{"exploration", "Have you thought about a future research career path?", Exploration, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Label != tt.wantLabel {
				t.Errorf("label: expected %q, got %q", tt.wantLabel, got.Label)
			}
			if diff := got.Confidence - tt.wantConf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence: expected %.2f, got %.2f", tt.wantConf, got.Confidence)
			}
		})
	}
}

func TestClassify_TieKeepsLabelOrder(t *testing.T) {
	// one exploration hit ("explore") and one feedback hit ("help")
	got := Classify("explore help")
	if got.Label != Exploration {
		t.Errorf("expected %q on tie, got %q", Exploration, got.Label)
	}
}

func TestClassifier_ClassifyIntent(t *testing.T) {
	label, conf := Classifier{}.ClassifyIntent("Can you clarify?")
	if label != Understanding {
		t.Errorf("expected %q, got %q", Understanding, label)
	}
	if conf < 0 || conf > 1 {
		t.Errorf("confidence out of range: %f", conf)
	}
}

// #endregion classify-tests
