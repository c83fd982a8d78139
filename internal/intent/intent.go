package intent

// #region imports
import (
	"math"
	"strings"
)

// #endregion imports

// #region labels

// Advisor intent labels used across the corpus, strategy matrix, and UI.
const (
	Exploration    = "Exploration and Reflection"
	Feedback       = "Feedback and Support"
	GoalSetting    = "Goal Setting and Planning"
	ProblemSolving = "Problem Solving and Critical Thinking"
	Understanding  = "Understanding and Clarification"
)

// Labels lists every intent in tie-break order.
var Labels = []string{Exploration, Feedback, GoalSetting, ProblemSolving, Understanding}

// DefaultLabel is reported when no keyword matches.
const DefaultLabel = Understanding

// #endregion labels

// #region keywords

var intentKeywords = map[string][]string{
	Exploration: {
		"explore", "think", "consider", "wonder", "curious", "interest",
		"research", "direction", "future", "career", "path",
	},
	Feedback: {
		"help", "support", "encourage", "thank", "appreciate", "good",
		"great", "excellent", "wonderful", "amazing",
	},
	GoalSetting: {
		"goal", "plan", "planning", "schedule", "timeline", "deadline",
		"objective", "target", "aim", "strategy",
	},
	ProblemSolving: {
		"problem", "issue", "challenge", "difficult", "struggle",
		"solve", "solution", "fix", "trouble", "stuck",
	},
	Understanding: {
		"understand", "clarify", "explain", "confused", "unclear",
		"question", "ask", "what", "how", "why",
	},
}

// #endregion keywords

// #region classify

// Result is a classified intent with a confidence in [0,1].
type Result struct {
	Label      string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classify tags text with an advisor intent via substring keyword counts. No model call.
// Confidence is 0.5 plus 0.1 per hit, capped at 0.9; no hits yields DefaultLabel at 0.5.
func Classify(text string) Result {
	lower := strings.ToLower(text)

	best, bestScore := "", 0
	for _, label := range Labels {
		score := 0
		for _, kw := range intentKeywords[label] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	if bestScore == 0 {
		return Result{Label: DefaultLabel, Confidence: 0.5}
	}
	return Result{Label: best, Confidence: math.Min(0.9, 0.5+0.1*float64(bestScore))}
}

// Classifier adapts Classify to the (label, confidence) collaborator shape.
type Classifier struct{}

// ClassifyIntent returns the label and confidence for text.
func (Classifier) ClassifyIntent(text string) (string, float64) {
	r := Classify(text)
	return r.Label, r.Confidence
}

// #endregion classify
