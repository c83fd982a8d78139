package orchestrator

// #region imports
import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/advisor-sim/internal/backend"
	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/fallback"
	"github.com/danielpatrickdp/advisor-sim/internal/persona"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
)

// #endregion

// #region errors

// ErrInvalidPersona is the only non-cancellation error GenerateReply returns.
var ErrInvalidPersona = errors.New("invalid persona")

// #endregion

// #region request

// Turn is one line of the caller's dialogue context.
type Turn = prompt.Turn

// Request is one reply-generation call. The last turn of Context is the
// advisor message being answered.
type Request struct {
	Persona            string `json:"persona"`
	Intent             string `json:"intent,omitempty"`
	KnowledgeContext   string `json:"knowledge_context,omitempty"`
	PreferredCandidate string `json:"preferred_candidate,omitempty"`
	Context            []Turn `json:"context"`
}

// #endregion

// #region reply

// Source says where a reply's text came from.
type Source string

const (
	SourceBackend  Source = "backend"
	SourceFallback Source = "fallback"
)

// Outcome is the result of one candidate attempt.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeEmpty     Outcome = "empty"
	OutcomeRetryable Outcome = "retryable"
	OutcomeFatal     Outcome = "fatal"
)

// Attempt records one candidate call.
type Attempt struct {
	Candidate string        `json:"candidate"`
	Outcome   Outcome       `json:"outcome"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
}

// Reply is the generated student turn with its provenance.
type Reply struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Source    Source            `json:"source"`
	Candidate string            `json:"candidate,omitempty"`
	Category  fallback.Category `json:"category,omitempty"`
	Persona   string            `json:"persona"`
	Intent    string            `json:"intent,omitempty"`
	Examples  int               `json:"examples"`
	Attempts  []Attempt         `json:"attempts"`
	CreatedAt time.Time         `json:"created_at"`
}

// #endregion

// #region collaborators

// Invoker makes one generation call to one candidate.
type Invoker interface {
	Invoke(ctx context.Context, messages []backend.Message, candidate string, maxTokens int, temperature float64) (string, *backend.ClassifiedError)
}

// PersonaLookup resolves persona ids.
type PersonaLookup interface {
	Get(id string) (persona.Profile, error)
}

// ExampleSource yields the current corpus snapshot.
type ExampleSource interface {
	Current() *corpus.Corpus
}

// IntentClassifier labels advisor text with an intent and a confidence in [0,1].
type IntentClassifier interface {
	ClassifyIntent(text string) (string, float64)
}

// Recorder persists reply provenance. Failures are logged, never surfaced.
type Recorder interface {
	RecordReply(ctx context.Context, reply Reply) error
}

// #endregion

// #region config

// Config holds the per-call generation parameters.
type Config struct {
	Examples    int
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the production parameters.
func DefaultConfig() Config {
	return Config{
		Examples:    2,
		MaxTokens:   backend.DefaultMaxTokens,
		Temperature: backend.DefaultTemperature,
	}
}

// #endregion
