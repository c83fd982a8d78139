package backend

// #region imports
import (
	"context"
	"regexp"
	"strings"
	"time"
)

// #endregion imports

// #region defaults

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxTokens   = 250
	DefaultTemperature = 0.8
	DefaultTopP        = 0.95
)

// Control markup such as <s>, </s> or <|eot_id|>.
var markupRe = regexp.MustCompile(`<[^>]+>`)

// Clean strips control markup and surrounding whitespace.
func Clean(text string) string {
	return strings.TrimSpace(markupRe.ReplaceAllString(text, ""))
}

// #endregion defaults

// #region invoker

// Invoker issues a single bounded generation call to one candidate.
// It holds no per-call state and is safe for concurrent use.
type Invoker struct {
	transport  Transport
	classifier ErrorClassifier
	timeout    time.Duration
	topP       float64
}

// NewInvoker builds an invoker. A nil classifier means DefaultClassifier and
// a non-positive timeout means DefaultTimeout.
func NewInvoker(transport Transport, classifier ErrorClassifier, timeout time.Duration) *Invoker {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{transport: transport, classifier: classifier, timeout: timeout, topP: DefaultTopP}
}

// Invoke makes exactly one call. On success it returns cleaned text, which
// may be empty; on failure it returns the classified error.
func (inv *Invoker) Invoke(ctx context.Context, messages []Message, candidate string, maxTokens int, temperature float64) (string, *ClassifiedError) {
	callCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	text, err := inv.transport.Complete(callCtx, Completion{
		Model:       candidate,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        inv.topP,
	})
	if err != nil {
		return "", inv.classifier.Classify(err)
	}
	return Clean(text), nil
}

// #endregion invoker
