package orchestrator

// #region imports
import (
	"strings"

	"github.com/danielpatrickdp/advisor-sim/internal/backend"
)

// #endregion

// #region candidates

// defaultCandidateNames is the production trial order.
var defaultCandidateNames = []string{
	"llama-3.3-70b-instruct",
	"llama-3.1-70b-instruct",
	"gemma-3-27b-it",
	"mistral-small-3.1",
	"granite-3.3-8b-instruct",
	"llama-3.1-nemotron-nano-8B-v1",
}

// Candidates is an immutable ordered list of backend candidates.
// Each candidate is tried at most once per call.
type Candidates struct {
	names []string
}

// NewCandidates builds a list, dropping blanks and later duplicates.
func NewCandidates(names ...string) Candidates {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return Candidates{names: out}
}

// DefaultCandidates returns the production trial order.
func DefaultCandidates() Candidates {
	return NewCandidates(defaultCandidateNames...)
}

// With returns a copy with preferred tried first. An empty preferred
// returns the list unchanged.
func (c Candidates) With(preferred string) Candidates {
	if strings.TrimSpace(preferred) == "" {
		return c
	}
	return NewCandidates(append([]string{preferred}, c.names...)...)
}

// Names returns the trial order.
func (c Candidates) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len is the number of candidates.
func (c Candidates) Len() int {
	return len(c.names)
}

// #endregion

// #region next-step

// next decides what the candidate loop does after one attempt: stop with
// text, move on, or give up and fall back.
func next(text string, cerr *backend.ClassifiedError) (Outcome, bool) {
	switch {
	case cerr == nil && text != "":
		return OutcomeSuccess, false
	case cerr == nil:
		return OutcomeEmpty, true
	case cerr.Retryable:
		return OutcomeRetryable, true
	default:
		return OutcomeFatal, false
	}
}

// #endregion
