package backend

// #region imports
import "strings"

// #endregion

// #region classified-error

// ClassifiedError is the outcome of one failed backend attempt.
type ClassifiedError struct {
	Retryable bool
	Message   string
	Err       error
}

func (e *ClassifiedError) Error() string {
	if e.Retryable {
		return "retryable: " + e.Message
	}
	return "fatal: " + e.Message
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Kind is "retryable" or "fatal".
func (e *ClassifiedError) Kind() string {
	if e.Retryable {
		return "retryable"
	}
	return "fatal"
}

// #endregion

// #region classifier

// ErrorClassifier decides whether a failed attempt may move on to the next candidate.
type ErrorClassifier interface {
	Classify(err error) *ClassifiedError
}

// Backend failed to materialize model weights.
var modelLoadSignatures = []string{
	"cannot copy out of meta tensor",
	"meta tensor",
	"to_empty",
}

// Backend does not know the candidate name.
var unknownModelSignatures = []string{
	"model not found",
	"unknown model",
	"invalid model",
}

// SubstringClassifier marks an error retryable when its text contains any of
// the Retryable substrings (case-insensitive). Everything else is fatal.
type SubstringClassifier struct {
	Retryable []string
}

// DefaultClassifier treats model-loading failures and unknown candidates as retryable.
func DefaultClassifier() SubstringClassifier {
	sigs := make([]string, 0, len(modelLoadSignatures)+len(unknownModelSignatures))
	sigs = append(sigs, modelLoadSignatures...)
	sigs = append(sigs, unknownModelSignatures...)
	return SubstringClassifier{Retryable: sigs}
}

// StrictClassifier treats only model-loading failures as retryable.
// An unknown candidate name is a configuration error and ends the call.
func StrictClassifier() SubstringClassifier {
	return SubstringClassifier{Retryable: append([]string(nil), modelLoadSignatures...)}
}

// Classify returns nil for a nil error.
func (c SubstringClassifier) Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, sig := range c.Retryable {
		if strings.Contains(lower, strings.ToLower(sig)) {
			return &ClassifiedError{Retryable: true, Message: msg, Err: err}
		}
	}
	return &ClassifiedError{Retryable: false, Message: msg, Err: err}
}

// #endregion
