package corpus

import "errors"

// #region errors

// ErrCorpusUnavailable is returned when a source is missing or unreadable.
// Callers degrade to an empty corpus.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// #endregion errors

// #region exchange

// SourceTrainingPackage tags exchanges extracted from the training package.
// They carry no persona label and match every persona.
const SourceTrainingPackage = "pdf_training_package"

// Exchange is one reference advisor/student exchange.
type Exchange struct {
	Prompt  string `json:"advisor" yaml:"advisor"` // advisor side
	Reply   string `json:"student" yaml:"student"` // student side
	Intent  string `json:"intent,omitempty" yaml:"intent,omitempty"`
	Persona string `json:"persona,omitempty" yaml:"persona,omitempty"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Wildcard reports whether the exchange matches any persona.
func (e Exchange) Wildcard() bool {
	return e.Source == SourceTrainingPackage
}

// #endregion exchange

// #region stats

// Stats summarizes a loaded corpus.
type Stats struct {
	Total     int            `json:"total"`
	ByPersona map[string]int `json:"by_persona"`
	ByIntent  map[string]int `json:"by_intent"`
	Wildcards int            `json:"wildcards"`
}

// #endregion stats
