package retrieval

import "github.com/danielpatrickdp/advisor-sim/internal/corpus"

// #region config
// SelectorConfig holds the scoring weights and the diversity threshold.
type SelectorConfig struct {
	SimilarityWeight   float64 // multiplier on sequence similarity in [0,1]
	KeywordWeight      float64 // per shared non-stopword keyword
	IntentBonus        float64 // added when the requested intent matches
	DiversityThreshold float64 // max pairwise similarity among selected items
}

// DefaultConfig returns the weights the selector was tuned with.
func DefaultConfig() SelectorConfig {
	return SelectorConfig{
		SimilarityWeight:   10,
		KeywordWeight:      0.5,
		IntentBonus:        5,
		DiversityThreshold: 0.75,
	}
}

// #endregion config

// #region query
// Query is the retrieval view of a generation request.
type Query struct {
	Persona string
	Intent  string
	Text    string // the advisor turn being answered
}

// #endregion query

// #region select-result
// SelectResult captures how a selection was reached.
type SelectResult struct {
	Selected        []corpus.Exchange
	PersonaMatched  int  // candidates after the persona filter
	PersonaFellBack bool // persona filter matched nothing, full pool used
	IntentMatched   int  // candidates after the intent filter (0 when not applied)
	Diverse         int  // items chosen by the diversity passes
	Backfilled      int  // items added by random backfill
}

// #endregion select-result

// #region scored
type scored struct {
	idx   int
	score float64
	text  string // lowercase prompt side
}

// #endregion scored
