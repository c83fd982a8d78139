package corpus

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// #endregion imports

// #region corpus

// Corpus is an immutable set of reference exchanges.
type Corpus struct {
	exchanges []Exchange
}

// New builds a Corpus from a copy of exchanges.
func New(exchanges []Exchange) *Corpus {
	cp := make([]Exchange, len(exchanges))
	copy(cp, exchanges)
	return &Corpus{exchanges: cp}
}

// Empty returns a corpus with no exchanges.
func Empty() *Corpus {
	return &Corpus{}
}

// Len returns the number of exchanges.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.exchanges)
}

// All returns a copy of every exchange in load order.
func (c *Corpus) All() []Exchange {
	if c == nil {
		return nil
	}
	out := make([]Exchange, len(c.exchanges))
	copy(out, c.exchanges)
	return out
}

// #endregion corpus

// #region load

// Load reads every exchange from src. Any failure is reported as ErrCorpusUnavailable.
func Load(ctx context.Context, src Source, logger *zap.Logger) (*Corpus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	exchanges, err := src.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrCorpusUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCorpusUnavailable, src.Name(), err)
	}
	logger.Info("[CORPUS] loaded", zap.String("source", src.Name()), zap.Int("exchanges", len(exchanges)))
	return New(exchanges), nil
}

// LoadOrEmpty is Load that degrades to an empty corpus instead of failing.
func LoadOrEmpty(ctx context.Context, src Source, logger *zap.Logger) *Corpus {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := Load(ctx, src, logger)
	if err != nil {
		logger.Warn("[CORPUS] unavailable, continuing with empty corpus", zap.Error(err))
		return Empty()
	}
	return c
}

// #endregion load

// #region query

// Query returns exchanges matching persona and intent. An empty filter matches all.
// Persona matching is case-insensitive and includes wildcard exchanges;
// intent matching accepts an exact or substring match.
func (c *Corpus) Query(persona, intent string) []Exchange {
	if c == nil {
		return nil
	}
	persona = strings.ToLower(strings.TrimSpace(persona))
	intent = strings.ToLower(strings.TrimSpace(intent))

	var out []Exchange
	for _, ex := range c.exchanges {
		if persona != "" && !MatchesPersona(ex, persona) {
			continue
		}
		if intent != "" && !MatchesIntent(ex, intent) {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// MatchesPersona reports whether ex belongs to persona (case-insensitive).
func MatchesPersona(ex Exchange, persona string) bool {
	if ex.Wildcard() {
		return true
	}
	return ex.Persona != "" && strings.EqualFold(ex.Persona, persona)
}

// MatchesIntent reports whether intent equals or is contained in the exchange's label.
func MatchesIntent(ex Exchange, intent string) bool {
	if ex.Intent == "" || intent == "" {
		return false
	}
	return strings.Contains(strings.ToLower(ex.Intent), strings.ToLower(intent))
}

// #endregion query

// #region stats

// Stats counts exchanges by persona and intent.
func (c *Corpus) Stats() Stats {
	s := Stats{ByPersona: map[string]int{}, ByIntent: map[string]int{}}
	if c == nil {
		return s
	}
	for _, ex := range c.exchanges {
		s.Total++
		if ex.Wildcard() {
			s.Wildcards++
		}
		if ex.Persona != "" {
			s.ByPersona[strings.ToLower(ex.Persona)]++
		}
		if ex.Intent != "" {
			s.ByIntent[ex.Intent]++
		}
	}
	return s
}

// #endregion stats
