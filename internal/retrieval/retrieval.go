package retrieval

// #region imports
import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/rng"
)

// #endregion imports

// #region selector
// Selector scores reference exchanges against a query and picks a diverse few.
type Selector struct {
	config SelectorConfig
	rand   rng.Source
	logger *zap.Logger
}

// NewSelector creates a Selector. rand drives the last-resort backfill.
func NewSelector(config SelectorConfig, rand rng.Source, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{config: config, rand: rand, logger: logger.Named("retrieval")}
}

// #endregion selector

// #region select
// Select returns at most k exchanges drawn from pool, best first.
func (s *Selector) Select(q Query, pool []corpus.Exchange, k int) []corpus.Exchange {
	return s.SelectDetailed(q, pool, k).Selected
}

// SelectDetailed runs the selection pipeline:
//  1. Persona filter, falling back to the whole pool when nothing matches
//  2. Intent filter, kept only when it matches something
//  3. Score: similarity, keyword overlap, intent bonus
//  4. Greedy diversity pass, then a second pass over the leftovers
//  5. Uniform random backfill from unselected items
func (s *Selector) SelectDetailed(q Query, pool []corpus.Exchange, k int) SelectResult {
	res := SelectResult{}
	if k <= 0 || len(pool) == 0 {
		return res
	}

	// Step 1: persona
	candidates := make([]int, 0, len(pool))
	if q.Persona != "" {
		for i, ex := range pool {
			if corpus.MatchesPersona(ex, q.Persona) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			res.PersonaFellBack = true
			s.logger.Info("[RETR] no examples for persona, using full pool",
				zap.String("persona", q.Persona), zap.Int("pool", len(pool)))
		}
	}
	if len(candidates) == 0 {
		for i := range pool {
			candidates = append(candidates, i)
		}
	}
	res.PersonaMatched = len(candidates)

	// Step 2: intent
	if q.Intent != "" {
		var matched []int
		for _, i := range candidates {
			if corpus.MatchesIntent(pool[i], q.Intent) {
				matched = append(matched, i)
			}
		}
		res.IntentMatched = len(matched)
		if len(matched) > 0 {
			candidates = matched
		}
	}

	// Step 3-4: score and sort
	ranked := s.score(q, pool, candidates)

	// Step 5: diversity
	selected := make([]int, 0, k)
	texts := make([]string, 0, k)
	taken := make(map[int]bool, k)
	pass := func(items []scored) {
		for _, c := range items {
			if len(selected) >= k {
				return
			}
			if taken[c.idx] || !s.diverse(c.text, texts) {
				continue
			}
			selected = append(selected, c.idx)
			texts = append(texts, c.text)
			taken[c.idx] = true
		}
	}
	pass(ranked)

	// Step 6: second pass over leftovers, same threshold
	if len(selected) < k {
		var leftovers []scored
		for _, c := range ranked {
			if !taken[c.idx] {
				leftovers = append(leftovers, c)
			}
		}
		pass(leftovers)
	}
	res.Diverse = len(selected)

	// Step 7: random backfill
	if len(selected) < k {
		var rest []int
		for _, c := range ranked {
			if !taken[c.idx] {
				rest = append(rest, c.idx)
			}
		}
		for _, j := range rng.Sample(s.rand, len(rest), k-len(selected)) {
			selected = append(selected, rest[j])
			taken[rest[j]] = true
			res.Backfilled++
		}
	}

	res.Selected = make([]corpus.Exchange, len(selected))
	for i, idx := range selected {
		res.Selected[i] = pool[idx]
	}
	s.logger.Debug("[RETR] selected",
		zap.Int("k", k), zap.Int("candidates", len(ranked)),
		zap.Int("diverse", res.Diverse), zap.Int("backfilled", res.Backfilled))
	return res
}

// #endregion select

// #region score
func (s *Selector) score(q Query, pool []corpus.Exchange, candidates []int) []scored {
	query := strings.ToLower(q.Text)
	queryTokens := tokenize(query)

	out := make([]scored, 0, len(candidates))
	for _, i := range candidates {
		ex := pool[i]
		text := strings.ToLower(ex.Prompt)

		score := Similarity(query, text) * s.config.SimilarityWeight
		score += float64(sharedKeywords(queryTokens, tokenize(text))) * s.config.KeywordWeight
		if q.Intent != "" && corpus.MatchesIntent(ex, q.Intent) {
			score += s.config.IntentBonus
		}
		out = append(out, scored{idx: i, score: score, text: text})
	}

	// stable: equal scores keep corpus order
	sort.SliceStable(out, func(a, b int) bool { return out[a].score > out[b].score })
	return out
}

// #endregion score

// #region diversity
// diverse reports whether text stays within the threshold of every selected text.
func (s *Selector) diverse(text string, selected []string) bool {
	for _, t := range selected {
		if Similarity(t, text) > s.config.DiversityThreshold {
			return false
		}
	}
	return true
}

// #endregion diversity
