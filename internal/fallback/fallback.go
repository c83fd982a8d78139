package fallback

// #region imports
import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/advisor-sim/internal/rng"
)

// #endregion imports

// #region category

// Category is the semantic class of the advisor turn being answered.
type Category string

const (
	Encouragement Category = "encouragement"
	Clarification Category = "clarification"
	Planning      Category = "planning"
	Exploration   Category = "exploration"
	Other         Category = "other"
)

// Categories is the closed category set, in keyword-match priority order.
var Categories = []Category{Encouragement, Clarification, Planning, Exploration, Other}

var categoryKeywords = map[Category][]string{
	Encouragement: {
		"great job", "well done", "proud", "encourage", "support", "you can do",
		"good work", "nice work", "keep it up", "don't worry", "believe in",
	},
	Clarification: {
		"clarify", "explain", "explanation", "understand", "confused", "what do you mean",
		"unclear", "which semester", "what courses", "have you taken", "can you tell me",
	},
	Planning: {
		"plan", "goal", "schedule", "timeline", "deadline", "next semester",
		"next step", "apply", "application", "register",
	},
	Exploration: {
		"explore", "interest", "curious", "research", "career", "future",
		"club", "internship", "consider", "wonder",
	},
}

// CategoryOf maps text to a category by keyword hit count; ties keep priority order.
// Keywords match whole words, except the last word of a keyword which may
// also prefix a longer word ("plan" matches "plans", not "explanation").
func CategoryOf(text string) Category {
	tokens := words(text)
	best, bestHits := Other, 0
	for _, c := range Categories {
		hits := 0
		for _, kw := range categoryKeywords[c] {
			if hasPhrase(tokens, strings.Fields(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = c, hits
		}
	}
	return best
}

// words lowercases text and splits it into letter, digit and apostrophe runs.
func words(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "’", "'")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func hasPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	last := len(phrase) - 1
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, w := range phrase {
			tok := tokens[i+j]
			if (j < last && tok != w) || (j == last && !strings.HasPrefix(tok, w)) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// #endregion category

// #region generator

// LastResort is returned only if a table has no usable variant.
const LastResort = "I'm not sure how to respond to that. Could you help me understand better?"

// defaultPersona backs personas missing from the table.
const defaultPersona = "alpha"

// Table maps persona id to category to reply variants.
type Table map[string]map[Category][]string

// Generator picks canned replies when no backend produced one.
type Generator struct {
	table Table
	rand  rng.Source
}

// NewGenerator returns a Generator over the built-in table.
func NewGenerator(rand rng.Source) *Generator {
	return &Generator{table: defaultTable, rand: rand}
}

// NewGeneratorWithTable returns a Generator over a custom table.
func NewGeneratorWithTable(t Table, rand rng.Source) *Generator {
	return &Generator{table: t, rand: rand}
}

// LoadTable reads a replacement table from YAML: persona -> category -> variants.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode fallback table: %w", err)
	}
	return t, nil
}

// Generate returns a non-empty reply for persona and category.
// Unknown personas use the alpha table; unknown categories use Other.
func (g *Generator) Generate(personaID string, c Category) string {
	variants := g.lookup(personaID, c)
	if len(variants) == 0 {
		return LastResort
	}
	return variants[g.rand.IntN(len(variants))]
}

// Variants returns the entries Generate chooses from for persona and
// category, after the same persona and category fallbacks.
func (g *Generator) Variants(personaID string, c Category) []string {
	variants := g.lookup(personaID, c)
	if len(variants) == 0 {
		return []string{LastResort}
	}
	return variants
}

func (g *Generator) lookup(personaID string, c Category) []string {
	byCat, ok := g.table[strings.ToLower(personaID)]
	if !ok {
		byCat = g.table[defaultPersona]
	}
	if variants := nonEmpty(byCat[c]); len(variants) > 0 {
		return variants
	}
	return nonEmpty(byCat[Other])
}

// Validate checks that every persona has at least one non-empty variant per category.
func (g *Generator) Validate(personaIDs []string) error {
	var errs []error
	for _, id := range personaIDs {
		byCat, ok := g.table[id]
		if !ok {
			errs = append(errs, fmt.Errorf("fallback: persona %q has no table", id))
			continue
		}
		for _, c := range Categories {
			if len(nonEmpty(byCat[c])) == 0 {
				errs = append(errs, fmt.Errorf("fallback: persona %q has no %s variants", id, c))
			}
		}
	}
	return errors.Join(errs...)
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// #endregion generator
