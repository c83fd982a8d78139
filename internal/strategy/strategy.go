package strategy

// #region imports
import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// #endregion imports

//go:embed matrix.yaml
var defaultMatrix []byte

// #region keys

// Key identifies an advisor intent column of the strategy matrix.
type Key string

const (
	KeyGoalSetting    Key = "goal_setting"
	KeyProblemSolving Key = "problem_solving"
	KeyUnderstanding  Key = "understanding"
	KeyFeedback       Key = "feedback"
	KeyExploration    Key = "exploration"
)

// intentPhrases maps normalized intent label fragments to matrix keys, checked in order.
var intentPhrases = []struct {
	phrase string
	key    Key
}{
	{"goal setting and planning", KeyGoalSetting},
	{"problem solving and critical thinking", KeyProblemSolving},
	{"understanding and clarification", KeyUnderstanding},
	{"feedback and support", KeyFeedback},
	{"exploration and reflection", KeyExploration},
}

// KeyFor maps an intent label such as "Goal Setting & Planning" to its matrix key.
func KeyFor(intent string) (Key, bool) {
	norm := strings.ToLower(strings.ReplaceAll(intent, "&", "and"))
	norm = strings.Join(strings.Fields(norm), " ")
	for _, p := range intentPhrases {
		if strings.Contains(norm, p.phrase) {
			return p.key, true
		}
	}
	for _, p := range intentPhrases {
		if norm == string(p.key) {
			return p.key, true
		}
	}
	return "", false
}

// #endregion keys

// #region types

// Strategy is the advisor approach for one persona and intent.
type Strategy struct {
	Core    string   `yaml:"core"`
	Do      []string `yaml:"do"`
	Avoid   []string `yaml:"avoid"`
	Example string   `yaml:"example"`
	Text    string   `yaml:"text"` // raw matrix cell, parsed when Core/Do/Avoid are empty
}

// Empty reports whether the strategy carries no guidance.
func (s Strategy) Empty() bool {
	return s.Core == "" && len(s.Do) == 0 && len(s.Avoid) == 0
}

// Lookup resolves the advisor strategy for a persona and intent label.
type Lookup interface {
	Lookup(persona, intent string) (Strategy, bool)
}

type personaEntry struct {
	OverallTarget string           `yaml:"overall_target"`
	Strategies    map[Key]Strategy `yaml:"strategies"`
}

type matrixFile struct {
	Personas map[string]personaEntry `yaml:"personas"`
}

// #endregion types

// #region matrix

// Matrix is the immutable persona x intent strategy table.
type Matrix struct {
	personas map[string]personaEntry
}

// Default returns the embedded strategy matrix.
func Default() (*Matrix, error) {
	return Parse(defaultMatrix)
}

// LoadFile reads a strategy matrix from a YAML file.
func LoadFile(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy matrix: %w", err)
	}
	return Parse(data)
}

// Parse decodes a matrix. Cells given as raw text are parsed with ParseCell.
func Parse(data []byte) (*Matrix, error) {
	var f matrixFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode strategy matrix: %w", err)
	}
	m := &Matrix{personas: make(map[string]personaEntry, len(f.Personas))}
	for id, entry := range f.Personas {
		cells := make(map[Key]Strategy, len(entry.Strategies))
		for k, s := range entry.Strategies {
			if s.Empty() && s.Text != "" {
				parsed := ParseCell(s.Text)
				parsed.Text = s.Text
				s = parsed
			}
			cells[k] = s
		}
		entry.Strategies = cells
		m.personas[strings.ToLower(id)] = entry
	}
	return m, nil
}

// Lookup returns the strategy for persona and intent, if the matrix has one.
func (m *Matrix) Lookup(persona, intent string) (Strategy, bool) {
	entry, ok := m.personas[strings.ToLower(strings.TrimSpace(persona))]
	if !ok {
		return Strategy{}, false
	}
	key, ok := KeyFor(intent)
	if !ok {
		return Strategy{}, false
	}
	s, ok := entry.Strategies[key]
	if !ok || s.Empty() {
		return Strategy{}, false
	}
	return s, true
}

// OverallTarget returns the persona's overall advising target.
func (m *Matrix) OverallTarget(persona string) string {
	return m.personas[strings.ToLower(persona)].OverallTarget
}

// #endregion matrix

// #region parse-cell

const (
	markerCore    = "Core Strategy:"
	markerDo      = "✓ DO:"
	markerAvoid   = "✗ AVOID:"
	markerExample = "EXAMPLE:"
)

// ParseCell extracts the core strategy, DO and AVOID lists, and example from a
// raw matrix cell. List items shorter than six characters are dropped.
func ParseCell(text string) Strategy {
	var s Strategy

	if _, after, ok := strings.Cut(text, markerCore); ok {
		core := after
		if before, _, found := strings.Cut(core, markerDo); found {
			core = before
		} else if before, _, found := strings.Cut(core, markerAvoid); found {
			core = before
		}
		s.Core = strings.TrimSpace(core)
	}

	if _, after, ok := strings.Cut(text, markerDo); ok {
		section := after
		if before, _, found := strings.Cut(section, markerAvoid); found {
			section = before
		} else if before, _, found := strings.Cut(section, markerExample); found {
			section = before
		}
		s.Do = listItems(section, "✗")
	}

	if _, after, ok := strings.Cut(text, markerAvoid); ok {
		section := after
		if before, _, found := strings.Cut(section, markerExample); found {
			section = before
		}
		s.Avoid = listItems(section, "EXAMPLE")
	}

	if _, after, ok := strings.Cut(text, markerExample); ok {
		var lines []string
		for _, line := range strings.Split(strings.TrimSpace(after), "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.Contains(line, "Looks good") || strings.Contains(strings.ToLower(line), "(bfc") ||
				strings.HasPrefix(trimmed, "(") {
				break
			}
			lines = append(lines, line)
		}
		s.Example = strings.TrimSpace(strings.Join(lines, "\n"))
	}
	return s
}

func listItems(section, stopPrefix string) []string {
	var items []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "•"):
			line = strings.TrimSpace(strings.TrimPrefix(line, "•"))
		case strings.HasPrefix(line, "-"):
			line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		case line == "" || strings.HasPrefix(line, stopPrefix):
			continue
		}
		if utf8.RuneCountInString(line) > 5 {
			items = append(items, line)
		}
	}
	return items
}

// #endregion parse-cell
