package persona

// #region imports
import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/advisor-sim/internal/rng"
)

// #endregion imports

//go:embed personas.yaml
var defaultProfiles []byte

// KnownIDs is the closed set of simulated student personas.
var KnownIDs = []string{"alpha", "beta", "delta", "echo"}

// ErrUnknownPersona is returned for ids outside the registry.
var ErrUnknownPersona = errors.New("unknown persona")

// #region types

// StyleTemplate is the persona-specific language guidance block.
type StyleTemplate struct {
	Title     string   `yaml:"title"`
	Strict    bool     `yaml:"strict"`
	Rules     []string `yaml:"rules"`
	Tone      string   `yaml:"tone"`
	AfterHelp string   `yaml:"after_help"`
}

// Profile describes one simulated student.
type Profile struct {
	ID               string        `yaml:"id"`
	Description      string        `yaml:"description"`
	Traits           []string      `yaml:"traits"`
	HelpSeeking      string        `yaml:"help_seeking"`
	OpeningQuestions []string      `yaml:"opening_questions"`
	Style            StyleTemplate `yaml:"style"`
}

// Label is the upper-case persona name used in prompts.
func (p Profile) Label() string {
	return strings.ToUpper(p.ID)
}

type profileFile struct {
	Personas []Profile `yaml:"personas"`
}

// #endregion types

// #region registry

// Registry is the immutable persona table.
type Registry struct {
	profiles map[string]Profile
	order    []string
}

// Default returns the embedded persona table.
func Default() (*Registry, error) {
	return Parse(defaultProfiles)
}

// LoadFile reads a persona table from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas: %w", err)
	}
	return Parse(data)
}

// Parse decodes a persona table and validates it against KnownIDs.
func Parse(data []byte) (*Registry, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode personas: %w", err)
	}
	r := &Registry{profiles: make(map[string]Profile, len(f.Personas))}
	for _, p := range f.Personas {
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona %q", p.ID)
		}
		r.profiles[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks that every known persona has a complete profile and style template.
func (r *Registry) Validate() error {
	var errs []error
	for _, id := range KnownIDs {
		p, ok := r.profiles[id]
		if !ok {
			errs = append(errs, fmt.Errorf("persona %q: missing profile", id))
			continue
		}
		if p.Description == "" || len(p.Traits) == 0 || p.HelpSeeking == "" {
			errs = append(errs, fmt.Errorf("persona %q: incomplete profile", id))
		}
		if p.Style.Title == "" || len(p.Style.Rules) == 0 || p.Style.Tone == "" {
			errs = append(errs, fmt.Errorf("persona %q: missing style template", id))
		}
	}
	for _, id := range r.order {
		if !slices.Contains(KnownIDs, id) {
			errs = append(errs, fmt.Errorf("persona %q: not a known persona", id))
		}
	}
	return errors.Join(errs...)
}

// Get returns the profile for id (case-insensitive).
func (r *Registry) Get(id string) (Profile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownPersona, id)
	}
	return p, nil
}

// IDs returns persona ids in table order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// OpeningQuestion picks an opening line for starting a simulated dialogue.
func (r *Registry) OpeningQuestion(id string, src rng.Source) (string, error) {
	p, err := r.Get(id)
	if err != nil {
		return "", err
	}
	if len(p.OpeningQuestions) == 0 {
		return "", fmt.Errorf("persona %q has no opening questions", p.ID)
	}
	return p.OpeningQuestions[src.IntN(len(p.OpeningQuestions))], nil
}

// #endregion registry
