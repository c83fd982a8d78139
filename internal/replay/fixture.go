package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: one
// simulated advising dialogue with one persona.
type Fixture struct {
	Description        string                  `json:"description"`
	Persona            string                  `json:"persona"`
	Intent             string                  `json:"intent,omitempty"`
	PreferredCandidate string                  `json:"preferred_candidate,omitempty"`
	Interactions       []FixtureInteraction    `json:"interactions"`
	ExpectedResults    []FixtureExpectedResult `json:"expected_results"`
}

// FixtureInteraction is one advisor turn. Intent and Knowledge override
// the fixture-wide values for this turn only.
type FixtureInteraction struct {
	TurnID    string `json:"turn_id"`
	Advisor   string `json:"advisor"`
	Intent    string `json:"intent,omitempty"`
	Knowledge string `json:"knowledge,omitempty"`
}

// FixtureExpectedResult captures the expected reply source per turn.
type FixtureExpectedResult struct {
	TurnID string `json:"turn_id"`
	Source string `json:"source"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the structural invariants a replay relies on.
func (f *Fixture) Validate() error {
	if strings.TrimSpace(f.Persona) == "" {
		return fmt.Errorf("persona is required")
	}
	if len(f.Interactions) == 0 {
		return fmt.Errorf("no interactions")
	}
	seen := make(map[string]bool, len(f.Interactions))
	for i, in := range f.Interactions {
		if in.TurnID == "" {
			return fmt.Errorf("interaction %d: turn_id is required", i)
		}
		if seen[in.TurnID] {
			return fmt.Errorf("interaction %d: duplicate turn_id %q", i, in.TurnID)
		}
		seen[in.TurnID] = true
	}
	for _, e := range f.ExpectedResults {
		if !seen[e.TurnID] {
			return fmt.Errorf("expected result for unknown turn %q", e.TurnID)
		}
		switch orchestrator.Source(e.Source) {
		case orchestrator.SourceBackend, orchestrator.SourceFallback:
		default:
			return fmt.Errorf("turn %q: source must be backend or fallback, got %q", e.TurnID, e.Source)
		}
	}
	return nil
}

// ToInteractions converts fixture turns to domain interactions, applying
// the fixture-wide intent where a turn has none.
func (f *Fixture) ToInteractions() []Interaction {
	out := make([]Interaction, len(f.Interactions))
	for i, fi := range f.Interactions {
		intent := fi.Intent
		if intent == "" {
			intent = f.Intent
		}
		out[i] = Interaction{TurnID: fi.TurnID, Advisor: fi.Advisor, Intent: intent, Knowledge: fi.Knowledge}
	}
	return out
}

// ToReplayConfig converts fixture-level settings to a ReplayConfig.
func (f *Fixture) ToReplayConfig() ReplayConfig {
	return ReplayConfig{Persona: f.Persona, PreferredCandidate: f.PreferredCandidate}
}

// #endregion fixture-loader
