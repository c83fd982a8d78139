package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/danielpatrickdp/advisor-sim/internal/backend"
	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/fallback"
	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
	"github.com/danielpatrickdp/advisor-sim/internal/persona"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
	"github.com/danielpatrickdp/advisor-sim/internal/retrieval"
	"github.com/danielpatrickdp/advisor-sim/internal/rng"
)

// #region helpers

type step struct {
	text string
	err  *backend.ClassifiedError
}

// sequenceInvoker answers calls in order, regardless of candidate.
type sequenceInvoker struct {
	mu    sync.Mutex
	steps []step
}

func (s *sequenceInvoker) Invoke(_ context.Context, _ []backend.Message, _ string, _ int, _ float64) (string, *backend.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return "", &backend.ClassifiedError{Message: "script exhausted"}
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.text, st.err
}

func newOrchestrator(t *testing.T, inv orchestrator.Invoker) *orchestrator.Orchestrator {
	t.Helper()
	reg, err := persona.Default()
	if err != nil {
		t.Fatalf("persona.Default: %v", err)
	}
	return orchestrator.NewOrchestrator(orchestrator.DefaultConfig(), orchestrator.NewCandidates("a", "b"), orchestrator.Deps{
		Personas: reg,
		Corpus:   corpus.NewStore(corpus.Empty()),
		Selector: retrieval.NewSelector(retrieval.DefaultConfig(), rng.New(1), nil),
		Builder:  prompt.NewBuilder(prompt.DefaultConfig(), nil),
		Invoker:  inv,
		Fallback: fallback.NewGenerator(rng.New(1)),
	})
}

// #endregion helpers

// #region fixture-tests

// TestFixture_AdvisingSession replays the advising_session fixture through a
// real orchestrator and compares each turn's source with the expectation.
func TestFixture_AdvisingSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "advising_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	inv := &sequenceInvoker{steps: []step{
		{text: "Um, I wanted to ask about my classes, I guess."},
		{err: &backend.ClassifiedError{Retryable: true, Message: "cannot copy out of meta tensor"}},
		{err: &backend.ClassifiedError{Message: "401 unauthorized"}},
		{text: "I haven't yet. I don't want to bother them."},
	}}

	results, err := Replay(context.Background(), newOrchestrator(t, inv), f.ToInteractions(), f.ToReplayConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}
	if mm := Compare(results, f.ExpectedResults); len(mm) != 0 {
		t.Errorf("source mismatches: %+v", mm)
	}

	if results[1].Category != string(fallback.Planning) {
		t.Errorf("expected planning fallback on t2, got %q", results[1].Category)
	}
	if results[1].Attempts != 2 {
		t.Errorf("expected 2 attempts on t2, got %d", results[1].Attempts)
	}

	s := Summarize(results)
	if s.Backend != 2 || s.Fallback != 1 || s.Attempts != 4 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestLoadFixture_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no persona", `{"interactions":[{"turn_id":"t1","advisor":"hi"}]}`, "persona"},
		{"no turns", `{"persona":"alpha"}`, "no interactions"},
		{"dup turn", `{"persona":"alpha","interactions":[{"turn_id":"t1"},{"turn_id":"t1"}]}`, "duplicate"},
		{"unknown expected", `{"persona":"alpha","interactions":[{"turn_id":"t1"}],"expected_results":[{"turn_id":"t9","source":"backend"}]}`, "unknown turn"},
		{"bad source", `{"persona":"alpha","interactions":[{"turn_id":"t1"}],"expected_results":[{"turn_id":"t1","source":"cache"}]}`, "source must be"},
		{"bad json", `{`, "parse fixture"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "f.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFixture(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestToInteractions_InheritsIntent(t *testing.T) {
	f := Fixture{
		Persona: "delta",
		Intent:  "Exploration and Reflection",
		Interactions: []FixtureInteraction{
			{TurnID: "t1", Advisor: "hi"},
			{TurnID: "t2", Advisor: "plans?", Intent: "Goal Setting and Planning"},
		},
	}
	got := f.ToInteractions()
	if got[0].Intent != "Exploration and Reflection" || got[1].Intent != "Goal Setting and Planning" {
		t.Errorf("unexpected intents: %+v", got)
	}
	if cfg := f.ToReplayConfig(); cfg.Persona != "delta" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

// #endregion fixture-tests
