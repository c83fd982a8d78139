package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
)

// #region types

// Generator produces one student reply.
type Generator interface {
	GenerateReply(ctx context.Context, req orchestrator.Request) (orchestrator.Reply, error)
}

// Interaction represents a single advisor turn for replay.
type Interaction struct {
	TurnID    string
	Advisor   string
	Intent    string
	Knowledge string
}

// ReplayConfig holds the settings shared by every turn of a run.
type ReplayConfig struct {
	Persona            string
	PreferredCandidate string
}

// ReplayResult captures the outcome of replaying one advisor turn.
type ReplayResult struct {
	TurnID    string
	Source    orchestrator.Source
	Candidate string
	Category  string
	Text      string
	Attempts  int
	ReplyID   string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns int
	Backend    int
	Fallback   int
	Attempts   int
	Candidates map[string]int // successful replies per candidate
}

// Mismatch is a turn whose source differs from the fixture's expectation.
type Mismatch struct {
	TurnID   string
	Expected string
	Actual   string
}

// #endregion types

// #region replay

// Replay plays the advisor turns in order. Each reply is appended to the
// running conversation so later turns see earlier ones as context. It stops
// at the first error and returns the results gathered so far.
func Replay(ctx context.Context, gen Generator, interactions []Interaction, config ReplayConfig) ([]ReplayResult, error) {
	history := make([]prompt.Turn, 0, 2*len(interactions))
	results := make([]ReplayResult, 0, len(interactions))

	for _, inter := range interactions {
		history = append(history, prompt.Turn{Role: prompt.RoleAdvisor, Text: inter.Advisor})

		reply, err := gen.GenerateReply(ctx, orchestrator.Request{
			Persona:            config.Persona,
			Intent:             inter.Intent,
			KnowledgeContext:   inter.Knowledge,
			PreferredCandidate: config.PreferredCandidate,
			Context:            append([]prompt.Turn(nil), history...),
		})
		if err != nil {
			return results, fmt.Errorf("turn %s: %w", inter.TurnID, err)
		}

		history = append(history, prompt.Turn{Role: prompt.RoleStudent, Text: reply.Text})
		results = append(results, ReplayResult{
			TurnID:    inter.TurnID,
			Source:    reply.Source,
			Candidate: reply.Candidate,
			Category:  string(reply.Category),
			Text:      reply.Text,
			Attempts:  len(reply.Attempts),
			ReplyID:   reply.ID,
		})
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{TotalTurns: len(results), Candidates: make(map[string]int)}
	for _, r := range results {
		s.Attempts += r.Attempts
		switch r.Source {
		case orchestrator.SourceBackend:
			s.Backend++
			s.Candidates[r.Candidate]++
		case orchestrator.SourceFallback:
			s.Fallback++
		}
	}
	return s
}

// Compare checks results against the expected sources. Expectations for
// turns that were never replayed are reported with an empty Actual.
func Compare(results []ReplayResult, expected []FixtureExpectedResult) []Mismatch {
	byTurn := make(map[string]ReplayResult, len(results))
	for _, r := range results {
		byTurn[r.TurnID] = r
	}
	var out []Mismatch
	for _, e := range expected {
		r, ok := byTurn[e.TurnID]
		actual := ""
		if ok {
			actual = string(r.Source)
		}
		if actual != e.Source {
			out = append(out, Mismatch{TurnID: e.TurnID, Expected: e.Source, Actual: actual})
		}
	}
	return out
}

// #endregion replay
