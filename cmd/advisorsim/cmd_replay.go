package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/advisor-sim/internal/config"
	"github.com/danielpatrickdp/advisor-sim/internal/replay"
)

var (
	replayStrict  bool
	replayJSONOut bool
	replayPersona string
)

// replayCmd plays a dialogue fixture against the configured backend.
var replayCmd = &cobra.Command{
	Use:   "replay [fixture.json]",
	Short: "Replay a dialogue fixture and summarize backend vs fallback replies",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayStrict, "strict", false, "Fail when a turn's source differs from the fixture")
	replayCmd.Flags().BoolVar(&replayJSONOut, "json", false, "Output as JSON")
	replayCmd.Flags().StringVar(&replayPersona, "persona", "", "Override the fixture persona")
}

type replayOutput struct {
	Description string                `json:"description"`
	Persona     string                `json:"persona"`
	Results     []replay.ReplayResult `json:"results"`
	Summary     replay.ReplaySummary  `json:"summary"`
	Mismatches  []replay.Mismatch     `json:"mismatches,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}
	if replayPersona != "" {
		f.Persona = replayPersona
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	interactions := f.ToInteractions()
	for i := range interactions {
		if interactions[i].Knowledge == "" {
			interactions[i].Knowledge = a.knowledgeContext(interactions[i].Advisor)
		}
	}

	results, err := replay.Replay(ctx, a.orch, interactions, f.ToReplayConfig())
	if err != nil {
		return err
	}
	out := replayOutput{
		Description: f.Description,
		Persona:     f.Persona,
		Results:     results,
		Summary:     replay.Summarize(results),
		Mismatches:  replay.Compare(results, f.ExpectedResults),
	}

	w := cmd.OutOrStdout()
	if replayJSONOut {
		if err := printJSON(w, out); err != nil {
			return err
		}
	} else {
		printReplay(w, out)
	}
	if replayStrict && len(out.Mismatches) > 0 {
		return fmt.Errorf("%d turn(s) differ from the fixture", len(out.Mismatches))
	}
	return nil
}

func printReplay(w io.Writer, out replayOutput) {
	if out.Description != "" {
		fmt.Fprintf(w, "%s\n\n", out.Description)
	}
	for _, r := range out.Results {
		fmt.Fprintf(w, "[%s] %-8s %-28s %d attempt(s)\n    %s\n", r.TurnID, r.Source, dash(r.Candidate), r.Attempts, r.Text)
	}

	s := out.Summary
	fmt.Fprintf(w, "\n%d turn(s): %d backend, %d fallback, %d attempt(s)\n", s.TotalTurns, s.Backend, s.Fallback, s.Attempts)
	names := make([]string, 0, len(s.Candidates))
	for n := range s.Candidates {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-28s %d\n", n, s.Candidates[n])
	}
	for _, m := range out.Mismatches {
		fmt.Fprintf(w, "mismatch %s: expected %s, got %s\n", m.TurnID, m.Expected, dash(m.Actual))
	}
}
