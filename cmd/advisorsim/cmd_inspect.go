package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/advisor-sim/internal/config"
	"github.com/danielpatrickdp/advisor-sim/internal/logging"
	"github.com/danielpatrickdp/advisor-sim/internal/state"
)

var (
	inspectLast    int
	inspectReply   string
	inspectStats   bool
	inspectJSONOut bool
)

// inspectCmd reads the reply provenance log.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show recent replies, one reply's attempts, or per-candidate stats",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLast, "last", 20, "Show N most recent replies")
	inspectCmd.Flags().StringVar(&inspectReply, "reply", "", "Show one reply and its candidate attempts")
	inspectCmd.Flags().BoolVar(&inspectStats, "stats", false, "Show decay-weighted success rates per candidate")
	inspectCmd.Flags().BoolVar(&inspectJSONOut, "json", false, "Output as JSON instead of a table")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg := config.Read()
	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	switch {
	case inspectReply != "":
		return runDetailMode(out, store, inspectReply, inspectJSONOut)
	case inspectStats:
		return runStatsMode(out, store, inspectJSONOut)
	default:
		return runListMode(out, store, inspectLast, inspectJSONOut)
	}
}

// #region list-mode

type listRow struct {
	ReplyID   string `json:"reply_id"`
	Persona   string `json:"persona"`
	Source    string `json:"source"`
	Candidate string `json:"candidate,omitempty"`
	Category  string `json:"category,omitempty"`
	Attempts  int    `json:"attempts"`
	Chars     int    `json:"reply_chars"`
	CreatedAt string `json:"created_at"`
}

func runListMode(out io.Writer, store *state.Store, last int, jsonOut bool) error {
	recs, err := store.ListReplies(last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "no replies found")
		return nil
	}

	// store returns newest first; print chronologically
	rows := make([]listRow, len(recs))
	for i, r := range recs {
		rows[len(recs)-1-i] = listRow{
			ReplyID:   r.ReplyID,
			Persona:   r.Persona,
			Source:    r.Source,
			Candidate: r.Candidate,
			Category:  r.Category,
			Attempts:  r.Attempts,
			Chars:     r.ReplyChars,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}
	if jsonOut {
		return printJSON(out, rows)
	}

	fmt.Fprintf(out, "%-10s  %-7s  %-8s  %-28s  %-13s  %8s  %s\n",
		"Reply", "Persona", "Source", "Candidate", "Category", "Attempts", "Time")
	for _, r := range rows {
		fmt.Fprintf(out, "%-10s  %-7s  %-8s  %-28s  %-13s  %8d  %s\n",
			shortID(r.ReplyID), r.Persona, r.Source, dash(r.Candidate), dash(r.Category), r.Attempts, r.CreatedAt)
	}

	counts, err := store.SourceCounts()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAll time: %d backend, %d fallback\n", counts["backend"], counts["fallback"])
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Reply    state.ReplyRecord     `json:"reply"`
	Attempts []state.AttemptRecord `json:"attempts"`
}

func runDetailMode(out io.Writer, store *state.Store, replyID string, jsonOut bool) error {
	rec, err := store.GetReply(replyID)
	if err != nil {
		return err
	}
	atts, err := store.ListAttempts(replyID)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(out, detailOutput{Reply: rec, Attempts: atts})
	}

	fmt.Fprintf(out, "Reply:      %s\n", rec.ReplyID)
	fmt.Fprintf(out, "Persona:    %s\n", rec.Persona)
	fmt.Fprintf(out, "Intent:     %s\n", dash(rec.Intent))
	fmt.Fprintf(out, "Source:     %s\n", rec.Source)
	fmt.Fprintf(out, "Candidate:  %s\n", dash(rec.Candidate))
	fmt.Fprintf(out, "Category:   %s\n", dash(rec.Category))
	fmt.Fprintf(out, "Examples:   %d\n", rec.Examples)
	fmt.Fprintf(out, "Chars:      %d\n", rec.ReplyChars)
	fmt.Fprintf(out, "Created:    %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "\nAttempts:\n")
	for _, a := range atts {
		fmt.Fprintf(out, "  %d. %-28s  %-9s  %6dms  %s\n", a.AttemptNum+1, a.Candidate, a.Outcome, a.LatencyMS, a.Error)
	}
	return nil
}

// #endregion detail-mode

// #region stats-mode

func runStatsMode(out io.Writer, store *state.Store, jsonOut bool) error {
	stats, err := logging.CandidateStats(store.DB(), time.Now().UTC())
	if err != nil {
		return err
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].SuccessRate > stats[j].SuccessRate })
	if jsonOut {
		return printJSON(out, stats)
	}
	if len(stats) == 0 {
		fmt.Fprintln(out, "no attempts recorded")
		return nil
	}

	fmt.Fprintf(out, "%-28s  %8s  %7s  %9s  %5s  %5s  %7s  %9s\n",
		"Candidate", "Attempts", "Success", "Retryable", "Fatal", "Empty", "Rate", "Avg ms")
	for _, s := range stats {
		fmt.Fprintf(out, "%-28s  %8d  %7d  %9d  %5d  %5d  %7.2f  %9.1f\n",
			s.Candidate, s.Attempts, s.Successes, s.Retryable, s.Fatal, s.Empty, s.SuccessRate, s.AvgLatencyMS)
	}
	return nil
}

// #endregion stats-mode

// #region output

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion output
