package logging

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/advisor-sim/internal/fallback"
	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
	"github.com/danielpatrickdp/advisor-sim/internal/state"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	s, err := state.NewStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.DB()
}

// #endregion helpers

// #region log-reply-tests
func TestLogReply_Success(t *testing.T) {
	db := setupDB(t)

	entry := ReplyEntry{
		ReplyID:    "r1",
		Persona:    "alpha",
		Intent:     "Feedback and Support",
		Source:     "backend",
		Candidate:  "gemma-3-27b-it",
		Examples:   2,
		ReplyChars: 64,
		Attempts:   1,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogReply(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var persona, source string
	var category sql.NullString
	db.QueryRow("SELECT persona, source, category FROM reply_log WHERE reply_id = 'r1'").Scan(&persona, &source, &category)
	if persona != "alpha" || source != "backend" {
		t.Errorf("unexpected row: persona=%q source=%q", persona, source)
	}
	if category.Valid {
		t.Errorf("expected NULL category, got %q", category.String)
	}
}

func TestLogReply_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)

	if err := LogReply(db, ReplyEntry{ReplyID: "r2", Persona: "beta", Source: "fallback"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAt string
	db.QueryRow("SELECT created_at FROM reply_log WHERE reply_id = 'r2'").Scan(&createdAt)
	if _, err := time.Parse(time.RFC3339Nano, createdAt); err != nil {
		t.Errorf("created_at not RFC3339Nano: %q", createdAt)
	}
}

func TestLogReply_DuplicateID(t *testing.T) {
	db := setupDB(t)
	entry := ReplyEntry{ReplyID: "dup", Persona: "beta", Source: "fallback"}
	if err := LogReply(db, entry); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := LogReply(db, entry); err == nil {
		t.Fatal("expected error for duplicate reply id")
	}
}

// #endregion log-reply-tests

// #region recorder-tests
func TestSQLRecorder_RecordReply(t *testing.T) {
	db := setupDB(t)
	rec := NewSQLRecorder(db)

	reply := orchestrator.Reply{
		ID:       "reply-1",
		Text:     "I'm not sure about this.",
		Source:   orchestrator.SourceFallback,
		Category: fallback.Other,
		Persona:  "beta",
		Attempts: []orchestrator.Attempt{
			{Candidate: "a", Outcome: orchestrator.OutcomeRetryable, Error: "meta tensor", Latency: 15 * time.Millisecond},
			{Candidate: "b", Outcome: orchestrator.OutcomeFatal, Error: "401", Latency: 5 * time.Millisecond},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := rec.RecordReply(context.Background(), reply); err != nil {
		t.Fatalf("RecordReply: %v", err)
	}

	var chars, attempts int
	db.QueryRow("SELECT reply_chars, attempts FROM reply_log WHERE reply_id = 'reply-1'").Scan(&chars, &attempts)
	if chars != len("I'm not sure about this.") || attempts != 2 {
		t.Errorf("unexpected reply row: chars=%d attempts=%d", chars, attempts)
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM candidate_attempts WHERE reply_id = 'reply-1'").Scan(&n)
	if n != 2 {
		t.Errorf("expected 2 attempt rows, got %d", n)
	}
}

func TestSQLRecorder_RollsBackOnFailure(t *testing.T) {
	db := setupDB(t)
	rec := NewSQLRecorder(db)

	reply := orchestrator.Reply{ID: "same", Persona: "alpha", Source: orchestrator.SourceBackend}
	if err := rec.RecordReply(context.Background(), reply); err != nil {
		t.Fatalf("first record: %v", err)
	}
	reply.Attempts = []orchestrator.Attempt{{Candidate: "a", Outcome: orchestrator.OutcomeSuccess}}
	if err := rec.RecordReply(context.Background(), reply); err == nil {
		t.Fatal("expected duplicate id error")
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM candidate_attempts").Scan(&n)
	if n != 0 {
		t.Errorf("expected rolled back attempts, got %d rows", n)
	}
}

// #endregion recorder-tests

// #region stats-tests
func TestCandidateStats(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := LogReply(db, ReplyEntry{ReplyID: "r", Persona: "alpha", Source: "backend"}); err != nil {
		t.Fatal(err)
	}
	add := func(cand, outcome string, age time.Duration, latency time.Duration) {
		t.Helper()
		err := LogAttempt(db, AttemptEntry{ReplyID: "r", Candidate: cand, Outcome: outcome, Latency: latency, CreatedAt: now.Add(-age)})
		if err != nil {
			t.Fatal(err)
		}
	}
	add("a", "success", 0, 100*time.Millisecond)
	add("a", "retryable", 0, 300*time.Millisecond)
	add("b", "fatal", time.Hour, 10*time.Millisecond)
	add("b", "empty", time.Hour, 30*time.Millisecond)

	stats, err := CandidateStats(db, now)
	if err != nil {
		t.Fatalf("CandidateStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(stats))
	}
	a, b := stats[0], stats[1]
	if a.Candidate != "a" || a.Attempts != 2 || a.Successes != 1 || a.Retryable != 1 {
		t.Errorf("unexpected stats for a: %+v", a)
	}
	if math.Abs(a.SuccessRate-0.5) > 1e-9 {
		t.Errorf("expected success rate 0.5, got %f", a.SuccessRate)
	}
	if math.Abs(a.AvgLatencyMS-200) > 1e-9 {
		t.Errorf("expected avg latency 200, got %f", a.AvgLatencyMS)
	}
	if b.Fatal != 1 || b.Empty != 1 || b.SuccessRate != 0 {
		t.Errorf("unexpected stats for b: %+v", b)
	}
}

func TestCandidateStats_DecayFavorsRecent(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := LogReply(db, ReplyEntry{ReplyID: "r", Persona: "alpha", Source: "backend"}); err != nil {
		t.Fatal(err)
	}
	// Old failure, fresh success: weighted rate is above the plain 0.5.
	for _, e := range []AttemptEntry{
		{ReplyID: "r", Candidate: "a", Outcome: "retryable", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{ReplyID: "r", Candidate: "a", Outcome: "success", CreatedAt: now},
	} {
		if err := LogAttempt(db, e); err != nil {
			t.Fatal(err)
		}
	}
	stats, err := CandidateStats(db, now)
	if err != nil {
		t.Fatal(err)
	}
	if stats[0].SuccessRate <= 0.9 {
		t.Errorf("expected decay-weighted rate > 0.9, got %f", stats[0].SuccessRate)
	}
}

// #endregion stats-tests

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		logger, err := NewLogger(verbose)
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", verbose, err)
		}
		if got := logger.Core().Enabled(-1); got != verbose {
			t.Errorf("debug enabled = %v, want %v", got, verbose)
		}
	}
}

var _ orchestrator.Recorder = (*SQLRecorder)(nil)
