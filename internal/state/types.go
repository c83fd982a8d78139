package state

import "time"

// #region reply-record
// ReplyRecord is one row of reply_log: provenance metadata for a generated
// reply. Dialogue text is never stored.
type ReplyRecord struct {
	ReplyID    string
	Persona    string
	Intent     string
	Source     string // "backend" | "fallback"
	Candidate  string
	Category   string
	Examples   int
	ReplyChars int
	Attempts   int
	CreatedAt  time.Time
}

// #endregion reply-record

// #region attempt-record
// AttemptRecord is one row of candidate_attempts.
type AttemptRecord struct {
	ReplyID    string
	AttemptNum int
	Candidate  string
	Outcome    string // "success" | "empty" | "retryable" | "fatal"
	Error      string
	LatencyMS  int64
	CreatedAt  time.Time
}

// #endregion attempt-record
