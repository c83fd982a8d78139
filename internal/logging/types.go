package logging

import "time"

// #region reply-entry
// ReplyEntry is a single row in the reply_log table. It carries provenance
// only: the reply text and dialogue are not persisted.
type ReplyEntry struct {
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

// #endregion reply-entry

// #region attempt-entry
// AttemptEntry is a single row in the candidate_attempts table.
type AttemptEntry struct {
	ReplyID    string
	AttemptNum int
	Candidate  string
	Outcome    string
	Error      string
	Latency    time.Duration
	CreatedAt  time.Time
}

// #endregion attempt-entry

// #region candidate-stat
// CandidateStat summarizes how one candidate has fared. SuccessRate is
// decay-weighted so recent attempts count more.
type CandidateStat struct {
	Candidate    string  `json:"candidate"`
	Attempts     int     `json:"attempts"`
	Successes    int     `json:"successes"`
	Retryable    int     `json:"retryable"`
	Fatal        int     `json:"fatal"`
	Empty        int     `json:"empty"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// #endregion candidate-stat
