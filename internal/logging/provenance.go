package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// #region log-reply
// LogReply writes a provenance entry to the reply_log table.
func LogReply(db Execer, entry ReplyEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO reply_log (reply_id, persona, intent, source, candidate, category, examples, reply_chars, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ReplyID,
		entry.Persona,
		nullIfEmpty(entry.Intent),
		entry.Source,
		nullIfEmpty(entry.Candidate),
		nullIfEmpty(entry.Category),
		entry.Examples,
		entry.ReplyChars,
		entry.Attempts,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log reply: %w", err)
	}
	return nil
}

// #endregion log-reply

// #region log-attempt
// LogAttempt writes one candidate attempt to the candidate_attempts table.
func LogAttempt(db Execer, entry AttemptEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO candidate_attempts (reply_id, attempt_num, candidate, outcome, error, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ReplyID,
		entry.AttemptNum,
		entry.Candidate,
		entry.Outcome,
		nullIfEmpty(entry.Error),
		entry.Latency.Milliseconds(),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// #endregion log-attempt

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
