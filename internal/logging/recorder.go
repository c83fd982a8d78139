package logging

// #region imports
import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/danielpatrickdp/advisor-sim/internal/orchestrator"
)

// #endregion

// #region recorder

// SQLRecorder persists reply provenance, one transaction per reply.
type SQLRecorder struct {
	db *sql.DB
}

// NewSQLRecorder returns a recorder over db. The reply_log and
// candidate_attempts tables must exist (see state.NewStore).
func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

// RecordReply writes the reply row and its attempts.
func (r *SQLRecorder) RecordReply(ctx context.Context, reply orchestrator.Reply) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := LogReply(tx, ReplyEntry{
		ReplyID:    reply.ID,
		Persona:    reply.Persona,
		Intent:     reply.Intent,
		Source:     string(reply.Source),
		Candidate:  reply.Candidate,
		Category:   string(reply.Category),
		Examples:   reply.Examples,
		ReplyChars: utf8.RuneCountInString(reply.Text),
		Attempts:   len(reply.Attempts),
		CreatedAt:  reply.CreatedAt,
	}); err != nil {
		return err
	}
	for i, a := range reply.Attempts {
		if err := LogAttempt(tx, AttemptEntry{
			ReplyID:    reply.ID,
			AttemptNum: i,
			Candidate:  a.Candidate,
			Outcome:    string(a.Outcome),
			Error:      a.Error,
			Latency:    a.Latency,
			CreatedAt:  reply.CreatedAt,
		}); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// #endregion
