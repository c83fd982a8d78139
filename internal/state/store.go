package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS reply_log (
	reply_id     TEXT PRIMARY KEY,
	persona      TEXT NOT NULL,
	intent       TEXT,
	source       TEXT NOT NULL,
	candidate    TEXT,
	category     TEXT,
	examples     INTEGER NOT NULL DEFAULT 0,
	reply_chars  INTEGER NOT NULL,
	attempts     INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS candidate_attempts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	reply_id     TEXT NOT NULL,
	attempt_num  INTEGER NOT NULL,
	candidate    TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	error        TEXT,
	latency_ms   INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (reply_id) REFERENCES reply_log(reply_id)
);

CREATE INDEX IF NOT EXISTS idx_candidate_attempts_candidate
ON candidate_attempts(candidate, created_at);
`

// #endregion schema

// #region store-struct
// Store owns the SQLite database holding the reply log and the imported
// reference exchanges.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := corpus.EnsureExchangeSchema(db); err != nil {
		return fmt.Errorf("migrate exchanges: %w", err)
	}
	return nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region get-reply
// GetReply retrieves one reply log row by id.
func (s *Store) GetReply(id string) (ReplyRecord, error) {
	row := s.db.QueryRow(
		`SELECT reply_id, persona, intent, source, candidate, category, examples, reply_chars, attempts, created_at
		 FROM reply_log WHERE reply_id = ?`, id,
	)
	rec, err := scanReply(row)
	if err != nil {
		return ReplyRecord{}, fmt.Errorf("get reply %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-reply

// #region list-replies
// ListReplies returns the most recent reply log rows.
func (s *Store) ListReplies(limit int) ([]ReplyRecord, error) {
	rows, err := s.db.Query(
		`SELECT reply_id, persona, intent, source, candidate, category, examples, reply_chars, attempts, created_at
		 FROM reply_log ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	var records []ReplyRecord
	for rows.Next() {
		rec, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReply(sc scanner) (ReplyRecord, error) {
	var rec ReplyRecord
	var intent, candidate, category sql.NullString
	var createdStr string
	if err := sc.Scan(&rec.ReplyID, &rec.Persona, &intent, &rec.Source, &candidate, &category,
		&rec.Examples, &rec.ReplyChars, &rec.Attempts, &createdStr); err != nil {
		return ReplyRecord{}, err
	}
	rec.Intent = intent.String
	rec.Candidate = candidate.String
	rec.Category = category.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion list-replies

// #region list-attempts
// ListAttempts returns the candidate attempts of one reply in call order.
func (s *Store) ListAttempts(replyID string) ([]AttemptRecord, error) {
	rows, err := s.db.Query(
		`SELECT reply_id, attempt_num, candidate, outcome, error, latency_ms, created_at
		 FROM candidate_attempts WHERE reply_id = ? ORDER BY attempt_num`, replyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var records []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		var errText sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.ReplyID, &rec.AttemptNum, &rec.Candidate, &rec.Outcome,
			&errText, &rec.LatencyMS, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Error = errText.String
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-attempts

// #region source-counts
// SourceCounts returns how many replies came from each source.
func (s *Store) SourceCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT source, COUNT(*) FROM reply_log GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("source counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[src] = n
	}
	return counts, rows.Err()
}

// #endregion source-counts
