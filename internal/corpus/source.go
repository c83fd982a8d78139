package corpus

// #region imports
import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// #endregion imports

// #region source

// Source enumerates reference exchanges from a backing store.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Exchange, error)
}

// #endregion source

// #region csv

// Column headers of the annotated conversation sheet.
const (
	ColumnAdvisor  = "mentor"
	ColumnStudent  = "mentee"
	ColumnIntent   = "mentee label"
	ColumnPersona  = "persona"
	ColumnDialogue = "dialogue"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+\s+`)

// CSVSource reads the annotated conversation sheet exported as CSV.
// Sheets with only a dialogue column are split into advisor/student halves.
type CSVSource struct {
	Path string
}

func (s CSVSource) Name() string { return "csv:" + s.Path }

func (s CSVSource) Load(ctx context.Context) ([]Exchange, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCorpusUnavailable, s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	_, hasAdvisor := cols[ColumnAdvisor]
	_, hasStudent := cols[ColumnStudent]
	_, hasDialogue := cols[ColumnDialogue]
	if !(hasAdvisor && hasStudent) && !hasDialogue {
		return nil, fmt.Errorf("unsupported sheet layout: columns %v", header)
	}

	var out []Exchange
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		intent := field(rec, cols, ColumnIntent)
		if hasAdvisor && hasStudent {
			adv, stu := field(rec, cols, ColumnAdvisor), field(rec, cols, ColumnStudent)
			if adv == "" || stu == "" {
				continue
			}
			out = append(out, Exchange{
				Prompt:  adv,
				Reply:   stu,
				Intent:  intent,
				Persona: strings.ToLower(field(rec, cols, ColumnPersona)),
			})
			continue
		}

		if ex, ok := splitDialogue(field(rec, cols, ColumnDialogue)); ok {
			ex.Intent = intent
			out = append(out, ex)
		}
	}
	return out, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// splitDialogue treats the first half of the sentences as the advisor side.
func splitDialogue(text string) (Exchange, bool) {
	var sentences []string
	for _, s := range sentenceSplit.Split(strings.TrimSpace(text), -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) < 2 {
		return Exchange{}, false
	}
	mid := len(sentences) / 2
	adv := strings.Join(sentences[:mid], ". ")
	stu := strings.Join(sentences[mid:], ". ")
	if len(adv) < 10 || len(stu) < 10 {
		return Exchange{}, false
	}
	return Exchange{Prompt: adv, Reply: stu}, true
}

// #endregion csv

// #region json

// JSONSource reads extracted dialogue pairs.
// Accepts either {"dialogue_pairs": [...]} or a bare array of pairs.
// Pairs without a source are tagged as training-package exchanges.
type JSONSource struct {
	Path string
}

func (s JSONSource) Name() string { return "json:" + s.Path }

func (s JSONSource) Load(ctx context.Context) ([]Exchange, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCorpusUnavailable, s.Path, err)
	}

	var pairs []Exchange
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &pairs)
	} else {
		var doc struct {
			DialoguePairs []Exchange `json:"dialogue_pairs"`
		}
		err = json.Unmarshal(data, &doc)
		pairs = doc.DialoguePairs
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}

	out := make([]Exchange, 0, len(pairs))
	for _, p := range pairs {
		p.Prompt, p.Reply = strings.TrimSpace(p.Prompt), strings.TrimSpace(p.Reply)
		if p.Prompt == "" || p.Reply == "" {
			continue
		}
		if p.Source == "" && p.Persona == "" {
			p.Source = SourceTrainingPackage
		}
		p.Persona = strings.ToLower(p.Persona)
		out = append(out, p)
	}
	return out, nil
}

// #endregion json

// #region sqlite

const exchangesSchema = `
CREATE TABLE IF NOT EXISTS reference_exchanges (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    advisor     TEXT NOT NULL,
    student     TEXT NOT NULL,
    intent      TEXT,
    persona     TEXT,
    source      TEXT,
    created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
`

// SQLiteSource reads exchanges from the reference_exchanges table.
type SQLiteSource struct {
	DB *sql.DB
}

// EnsureExchangeSchema creates the reference_exchanges table if missing.
func EnsureExchangeSchema(db *sql.DB) error {
	if _, err := db.Exec(exchangesSchema); err != nil {
		return fmt.Errorf("migrate reference_exchanges: %w", err)
	}
	return nil
}

func (s SQLiteSource) Name() string { return "sqlite:reference_exchanges" }

func (s SQLiteSource) Load(ctx context.Context) ([]Exchange, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT advisor, student, COALESCE(intent, ''), COALESCE(persona, ''), COALESCE(source, '')
		 FROM reference_exchanges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query reference_exchanges: %v", ErrCorpusUnavailable, err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.Prompt, &ex.Reply, &ex.Intent, &ex.Persona, &ex.Source); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Import appends exchanges to the reference_exchanges table in one transaction.
func Import(ctx context.Context, db *sql.DB, exchanges []Exchange) (int, error) {
	if err := EnsureExchangeSchema(db); err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reference_exchanges (advisor, student, intent, persona, source) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ex := range exchanges {
		if _, err := stmt.ExecContext(ctx, ex.Prompt, ex.Reply,
			nullIfEmpty(ex.Intent), nullIfEmpty(ex.Persona), nullIfEmpty(ex.Source)); err != nil {
			return 0, fmt.Errorf("insert exchange: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(exchanges), nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion sqlite

// #region multi

// MultiSource concatenates sources. A failing member is logged and skipped;
// the whole load fails only when every member fails.
type MultiSource struct {
	Sources []Source
	Logger  *zap.Logger
}

func (m MultiSource) Name() string {
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name()
	}
	return "multi[" + strings.Join(names, ",") + "]"
}

func (m MultiSource) Load(ctx context.Context) ([]Exchange, error) {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrCorpusUnavailable)
	}

	var out []Exchange
	var errs []error
	for _, s := range m.Sources {
		exs, err := s.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("[CORPUS] source failed, skipping", zap.String("source", s.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, exs...)
	}
	if len(errs) == len(m.Sources) {
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, errors.Join(errs...))
	}
	return out, nil
}

// #endregion multi
