package knowledge

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// #endregion

// DefaultCacheSize bounds the number of cached query results.
const DefaultCacheSize = 256

// DefaultMaxResults is the snippet count used when a caller passes max <= 0.
const DefaultMaxResults = 3

// ErrNoRecords is returned when a knowledge directory holds no usable records.
var ErrNoRecords = errors.New("knowledge: no records")

// #region record

// Record is one knowledge item. Files carry either title/content pairs or
// question/answer pairs; both shapes may appear in one directory.
type Record struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Source   string `json:"-"`
}

// Text is the snippet handed to the prompt.
func (r Record) Text() string {
	if c := strings.TrimSpace(r.Content); c != "" {
		return c
	}
	a := strings.TrimSpace(r.Answer)
	if a == "" {
		return ""
	}
	if q := strings.TrimSpace(r.Question); q != "" {
		return q + ": " + a
	}
	return a
}

type document struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

func (r Record) document() document {
	heading := r.Title
	if heading == "" {
		heading = r.Question
	}
	body := r.Content
	if body == "" {
		body = r.Answer
	}
	return document{Heading: heading, Body: body}
}

// #endregion

// #region load

// LoadDir reads every *.json file in dir. Each file is a JSON array of
// records; files that are not arrays are skipped with a warning.
func LoadDir(dir string, logger *zap.Logger) ([]Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("knowledge: glob %s: %w", dir, err)
	}
	sort.Strings(paths)

	var out []Record
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("knowledge: read %s: %w", p, err)
		}
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			logger.Warn("[KNOW] skipping file", zap.String("path", p), zap.Error(err))
			continue
		}
		kept := 0
		for _, r := range recs {
			if r.Text() == "" {
				continue
			}
			r.Source = filepath.Base(p)
			out = append(out, r)
			kept++
		}
		logger.Debug("[KNOW] loaded file", zap.String("path", p), zap.Int("records", kept))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecords, dir)
	}
	return out, nil
}

// #endregion

// #region base

// Base is a searchable, read-only knowledge set. Safe for concurrent use.
type Base struct {
	records []Record
	index   bleve.Index
	cache   *lru.Cache[string, []string]
	logger  *zap.Logger
}

// New indexes records in memory. cacheSize <= 0 uses DefaultCacheSize.
func New(records []Record, cacheSize int, logger *zap.Logger) (*Base, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("knowledge: create index: %w", err)
	}
	batch := index.NewBatch()
	for i, r := range records {
		if err := batch.Index(strconv.Itoa(i), r.document()); err != nil {
			index.Close()
			return nil, fmt.Errorf("knowledge: index record %d: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("knowledge: commit index: %w", err)
	}

	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("knowledge: create cache: %w", err)
	}

	return &Base{
		records: append([]Record(nil), records...),
		index:   index,
		cache:   cache,
		logger:  logger.Named("knowledge"),
	}, nil
}

// Open loads dir and indexes it.
func Open(dir string, cacheSize int, logger *zap.Logger) (*Base, error) {
	recs, err := LoadDir(dir, logger)
	if err != nil {
		return nil, err
	}
	return New(recs, cacheSize, logger)
}

// Close releases the index.
func (b *Base) Close() error {
	return b.index.Close()
}

// Len is the number of records.
func (b *Base) Len() int {
	return len(b.records)
}

// #endregion

// #region search

// Search returns up to max distinct snippets for query, best match first.
// When nothing matches it returns the first records so the prompt still
// carries some domain grounding. A blank query returns nil.
func (b *Base) Search(query string, max int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" || len(b.records) == 0 {
		return nil, nil
	}
	if max <= 0 {
		max = DefaultMaxResults
	}

	key := strconv.Itoa(max) + "|" + strings.ToLower(query)
	if hit, ok := b.cache.Get(key); ok {
		return append([]string(nil), hit...), nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	// over-fetch so duplicates do not starve the result
	req.Size = max * 3
	res, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge: search: %w", err)
	}

	seen := make(map[string]bool, max)
	out := make([]string, 0, max)
	add := func(text string) {
		if len(out) >= max || text == "" || seen[text] {
			return
		}
		seen[text] = true
		out = append(out, text)
	}
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(b.records) {
			continue
		}
		add(b.records[i].Text())
	}
	if len(out) == 0 {
		b.logger.Debug("[KNOW] no match, using leading records", zap.String("query", query))
		for _, r := range b.records {
			add(r.Text())
		}
	}

	b.cache.Add(key, out)
	return append([]string(nil), out...), nil
}

// Context joins the snippets for query into a prompt-ready block.
func (b *Base) Context(query string, max int) (string, error) {
	snippets, err := b.Search(query, max)
	if err != nil {
		return "", err
	}
	return strings.Join(snippets, "\n\n"), nil
}

// #endregion
