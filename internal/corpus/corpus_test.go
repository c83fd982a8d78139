package corpus

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// #region helpers

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func memDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

const sheet = `Mentor,Mentee,Mentee Label,Persona
"Have you thought about research?","I'm not sure I'm qualified.",Exploration and Reflection,Beta
"What courses are you taking?","Physics 1 and Calculus 2.",Understanding and Clarification,ALPHA
"",missing advisor,Feedback and Support,alpha
`

// #endregion helpers

// #region sources

func TestCSVSource_StandardLayout(t *testing.T) {
	p := writeFile(t, t.TempDir(), "sheet.csv", sheet)

	exs, err := CSVSource{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, exs, 2)

	assert.Equal(t, "Have you thought about research?", exs[0].Prompt)
	assert.Equal(t, "beta", exs[0].Persona)
	assert.Equal(t, "Exploration and Reflection", exs[0].Intent)
	assert.Equal(t, "alpha", exs[1].Persona)
}

func TestCSVSource_DialogueLayout(t *testing.T) {
	body := "dialogue,Mentee Label\n" +
		"\"How are your classes going this term? I'm doing fine but calculus is hard. Have you tried tutoring? Not yet but I will.\",Problem Solving\n" +
		"\"Short.\",Other\n"
	p := writeFile(t, t.TempDir(), "dialogue.csv", body)

	exs, err := CSVSource{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, exs, 1)
	assert.Equal(t, "How are your classes going this term. I'm doing fine but calculus is hard", exs[0].Prompt)
	assert.Equal(t, "Problem Solving", exs[0].Intent)
	assert.Empty(t, exs[0].Persona)
}

func TestCSVSource_UnsupportedLayout(t *testing.T) {
	p := writeFile(t, t.TempDir(), "bad.csv", "a,b\n1,2\n")
	_, err := CSVSource{Path: p}.Load(context.Background())
	assert.Error(t, err)
}

func TestJSONSource_DialoguePairs(t *testing.T) {
	body := `{"dialogue_pairs": [
		{"advisor": "What brings you in today?", "student": "I want to find an internship."},
		{"advisor": "", "student": "dropped"}
	]}`
	p := writeFile(t, t.TempDir(), "pairs.json", body)

	exs, err := JSONSource{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, exs, 1)
	assert.True(t, exs[0].Wildcard())
}

func TestJSONSource_Array(t *testing.T) {
	body := `[{"advisor": "Which semester are you in?", "student": "My third.", "persona": "Echo", "intent": "Understanding"}]`
	p := writeFile(t, t.TempDir(), "arr.json", body)

	exs, err := JSONSource{Path: p}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, exs, 1)
	assert.Equal(t, "echo", exs[0].Persona)
	assert.False(t, exs[0].Wildcard())
}

func TestSQLiteSource_ImportAndLoad(t *testing.T) {
	db := memDB(t)
	n, err := Import(context.Background(), db, []Exchange{
		{Prompt: "p1", Reply: "r1", Persona: "alpha"},
		{Prompt: "p2", Reply: "r2", Intent: "Feedback and Support"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exs, err := SQLiteSource{DB: db}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, exs, 2)
	assert.Equal(t, "alpha", exs[0].Persona)
	assert.Equal(t, "Feedback and Support", exs[1].Intent)
}

func TestMultiSource_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "sheet.csv", sheet)
	src := MultiSource{Sources: []Source{
		CSVSource{Path: good},
		JSONSource{Path: filepath.Join(dir, "missing.json")},
	}}

	exs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, exs, 2)
}

func TestMultiSource_AllFail(t *testing.T) {
	dir := t.TempDir()
	src := MultiSource{Sources: []Source{
		CSVSource{Path: filepath.Join(dir, "a.csv")},
		JSONSource{Path: filepath.Join(dir, "b.json")},
	}}
	_, err := src.Load(context.Background())
	assert.True(t, errors.Is(err, ErrCorpusUnavailable))
}

// #endregion sources

// #region load-query

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), CSVSource{Path: "/nonexistent/sheet.csv"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorpusUnavailable))
}

func TestLoad_DecodeErrorIsUnavailable(t *testing.T) {
	p := writeFile(t, t.TempDir(), "broken.json", "{not json")
	_, err := Load(context.Background(), JSONSource{Path: p}, nil)
	assert.True(t, errors.Is(err, ErrCorpusUnavailable))
}

func TestLoadOrEmpty_Degrades(t *testing.T) {
	c := LoadOrEmpty(context.Background(), CSVSource{Path: "/nonexistent.csv"}, nil)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Query("alpha", ""))
}

func TestQuery(t *testing.T) {
	c := New([]Exchange{
		{Prompt: "a", Reply: "1", Persona: "alpha", Intent: "Goal Setting and Planning"},
		{Prompt: "b", Reply: "2", Persona: "beta", Intent: "Feedback and Support"},
		{Prompt: "c", Reply: "3", Source: SourceTrainingPackage},
	})

	tests := []struct {
		name    string
		persona string
		intent  string
		want    int
	}{
		{"no filters", "", "", 3},
		{"persona case-insensitive with wildcard", "ALPHA", "", 2},
		{"intent substring", "", "planning", 1},
		{"persona and intent", "beta", "feedback", 1},
		{"no match", "delta", "planning", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, c.Query(tt.persona, tt.intent), tt.want)
		})
	}
}

func TestQuery_ReturnsCopy(t *testing.T) {
	c := New([]Exchange{{Prompt: "a", Reply: "1", Persona: "alpha"}})
	got := c.Query("alpha", "")
	got[0].Prompt = "mutated"
	assert.Equal(t, "a", c.All()[0].Prompt)
}

func TestStats(t *testing.T) {
	c := New([]Exchange{
		{Prompt: "a", Reply: "1", Persona: "Alpha", Intent: "X"},
		{Prompt: "b", Reply: "2", Persona: "alpha", Intent: "X"},
		{Prompt: "c", Reply: "3", Source: SourceTrainingPackage},
	})
	s := c.Stats()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ByPersona["alpha"])
	assert.Equal(t, 2, s.ByIntent["X"])
	assert.Equal(t, 1, s.Wildcards)
}

// #endregion load-query

// #region store-watcher

func TestStore_Swap(t *testing.T) {
	s := NewStore(nil)
	assert.Equal(t, 0, s.Current().Len())

	snapshot := s.Current()
	prev := s.Swap(New([]Exchange{{Prompt: "a", Reply: "b"}}))
	assert.Same(t, snapshot, prev)
	assert.Equal(t, 0, snapshot.Len(), "held snapshot must not change")
	assert.Equal(t, 1, s.Current().Len())

	s.Swap(nil)
	assert.Equal(t, 1, s.Current().Len())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sheet.csv", sheet)
	src := CSVSource{Path: p}
	store := NewStore(LoadOrEmpty(context.Background(), src, nil))
	require.Equal(t, 2, store.Current().Len())

	w, err := NewWatcher(src, store, []string{p}, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	extra := sheet + "\"Any plans for summer?\",\"Maybe an internship.\",Goal Setting and Planning,delta\n"
	require.NoError(t, os.WriteFile(p, []byte(extra), 0o644))

	select {
	case n := <-w.reloaded:
		assert.Equal(t, 3, n)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}
	assert.Equal(t, 3, store.Current().Len())
}

// #endregion store-watcher
