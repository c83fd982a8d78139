package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []Record{
	{Title: "Office hours", Content: "Professors hold weekly office hours; students can drop in without an appointment."},
	{Title: "Capstone design", Content: "The senior capstone design sequence spans two semesters."},
	{Question: "How do I declare a minor?", Answer: "Submit the minor declaration form to the advising office."},
	{Question: "Where is the tutoring center?", Answer: "Professors hold weekly office hours; students can drop in without an appointment."},
}

func newBase(t *testing.T, recs []Record) *Base {
	t.Helper()
	b, err := New(recs, 8, nil)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestRecordText(t *testing.T) {
	assert.Equal(t, "body", Record{Title: "t", Content: " body "}.Text())
	assert.Equal(t, "Q?: A", Record{Question: "Q?", Answer: "A"}.Text())
	assert.Equal(t, "A", Record{Answer: "A"}.Text())
	assert.Empty(t, Record{Title: "only a title"}.Text())
}

func TestSearch_Matches(t *testing.T) {
	b := newBase(t, sample)

	got, err := b.Search("capstone design project", 2)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, sample[1].Content, got[0])

	got, err = b.Search("declare minor", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"How do I declare a minor?: Submit the minor declaration form to the advising office."}, got)
}

func TestSearch_Deduplicates(t *testing.T) {
	b := newBase(t, []Record{
		{Title: "hours", Content: "office hours are weekly"},
		{Title: "hours again", Content: "office hours are weekly"},
		{Title: "other", Content: "office moves next year"},
	})

	got, err := b.Search("office hours", 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "office hours are weekly", got[0])
}

func TestSearch_NoMatchFallsBack(t *testing.T) {
	b := newBase(t, sample)

	got, err := b.Search("zeppelin", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{sample[0].Content, sample[1].Content}, got)
}

func TestSearch_BlankQuery(t *testing.T) {
	b := newBase(t, sample)
	got, err := b.Search("   ", 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearch_CachedResultIsCopy(t *testing.T) {
	b := newBase(t, sample)

	first, err := b.Search("capstone", 1)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := b.Search("capstone", 1)
	require.NoError(t, err)
	assert.Equal(t, sample[1].Content, second[0])
	assert.Equal(t, 1, b.cache.Len())
}

func TestContext(t *testing.T) {
	b := newBase(t, sample)
	ctx, err := b.Context("zeppelin", 2)
	require.NoError(t, err)
	assert.Equal(t, sample[0].Content+"\n\n"+sample[1].Content, ctx)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a_training.json", `[{"title":"Advising","content":"Meet your advisor each term."},{"title":"empty"}]`)
	write("b_faq.json", `[{"question":"When is registration?","answer":"Early November."}]`)
	write("c_scenarios.json", `{"alpha":[]}`)
	write("notes.txt", `ignored`)

	recs, err := LoadDir(dir, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a_training.json", recs[0].Source)
	assert.Equal(t, "When is registration?: Early November.", recs[1].Text())

	b, err := Open(dir, 0, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, 2, b.Len())
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}
