package fallback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/advisor-sim/internal/persona"
	"github.com/danielpatrickdp/advisor-sim/internal/rng"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{"Great job on the exam, I'm proud of you", Encouragement},
		{"Could you explain which part was unclear?", Clarification},
		{"What's your plan for next semester?", Planning},
		{"Are you curious about research?", Exploration},
		{"Could you give me a quick explanation of that?", Clarification},
		{"What are your plans?", Planning},
		{"Tell me about the airplane you built", Other},
		{"Don’t worry, you can do this", Encouragement},
		{"Hello there", Other},
		{"", Other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryOf(tt.text), tt.text)
	}
}

func TestGenerate_FromTable(t *testing.T) {
	g := NewGenerator(rng.New(7))
	for _, id := range persona.KnownIDs {
		for _, c := range Categories {
			got := g.Generate(id, c)
			assert.NotEmpty(t, got)
			assert.Contains(t, g.Variants(id, c), got, "%s/%s", id, c)
		}
	}
}

func TestGenerate_UnknownPersonaUsesAlpha(t *testing.T) {
	g := NewGenerator(rng.New(1))
	got := g.Generate("gamma", Planning)
	assert.Contains(t, g.Variants("alpha", Planning), got)
}

func TestVariants_MatchesGenerateFallbacks(t *testing.T) {
	g := NewGeneratorWithTable(Table{
		"alpha": {Planning: {"alpha plan"}, Other: {"alpha other"}},
		"beta":  {Other: {"beta other", "  "}},
	}, rng.New(5))

	tests := []struct {
		persona string
		c       Category
		want    []string
	}{
		{"zeta", Planning, []string{"alpha plan"}},
		{"BETA", Planning, []string{"beta other"}},
		{"alpha", Exploration, []string{"alpha other"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Variants(tt.persona, tt.c), "%s/%s", tt.persona, tt.c)
		for i := 0; i < 5; i++ {
			assert.Contains(t, g.Variants(tt.persona, tt.c), g.Generate(tt.persona, tt.c))
		}
	}

	empty := NewGeneratorWithTable(Table{}, rng.New(1))
	assert.Equal(t, []string{LastResort}, empty.Variants("alpha", Other))
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewGenerator(rng.New(42))
	b := NewGenerator(rng.New(42))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate("beta", Other), b.Generate("beta", Other))
	}
}

func TestGenerate_NeverEmpty(t *testing.T) {
	g := NewGeneratorWithTable(Table{
		"alpha": {Planning: {"  "}, Other: {"fine, thanks"}},
	}, rng.New(1))
	assert.Equal(t, "fine, thanks", g.Generate("alpha", Planning))

	empty := NewGeneratorWithTable(Table{}, rng.New(1))
	assert.Equal(t, LastResort, empty.Generate("alpha", Encouragement))
}

func TestValidate(t *testing.T) {
	g := NewGenerator(rng.New(1))
	require.NoError(t, g.Validate(persona.KnownIDs))

	partial := NewGeneratorWithTable(Table{
		"alpha": {Other: {"ok then"}},
	}, rng.New(1))
	err := partial.Validate([]string{"alpha", "beta"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"beta" has no table`)
	assert.Contains(t, err.Error(), `"alpha" has no planning variants`)
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.yaml")
	data := "beta:\n  planning:\n    - \"Maybe one small step first?\"\n  other:\n    - \"Okay.\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	g := NewGeneratorWithTable(table, rng.New(3))
	assert.Equal(t, "Maybe one small step first?", g.Generate("beta", Planning))

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
