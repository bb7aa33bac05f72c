package aiparse

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecipe(t *testing.T) {
	t.Run("full answer", func(t *testing.T) {
		answer := `{"title": "Pad Thai", "description": "Street-food classic.",
			"yield": "2 servings", "prep_minutes": 20, "cook_minutes": 10, "total_minutes": 30,
			"ingredients": ["200g rice noodles", " 2 eggs "],
			"instructions": ["Soak the noodles.", "Stir-fry everything."]}`

		r, err := decodeRecipe(answer)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "Pad Thai", r.Title)
		assert.Equal(t, 30, r.TotalMinutes)
		assert.Equal(t, []string{"200g rice noodles", "2 eggs"}, r.Ingredients)
	})

	t.Run("null means no recipe", func(t *testing.T) {
		r, err := decodeRecipe("null")
		assert.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		answer := "```json\n{\"title\": \"Fenced\", \"ingredients\": [\"x\"]}\n```"
		r, err := decodeRecipe(answer)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, "Fenced", r.Title)
	})

	t.Run("missing title means no recipe", func(t *testing.T) {
		r, err := decodeRecipe(`{"ingredients": ["x"]}`)
		assert.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("no content means no recipe", func(t *testing.T) {
		r, err := decodeRecipe(`{"title": "Shell"}`)
		assert.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("negative minutes clamped", func(t *testing.T) {
		r, err := decodeRecipe(`{"title": "T", "prep_minutes": -5, "ingredients": ["x"]}`)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, 0, r.PrepMinutes)
	})

	t.Run("broken json is an error", func(t *testing.T) {
		_, err := decodeRecipe(`{"title": `)
		assert.Error(t, err)
	})
}

func TestTruncateInput(t *testing.T) {
	short := "small page"
	assert.Equal(t, short, truncateInput(short))

	long := strings.Repeat("a", maxInputRunes+100)
	got := truncateInput(long)
	assert.Less(t, len(got), len(long))
	assert.True(t, strings.HasSuffix(got, "(truncated)"))
}

func TestTruncateInput_CutsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("味", maxInputRunes+1)
	got := truncateInput(long)
	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.True(t, strings.HasSuffix(got, "(truncated)"))
}

func TestBuildPrompt_ContainsPageText(t *testing.T) {
	prompt := buildPrompt("the page body")
	assert.Contains(t, prompt, "the page body")
	assert.Contains(t, prompt, "null")
}

func TestNoOp_Parse(t *testing.T) {
	r, err := NewNoOp().Parse(context.Background(), "<html>anything</html>", "https://x.example/")
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestNew(t *testing.T) {
	t.Run("disabled returns nil parser", func(t *testing.T) {
		p, err := New(Config{Enabled: false, Provider: "openai"})
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("noop", func(t *testing.T) {
		p, err := New(Config{Enabled: true, Provider: "noop"})
		require.NoError(t, err)
		assert.IsType(t, &NoOp{}, p)
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := New(Config{Enabled: true, Provider: "openai"})
		assert.Error(t, err)
	})

	t.Run("claude without key", func(t *testing.T) {
		_, err := New(Config{Enabled: true, Provider: "claude"})
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(Config{Enabled: true, Provider: "bard"})
		assert.Error(t, err)
	})

	t.Run("openai with key", func(t *testing.T) {
		p, err := New(Config{Enabled: true, Provider: "openai", APIKey: "sk-test"})
		require.NoError(t, err)
		assert.IsType(t, &OpenAI{}, p)
	})

	t.Run("claude with key", func(t *testing.T) {
		p, err := New(Config{Enabled: true, Provider: "claude", APIKey: "sk-ant-test"})
		require.NoError(t, err)
		assert.IsType(t, &Claude{}, p)
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("AI_PARSE_ENABLED", "")
		t.Setenv("AI_PARSE_PROVIDER", "")
		cfg := LoadConfigFromEnv()
		assert.False(t, cfg.Enabled)
		assert.Equal(t, "noop", cfg.Provider)
	})

	t.Run("openai selected", func(t *testing.T) {
		t.Setenv("AI_PARSE_ENABLED", "true")
		t.Setenv("AI_PARSE_PROVIDER", "openai")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg := LoadConfigFromEnv()
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, "sk-test", cfg.APIKey)
	})
}

func TestPrometheusParseMetrics_DoesNotPanic(t *testing.T) {
	m := NewPrometheusParseMetrics()

	assert.NotPanics(t, func() {
		m.RecordDuration(0)
		m.RecordOutcome("found")
		m.RecordOutcome("none")
		m.RecordOutcome("error")
		m.RecordInputLength(1234)
	})
}
