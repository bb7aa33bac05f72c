// Package aiparse provides LLM-backed recipe extraction used as the last
// fallback when markup-based extraction finds nothing. It includes adapters
// for Claude (Anthropic) and OpenAI APIs with reliability patterns, plus a
// NoOp provider for development. All providers share one prompt and one
// response decoding path so the extraction quality differences come from the
// model, not the plumbing.
package aiparse

import (
	"encoding/json"
	"fmt"
	"strings"

	"recipebox/internal/domain/entity"
	"recipebox/internal/utils/text"
)

// maxInputRunes caps the page text sent to a provider. Roughly 2,500 tokens,
// leaving headroom for the prompt and the JSON response on every supported
// model.
const maxInputRunes = 10000

// buildPrompt constructs the extraction prompt. The model is asked for JSON
// only, with null signalling "no recipe on this page" so the decoder can tell
// absence apart from a malformed answer.
func buildPrompt(pageText string) string {
	return fmt.Sprintf(`Extract the recipe from the following web page text.

Respond with ONLY a JSON object, no prose and no markdown fences, using this shape:
{"title": "...", "description": "...", "yield": "...", "prep_minutes": 0, "cook_minutes": 0, "total_minutes": 0, "ingredients": ["..."], "instructions": ["..."]}

If the page does not contain a recipe, respond with exactly: null

Page text:
%s`, pageText)
}

// truncateInput bounds the page text sent to a provider. The cut is
// rune-aligned so a page in Japanese or with emoji never yields invalid
// UTF-8 in the prompt.
func truncateInput(pageText string) string {
	cut := text.TruncateRunes(pageText, maxInputRunes)
	if cut == pageText {
		return pageText
	}
	return cut + "\n(truncated)"
}

// aiRecipe is the JSON shape providers are prompted to emit.
type aiRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Yield        string   `json:"yield"`
	PrepMinutes  int      `json:"prep_minutes"`
	CookMinutes  int      `json:"cook_minutes"`
	TotalMinutes int      `json:"total_minutes"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// decodeRecipe parses a provider answer into the domain entity. A "null"
// answer and a recipe with no title or content both decode to nil with no
// error; a syntactically broken answer is an error, since it usually means
// prompt drift worth surfacing in logs.
//
// Models wrap JSON in markdown fences despite instructions, so fences are
// stripped before decoding.
func decodeRecipe(answer string) (*entity.Recipe, error) {
	answer = strings.TrimSpace(answer)
	answer = strings.TrimPrefix(answer, "```json")
	answer = strings.TrimPrefix(answer, "```")
	answer = strings.TrimSuffix(answer, "```")
	answer = strings.TrimSpace(answer)

	if answer == "" || answer == "null" {
		return nil, nil
	}

	var ar aiRecipe
	if err := json.Unmarshal([]byte(answer), &ar); err != nil {
		return nil, fmt.Errorf("decode model answer: %w", err)
	}

	if strings.TrimSpace(ar.Title) == "" {
		return nil, nil
	}

	r := &entity.Recipe{
		Title:        strings.TrimSpace(ar.Title),
		Description:  strings.TrimSpace(ar.Description),
		Yield:        strings.TrimSpace(ar.Yield),
		PrepMinutes:  nonNegative(ar.PrepMinutes),
		CookMinutes:  nonNegative(ar.CookMinutes),
		TotalMinutes: nonNegative(ar.TotalMinutes),
		Ingredients:  cleanLines(ar.Ingredients),
		Instructions: cleanLines(ar.Instructions),
	}
	if !r.HasContent() {
		return nil, nil
	}
	return r, nil
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func cleanLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
