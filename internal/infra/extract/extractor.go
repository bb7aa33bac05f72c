// Package extract turns fetched HTML into structured recipes. It reads
// schema.org Recipe markup in two forms: JSON-LD script blocks first, then an
// itemprop microdata walk when no JSON-LD recipe is present. Pages carrying
// neither produce a nil recipe, which the import pipeline reports as "no
// recipe found".
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"recipebox/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Extractor parses schema.org Recipe markup out of HTML documents.
//
// Thread safety: Extractor is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses html and returns the first recipe found, or nil when the
// page carries no recognizable recipe markup. A nil recipe with a nil error
// is the expected outcome for non-recipe pages; errors are reserved for HTML
// that could not be parsed at all.
//
// Parse order:
//  1. Every <script type="application/ld+json"> block, including @graph
//     containers and top-level arrays, looking for @type Recipe.
//  2. Microdata: the first element with itemtype schema.org/Recipe.
//
// When the matched markup lacks a description, a readability pass over the
// article body supplies one.
func (e *Extractor) Extract(html []byte, sourceURL string) (*entity.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	recipe := e.fromJSONLD(doc)
	if recipe == nil {
		recipe = e.fromMicrodata(doc)
	}
	if recipe == nil {
		return nil, nil
	}

	// Recipes without a single ingredient or instruction line are markup
	// shells (ad pages, category indexes); treat them as no recipe.
	if !recipe.HasContent() {
		return nil, nil
	}

	if recipe.Description == "" {
		recipe.Description = descriptionFallback(html, sourceURL)
	}

	return recipe, nil
}

// fromJSONLD scans every JSON-LD script block for a Recipe node.
func (e *Extractor) fromJSONLD(doc *goquery.Document) *entity.Recipe {
	var recipe *entity.Recipe

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var raw interface{}
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			// Broken blocks are common in the wild; skip and keep
			// scanning.
			slog.Debug("skipping malformed JSON-LD block", slog.Int("index", i))
			return true
		}

		if node := findRecipeNode(raw); node != nil {
			recipe = recipeFromNode(node)
			return recipe == nil
		}
		return true
	})

	return recipe
}

// findRecipeNode walks a decoded JSON-LD value looking for the first object
// whose @type is (or includes) "Recipe". Handles top-level arrays and @graph
// containers one level deep, which covers the markup real sites emit.
func findRecipeNode(raw interface{}) map[string]interface{} {
	switch v := raw.(type) {
	case map[string]interface{}:
		if hasType(v, "Recipe") {
			return v
		}
		if graph, ok := v["@graph"].([]interface{}); ok {
			for _, g := range graph {
				if node, ok := g.(map[string]interface{}); ok && hasType(node, "Recipe") {
					return node
				}
			}
		}
	case []interface{}:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	}
	return nil
}

// hasType reports whether a JSON-LD node's @type names want, accepting both
// the string and array forms.
func hasType(node map[string]interface{}, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return t == want
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// recipeFromNode maps a JSON-LD Recipe node to the domain entity. Returns nil
// when the node has no usable title.
func recipeFromNode(node map[string]interface{}) *entity.Recipe {
	title := strings.TrimSpace(stringValue(node["name"]))
	if title == "" {
		return nil
	}

	r := &entity.Recipe{
		Title:        title,
		Description:  strings.TrimSpace(stringValue(node["description"])),
		ImageURL:     imageURL(node["image"]),
		Yield:        strings.TrimSpace(stringValue(node["recipeYield"])),
		PrepMinutes:  durationMinutes(stringValue(node["prepTime"])),
		CookMinutes:  durationMinutes(stringValue(node["cookTime"])),
		TotalMinutes: durationMinutes(stringValue(node["totalTime"])),
		Ingredients:  stringList(node["recipeIngredient"]),
		Instructions: instructionList(node["recipeInstructions"]),
	}

	if len(r.Ingredients) == 0 {
		// Older markup uses the pre-2011 property name.
		r.Ingredients = stringList(node["ingredients"])
	}

	return r
}

// stringValue coerces the scalar shapes JSON-LD values come in: plain string,
// number, or a single-element array of either.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case []interface{}:
		if len(val) > 0 {
			return stringValue(val[0])
		}
	}
	return ""
}

// stringList coerces a value into a list of non-empty trimmed strings.
func stringList(v interface{}) []string {
	var out []string
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	case []interface{}:
		for _, item := range val {
			if s := strings.TrimSpace(stringValue(item)); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// instructionList flattens recipeInstructions into plain text steps. Accepts
// the three shapes sites emit: a bare string, an array of strings, and an
// array of HowToStep objects (optionally nested inside HowToSection
// containers).
func instructionList(v interface{}) []string {
	var out []string

	var collect func(item interface{})
	collect = func(item interface{}) {
		switch val := item.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				out = append(out, s)
			}
		case map[string]interface{}:
			if section, ok := val["itemListElement"].([]interface{}); ok {
				for _, step := range section {
					collect(step)
				}
				return
			}
			if s := strings.TrimSpace(stringValue(val["text"])); s != "" {
				out = append(out, s)
			}
		case []interface{}:
			for _, item := range val {
				collect(item)
			}
		}
	}
	collect(v)

	return out
}

// imageURL extracts an image URL from the shapes the image property takes:
// string, ImageObject, or an array of either.
func imageURL(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]interface{}:
		return strings.TrimSpace(stringValue(val["url"]))
	case []interface{}:
		if len(val) > 0 {
			return imageURL(val[0])
		}
	}
	return ""
}

// descriptionFallback runs a readability pass over the page and returns its
// excerpt. Any failure yields an empty string; a missing description is never
// worth failing an import over.
func descriptionFallback(html []byte, sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(bytes.NewReader(html), parsed)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(article.Excerpt)
}
