package extract

import (
	"strings"

	"recipebox/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
)

// fromMicrodata reads the first itemtype schema.org/Recipe scope in the
// document. Microdata is the legacy markup form; most sites that carry it
// also carry JSON-LD, so this path only runs when the JSON-LD scan came up
// empty.
func (e *Extractor) fromMicrodata(doc *goquery.Document) *entity.Recipe {
	scope := doc.Find(`[itemtype*="schema.org/Recipe"]`).First()
	if scope.Length() == 0 {
		return nil
	}

	title := itempropText(scope, "name")
	if title == "" {
		return nil
	}

	r := &entity.Recipe{
		Title:        title,
		Description:  itempropText(scope, "description"),
		ImageURL:     itempropImage(scope),
		Yield:        itempropText(scope, "recipeYield"),
		PrepMinutes:  durationMinutes(itempropDuration(scope, "prepTime")),
		CookMinutes:  durationMinutes(itempropDuration(scope, "cookTime")),
		TotalMinutes: durationMinutes(itempropDuration(scope, "totalTime")),
		Ingredients:  itempropTexts(scope, "recipeIngredient"),
		Instructions: itempropTexts(scope, "recipeInstructions"),
	}

	if len(r.Ingredients) == 0 {
		r.Ingredients = itempropTexts(scope, "ingredients")
	}

	return r
}

// itempropText returns the trimmed text of the first element carrying the
// property, preferring the content attribute meta tags use.
func itempropText(scope *goquery.Selection, prop string) string {
	sel := scope.Find(`[itemprop="` + prop + `"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(sel.Text())
}

// itempropTexts returns the trimmed text of every element carrying the
// property, preserving document order.
func itempropTexts(scope *goquery.Selection, prop string) []string {
	var out []string
	scope.Find(`[itemprop="` + prop + `"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// itempropDuration reads a time property. Durations live in the datetime
// attribute on <time> elements or in a content attribute on meta tags.
func itempropDuration(scope *goquery.Selection, prop string) string {
	sel := scope.Find(`[itemprop="` + prop + `"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	if dt, ok := sel.Attr("datetime"); ok {
		return dt
	}
	if content, ok := sel.Attr("content"); ok {
		return content
	}
	return strings.TrimSpace(sel.Text())
}

// itempropImage reads the recipe image, which sites put in src, content, or
// href depending on the element.
func itempropImage(scope *goquery.Selection) string {
	sel := scope.Find(`[itemprop="image"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "content", "href"} {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
