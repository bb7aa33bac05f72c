// Package feed parses RSS/Atom documents into entry links for bulk recipe
// import. It deliberately does no network access of its own: feed bodies
// arrive through the same guarded fetch pipeline as recipe pages, and this
// package only turns the bytes into links.
package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is one feed item reduced to what bulk import needs.
type Entry struct {
	Title     string
	Link      string
	Published time.Time
}

// Parser parses feed documents.
//
// Thread safety: Parser is stateless and safe for concurrent use.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses an RSS or Atom document and returns its entries in document
// order. Relative entry links resolve against feedURL. Items without a link
// are skipped; duplicate links keep their first occurrence.
func (p *Parser) Parse(data []byte, feedURL string) ([]Entry, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	base, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed URL: %w", err)
	}

	seen := make(map[string]struct{}, len(parsed.Items))
	entries := make([]Entry, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}

		ref, err := url.Parse(link)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref).String()

		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}

		published := time.Now()
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		}

		entries = append(entries, Entry{
			Title:     it.Title,
			Link:      abs,
			Published: published,
		})
	}

	return entries, nil
}
