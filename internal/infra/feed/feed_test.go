package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Weeknight Recipes</title>
    <item>
      <title>Lemon Pasta</title>
      <link>https://recipes.example/lemon-pasta</link>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Relative Link Stew</title>
      <link>/stew</link>
    </item>
    <item>
      <title>No Link</title>
    </item>
    <item>
      <title>Duplicate</title>
      <link>https://recipes.example/lemon-pasta</link>
    </item>
  </channel>
</rss>`

const atomDoc = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Recipes</title>
  <entry>
    <title>Shakshuka</title>
    <link href="https://recipes.example/shakshuka"/>
    <updated>2025-06-02T10:00:00Z</updated>
  </entry>
</feed>`

func TestParser_Parse_RSS(t *testing.T) {
	entries, err := NewParser().Parse([]byte(rssDoc), "https://recipes.example/feed.xml")
	require.NoError(t, err)
	require.Len(t, entries, 2, "no-link item skipped, duplicate collapsed")

	assert.Equal(t, "Lemon Pasta", entries[0].Title)
	assert.Equal(t, "https://recipes.example/lemon-pasta", entries[0].Link)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), entries[0].Published.UTC())

	assert.Equal(t, "https://recipes.example/stew", entries[1].Link,
		"relative link resolves against the feed URL")
}

func TestParser_Parse_Atom(t *testing.T) {
	entries, err := NewParser().Parse([]byte(atomDoc), "https://recipes.example/atom.xml")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Shakshuka", entries[0].Title)
	assert.Equal(t, "https://recipes.example/shakshuka", entries[0].Link)
}

func TestParser_Parse_MissingPubDateDefaultsToNow(t *testing.T) {
	entries, err := NewParser().Parse([]byte(rssDoc), "https://recipes.example/feed.xml")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), entries[1].Published, time.Minute)
}

func TestParser_Parse_NotAFeed(t *testing.T) {
	_, err := NewParser().Parse([]byte("<html><body>not a feed</body></html>"), "https://recipes.example/")
	assert.Error(t, err)
}
