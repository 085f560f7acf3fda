package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/infblueocean/khabar/internal/markup"
)

const feedURL = "https://timesofindia.indiatimes.com/rssfeedstopstories.cms"

func rssWith(items string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:media="http://search.yahoo.com/mrss/">
<channel><title>Test</title>` + items + `</channel></rss>`)
}

func TestNormalizeBasicFields(t *testing.T) {
	payload := rssWith(`
<item>
  <title> Budget session begins </title>
  <link>https://example.com/budget</link>
  <guid>toi-123</guid>
  <description><![CDATA[<p>The <b>budget</b> session opens today.</p>]]></description>
  <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
</item>`)

	articles, err := New().Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	a := articles[0]
	if a.ID != "toi-123" {
		t.Errorf("ID = %q, want toi-123", a.ID)
	}
	if a.Title != "Budget session begins" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Description != "The budget session opens today." {
		t.Errorf("Description = %q", a.Description)
	}
	if a.Link != "https://example.com/budget" {
		t.Errorf("Link = %q", a.Link)
	}
	if a.Source != "timesofindia.indiatimes.com" {
		t.Errorf("Source = %q", a.Source)
	}
	want := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !a.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", a.Published, want)
	}
	if a.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", a.ImageURL)
	}
}

func TestNormalizeRequiredFieldsAlwaysSet(t *testing.T) {
	fixed := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	payload := rssWith(`
<item><title>Dated</title><link>https://example.com/a</link><pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>Undated</title><link>https://example.com/b</link></item>
<item><title>Guid only</title><guid>g-3</guid></item>`)

	articles, err := New(WithClock(func() time.Time { return fixed })).Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	for _, a := range articles {
		if a.ID == "" || a.Title == "" {
			t.Errorf("article missing id/title: %+v", a)
		}
		if a.Published.IsZero() {
			t.Errorf("article %q has zero Published", a.Title)
		}
	}
	if !articles[1].Published.Equal(fixed) {
		t.Errorf("undated item should fall back to fetch time, got %v", articles[1].Published)
	}
}

func TestNormalizeUpdatedOnlyBeatsFetchTime(t *testing.T) {
	fixed := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC)
	payloads := map[string][]byte{
		"atom": []byte(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom</title>
  <entry>
    <title>Revised entry</title>
    <id>urn:uuid:u-1</id>
    <updated>2024-02-10T08:30:00Z</updated>
  </entry>
</feed>`),
		"json": []byte(`{
  "version": "https://jsonfeed.org/version/1.1",
  "title": "JSON",
  "items": [
    {"id": "u-1", "title": "Revised entry", "date_modified": "2024-02-10T08:30:00Z"}
  ]
}`),
	}

	for name, payload := range payloads {
		articles, err := New(WithClock(func() time.Time { return fixed })).Normalize(feedURL, payload)
		if err != nil {
			t.Fatalf("%s: Normalize failed: %v", name, err)
		}
		if len(articles) != 1 {
			t.Fatalf("%s: expected 1 article, got %d", name, len(articles))
		}
		if !articles[0].Published.Equal(updated) {
			t.Errorf("%s: Published = %v, want updated time %v", name, articles[0].Published, updated)
		}
	}
}

func TestNormalizeUntitledItems(t *testing.T) {
	long := strings.Repeat("word ", 40)
	payload := rssWith(`
<item><guid>d1</guid><description><![CDATA[<p>Floods   close <b>schools</b> in Assam</p>]]></description></item>
<item><guid>d2</guid><description>` + long + `</description></item>
<item><guid>d3</guid><link>https://example.com/untitled</link></item>
<item><guid>d4</guid></item>`)

	articles, err := New().Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("item with nothing to title should be dropped; got %d articles", len(articles))
	}
	if articles[0].ID != "d1" || articles[0].Title != "Floods close schools in Assam" {
		t.Errorf("description-only item: id %q title %q", articles[0].ID, articles[0].Title)
	}
	if w := runewidth.StringWidth(articles[1].Title); w > fallbackTitleWidth || !strings.HasSuffix(articles[1].Title, "…") {
		t.Errorf("long description title not truncated: %q (width %d)", articles[1].Title, w)
	}
	if articles[2].Title != "https://example.com/untitled" {
		t.Errorf("link-only item title = %q", articles[2].Title)
	}
	for _, a := range articles {
		if a.Title == "" {
			t.Errorf("article %q has empty title", a.ID)
		}
	}
}

func TestNormalizeIDResolution(t *testing.T) {
	payload := rssWith(`
<item><title>guid</title><guid>native-1</guid><link>https://example.com/1</link></item>
<item><title>link only</title><link>https://example.com/2</link></item>
<item><title>nothing</title></item>`)

	articles, err := New().Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("item without id or link should be dropped; got %d articles", len(articles))
	}
	if articles[0].ID != "native-1" {
		t.Errorf("guid should win: %q", articles[0].ID)
	}
	if articles[1].ID != "https://example.com/2" {
		t.Errorf("link should be the fallback id: %q", articles[1].ID)
	}
}

func TestNormalizeAtomID(t *testing.T) {
	payload := []byte(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom</title>
  <entry>
    <title>Atom entry</title>
    <id>urn:uuid:1225c695</id>
    <link href="https://example.org/entry"/>
    <updated>2024-02-01T00:00:00Z</updated>
    <summary>Short &lt;i&gt;summary&lt;/i&gt;</summary>
  </entry>
</feed>`)

	articles, err := New().Normalize("https://example.org/atom.xml", payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	a := articles[0]
	if a.ID != "urn:uuid:1225c695" {
		t.Errorf("ID = %q", a.ID)
	}
	if a.Link != "https://example.org/entry" {
		t.Errorf("Link = %q", a.Link)
	}
	if !a.Published.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Published = %v", a.Published)
	}
	if a.Source != "example.org" {
		t.Errorf("Source = %q", a.Source)
	}
}

func TestNormalizeDedupWithinSource(t *testing.T) {
	payload := rssWith(`
<item><title>First</title><guid>dup</guid></item>
<item><title>Second</title><guid>dup</guid></item>
<item><title>Third</title><guid>other</guid></item>`)

	articles, err := New().Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles after dedup, got %d", len(articles))
	}
	if articles[0].Title != "First" || articles[1].Title != "Third" {
		t.Errorf("first occurrence should win, got %q, %q", articles[0].Title, articles[1].Title)
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	_, err := New().Normalize(feedURL, []byte("this is not a feed"))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.URL != feedURL {
		t.Errorf("ParseError.URL = %q", pe.URL)
	}
}

func TestNormalizeDOMExtractorDecodesEntities(t *testing.T) {
	payload := rssWith(`<item><title>T</title><guid>1</guid><description><![CDATA[<p>Tom &amp; Jerry</p>]]></description></item>`)

	regex, err := New().Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if regex[0].Description != "Tom &amp; Jerry" {
		t.Errorf("regex mode should leave entities encoded, got %q", regex[0].Description)
	}

	dom, err := New(WithExtractor(markup.NewDOM())).Normalize(feedURL, payload)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if dom[0].Description != "Tom & Jerry" {
		t.Errorf("dom mode should decode entities, got %q", dom[0].Description)
	}
}

func TestSourceLabel(t *testing.T) {
	tests := map[string]string{
		"https://feeds.bbci.co.uk/news/world/rss.xml":          "feeds.bbci.co.uk",
		"https://rss.nytimes.com/services/xml/rss/nyt/World.xml": "rss.nytimes.com",
		"http://localhost:8080/feed":                            "localhost",
		"not a url":                                             "not a url",
	}
	for in, want := range tests {
		if got := SourceLabel(in); got != want {
			t.Errorf("SourceLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
