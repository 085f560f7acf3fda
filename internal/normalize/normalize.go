// Package normalize turns a raw syndication payload into model.Article values.
//
// Parsing is delegated to gofeed, so RSS 0.9x/1.0/2.0, Atom and JSON Feed
// all arrive here as the same generic item shape.
package normalize

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/mmcdole/gofeed"

	"github.com/infblueocean/khabar/internal/markup"
	"github.com/infblueocean/khabar/internal/model"
)

// ParseError reports a payload that could not be parsed as a feed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Normalizer converts feed payloads to articles.
// Safe for concurrent use: a fresh gofeed parser is created per call.
type Normalizer struct {
	extractor markup.Extractor
	now       func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithExtractor swaps the markup extractor (default markup.Regex).
func WithExtractor(e markup.Extractor) Option {
	return func(n *Normalizer) {
		if e != nil {
			n.extractor = e
		}
	}
}

// WithClock overrides the fetch-time fallback for undated items.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{extractor: markup.Regex{}, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize parses payload fetched from feedURL. Items are returned in feed
// order with duplicate ids removed (first occurrence wins). Items with no
// usable id, or nothing to show as a title, are skipped.
func (n *Normalizer) Normalize(feedURL string, payload []byte) ([]model.Article, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, &ParseError{URL: feedURL, Err: err}
	}

	source := SourceLabel(feedURL)
	fetchedAt := n.now()

	articles := make([]model.Article, 0, len(feed.Items))
	seen := make(map[string]struct{}, len(feed.Items))

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		a := n.convertItem(item, source, fetchedAt)
		if a.ID == "" || a.Title == "" {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		articles = append(articles, a)
	}

	return articles, nil
}

// convertItem converts a gofeed.Item to a model.Article.
func (n *Normalizer) convertItem(item *gofeed.Item, source string, fetchedAt time.Time) model.Article {
	link := itemLink(item)

	// Published, then Updated, then the time we fetched it.
	published := fetchedAt
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	description := strings.TrimSpace(n.extractor.StripTags(item.Description))

	return model.Article{
		ID:          articleID(item, link),
		Title:       itemTitle(item, description, link),
		Description: description,
		Published:   published,
		Link:        link,
		ImageURL:    n.imageURL(item),
		Source:      source,
	}
}

// fallbackTitleWidth bounds a title derived from the description.
const fallbackTitleWidth = 80

// itemTitle returns the item's title, else the start of its plain-text
// description, else its link. RSS allows items with only a description.
func itemTitle(item *gofeed.Item, description, link string) string {
	if t := strings.TrimSpace(item.Title); t != "" {
		return t
	}
	if description != "" {
		return runewidth.Truncate(strings.Join(strings.Fields(description), " "), fallbackTitleWidth, "…")
	}
	return link
}

// articleID resolves native id/guid, then link. gofeed folds RSS <guid> and
// Atom <id> into GUID, so one field covers both.
func articleID(item *gofeed.Item, link string) string {
	return firstNonEmpty(item.GUID, link, item.Link)
}

// itemLink prefers the first entry of Links over Link.
func itemLink(item *gofeed.Item) string {
	for _, l := range item.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return strings.TrimSpace(item.Link)
}

// SourceLabel returns the hostname of feedURL, or feedURL itself when it
// does not parse as an absolute URL.
func SourceLabel(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	return u.Hostname()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
