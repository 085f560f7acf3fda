// Package model defines the normalized article record shared by every layer
// of khabar: the normalizer produces it, the store holds it, the UI renders it.
package model

import (
	"strings"
	"time"
)

// Article is a normalized feed item. Treat it as immutable: collections hand
// out copies and nothing in the pipeline edits an Article after Normalize.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"` // plain text, markup stripped
	Published   time.Time `json:"published"`   // never zero after normalization
	Link        string    `json:"link"`
	ImageURL    string    `json:"image_url,omitempty"` // empty when the feed carried no image
	Source      string    `json:"source"`              // hostname of the feed URL
}

// HasImage reports whether the article carries its own image.
func (a Article) HasImage() bool {
	return a.ImageURL != ""
}

// Matches reports whether query occurs in the title or description,
// ignoring case. An empty query matches nothing.
func (a Article) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Description), q)
}

// IndexOf returns the position of the article with the given id, or -1.
func IndexOf(articles []Article, id string) int {
	for i := range articles {
		if articles[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of articles so callers cannot alias store state.
func Clone(articles []Article) []Article {
	if articles == nil {
		return nil
	}
	out := make([]Article, len(articles))
	copy(out, articles)
	return out
}
