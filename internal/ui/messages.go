// Package ui is the Bubble Tea client for khabar.
package ui

import (
	"github.com/infblueocean/khabar/internal/chat"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/store"
)

// StateChanged carries a fresh store snapshot.
type StateChanged struct {
	State store.State
}

// FetchDone is sent when a category fetch returns. The snapshot is taken
// after the store has settled.
type FetchDone struct {
	Category model.Category
	State    store.State
	Err      error
}

// SearchResults answers a query. Stale answers are dropped by the App.
type SearchResults struct {
	Query    string
	Articles []model.Article
}

// LinkOpened reports the outcome of opening an article link.
type LinkOpened struct {
	URL string
	Err error
}

// ChatReplied delivers the assistant turn for the open chat.
type ChatReplied struct {
	Session *chat.Session
	Turn    chat.Turn
}
