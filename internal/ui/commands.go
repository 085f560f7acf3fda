package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/infblueocean/khabar/internal/browser"
	"github.com/infblueocean/khabar/internal/chat"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/store"
)

// Commands are the side effects the App may request. The App never holds
// the store; each field returns a tea.Cmd whose message carries the result.
// Nil fields disable the matching key.
type Commands struct {
	Fetch     func(cat model.Category) tea.Cmd
	Toggle    func(a model.Article) tea.Cmd
	Search    func(query string) tea.Cmd
	Open      func(url string) tea.Cmd
	StartChat func(a model.Article) *chat.Session
	Ask       func(s *chat.Session, text string) tea.Cmd
}

// NewCommands binds Commands to a store, a link opener and a chat factory.
func NewCommands(ctx context.Context, st *store.Store, opener browser.Opener, newSession func(model.Article) *chat.Session) Commands {
	return Commands{
		Fetch: func(cat model.Category) tea.Cmd {
			return func() tea.Msg {
				err := st.FetchCategory(ctx, cat)
				return FetchDone{Category: cat, State: st.Snapshot(), Err: err}
			}
		},
		Toggle: func(a model.Article) tea.Cmd {
			return func() tea.Msg {
				st.ToggleBookmark(a)
				return StateChanged{State: st.Snapshot()}
			}
		},
		Search: func(query string) tea.Cmd {
			return func() tea.Msg {
				return SearchResults{Query: query, Articles: st.Search(query)}
			}
		},
		Open: func(url string) tea.Cmd {
			return func() tea.Msg {
				return LinkOpened{URL: url, Err: opener.Open(url)}
			}
		},
		StartChat: newSession,
		Ask: func(s *chat.Session, text string) tea.Cmd {
			return func() tea.Msg {
				return ChatReplied{Session: s, Turn: s.Send(ctx, text)}
			}
		},
	}
}
