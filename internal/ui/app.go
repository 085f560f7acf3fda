package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/infblueocean/khabar/internal/chat"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/otel"
	"github.com/infblueocean/khabar/internal/store"
)

// Tab is one of the four screens.
type Tab int

const (
	TabIndian Tab = iota
	TabGlobal
	TabSearch
	TabBookmarks
	tabCount
)

// Label is the tab's display name.
func (t Tab) Label() string {
	switch t {
	case TabIndian:
		return model.CategoryIndian.Label()
	case TabGlobal:
		return model.CategoryGlobal.Label()
	case TabSearch:
		return "Search"
	case TabBookmarks:
		return "Bookmarks"
	}
	return "?"
}

// category returns the feed category behind a news tab.
func (t Tab) category() (model.Category, bool) {
	switch t {
	case TabIndian:
		return model.CategoryIndian, true
	case TabGlobal:
		return model.CategoryGlobal, true
	}
	return "", false
}

// App is the root Bubble Tea model. It does not hold the store: state
// arrives in messages and every side effect goes through Commands.
type App struct {
	cmds Commands
	ring *otel.RingBuffer

	state   store.State
	tab     Tab
	cursors [tabCount]int

	search    textinput.Model
	searching bool // search input has focus
	query     string
	results   []model.Article

	session     *chat.Session
	chatInput   textinput.Model
	chatView    viewport.Model
	chatPending int

	spinner   spinner.Model
	showDebug bool
	notice    string

	itemLimit int // zero lists everything

	width  int
	height int
	ready  bool
}

// NewApp returns an App wired to cmds. ring may be nil, which disables the
// debug overlay.
func NewApp(cmds Commands, ring *otel.RingBuffer) App {
	search := textinput.New()
	search.Prompt = SearchPrompt.Render("/ ")
	search.Placeholder = "search Indian and Global news"
	search.CharLimit = 200

	input := textinput.New()
	input.Prompt = ChatUser.Render("> ")
	input.Placeholder = "Ask about this article"
	input.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		cmds:      cmds,
		ring:      ring,
		search:    search,
		chatInput: input,
		chatView:  viewport.New(80, 10),
		spinner:   sp,
	}
}

// Init fetches both categories.
func (a App) Init() tea.Cmd {
	if a.cmds.Fetch == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, cat := range model.Categories {
		cmds = append(cmds, a.cmds.Fetch(cat))
	}
	cmds = append(cmds, a.spinner.Tick)
	return tea.Batch(cmds...)
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.search.Width = msg.Width - 6
		a.chatInput.Width = msg.Width - 6
		a.chatView.Width = msg.Width
		a.chatView.Height = a.chatHeight()
		a.refreshTranscript()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case StateChanged:
		return a.applyState(msg.State)

	case FetchDone:
		return a.applyState(msg.State)

	case SearchResults:
		if msg.Query == a.query {
			a.results = msg.Articles
			a.clampCursor(TabSearch)
		}
		return a, nil

	case LinkOpened:
		a.notice = ""
		if msg.Err != nil {
			a.notice = "Could not open link: " + msg.Err.Error()
		}
		return a, nil

	case ChatReplied:
		if a.chatPending > 0 {
			a.chatPending--
		}
		if msg.Session == a.session {
			a.refreshTranscript()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.animating() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

// applyState ignores snapshots older than the one shown; the store may
// deliver concurrent fetches' snapshots out of order.
func (a App) applyState(s store.State) (tea.Model, tea.Cmd) {
	if s.Seq < a.state.Seq {
		return a, nil
	}
	a.state = s
	for t := Tab(0); t < tabCount; t++ {
		a.clampCursor(t)
	}
	var cmds []tea.Cmd
	if a.query != "" && a.cmds.Search != nil {
		cmds = append(cmds, a.cmds.Search(a.query))
	}
	if s.Loading {
		cmds = append(cmds, a.spinner.Tick)
	}
	return a, tea.Batch(cmds...)
}

func (a App) animating() bool {
	return a.state.Loading || a.chatPending > 0
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.session != nil {
		return a.handleChatKey(msg)
	}
	if a.searching {
		return a.handleSearchKey(msg)
	}
	a.notice = ""

	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "1", "2", "3", "4":
		a.tab = Tab(msg.String()[0] - '1')
		return a, nil

	case "tab":
		a.tab = (a.tab + 1) % tabCount
		return a, nil

	case "shift+tab":
		a.tab = (a.tab + tabCount - 1) % tabCount
		return a, nil

	case "j", "down":
		if a.cursors[a.tab] < len(a.articles(a.tab))-1 {
			a.cursors[a.tab]++
		}
		return a, nil

	case "k", "up":
		if a.cursors[a.tab] > 0 {
			a.cursors[a.tab]--
		}
		return a, nil

	case "g", "home":
		a.cursors[a.tab] = 0
		return a, nil

	case "G", "end":
		if n := len(a.articles(a.tab)); n > 0 {
			a.cursors[a.tab] = n - 1
		}
		return a, nil

	case "b":
		if art, ok := a.Selected(); ok && a.cmds.Toggle != nil {
			return a, a.cmds.Toggle(art)
		}
		return a, nil

	case "o", "enter":
		if art, ok := a.Selected(); ok && a.cmds.Open != nil && art.Link != "" {
			return a, a.cmds.Open(art.Link)
		}
		return a, nil

	case "c":
		art, ok := a.Selected()
		if !ok || a.cmds.StartChat == nil {
			return a, nil
		}
		a.session = a.cmds.StartChat(art)
		a.chatView.Height = a.chatHeight()
		a.refreshTranscript()
		return a, a.chatInput.Focus()

	case "/":
		a.tab = TabSearch
		a.searching = true
		return a, a.search.Focus()

	case "r":
		cat, ok := a.tab.category()
		if !ok || a.cmds.Fetch == nil {
			return a, nil
		}
		return a, tea.Batch(a.cmds.Fetch(cat), a.spinner.Tick)

	case "?":
		a.showDebug = !a.showDebug
		return a, nil

	case "esc":
		a.showDebug = false
		return a, nil
	}
	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		a.searching = false
		a.search.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	q := a.search.Value()
	if q == a.query {
		return a, cmd
	}
	a.query = q
	a.cursors[TabSearch] = 0
	if strings.TrimSpace(q) == "" {
		a.results = nil
		return a, cmd
	}
	if a.cmds.Search != nil {
		return a, tea.Batch(cmd, a.cmds.Search(q))
	}
	return a, cmd
}

func (a App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.session = nil
		a.chatInput.Blur()
		a.chatInput.SetValue("")
		return a, nil

	case "enter":
		text := a.chatInput.Value()
		if strings.TrimSpace(text) == "" || a.cmds.Ask == nil {
			return a, nil
		}
		a.chatInput.SetValue("")
		a.chatPending++
		cmd := a.cmds.Ask(a.session, text)
		return a, tea.Batch(cmd, a.spinner.Tick)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

// WithItemLimit caps how many articles each tab lists. n <= 0 removes the cap.
func (a App) WithItemLimit(n int) App {
	if n < 0 {
		n = 0
	}
	a.itemLimit = n
	return a
}

// articles returns what tab t lists.
func (a App) articles(t Tab) []model.Article {
	var list []model.Article
	switch t {
	case TabIndian:
		list = a.state.Indian
	case TabGlobal:
		list = a.state.Global
	case TabBookmarks:
		list = a.state.Bookmarks
	case TabSearch:
		list = a.results
	}
	if a.itemLimit > 0 && len(list) > a.itemLimit {
		list = list[:a.itemLimit]
	}
	return list
}

func (a *App) clampCursor(t Tab) {
	n := len(a.articles(t))
	if a.cursors[t] >= n {
		a.cursors[t] = n - 1
	}
	if a.cursors[t] < 0 {
		a.cursors[t] = 0
	}
}

func (a App) chatHeight() int {
	// tabs, chat header, input, status bar, spacing
	h := a.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

func (a *App) refreshTranscript() {
	if a.session == nil {
		return
	}
	a.chatView.SetContent(renderTranscript(a.session.Turns(), a.width))
	a.chatView.GotoBottom()
}

// View renders the screen.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var counts [tabCount]int
	counts[TabBookmarks] = len(a.state.Bookmarks)
	if a.query != "" {
		counts[TabSearch] = len(a.results)
	}
	right := ""
	if a.animating() {
		right = a.spinner.View() + " "
	}
	header := renderTabs(a.tab, counts, right, a.width)

	var sections []string
	sections = append(sections, header)
	if a.state.Error != "" {
		sections = append(sections, ErrorStyle.Render(a.state.Error))
	}
	if a.notice != "" {
		sections = append(sections, ErrorStyle.Render(a.notice))
	}

	switch {
	case a.showDebug:
		sections = append(sections, debugOverlay(a.ring, a.width, a.height-len(sections)-1))
		sections = append(sections, renderStatusBar(" [DEBUG] ", [][2]string{{"?", "close"}}, a.width))
	case a.session != nil:
		sections = append(sections, a.chatPane()...)
		sections = append(sections, renderStatusBar(" chat ", [][2]string{{"Enter", "send"}, {"PgUp/PgDn", "scroll"}, {"Esc", "close"}}, a.width))
	default:
		if a.tab == TabSearch {
			sections = append(sections, a.search.View())
		}
		body := a.height - len(sections) - 1
		sections = append(sections, a.listView(body))
		sections = append(sections, a.statusBar())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) chatPane() []string {
	art := a.session.Article()
	lines := []string{ChatHeader.Render(truncate(art.Title, a.width-2))}
	lines = append(lines, a.chatView.View())
	if a.chatPending > 0 || a.session.Busy() {
		lines = append(lines, a.spinner.View()+" thinking…")
	}
	lines = append(lines, a.chatInput.View())
	return lines
}

func (a App) listView(height int) string {
	list := a.articles(a.tab)
	if len(list) == 0 {
		return HelpStyle.Render(a.emptyText())
	}
	isBookmarked := func(id string) bool { return a.state.IsBookmarked(id) }
	return renderList(list, a.cursors[a.tab], isBookmarked, a.width, height)
}

func (a App) emptyText() string {
	switch a.tab {
	case TabBookmarks:
		return "No bookmarks yet. Press b on an article to save it."
	case TabSearch:
		if strings.TrimSpace(a.query) == "" {
			return "Type to search Indian and Global news."
		}
		return fmt.Sprintf("No results for %q.", a.query)
	}
	if a.state.Loading {
		return "Fetching news…"
	}
	return "No articles. Press r to refresh."
}

func (a App) statusBar() string {
	left := " "
	if n := len(a.articles(a.tab)); n > 0 {
		left = fmt.Sprintf(" %d/%d ", a.cursors[a.tab]+1, n)
	}
	hints := [][2]string{{"1-4", "tabs"}, {"j/k", "nav"}, {"o", "open"}, {"b", "bookmark"}, {"c", "chat"}, {"/", "search"}}
	if _, ok := a.tab.category(); ok {
		hints = append(hints, [2]string{"r", "refresh"})
	}
	hints = append(hints, [2]string{"?", "debug"}, [2]string{"q", "quit"})
	return renderStatusBar(left, hints, a.width)
}

// Selected returns the article under the cursor on the current tab.
func (a App) Selected() (model.Article, bool) {
	list := a.articles(a.tab)
	c := a.cursors[a.tab]
	if c < 0 || c >= len(list) {
		return model.Article{}, false
	}
	return list[c], true
}

// CurrentTab returns the active tab.
func (a App) CurrentTab() Tab { return a.tab }

// Cursor returns the cursor on the active tab.
func (a App) Cursor() int { return a.cursors[a.tab] }

// ChatOpen reports whether the chat pane is showing.
func (a App) ChatOpen() bool { return a.session != nil }
