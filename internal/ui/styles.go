package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent    = lipgloss.Color("208") // saffron
	colorSecondary = lipgloss.Color("245")
	colorMuted     = lipgloss.Color("240")
	colorBookmark  = lipgloss.Color("220")
	colorUser      = lipgloss.Color("39")
	colorError     = lipgloss.Color("196")
)

// Tabs.
var (
	TabActive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("232")).
			Background(colorAccent).
			Padding(0, 1)

	TabInactive = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Padding(0, 1)
)

// Article cards.
var (
	CardTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	CardTitleSelected = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	CardMeta = lipgloss.NewStyle().
			Foreground(colorMuted)

	CardBody = lipgloss.NewStyle().
			Foreground(colorSecondary)

	BookmarkMark = lipgloss.NewStyle().
			Foreground(colorBookmark)
)

// StatusBar is the bottom line.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey highlights a key in the hints.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorAccent).
	Bold(true)

// StatusBarText is the hint text after a key.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle renders the store's fetch error.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle is for empty-state hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// SearchPrompt styles the "/" prompt.
var SearchPrompt = lipgloss.NewStyle().
	Foreground(colorAccent).
	Bold(true)

// Chat pane.
var (
	ChatHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(0, 1)

	ChatUser = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true)

	ChatAssistant = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	ChatFailed = lipgloss.NewStyle().
			Foreground(colorError)
)

// Debug overlay.
var (
	DebugPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	DebugHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)
)

// ApplyTheme switches the palette. "light" darkens the foregrounds that are
// near-white in the default dark palette; any other name keeps dark.
func ApplyTheme(name string) {
	if name != "light" {
		return
	}
	colorSecondary = lipgloss.Color("238")
	colorMuted = lipgloss.Color("244")
	colorBookmark = lipgloss.Color("172")

	TabInactive = TabInactive.Foreground(colorSecondary)
	CardTitle = CardTitle.Foreground(lipgloss.Color("232"))
	CardMeta = CardMeta.Foreground(colorMuted)
	CardBody = CardBody.Foreground(colorSecondary)
	BookmarkMark = BookmarkMark.Foreground(colorBookmark)
	StatusBar = StatusBar.
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("253"))
	StatusBarText = StatusBarText.Foreground(colorSecondary)
	HelpStyle = HelpStyle.Foreground(colorMuted)
}
