package ui

import (
	"strings"

	"github.com/infblueocean/khabar/internal/chat"
)

// renderTranscript formats chat turns for the viewport.
func renderTranscript(turns []chat.Turn, width int) string {
	if len(turns) == 0 {
		return HelpStyle.Render("Ask anything about this article.")
	}
	w := width - 4
	if w < 20 {
		w = 20
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		label := ChatUser.Render("You")
		if t.Role == chat.RoleAssistant {
			label = ChatAssistant.Render("AI")
		}
		b.WriteString(label + "\n")
		for _, para := range strings.Split(t.Text, "\n") {
			for _, line := range wordWrap(para, w) {
				if t.Failed {
					line = ChatFailed.Render(line)
				}
				b.WriteString("  " + line + "\n")
			}
		}
	}
	return b.String()
}
