package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/infblueocean/khabar/internal/model"
)

// descriptionLines caps the description preview on a card.
const descriptionLines = 3

// cardGap is the blank line between cards.
const cardGap = 1

// truncate shortens s to at most w terminal columns, ending in "…".
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}

// wordWrap breaks s into lines of at most w columns at spaces. Words
// wider than w are truncated.
func wordWrap(s string, w int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, word := range strings.Fields(s) {
		ww := runewidth.StringWidth(word)
		if ww > w {
			word = runewidth.Truncate(word, w, "…")
			ww = runewidth.StringWidth(word)
		}
		switch {
		case curW == 0:
			cur.WriteString(word)
			curW = ww
		case curW+1+ww <= w:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curW += 1 + ww
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(word)
			curW = ww
		}
	}
	if curW > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// wrapLines wraps s to width w and keeps at most max lines, marking the
// cut with "…".
func wrapLines(s string, w, max int) []string {
	if w <= 0 || max <= 0 {
		return nil
	}
	lines := wordWrap(s, w)
	if len(lines) <= max {
		return lines
	}
	lines = lines[:max]
	last := lines[max-1]
	if runewidth.StringWidth(last)+1 > w {
		last = runewidth.Truncate(last, w-1, "")
	}
	lines[max-1] = last + "…"
	return lines
}

// formatDate renders a publish time as a local calendar date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2 Jan 2006")
}

// renderCard returns the card's lines: title, meta line, then up to three
// description lines.
func renderCard(a model.Article, selected, bookmarked bool, width int) []string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	marker := "  "
	if selected {
		marker = "▌ "
	}
	mark := ""
	if bookmarked {
		mark = BookmarkMark.Render(" ★")
		inner -= 2
	}

	titleStyle := CardTitle
	if selected {
		titleStyle = CardTitleSelected
	}
	lines := []string{marker + titleStyle.Render(truncate(a.Title, inner)) + mark}

	meta := []string{a.Source, formatDate(a.Published)}
	if a.HasImage() {
		meta = append(meta, "[img]")
	}
	var parts []string
	for _, m := range meta {
		if m != "" {
			parts = append(parts, m)
		}
	}
	lines = append(lines, "  "+CardMeta.Render(truncate(strings.Join(parts, " · "), inner)))

	for _, l := range wrapLines(a.Description, inner, descriptionLines) {
		lines = append(lines, "  "+CardBody.Render(l))
	}
	return lines
}

// renderList draws as many cards as fit in height, scrolled so the cursor
// card is visible.
func renderList(articles []model.Article, cursor int, isBookmarked func(string) bool, width, height int) string {
	if height < 1 {
		height = 1
	}
	cards := make([][]string, len(articles))
	for i, a := range articles {
		cards[i] = renderCard(a, i == cursor, isBookmarked(a.ID), width)
	}

	start := scrollStart(cards, cursor, height)
	var out []string
	for i := start; i < len(cards); i++ {
		need := len(cards[i])
		if len(out) > 0 {
			need += cardGap
		}
		if len(out)+need > height {
			if len(out) == 0 {
				out = append(out, cards[i][:height]...)
			}
			break
		}
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, cards[i]...)
	}
	return strings.Join(out, "\n")
}

// scrollStart returns the first card index such that cards start..cursor
// fit in height lines.
func scrollStart(cards [][]string, cursor, height int) int {
	if cursor <= 0 || cursor >= len(cards) {
		return 0
	}
	used := len(cards[cursor])
	start := cursor
	for start > 0 {
		next := used + cardGap + len(cards[start-1])
		if next > height {
			break
		}
		used = next
		start--
	}
	return start
}

// renderTabs draws the tab row with the active tab highlighted.
func renderTabs(active Tab, counts [tabCount]int, right string, width int) string {
	var tabs []string
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t.Label())
		if counts[t] > 0 {
			label += fmt.Sprintf(" (%d)", counts[t])
		}
		style := TabInactive
		if t == active {
			style = TabActive
		}
		tabs = append(tabs, style.Render(label))
	}
	row := strings.Join(tabs, " ")
	pad := width - lipgloss.Width(row) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return row + strings.Repeat(" ", pad) + right
}

// renderStatusBar draws position info on the left and key hints on the right.
func renderStatusBar(left string, hints [][2]string, width int) string {
	var keys []string
	for _, h := range hints {
		keys = append(keys, StatusBarKey.Render(h[0])+StatusBarText.Render(":"+h[1]))
	}
	right := strings.Join(keys, " ")
	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", pad) + right)
}
