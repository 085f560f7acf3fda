package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/infblueocean/khabar/internal/otel"
)

// debugPanelChrome is the border plus vertical padding of DebugPanel.
const debugPanelChrome = 4

// debugOverlay renders event counters and the most recent events.
// Returns "" when ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}
	stats := ring.Stats()

	lines := []string{
		DebugHeaderStyle.Render("Activity"),
		fmt.Sprintf("  Fetches:    %d started, %d complete, %d errors",
			stats[otel.KindFetchStart], stats[otel.KindFetchComplete], stats[otel.KindFetchError]),
		fmt.Sprintf("  Store:      %d loads, %d failed, %d bookmarks",
			stats[otel.KindStoreFetch], stats[otel.KindStoreError], stats[otel.KindStoreBookmark]),
		fmt.Sprintf("  Chat:       %d sent, %d replies, %d errors",
			stats[otel.KindChatSend], stats[otel.KindChatReply], stats[otel.KindChatError]),
		fmt.Sprintf("  Searches:   %d", stats[otel.KindSearchQuery]),
		fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()),
		"",
		DebugHeaderStyle.Render("Recent Events"),
	}

	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-16s", formatAge(time.Since(e.Time)), e.Kind)
		if e.Category != "" {
			line += " " + e.Category
		}
		if e.Source != "" {
			line += "  " + truncate(e.Source, 28)
		}
		if e.Count > 0 {
			line += fmt.Sprintf("  n=%d", e.Count)
		}
		if e.Msg != "" {
			line += "  " + truncate(e.Msg, 30)
		}
		if e.Err != "" {
			line += "  ERR:" + truncate(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxLines := height - debugPanelChrome
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	panelWidth := 84
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge is a compact age; negative durations clamp to "0ms".
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
