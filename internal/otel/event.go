// Package otel records structured events for khabar.
//
// Events are written as JSONL by an async Logger. A RingBuffer keeps the
// most recent events in memory for the TUI debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Feed fetching, one event per source.
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// News store mutations.
	KindStoreFetch    EventKind = "store.fetch"
	KindStoreBookmark EventKind = "store.bookmark"
	KindStoreError    EventKind = "store.error"

	// Article chat.
	KindChatSend  EventKind = "chat.send"
	KindChatReply EventKind = "chat.reply"
	KindChatError EventKind = "chat.error"

	KindSearchQuery EventKind = "search.query"

	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
)

// Event is one observability record. Only Kind is required; Time is filled
// in by the Logger when zero.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "feeds", "store", "chat", "ui", "main"
	SessionID string         `json:"session_id,omitempty"`
	Category  string         `json:"category,omitempty"`
	Source    string         `json:"source,omitempty"`
	Query     string         `json:"query,omitempty"`
	Count     int            `json:"count,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // derived from Dur on marshal
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON writes Dur as fractional milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	p := plain(e)
	if e.Dur > 0 {
		p.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(p)
}
