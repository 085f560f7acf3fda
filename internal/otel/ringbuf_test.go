package otel

import (
	"sync"
	"testing"
)

func counts(events []Event) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.Count
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingSnapshotOrder(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		pushes int
		want   []int
	}{
		{"empty", 3, 0, nil},
		{"partial", 4, 2, []int{0, 1}},
		{"exactly full", 3, 3, []int{0, 1, 2}},
		{"wrapped", 3, 5, []int{2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRingBuffer(tt.size)
			for i := 0; i < tt.pushes; i++ {
				r.Push(Event{Kind: KindFetchStart, Count: i})
			}
			if got := counts(r.Snapshot()); !equalInts(got, tt.want) {
				t.Errorf("snapshot = %v, want %v", got, tt.want)
			}
			wantLen := len(tt.want)
			if r.Len() != wantLen {
				t.Errorf("Len = %d, want %d", r.Len(), wantLen)
			}
		})
	}
}

func TestRingLast(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		r.Push(Event{Count: i})
	}
	if got := counts(r.Last(2)); !equalInts(got, []int{4, 5}) {
		t.Errorf("Last(2) = %v", got)
	}
	if got := counts(r.Last(10)); !equalInts(got, []int{2, 3, 4, 5}) {
		t.Errorf("Last(10) = %v", got)
	}
	if r.Last(0) != nil || r.Last(-1) != nil {
		t.Error("non-positive n should return nil")
	}
}

func TestRingStats(t *testing.T) {
	r := NewRingBuffer(8)
	for _, k := range []EventKind{KindFetchStart, KindFetchStart, KindFetchError, KindChatSend} {
		r.Push(Event{Kind: k})
	}
	stats := r.Stats()
	if stats[KindFetchStart] != 2 || stats[KindFetchError] != 1 || stats[KindChatSend] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"k": "before"}
	r.Push(Event{Extra: extra})
	extra["k"] = "after"
	if got := r.Snapshot()[0].Extra["k"]; got != "before" {
		t.Errorf("extra = %v, want before", got)
	}
}

func TestRingDefaultSize(t *testing.T) {
	if c := NewRingBuffer(0).Cap(); c != DefaultRingSize {
		t.Errorf("Cap = %d, want %d", c, DefaultRingSize)
	}
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRingBuffer(16)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.Push(Event{Kind: KindFetchStart})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = r.Snapshot()
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 16 {
		t.Errorf("Len = %d, want 16", r.Len())
	}
}
