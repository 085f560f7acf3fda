package coord

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/store"
	"github.com/infblueocean/khabar/internal/ui"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu        sync.Mutex
	fetched   []model.Category
	fetchErr  error
	listeners []func(store.State)
	unsubs    atomic.Int32
}

func (m *mockStore) FetchCategory(ctx context.Context, cat model.Category) error {
	m.mu.Lock()
	m.fetched = append(m.fetched, cat)
	listeners := append(([]func(store.State))(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(store.State{Loading: false})
	}
	return m.fetchErr
}

func (m *mockStore) Subscribe(fn func(store.State)) func() {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
	return func() {
		m.unsubs.Add(1)
		m.mu.Lock()
		m.listeners = nil
		m.mu.Unlock()
	}
}

func (m *mockStore) fetchedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fetched)
}

// mockSender records messages.
type mockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *mockSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *mockSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func TestRefreshAllFetchesEveryCategory(t *testing.T) {
	st := &mockStore{}
	c := New(st, 0)

	c.refreshAll(context.Background())

	if st.fetchedCount() != 2 {
		t.Fatalf("expected 2 fetches, got %d", st.fetchedCount())
	}
	seen := map[model.Category]bool{}
	for _, cat := range st.fetched {
		seen[cat] = true
	}
	if !seen[model.CategoryIndian] || !seen[model.CategoryGlobal] {
		t.Errorf("fetched = %v", st.fetched)
	}
}

func TestRefreshAllToleratesErrors(t *testing.T) {
	st := &mockStore{fetchErr: errors.New("boom")}
	New(st, 0).refreshAll(context.Background())
	if st.fetchedCount() != 2 {
		t.Errorf("expected 2 fetches despite errors, got %d", st.fetchedCount())
	}
}

func TestRefreshAllSkipsWhenCancelled(t *testing.T) {
	st := &mockStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	New(st, 0).refreshAll(ctx)
	if st.fetchedCount() != 0 {
		t.Errorf("expected no fetches after cancel, got %d", st.fetchedCount())
	}
}

func TestStartForwardsStoreChanges(t *testing.T) {
	st := &mockStore{}
	sender := &mockSender{}
	c := New(st, 0)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, sender)

	if err := st.FetchCategory(ctx, model.CategoryIndian); err != nil {
		t.Fatal(err)
	}
	if sender.count() != 1 {
		t.Fatalf("expected 1 forwarded message, got %d", sender.count())
	}
	if _, ok := sender.msgs[0].(ui.StateChanged); !ok {
		t.Errorf("message type = %T, want ui.StateChanged", sender.msgs[0])
	}

	cancel()
	c.Wait()
	if st.unsubs.Load() != 1 {
		t.Errorf("expected unsubscribe on stop, got %d", st.unsubs.Load())
	}
}

func TestStartHandlesNilProgram(t *testing.T) {
	st := &mockStore{}
	c := New(st, 0)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, nil)

	// Should not panic.
	_ = st.FetchCategory(ctx, model.CategoryGlobal)

	cancel()
	c.Wait()
}

func TestStartRefreshesOnInterval(t *testing.T) {
	st := &mockStore{}
	c := New(st, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, nil)

	deadline := time.Now().Add(2 * time.Second)
	for st.fetchedCount() < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	c.Wait()

	if st.fetchedCount() < 4 {
		t.Errorf("expected at least two refresh cycles, got %d fetches", st.fetchedCount())
	}
}

func TestNegativeIntervalDisablesTicker(t *testing.T) {
	if c := New(&mockStore{}, -time.Second); c.interval != 0 {
		t.Errorf("interval = %v, want 0", c.interval)
	}
}
