// Package store holds the client-side news state: one collection per
// category, the bookmark list, a loading flag and the last fetch error.
// Listeners are notified after every mutation.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/otel"
	"github.com/infblueocean/khabar/internal/search"
)

// Loader produces the merged collection for a category.
type Loader interface {
	Load(ctx context.Context, cat model.Category) ([]model.Article, error)
}

// Index is an optional search backend kept in sync with the collections.
// Hits are positions in the collections last passed to Replace.
type Index interface {
	Replace(ctx context.Context, cat model.Category, articles []model.Article) error
	Hits(ctx context.Context, query string) ([]search.Hit, error)
}

// State is an immutable snapshot handed to listeners. Seq increases with
// every mutation; listeners run outside the lock, so concurrent mutations
// can deliver snapshots out of order and a listener should keep the one
// with the highest Seq.
type State struct {
	Seq       uint64
	Indian    []model.Article
	Global    []model.Article
	Bookmarks []model.Article
	Loading   bool
	Error     string
}

// Collection returns the snapshot's articles for cat.
func (s State) Collection(cat model.Category) []model.Article {
	switch cat {
	case model.CategoryIndian:
		return s.Indian
	case model.CategoryGlobal:
		return s.Global
	}
	return nil
}

// IsBookmarked reports whether id is in the snapshot's bookmarks.
func (s State) IsBookmarked(id string) bool {
	return model.IndexOf(s.Bookmarks, id) >= 0
}

// Store is safe for concurrent use.
type Store struct {
	loader Loader
	index  Index
	events *otel.Logger

	mu          sync.RWMutex
	collections map[model.Category][]model.Article
	bookmarks   []model.Article
	inflight    map[model.Category]int
	errMsg      string
	seq         uint64

	listenersMu sync.Mutex
	listeners   map[int]func(State)
	nextID      int
}

// Option configures a Store.
type Option func(*Store)

// WithIndex mirrors every collection into idx and serves Search from it.
func WithIndex(idx Index) Option {
	return func(s *Store) { s.index = idx }
}

// WithEvents records store events.
func WithEvents(events *otel.Logger) Option {
	return func(s *Store) { s.events = events }
}

// New returns an empty store: no articles, no bookmarks, not loading.
func New(loader Loader, opts ...Option) *Store {
	s := &Store{
		loader:      loader,
		collections: make(map[model.Category][]model.Article),
		inflight:    make(map[model.Category]int),
		listeners:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchErrorMessage is the user-facing error set when cat fails to load.
func FetchErrorMessage(cat model.Category) string {
	switch cat {
	case model.CategoryIndian:
		return "Failed to fetch Indian news"
	case model.CategoryGlobal:
		return "Failed to fetch global news"
	}
	return fmt.Sprintf("Failed to fetch %s news", cat)
}

// FetchCategory reloads cat. On failure the previous collection is kept
// and Err carries the category message; the returned error has the detail.
// Overlapping fetches of one category are not cancelled; the last to
// finish wins.
func (s *Store) FetchCategory(ctx context.Context, cat model.Category) error {
	s.mu.Lock()
	s.inflight[cat]++
	s.errMsg = ""
	s.seq++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	start := time.Now()
	articles, err := s.loader.Load(ctx, cat)

	s.mu.Lock()
	s.inflight[cat]--
	s.seq++
	if err != nil {
		s.errMsg = FetchErrorMessage(cat)
	} else {
		s.collections[cat] = model.Clone(articles)
		s.reindexLocked(ctx, cat, articles)
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	if err != nil {
		logging.Error("category fetch failed", "category", cat, "error", err)
		s.events.Emit(otel.Event{
			Level:    otel.LevelError,
			Kind:     otel.KindStoreError,
			Comp:     "store",
			Category: string(cat),
			Dur:      time.Since(start),
			Err:      err.Error(),
			Msg:      snap.Error,
		})
		return fmt.Errorf("fetch %s: %w", cat, err)
	}

	logging.Info("category loaded", "category", cat, "articles", len(articles))
	s.events.Emit(otel.Event{
		Level:    otel.LevelInfo,
		Kind:     otel.KindStoreFetch,
		Comp:     "store",
		Category: string(cat),
		Count:    len(articles),
		Dur:      time.Since(start),
	})
	return nil
}

// reindexLocked keeps the index in step with the collection. Index errors
// only degrade search to a scan, so they are logged and not returned.
func (s *Store) reindexLocked(ctx context.Context, cat model.Category, articles []model.Article) {
	if s.index == nil {
		return
	}
	if err := s.index.Replace(context.WithoutCancel(ctx), cat, articles); err != nil {
		logging.Warn("search index update failed", "category", cat, "error", err)
	}
}

// ToggleBookmark adds article to bookmarks, or removes it if an article
// with the same id is already there.
func (s *Store) ToggleBookmark(article model.Article) {
	s.mu.Lock()
	added := false
	if i := model.IndexOf(s.bookmarks, article.ID); i >= 0 {
		s.bookmarks = append(s.bookmarks[:i:i], s.bookmarks[i+1:]...)
	} else {
		s.bookmarks = append(s.bookmarks, article)
		added = true
	}
	s.seq++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	msg := "removed"
	if added {
		msg = "added"
	}
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStoreBookmark, Comp: "store", Source: article.ID, Count: len(snap.Bookmarks), Msg: msg})
	s.notify(snap)
}

// IsBookmarked reports whether an article with id is bookmarked.
func (s *Store) IsBookmarked(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.IndexOf(s.bookmarks, id) >= 0
}

// Collection returns a copy of the current articles for cat.
func (s *Store) Collection(cat model.Category) []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Clone(s.collections[cat])
}

// Bookmarks returns a copy of the bookmarks in insertion order.
func (s *Store) Bookmarks() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Clone(s.bookmarks)
}

// Loading reports whether any fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadingLocked()
}

// Err returns the last fetch error message, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) loadingLocked() bool {
	for _, n := range s.inflight {
		if n > 0 {
			return true
		}
	}
	return false
}

func (s *Store) snapshotLocked() State {
	return State{
		Seq:       s.seq,
		Indian:    model.Clone(s.collections[model.CategoryIndian]),
		Global:    model.Clone(s.collections[model.CategoryGlobal]),
		Bookmarks: model.Clone(s.bookmarks),
		Loading:   s.loadingLocked(),
		Error:     s.errMsg,
	}
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs on the mutating goroutine, outside the store's lock, so it may
// see snapshots out of Seq order.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(snap State) {
	s.listenersMu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Search returns Indian then Global articles whose title or description
// contains query, ignoring case. Results are the store's own copies, so
// they compare equal to the collection entries. An empty query returns
// nothing.
func (s *Store) Search(query string) []model.Article {
	s.mu.RLock()
	results, err := s.searchLocked(query)
	s.mu.RUnlock()
	if err != nil {
		logging.Warn("search index query failed, scanning", "query", query, "error", err)
		s.mu.RLock()
		results = s.scanLocked(query)
		s.mu.RUnlock()
	}
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchQuery, Comp: "store", Query: query, Count: len(results)})
	return results
}

// searchLocked resolves index hits against the collections. The read lock
// keeps a concurrent reindex from shifting positions underneath.
func (s *Store) searchLocked(query string) ([]model.Article, error) {
	if s.index == nil {
		return s.scanLocked(query), nil
	}
	hits, err := s.index.Hits(context.Background(), query)
	if err != nil {
		return nil, err
	}
	var out []model.Article
	for _, h := range hits {
		coll := s.collections[h.Category]
		if h.Position < 0 || h.Position >= len(coll) || coll[h.Position].ID != h.ID {
			return nil, fmt.Errorf("index hit %s/%d is stale", h.Category, h.Position)
		}
		out = append(out, coll[h.Position])
	}
	return out, nil
}

func (s *Store) scanLocked(query string) []model.Article {
	var out []model.Article
	for _, cat := range model.Categories {
		for _, a := range s.collections[cat] {
			if a.Matches(query) {
				out = append(out, a)
			}
		}
	}
	return out
}
