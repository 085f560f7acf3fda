// Package app assembles khabar's core pipeline from a Config. The TUI and
// khabarctl both build through here so they fetch, index and chat the same way.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/infblueocean/khabar/internal/brain"
	"github.com/infblueocean/khabar/internal/chat"
	"github.com/infblueocean/khabar/internal/config"
	"github.com/infblueocean/khabar/internal/feeds"
	"github.com/infblueocean/khabar/internal/fetch"
	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/markup"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/normalize"
	"github.com/infblueocean/khabar/internal/otel"
	"github.com/infblueocean/khabar/internal/search"
	"github.com/infblueocean/khabar/internal/store"
)

// Core is everything below the UI.
type Core struct {
	Config  *config.Config
	Events  *otel.Logger
	Catalog feeds.Catalog
	Loader  *feeds.Loader
	Index   *search.Index
	Store   *store.Store
	Brain   *brain.Manager
}

// Build wires fetcher, normalizer, loader, search index, store and model
// providers according to cfg. events may be nil.
func Build(cfg *config.Config, events *otel.Logger) (*Core, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	catalog, err := feeds.LoadCatalog(cfg.Feeds.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	policy, err := feeds.ParseJoinPolicy(cfg.Feeds.JoinPolicy)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewFetcher(
		fetch.WithTimeout(cfg.Feeds.Timeout),
		fetch.WithUserAgent(cfg.Feeds.UserAgent),
		fetch.WithMaxBodyBytes(cfg.Feeds.MaxBodyBytes),
	)
	normalizer := normalize.New(
		normalize.WithExtractor(markup.New(markup.Mode(cfg.Normalize.HTMLMode))),
	)
	loader := feeds.NewLoader(catalog, fetcher, normalizer,
		feeds.WithPolicy(policy),
		feeds.WithEvents(events),
	)

	idx, err := search.Open()
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	st := store.New(loader, store.WithIndex(idx), store.WithEvents(events))

	manager := brain.FromConfig(cfg.Models,
		brain.WithTimeout(cfg.Chat.Timeout),
		brain.WithRequestsPerMinute(cfg.Chat.RequestsPerMinute),
	)

	logging.Info("core ready",
		"policy", policy,
		"html_mode", cfg.Normalize.HTMLMode,
		"providers", manager.ListAvailable(),
	)

	return &Core{
		Config:  cfg,
		Events:  events,
		Catalog: catalog,
		Loader:  loader,
		Index:   idx,
		Store:   st,
		Brain:   manager,
	}, nil
}

// NewSession starts a chat about a, backed by the provider manager.
func (c *Core) NewSession(a model.Article) *chat.Session {
	return chat.NewSession(a, c.Brain,
		chat.WithMaxTokens(c.Config.Chat.MaxTokens),
		chat.WithEvents(c.Events),
	)
}

// Close releases the search index.
func (c *Core) Close() error {
	if c.Index == nil {
		return nil
	}
	return c.Index.Close()
}

// EventLogPath returns today's JSONL event log under dir, or under
// ~/.khabar/logs when dir is empty.
func EventLogPath(dir string) (string, error) {
	if dir == "" {
		d, err := logging.Dir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, fmt.Sprintf("events-%s.jsonl", time.Now().Format("2006-01-02"))), nil
}

// OpenEvents starts an event logger appending to path and attaches ring
// when non-nil. The returned close func flushes the logger then the file.
func OpenEvents(path string, ring *otel.RingBuffer) (*otel.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	l := otel.NewLogger(f)
	if ring != nil {
		l.SetRingBuffer(ring)
	}
	return l, closer(l, f), nil
}

func closer(l *otel.Logger, c io.Closer) func() {
	return func() {
		l.Close()
		c.Close()
	}
}
