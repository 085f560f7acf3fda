// Package coord bridges the news store and a running TUI program: it
// forwards store changes as messages and, when configured, re-fetches both
// categories on a fixed interval.
package coord

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/store"
	"github.com/infblueocean/khabar/internal/ui"
)

// Store is the part of *store.Store the coordinator drives.
type Store interface {
	FetchCategory(ctx context.Context, cat model.Category) error
	Subscribe(fn func(store.State)) (unsubscribe func())
}

// Sender receives messages; *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Coordinator manages the background refresh loop.
// Context cancellation is the only stop mechanism.
type Coordinator struct {
	store      Store
	interval   time.Duration // zero disables periodic refresh
	categories []model.Category
	wg         sync.WaitGroup
}

// New returns a Coordinator over st. interval <= 0 disables the ticker;
// store changes are forwarded either way.
func New(st Store, interval time.Duration) *Coordinator {
	if interval < 0 {
		interval = 0
	}
	return &Coordinator{
		store:      st,
		interval:   interval,
		categories: append([]model.Category(nil), model.Categories...),
	}
}

// Start subscribes program to store changes and starts the refresh loop.
// program may be nil.
func (c *Coordinator) Start(ctx context.Context, program Sender) {
	unsubscribe := c.store.Subscribe(func(s store.State) {
		if program != nil && ctx.Err() == nil {
			program.Send(ui.StateChanged{State: s})
		}
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer unsubscribe()

		if c.interval == 0 {
			<-ctx.Done()
			return
		}

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refreshAll(ctx)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after cancelling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// refreshAll fetches every category concurrently. Failures are recorded by
// the store; the group itself never fails.
func (c *Coordinator) refreshAll(ctx context.Context) {
	var g errgroup.Group
	for _, cat := range c.categories {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := c.store.FetchCategory(ctx, cat); err != nil {
				logging.Warn("coord: refresh failed", "category", cat, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
