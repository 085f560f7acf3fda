package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/infblueocean/khabar/internal/app"
	"github.com/infblueocean/khabar/internal/config"
	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/model"
)

// session bundles what every pipeline subcommand needs.
type session struct {
	core  *app.Core
	close func()
}

// loadConfig loads path (empty means the default) or fatals.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

// openSession loads config, starts logging and the event log, and builds
// the core. Call close when done.
func openSession(configPath string) *session {
	cfg := loadConfig(configPath)
	if err := logging.Init(cfg.Logging.Dir, cfg.Logging.Level); err != nil {
		log.Fatalf("init logging: %v", err)
	}

	path, err := app.EventLogPath(cfg.Logging.Dir)
	if err != nil {
		log.Fatalf("event log: %v", err)
	}
	events, closeEvents, err := app.OpenEvents(path, nil)
	if err != nil {
		log.Fatalf("event log: %v", err)
	}

	core, err := app.Build(cfg, events)
	if err != nil {
		closeEvents()
		log.Fatalf("build: %v", err)
	}
	var once sync.Once
	return &session{
		core: core,
		// Safe to call twice: fail paths close before os.Exit skips defers.
		close: func() {
			once.Do(func() {
				core.Close()
				closeEvents()
				logging.Close()
			})
		},
	}
}

// printArticles writes a numbered listing, or JSON when asJSON is set.
func printArticles(w io.Writer, articles []model.Article, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	}
	for i, a := range articles {
		img := ""
		if a.HasImage() {
			img = " [img]"
		}
		fmt.Fprintf(w, "%3d. %s  %s%s\n", i+1, a.Published.Local().Format("02 Jan 15:04"), truncate(a.Title, 90), img)
		fmt.Fprintf(w, "     %s  %s\n", a.Source, a.Link)
	}
	return nil
}

// truncate shortens s to max display columns, appending "...".
func truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "...")
}

// fail prints msg to stderr and exits 1.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
