// Command khabar is the terminal news reader: Indian and global headlines,
// bookmarks, search and a chat pane about the selected article.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/infblueocean/khabar/internal/app"
	"github.com/infblueocean/khabar/internal/browser"
	"github.com/infblueocean/khabar/internal/config"
	"github.com/infblueocean/khabar/internal/coord"
	"github.com/infblueocean/khabar/internal/logging"
	"github.com/infblueocean/khabar/internal/otel"
	"github.com/infblueocean/khabar/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.khabar/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.Logging.Dir, cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to init logging: %v", err)
	}
	defer logging.Close()

	// Event log: JSONL on disk plus an in-memory ring for the debug overlay.
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	eventPath, err := app.EventLogPath(cfg.Logging.Dir)
	if err != nil {
		log.Fatalf("Failed to resolve event log: %v", err)
	}
	events, closeEvents, err := app.OpenEvents(eventPath, ring)
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}
	defer closeEvents()

	core, err := app.Build(cfg, events)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer core.Close()

	events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  "main",
		Extra: map[string]any{"providers": core.Brain.ListAvailable(), "events": eventPath},
	})
	logging.Info("khabar starting", "session", events.SessionID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ui.ApplyTheme(cfg.UI.Theme)
	cmds := ui.NewCommands(ctx, core.Store, browser.NewSystem(), core.NewSession)
	model := ui.NewApp(cmds, ring).WithItemLimit(cfg.UI.ItemLimit)

	program := tea.NewProgram(model, tea.WithAltScreen())

	coordinator := coord.New(core.Store, cfg.Feeds.RefreshInterval)
	coordinator.Start(ctx, program)

	// Run UI (blocks until quit)
	_, runErr := program.Run()

	cancel()
	coordinator.Wait()

	events.Info(otel.KindShutdown, "main", "bye")
	logging.Info("khabar stopped")

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "khabar: %v\n", runErr)
		closeEvents()
		logging.Close()
		os.Exit(1)
	}
}
