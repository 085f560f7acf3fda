// Package browser opens article links in the user's default browser.
package browser

import (
	"fmt"
	"io"
	"net/url"

	"github.com/pkg/browser"

	"github.com/infblueocean/khabar/internal/logging"
)

// Opener opens a URL outside the process.
type Opener interface {
	Open(rawURL string) error
}

// System opens URLs with the platform's default handler.
type System struct {
	// launch is browser.OpenURL unless replaced in tests.
	launch func(string) error
}

// NewSystem returns an Opener backed by github.com/pkg/browser. The
// launched process's output is discarded so it cannot draw over the TUI.
func NewSystem() *System {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &System{launch: browser.OpenURL}
}

// Open validates rawURL and hands it to the system browser. Only http and
// https links are opened.
func (s *System) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("open %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("open %q: unsupported scheme %q", rawURL, u.Scheme)
	}
	if err := s.launch(u.String()); err != nil {
		logging.Warn("browser launch failed", "url", rawURL, "error", err)
		return fmt.Errorf("open %q: %w", rawURL, err)
	}
	logging.Debug("opened link", "url", rawURL)
	return nil
}
