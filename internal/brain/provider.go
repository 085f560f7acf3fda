// Package brain talks to hosted and local language models. Gemini is the
// default; OpenAI, Claude and Ollama go through the generic HTTPProvider.
package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/infblueocean/khabar/internal/logging"
)

// Provider is one model backend.
type Provider interface {
	Name() string
	// Available reports whether the provider has what it needs to be called.
	Available() bool
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a single-turn prompt.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is a model reply.
type Response struct {
	Content     string
	Model       string
	RawResponse string
}

// ErrNotConfigured is returned by a provider that has no credentials.
var ErrNotConfigured = errors.New("provider not configured")

// ErrNoProvider is returned by a Manager with nothing available.
var ErrNoProvider = errors.New("no model provider available")

// ServiceError is a failed call to a model API.
type ServiceError struct {
	Provider   string
	StatusCode int    // 0 when the request never got a response
	Body       string // response body, if any
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return e.Provider + ": request failed"
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Manager tries providers in order, preferred first, until one answers.
// Manager itself satisfies the chat generator contract.
type Manager struct {
	providers []Provider
	preferred string
}

// NewManager returns a manager over providers, tried in the given order.
func NewManager(providers ...Provider) *Manager {
	return &Manager{providers: providers}
}

// Add appends a provider.
func (m *Manager) Add(p Provider) {
	m.providers = append(m.providers, p)
}

// SetPreferred moves the named provider to the front of the attempt order.
func (m *Manager) SetPreferred(name string) {
	m.preferred = name
}

// ByName returns the named provider if it is available.
func (m *Manager) ByName(name string) Provider {
	for _, p := range m.providers {
		if p.Name() == name && p.Available() {
			return p
		}
	}
	return nil
}

// ListAvailable returns the names of available providers in attempt order.
func (m *Manager) ListAvailable() []string {
	var names []string
	for _, p := range m.order() {
		names = append(names, p.Name())
	}
	return names
}

func (m *Manager) order() []Provider {
	var out []Provider
	if p := m.ByName(m.preferred); p != nil {
		out = append(out, p)
	}
	for _, p := range m.providers {
		if p.Available() && p.Name() != m.preferred {
			out = append(out, p)
		}
	}
	return out
}

// Generate asks each available provider in turn and returns the first
// success. If all fail, the last error is returned.
func (m *Manager) Generate(ctx context.Context, req Request) (Response, error) {
	candidates := m.order()
	if len(candidates) == 0 {
		return Response{}, ErrNoProvider
	}

	var lastErr error
	for _, p := range candidates {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logging.Warn("provider failed, trying next", "provider", p.Name(), "error", err)
	}
	return Response{}, lastErr
}
