package brain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/infblueocean/khabar/internal/config"
)

func TestHTTPProviderOpenAI(t *testing.T) {
	var auth string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.Write([]byte(`{"model":"gpt-test","choices":[{"message":{"content":"answer"}}]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(OpenAIConfig(config.ModelSettings{APIKey: "sk-1", Endpoint: srv.URL}))
	resp, err := p.Generate(context.Background(), Request{SystemPrompt: "sys", UserPrompt: "q"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "answer" || resp.Model != "gpt-test" {
		t.Errorf("resp = %+v", resp)
	}
	if auth != "Bearer sk-1" {
		t.Errorf("Authorization = %q", auth)
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Errorf("messages = %v", body["messages"])
	}
}

func TestHTTPProviderClaudeHeaders(t *testing.T) {
	var key, version string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		w.Write([]byte(`{"model":"claude-x","content":[{"type":"text","text":"a"},{"type":"tool_use"},{"type":"text","text":"b"}]}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(ClaudeConfig(config.ModelSettings{APIKey: "ak"}), WithBaseURL(srv.URL))
	resp, err := p.Generate(context.Background(), Request{UserPrompt: "q"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "a\n\nb" {
		t.Errorf("content = %q", resp.Content)
	}
	if key != "ak" || version != "2023-06-01" {
		t.Errorf("headers key=%q version=%q", key, version)
	}
}

func TestHTTPProviderOllamaNeedsModelNotKey(t *testing.T) {
	if NewHTTPProvider(OllamaConfig(config.ModelSettings{})).Available() {
		t.Error("ollama without a model should be unavailable")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"model":"llama3","response":"local"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(OllamaConfig(config.ModelSettings{Model: "llama3", Endpoint: srv.URL + "/"}))
	resp, err := p.Generate(context.Background(), Request{UserPrompt: "q"})
	if err != nil || resp.Content != "local" {
		t.Errorf("resp = %+v, err = %v", resp, err)
	}
}

func TestHTTPProviderBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(OpenAIConfig(config.ModelSettings{APIKey: "k", Endpoint: srv.URL}))
	_, err := p.Generate(context.Background(), Request{UserPrompt: "q"})
	var se *ServiceError
	if !errors.As(err, &se) || se.StatusCode != 0 {
		t.Errorf("err = %v", err)
	}
}
