package brain

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/infblueocean/khabar/internal/config"
	"github.com/infblueocean/khabar/internal/logging"
)

// OpenAIConfig describes the chat completions API.
func OpenAIConfig(s config.ModelSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:          "openai",
		Endpoint:      endpointOr(s.Endpoint, "https://api.openai.com/v1/chat/completions"),
		APIKey:        s.APIKey,
		Model:         modelOr(s.Model, "gpt-4o-mini"),
		AuthHeader:    "Authorization",
		AuthPrefix:    "Bearer ",
		BuildBody:     buildOpenAIBody,
		ParseResponse: parseOpenAIResponse,
	}
}

// ClaudeConfig describes Anthropic's messages API.
func ClaudeConfig(s config.ModelSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:       "claude",
		Endpoint:   endpointOr(s.Endpoint, "https://api.anthropic.com/v1/messages"),
		APIKey:     s.APIKey,
		Model:      modelOr(s.Model, "claude-sonnet-4-5-20250929"),
		AuthHeader: "x-api-key",
		ExtraHeaders: map[string]string{
			"anthropic-version": "2023-06-01",
		},
		BuildBody:     buildClaudeBody,
		ParseResponse: parseClaudeResponse,
	}
}

// OllamaConfig describes a local Ollama server. It needs an explicit model.
func OllamaConfig(s config.ModelSettings) *ProviderConfig {
	base := strings.TrimRight(endpointOr(s.Endpoint, "http://localhost:11434"), "/")
	return &ProviderConfig{
		Name:          "ollama",
		Endpoint:      base + "/api/generate",
		Model:         s.Model,
		KeyOptional:   true,
		BuildBody:     buildOllamaBody,
		ParseResponse: parseOllamaResponse,
	}
}

func buildOpenAIBody(cfg *ProviderConfig, req Request) map[string]any {
	var messages []map[string]string
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})
	return map[string]any{
		"model":                 cfg.Model,
		"max_completion_tokens": maxTokensOr(req.MaxTokens, defaultMaxTokens),
		"messages":              messages,
	}
}

func buildClaudeBody(cfg *ProviderConfig, req Request) map[string]any {
	body := map[string]any{
		"model":      cfg.Model,
		"max_tokens": maxTokensOr(req.MaxTokens, defaultMaxTokens),
		"messages":   []map[string]string{{"role": "user", "content": req.UserPrompt}},
	}
	if req.SystemPrompt != "" {
		body["system"] = req.SystemPrompt
	}
	return body
}

func buildGeminiBody(_ string, req Request) map[string]any {
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": req.UserPrompt}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": maxTokensOr(req.MaxTokens, defaultMaxTokens),
		},
	}
	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}
	return body
}

func buildOllamaBody(cfg *ProviderConfig, req Request) map[string]any {
	prompt := req.UserPrompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + prompt
	}
	return map[string]any{"model": cfg.Model, "prompt": prompt, "stream": false}
}

func parseOpenAIResponse(body []byte) (string, string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", resp.Model, nil
	}
	return resp.Choices[0].Message.Content, resp.Model, nil
}

func parseClaudeResponse(body []byte) (string, string, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	var texts []string
	for _, c := range resp.Content {
		if c.Type == "text" {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n\n"), resp.Model, nil
}

func parseOllamaResponse(body []byte) (string, string, error) {
	var resp struct {
		Response string `json:"response"`
		Model    string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	return resp.Response, resp.Model, nil
}

func maxTokensOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func endpointOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func modelOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// FromConfig builds a Manager over every enabled provider, ordered by
// priority with models.preferred tried first. opts apply to every provider.
func FromConfig(models config.ModelsConfig, opts ...Option) *Manager {
	type entry struct {
		priority int
		p        Provider
	}
	var entries []entry
	add := func(s config.ModelSettings, p Provider) {
		if !s.Enabled {
			return
		}
		if !p.Available() {
			logging.Debug("provider skipped, not available", "name", p.Name(), "has_api_key", s.APIKey != "")
			return
		}
		logging.Info("provider ready", "name", p.Name())
		entries = append(entries, entry{s.Priority, p})
	}

	gemOpts := opts
	if models.Gemini.Endpoint != "" {
		gemOpts = append(append([]Option(nil), opts...), WithBaseURL(models.Gemini.Endpoint))
	}
	add(models.Gemini, NewGeminiProvider(models.Gemini.APIKey, models.Gemini.Model, gemOpts...))
	add(models.OpenAI, NewHTTPProvider(OpenAIConfig(models.OpenAI), opts...))
	add(models.Claude, NewHTTPProvider(ClaudeConfig(models.Claude), opts...))
	add(models.Ollama, NewHTTPProvider(OllamaConfig(models.Ollama), opts...))

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].priority < entries[j].priority })

	m := NewManager()
	for _, e := range entries {
		m.Add(e.p)
	}
	m.SetPreferred(models.Preferred)
	return m
}
