package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/infblueocean/khabar/internal/logging"
)

const (
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultMaxTokens   = 2048
)

var _ Provider = (*GeminiProvider)(nil)

// GeminiProvider calls Google's generateContent endpoint.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *resty.Client
	limit   *limiter
}

// NewGeminiProvider returns a provider for model, or DefaultGeminiModel.
func NewGeminiProvider(apiKey, model string, opts ...Option) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	s := applyOptions(opts)
	if s.baseURL == "" {
		s.baseURL = geminiBaseURL
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: s.baseURL,
		client:  s.client(),
		limit:   s.limiter(),
	}
}

func (g *GeminiProvider) Name() string { return "gemini" }

func (g *GeminiProvider) Available() bool { return g.apiKey != "" }

// Model returns the configured model name.
func (g *GeminiProvider) Model() string { return g.model }

func (g *GeminiProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !g.Available() {
		return Response{}, &ServiceError{Provider: g.Name(), Err: ErrNotConfigured}
	}
	if err := g.limit.wait(ctx); err != nil {
		return Response{}, &ServiceError{Provider: g.Name(), Err: err}
	}

	maxTokens := maxTokensOr(req.MaxTokens, defaultMaxTokens)
	logging.Debug("gemini request", "model", g.model, "max_tokens", maxTokens)

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", g.apiKey).
		SetBody(buildGeminiBody(g.model, req)).
		Post(fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model))
	if err != nil {
		return Response{}, &ServiceError{Provider: g.Name(), Err: err}
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		logging.Error("gemini API error", "status", resp.StatusCode(), "body", string(body))
		return Response{}, &ServiceError{Provider: g.Name(), StatusCode: resp.StatusCode(), Body: string(body)}
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		ModelVersion string `json:"modelVersion"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return Response{}, &ServiceError{Provider: g.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}

	var content, finish string
	if len(result.Candidates) > 0 {
		c := result.Candidates[0]
		for _, p := range c.Content.Parts {
			content += p.Text
		}
		finish = c.FinishReason
	}
	model := g.model
	if result.ModelVersion != "" {
		model = result.ModelVersion
	}
	if finish == "MAX_TOKENS" {
		logging.Warn("gemini reply truncated", "model", model, "max_tokens", maxTokens)
	}
	logging.Info("gemini reply", "model", model, "content_length", len(content), "finish_reason", finish)

	return Response{Content: content, Model: model, RawResponse: string(body)}, nil
}
