package brain

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/infblueocean/khabar/internal/logging"
)

var _ Provider = (*HTTPProvider)(nil)

// ProviderConfig describes a JSON-over-HTTP chat API.
type ProviderConfig struct {
	Name         string
	Endpoint     string
	APIKey       string
	Model        string
	AuthHeader   string // e.g. "Authorization" or "x-api-key"; empty for none
	AuthPrefix   string // e.g. "Bearer "
	ExtraHeaders map[string]string
	// KeyOptional marks local backends that work without an API key.
	KeyOptional bool

	BuildBody     func(cfg *ProviderConfig, req Request) map[string]any
	ParseResponse func(body []byte) (content, model string, err error)
}

// HTTPProvider drives any API described by a ProviderConfig.
type HTTPProvider struct {
	config *ProviderConfig
	client *resty.Client
	limit  *limiter
}

// NewHTTPProvider builds a provider from cfg. WithBaseURL replaces the
// configured endpoint.
func NewHTTPProvider(cfg *ProviderConfig, opts ...Option) *HTTPProvider {
	s := applyOptions(opts)
	if s.baseURL != "" {
		cfg.Endpoint = s.baseURL
	}
	return &HTTPProvider{config: cfg, client: s.client(), limit: s.limiter()}
}

func (p *HTTPProvider) Name() string { return p.config.Name }

func (p *HTTPProvider) Available() bool {
	if p.config.Endpoint == "" || p.config.Model == "" {
		return false
	}
	return p.config.KeyOptional || p.config.APIKey != ""
}

// Config returns the provider's configuration.
func (p *HTTPProvider) Config() *ProviderConfig { return p.config }

func (p *HTTPProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !p.Available() {
		return Response{}, &ServiceError{Provider: p.Name(), Err: ErrNotConfigured}
	}
	if err := p.limit.wait(ctx); err != nil {
		return Response{}, &ServiceError{Provider: p.Name(), Err: err}
	}

	logging.Debug("provider request", "provider", p.Name(), "model", p.config.Model)

	r := p.client.R().SetContext(ctx).SetBody(p.config.BuildBody(p.config, req))
	if p.config.AuthHeader != "" && p.config.APIKey != "" {
		r.SetHeader(p.config.AuthHeader, p.config.AuthPrefix+p.config.APIKey)
	}
	r.SetHeaders(p.config.ExtraHeaders)

	resp, err := r.Post(p.config.Endpoint)
	if err != nil {
		return Response{}, &ServiceError{Provider: p.Name(), Err: err}
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		logging.Error("provider API error", "provider", p.Name(), "status", resp.StatusCode(), "body", string(body))
		return Response{}, &ServiceError{Provider: p.Name(), StatusCode: resp.StatusCode(), Body: string(body)}
	}

	content, model, err := p.config.ParseResponse(body)
	if err != nil {
		return Response{}, &ServiceError{Provider: p.Name(), Err: fmt.Errorf("parse response: %w", err)}
	}
	if model == "" {
		model = p.config.Model
	}
	logging.Debug("provider reply", "provider", p.Name(), "model", model, "content_length", len(content))

	return Response{Content: content, Model: model, RawResponse: string(body)}, nil
}
