package brain

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Option configures the HTTP side of a provider.
type Option func(*clientSettings)

type clientSettings struct {
	baseURL    string
	timeout    time.Duration
	perMinute  int
	httpClient *http.Client
}

// WithBaseURL overrides the API root, mainly for tests and proxies.
func WithBaseURL(u string) Option {
	return func(s *clientSettings) { s.baseURL = u }
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *clientSettings) { s.timeout = d }
}

// WithRequestsPerMinute throttles calls. Zero disables throttling.
func WithRequestsPerMinute(n int) Option {
	return func(s *clientSettings) { s.perMinute = n }
}

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *clientSettings) { s.httpClient = hc }
}

func applyOptions(opts []Option) clientSettings {
	var s clientSettings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s clientSettings) client() *resty.Client {
	var c *resty.Client
	if s.httpClient != nil {
		c = resty.NewWithClient(s.httpClient)
	} else {
		c = resty.New()
	}
	if s.timeout > 0 {
		c.SetTimeout(s.timeout)
	}
	return c.SetHeader("Content-Type", "application/json")
}

func (s clientSettings) limiter() *limiter {
	if s.perMinute <= 0 {
		return nil
	}
	return &limiter{rl: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), 1)}
}

// limiter spaces requests out. A nil limiter never waits.
type limiter struct {
	rl *rate.Limiter
}

func (l *limiter) wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}
