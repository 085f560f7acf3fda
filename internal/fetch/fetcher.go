// Package fetch retrieves raw feed payloads over HTTP.
//
// The fetcher knows nothing about feed formats: it returns bytes or a
// *NetworkError per URL, and the normalizer decides what the bytes mean.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultUserAgent identifies khabar to feed servers.
const DefaultUserAgent = "khabar/0.3 (+https://github.com/infblueocean/khabar)"

// DefaultMaxBodyBytes caps a single feed payload.
const DefaultMaxBodyBytes = 4 << 20

// NetworkError reports a failed fetch for one source URL.
// StatusCode is zero when the request never produced a response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// errBodyTooLarge is wrapped by NetworkError when a payload exceeds the cap.
var errBodyTooLarge = errors.New("response body exceeds limit")

// Result is the outcome of fetching one URL. Exactly one of Body/Err is set.
type Result struct {
	URL  string
	Body []byte
	Err  error
}

// Fetcher issues plain GET requests for feed URLs.
type Fetcher struct {
	client  *resty.Client
	maxBody int
}

type settings struct {
	timeout   time.Duration
	userAgent string
	maxBody   int
	hc        *http.Client
}

// Option configures a Fetcher.
type Option func(*settings)

// WithTimeout sets a per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes. Non-positive values are ignored.
func WithMaxBodyBytes(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithHTTPClient routes requests through hc (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.hc = hc }
}

// NewFetcher creates a Fetcher. No timeout is applied unless WithTimeout is given.
func NewFetcher(opts ...Option) *Fetcher {
	s := settings{userAgent: DefaultUserAgent, maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&s)
	}

	client := resty.New()
	if s.hc != nil {
		client = resty.NewWithClient(s.hc)
	}
	client.SetHeader("User-Agent", s.userAgent)
	if s.timeout > 0 {
		client.SetTimeout(s.timeout)
	}

	return &Fetcher{client: client, maxBody: s.maxBody}
}

// Fetch performs one GET and returns the body of a 200 response.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, &NetworkError{URL: url, Err: ctx.Err()}
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8").
		Get(url)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode(), Err: fmt.Errorf("status %s", resp.Status())}
	}

	body := resp.Body()
	if len(body) > f.maxBody {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("%w: %d > %d bytes", errBodyTooLarge, len(body), f.maxBody)}
	}
	return body, nil
}

// FetchAll fetches every URL concurrently and returns results in input order.
// A failing URL never cancels the others; callers inspect each Result.Err.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			body, err := f.Fetch(ctx, url)
			results[i] = Result{URL: url, Body: body, Err: err}
			return nil // never fail the group - errors reported per-source
		})
	}
	_ = g.Wait()

	return results
}
