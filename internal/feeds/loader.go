package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/infblueocean/khabar/internal/fetch"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/otel"
)

// Fetcher downloads several URLs concurrently, results in input order.
type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) []fetch.Result
}

// Normalizer turns one raw payload into articles.
type Normalizer interface {
	Normalize(feedURL string, payload []byte) ([]model.Article, error)
}

// Loader fetches, normalizes and joins every source of a category.
type Loader struct {
	catalog    Catalog
	fetcher    Fetcher
	normalizer Normalizer
	policy     JoinPolicy
	events     *otel.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPolicy sets the join policy. Default AllOrNothing.
func WithPolicy(p JoinPolicy) LoaderOption {
	return func(l *Loader) { l.policy = p }
}

// WithEvents records per-source fetch events.
func WithEvents(events *otel.Logger) LoaderOption {
	return func(l *Loader) { l.events = events }
}

// NewLoader wires a catalog to a fetcher and normalizer.
func NewLoader(catalog Catalog, f Fetcher, n Normalizer, opts ...LoaderOption) *Loader {
	l := &Loader{
		catalog:    catalog,
		fetcher:    f,
		normalizer: n,
		policy:     AllOrNothing,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Catalog returns the loader's source catalog.
func (l *Loader) Catalog() Catalog { return l.catalog }

// Load returns the merged, newest-first articles for cat. Under
// PartialSuccess, failed sources are logged and skipped.
func (l *Loader) Load(ctx context.Context, cat model.Category) ([]model.Article, error) {
	urls := l.catalog.URLs(cat)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", cat, ErrNoSources)
	}

	start := time.Now()
	for _, u := range urls {
		l.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchStart, Comp: "feeds", Category: string(cat), Source: u})
	}

	fetched := l.fetcher.FetchAll(ctx, urls)
	results := make([]SourceResult, len(fetched))
	for i, r := range fetched {
		results[i] = SourceResult{URL: r.URL, Err: r.Err}
		if r.Err == nil {
			results[i].Articles, results[i].Err = l.normalizer.Normalize(r.URL, r.Body)
		}
		l.record(cat, results[i], time.Since(start))
	}

	out, err := Aggregate(results, l.policy)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cat, err)
	}
	return out.Articles, nil
}

func (l *Loader) record(cat model.Category, r SourceResult, d time.Duration) {
	if r.Err != nil {
		l.events.Emit(otel.Event{
			Level:    otel.LevelError,
			Kind:     otel.KindFetchError,
			Comp:     "feeds",
			Category: string(cat),
			Source:   r.URL,
			Dur:      d,
			Err:      r.Err.Error(),
		})
		return
	}
	l.events.Emit(otel.Event{
		Level:    otel.LevelInfo,
		Kind:     otel.KindFetchComplete,
		Comp:     "feeds",
		Category: string(cat),
		Source:   r.URL,
		Count:    len(r.Articles),
		Dur:      d,
	})
}
