// Package feeds joins per-source articles into one ordered collection and
// owns the category -> source catalog.
package feeds

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/infblueocean/khabar/internal/model"
)

// JoinPolicy decides what a failed source does to the category fetch.
type JoinPolicy string

const (
	// AllOrNothing fails the whole category when any source fails.
	AllOrNothing JoinPolicy = "all-or-nothing"
	// PartialSuccess keeps the sources that worked and reports the rest.
	// Only a category where every source failed is an error.
	PartialSuccess JoinPolicy = "partial"
)

// ParseJoinPolicy maps a config string to a policy, defaulting to AllOrNothing.
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch JoinPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AllOrNothing:
		return AllOrNothing, nil
	case PartialSuccess:
		return PartialSuccess, nil
	default:
		return "", fmt.Errorf("unknown join policy %q", s)
	}
}

// SourceResult is one source's contribution: articles or an error.
type SourceResult struct {
	URL      string
	Articles []model.Article
	Err      error
}

// Outcome is a successful join.
type Outcome struct {
	Articles []model.Article
	// Failures lists sources that failed under PartialSuccess. Always empty
	// for AllOrNothing, which turns any failure into a JoinError instead.
	Failures []SourceResult
}

// JoinError reports a failed category join.
type JoinError struct {
	Failed []SourceResult
	Total  int
}

func (e *JoinError) Error() string {
	if len(e.Failed) == 0 {
		return "no sources"
	}
	return fmt.Sprintf("%d of %d sources failed: %v", len(e.Failed), e.Total, e.Failed[0].Err)
}

// Unwrap exposes every source error to errors.Is / errors.As.
func (e *JoinError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// ErrNoSources is returned when a category has nothing to fetch.
var ErrNoSources = errors.New("no sources configured")

// Aggregate merges results per policy. Successful articles are flattened in
// source order and sorted newest first; equal timestamps keep that order.
func Aggregate(results []SourceResult, policy JoinPolicy) (Outcome, error) {
	if len(results) == 0 {
		return Outcome{}, ErrNoSources
	}

	var failed []SourceResult
	total := 0
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
			continue
		}
		total += len(r.Articles)
	}

	if len(failed) > 0 && (policy != PartialSuccess || len(failed) == len(results)) {
		return Outcome{}, &JoinError{Failed: failed, Total: len(results)}
	}

	merged := make([]model.Article, 0, total)
	for _, r := range results {
		if r.Err == nil {
			merged = append(merged, r.Articles...)
		}
	}
	SortByPublished(merged)

	return Outcome{Articles: merged, Failures: failed}, nil
}

// SortByPublished sorts newest first, stable on ties.
func SortByPublished(articles []model.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published.After(articles[j].Published)
	})
}
