package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title>
<item><title>Article 1</title><link>http://example.com/1</link></item>
</channel></rss>`

func TestFetchReturnsBody(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	f := NewFetcher()
	body, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != sampleRSS {
		t.Errorf("unexpected body: %q", body)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
}

func TestFetchCustomUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	f := NewFetcher(WithUserAgent("tester/1.0"))
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotUA != "tester/1.0" {
		t.Errorf("User-Agent = %q, want tester/1.0", gotUA)
	}
}

func TestFetch404IsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NetworkError, got %T", err)
	}
	if ne.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", ne.StatusCode)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should mention status: %v", err)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewFetcher().Fetch(context.Background(), url)
	if !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	_, err := NewFetcher(WithMaxBodyBytes(16)).Fetch(context.Background(), server.URL)
	if !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("expected errBodyTooLarge, got %v", err)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher().Fetch(ctx, "http://example.invalid/feed")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewFetcher(WithTimeout(20*time.Millisecond)).Fetch(context.Background(), server.URL)
	if !IsNetworkError(err) {
		t.Fatalf("expected timeout to surface as NetworkError, got %v", err)
	}
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	urls := []string{ok.URL, bad.URL, ok.URL + "/again"}
	results := NewFetcher().FetchAll(context.Background(), urls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] {
			t.Errorf("result %d URL = %q, want %q (order must match input)", i, r.URL, urls[i])
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("healthy sources should succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil || results[1].Body != nil {
		t.Errorf("failing source should carry only an error: %+v", results[1])
	}
}

func TestFetchAllRunsConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inflight.Add(-1)
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	urls := []string{server.URL + "/a", server.URL + "/b", server.URL + "/c"}
	done := make(chan []Result)
	go func() { done <- NewFetcher().FetchAll(context.Background(), urls) }()

	deadline := time.After(2 * time.Second)
	for peak.Load() < int32(len(urls)) {
		select {
		case <-deadline:
			close(release)
			t.Fatalf("expected %d concurrent requests, peak was %d", len(urls), peak.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(release)

	for _, r := range <-done {
		if r.Err != nil {
			t.Errorf("unexpected error for %s: %v", r.URL, r.Err)
		}
	}
}

func TestFetchAllEmpty(t *testing.T) {
	if got := NewFetcher().FetchAll(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}
