package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/infblueocean/khabar/internal/chat"
	"github.com/infblueocean/khabar/internal/config"
	"github.com/infblueocean/khabar/internal/model"
	"github.com/infblueocean/khabar/internal/otel"
)

func rssServer(t *testing.T, title string, pub time.Time) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>c</title>
<item><title>%s</title><link>https://news.example/%s</link><description>&lt;b&gt;%s&lt;/b&gt; body</description><pubDate>%s</pubDate></item>
</channel></rss>`, title, title, title, pub.Format(time.RFC1123Z))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, indian, global []string) *config.Config {
	t.Helper()
	var b strings.Builder
	b.WriteString("indian:\n")
	for _, u := range indian {
		fmt.Fprintf(&b, "  - url: %s\n", u)
	}
	b.WriteString("global:\n")
	for _, u := range global {
		fmt.Fprintf(&b, "  - url: %s\n", u)
	}
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Feeds.SourcesFile = path
	cfg.Feeds.JoinPolicy = "all-or-nothing"
	cfg.Normalize.HTMLMode = "dom"
	cfg.Chat.MaxTokens = 256
	return cfg
}

func TestBuildFetchesAndSearches(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	in1 := rssServer(t, "Monsoon", base)
	in2 := rssServer(t, "Cricket", base.Add(time.Hour))
	gl := rssServer(t, "Summit", base)

	core, err := Build(testConfig(t, []string{in1.URL, in2.URL}, []string{gl.URL}), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer core.Close()

	ctx := context.Background()
	for _, cat := range model.Categories {
		if err := core.Store.FetchCategory(ctx, cat); err != nil {
			t.Fatalf("fetch %s: %v", cat, err)
		}
	}

	indian := core.Store.Collection(model.CategoryIndian)
	if len(indian) != 2 || indian[0].Title != "Cricket" || indian[1].Title != "Monsoon" {
		t.Fatalf("indian = %+v", indian)
	}
	if indian[0].Description != "Cricket body" {
		t.Errorf("description = %q", indian[0].Description)
	}

	got := core.Store.Search("summit")
	if len(got) != 1 || got[0].Title != "Summit" {
		t.Errorf("search = %+v", got)
	}
}

func TestBuildRejectsBadPolicy(t *testing.T) {
	cfg := testConfig(t, nil, nil)
	cfg.Feeds.JoinPolicy = "most"
	if _, err := Build(cfg, nil); err == nil {
		t.Fatal("expected error for unknown join policy")
	}
}

func TestBuildRejectsMissingSources(t *testing.T) {
	cfg := &config.Config{}
	cfg.Feeds.SourcesFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Build(cfg, nil); err == nil {
		t.Fatal("expected error for missing sources file")
	}
}

func TestNewSessionWithoutProvidersFallsBack(t *testing.T) {
	core, err := Build(testConfig(t, nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer core.Close()

	s := core.NewSession(model.Article{ID: "a", Title: "T"})
	turn := s.Send(context.Background(), "what happened?")
	if !turn.Failed || turn.Text != chat.FallbackReply {
		t.Errorf("turn = %+v, want fallback", turn)
	}
	if s.LastError() == nil {
		t.Error("LastError should be set")
	}
}

func TestOpenEventsWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.jsonl")
	ring := otel.NewRingBuffer(8)
	l, closeFn, err := OpenEvents(path, ring)
	if err != nil {
		t.Fatal(err)
	}
	l.Info(otel.KindStartup, "test", "hello")
	closeFn()

	if ring.Len() != 1 {
		t.Errorf("ring len = %d, want 1", ring.Len())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	var lines int
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		if ev["kind"] != string(otel.KindStartup) {
			t.Errorf("kind = %v", ev["kind"])
		}
		lines++
	}
	if lines != 1 {
		t.Errorf("lines = %d, want 1", lines)
	}
}

func TestEventLogPathIsDated(t *testing.T) {
	dir := t.TempDir()
	p, err := EventLogPath(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := "events-" + time.Now().Format("2006-01-02") + ".jsonl"
	if filepath.Dir(p) != dir || filepath.Base(p) != want {
		t.Errorf("path = %s", p)
	}
}
