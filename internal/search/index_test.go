package search

import (
	"context"
	"testing"
	"time"

	"github.com/infblueocean/khabar/internal/model"
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func titles(articles []model.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestSearchMatchesTitleOrDescription(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	pub := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	indian := []model.Article{
		{ID: "i1", Title: "Monsoon arrives in Kerala", Description: "Rainfall above normal", Published: pub, Link: "https://a/1", Source: "a"},
		{ID: "i2", Title: "Cricket final", Description: "India wins by six wickets", Published: pub, Link: "https://a/2", Source: "a"},
	}
	global := []model.Article{
		{ID: "g1", Title: "INDIA and EU sign deal", Description: "Trade", Published: pub, Link: "https://b/1", ImageURL: "https://b/1.jpg", Source: "b"},
		{ID: "g2", Title: "Elections in Chile", Description: "Runoff", Published: pub, Link: "https://b/2", Source: "b"},
	}
	// Insert global first: results must still list Indian first.
	if err := ix.Replace(ctx, model.CategoryGlobal, global); err != nil {
		t.Fatal(err)
	}
	if err := ix.Replace(ctx, model.CategoryIndian, indian); err != nil {
		t.Fatal(err)
	}

	got, err := ix.Search(ctx, "  india ")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Cricket final", "INDIA and EU sign deal"}
	if g := titles(got); len(g) != len(want) || g[0] != want[0] || g[1] != want[1] {
		t.Fatalf("titles = %v, want %v", g, want)
	}
	if !got[0].Published.Equal(pub) {
		t.Errorf("published = %v, want %v", got[0].Published, pub)
	}
	if got[1].ImageURL != "https://b/1.jpg" || got[1].Link != "https://b/1" {
		t.Errorf("round-tripped article = %+v", got[1])
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := openIndex(t)
	ix.Replace(context.Background(), model.CategoryIndian, []model.Article{{ID: "x", Title: "anything"}})
	for _, q := range []string{"", "   "} {
		got, err := ix.Search(context.Background(), q)
		if err != nil || got != nil {
			t.Errorf("Search(%q) = %v, %v", q, got, err)
		}
	}
}

func TestReplaceDropsOldContents(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	ix.Replace(ctx, model.CategoryIndian, []model.Article{{ID: "old", Title: "old story"}})
	ix.Replace(ctx, model.CategoryIndian, []model.Article{{ID: "new", Title: "new story"}, {ID: "n2", Title: "another"}})

	if n, _ := ix.Count(ctx, model.CategoryIndian); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	got, _ := ix.Search(ctx, "old")
	if len(got) != 0 {
		t.Errorf("stale article still indexed: %v", titles(got))
	}
}

func TestSearchAgreesWithArticleMatches(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	articles := []model.Article{
		{ID: "1", Title: "Über alles", Description: ""},
		{ID: "2", Title: "plain", Description: "ÜBER mention"},
		{ID: "3", Title: "none", Description: "nothing"},
	}
	ix.Replace(ctx, model.CategoryGlobal, articles)

	got, err := ix.Search(ctx, "über")
	if err != nil {
		t.Fatal(err)
	}
	var want []string
	for _, a := range articles {
		if a.Matches("über") {
			want = append(want, a.Title)
		}
	}
	if g := titles(got); len(g) != len(want) {
		t.Errorf("index = %v, Matches = %v", g, want)
	}
}

func TestHitsLocateCollectionEntries(t *testing.T) {
	ctx := context.Background()
	ix := openIndex(t)
	ix.Replace(ctx, model.CategoryGlobal, []model.Article{{ID: "g0", Title: "rain"}, {ID: "g1", Title: "Rain again"}})
	ix.Replace(ctx, model.CategoryIndian, []model.Article{{ID: "i0", Title: "dry"}, {ID: "i1", Title: "dry", Description: "no rain"}})

	got, err := ix.Hits(ctx, "RAIN")
	if err != nil {
		t.Fatal(err)
	}
	want := []Hit{
		{Category: model.CategoryIndian, Position: 1, ID: "i1"},
		{Category: model.CategoryGlobal, Position: 0, ID: "g0"},
		{Category: model.CategoryGlobal, Position: 1, ID: "g1"},
	}
	if len(got) != len(want) {
		t.Fatalf("hits = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hit %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
