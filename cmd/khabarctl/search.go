package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/infblueocean/khabar/internal/model"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.khabar/config.yaml)")
	asJSON := fs.Bool("json", false, "Print matches as JSON")
	fs.Parse(os.Args[1:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: khabarctl search [-json] <query>")
		os.Exit(1)
	}

	s := openSession(*configPath)
	defer s.close()

	// A failed category still leaves the other searchable.
	var g errgroup.Group
	for _, cat := range model.Categories {
		g.Go(func() error {
			if err := s.core.Store.FetchCategory(context.Background(), cat); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", cat.Label(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	matches := s.core.Store.Search(query)
	if !*asJSON {
		fmt.Printf("%d matches for %q\n\n", len(matches), query)
	}
	if err := printArticles(os.Stdout, matches, *asJSON); err != nil {
		s.close()
		fail("%v", err)
	}
}
