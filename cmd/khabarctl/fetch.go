package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/infblueocean/khabar/internal/model"
)

func runFetch() {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.khabar/config.yaml)")
	limit := fs.Int("n", 0, "Show at most n articles (0 = all)")
	asJSON := fs.Bool("json", false, "Print articles as JSON")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: khabarctl fetch [-n N] [-json] <indian|global>")
		os.Exit(1)
	}
	cat, err := model.ParseCategory(fs.Arg(0))
	if err != nil {
		fail("%v", err)
	}

	s := openSession(*configPath)
	defer s.close()

	if err := s.core.Store.FetchCategory(context.Background(), cat); err != nil {
		s.close()
		fail("%s: %v", s.core.Store.Err(), err)
	}

	articles := s.core.Store.Collection(cat)
	if *limit > 0 && len(articles) > *limit {
		articles = articles[:*limit]
	}
	if !*asJSON {
		fmt.Printf("%s news: %d articles\n\n", cat.Label(), len(s.core.Store.Collection(cat)))
	}
	if err := printArticles(os.Stdout, articles, *asJSON); err != nil {
		s.close()
		fail("%v", err)
	}
}
