package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/infblueocean/khabar/internal/feeds"
	"github.com/infblueocean/khabar/internal/model"
)

func runSources() {
	fs := flag.NewFlagSet("sources", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.khabar/config.yaml)")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*configPath)
	catalog, err := feeds.LoadCatalog(cfg.Feeds.SourcesFile)
	if err != nil {
		fail("%v", err)
	}

	from := cfg.Feeds.SourcesFile
	if from == "" {
		from = "built-in"
	}
	fmt.Printf("Sources (%s, join policy %s)\n", from, cfg.Feeds.JoinPolicy)
	for _, cat := range model.Categories {
		fmt.Printf("\n%s\n", cat.Label())
		for _, src := range catalog[cat] {
			fmt.Printf("  %-24s %s\n", truncate(src.Name, 24), src.URL)
		}
	}
}
