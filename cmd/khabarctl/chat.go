package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/infblueocean/khabar/internal/model"
)

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default ~/.khabar/config.yaml)")
	provider := fs.String("provider", "", "Preferred provider (gemini, openai, claude, ollama)")
	fs.Parse(os.Args[1:])

	if fs.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "usage: khabarctl chat [-provider NAME] <indian|global> <n> <question...>")
		os.Exit(1)
	}
	cat, err := model.ParseCategory(fs.Arg(0))
	if err != nil {
		fail("%v", err)
	}
	n, err := strconv.Atoi(fs.Arg(1))
	if err != nil || n < 1 {
		fail("index must be a positive number, got %q", fs.Arg(1))
	}
	question := strings.Join(fs.Args()[2:], " ")

	s := openSession(*configPath)
	defer s.close()

	if *provider != "" {
		s.core.Brain.SetPreferred(*provider)
	}
	if len(s.core.Brain.ListAvailable()) == 0 {
		s.close()
		fail("no model provider configured; set GEMINI_API_KEY or enable one in config")
	}

	ctx := context.Background()
	if err := s.core.Store.FetchCategory(ctx, cat); err != nil {
		s.close()
		fail("%s: %v", s.core.Store.Err(), err)
	}
	articles := s.core.Store.Collection(cat)
	if n > len(articles) {
		s.close()
		fail("%s has %d articles, no #%d", cat.Label(), len(articles), n)
	}
	article := articles[n-1]

	conv := s.core.NewSession(article)
	fmt.Printf("%s\n%s\n\n", article.Title, article.Link)
	fmt.Printf("You: %s\n", question)

	turn := conv.Send(ctx, question)
	fmt.Printf("Assistant: %s\n", turn.Text)
	if turn.Failed {
		if err := conv.LastError(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		s.close()
		os.Exit(1)
	}
}
