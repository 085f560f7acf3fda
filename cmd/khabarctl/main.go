// Command khabarctl drives khabar's pipeline without the TUI.
//
// Usage:
//
//	khabarctl                          Show help
//	khabarctl fetch <indian|global>    Fetch one category and list it
//	khabarctl search <query>           Fetch both categories and search them
//	khabarctl chat <cat> <n> <q>       Ask about the n-th article of a category
//	khabarctl sources                  Print the source catalog
//	khabarctl events                   JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `khabarctl: khabar news CLI

Usage:
  khabarctl <command> [flags]

Commands:
  fetch       Fetch a category (indian or global) and print it newest first
  search      Fetch both categories and print articles matching a query
  chat        Ask a question about one article (1-based index from fetch)
  sources     Print the configured feed sources
  events      JSONL event log viewer

Environment:
  GEMINI_API_KEY     Gemini key for chat (also GOOGLE_API_KEY)
  OPENAI_API_KEY     OpenAI key, enables the openai provider
  ANTHROPIC_API_KEY  Anthropic key, enables the claude provider
  KHABAR_*           Overrides any config key, e.g. KHABAR_FEEDS_JOIN_POLICY=partial

Run 'khabarctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "fetch":
		runFetch()
	case "search":
		runSearch()
	case "chat":
		runChat()
	case "sources":
		runSources()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "khabarctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
