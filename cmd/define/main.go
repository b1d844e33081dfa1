// Command define looks up dictionary definitions for words given on the
// command line, sharing one session cache across all lookups.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/docpane/docpane/dict"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "define: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: define [flags] <word> [word...]\n")
		flag.PrintDefaults()
	}
	baseURL := flag.String("base", dict.DefaultBaseURL, "Dictionary service base URL")
	asHTML := flag.Bool("html", false, "Emit popup HTML instead of plain text")
	timeout := flag.Duration("timeout", 15*time.Second, "Per-lookup timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("no words given")
	}

	client := dict.NewClient(dict.WithBaseURL(*baseURL))
	for _, raw := range flag.Args() {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		entry, err := client.Lookup(ctx, raw)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "define: %q: %v\n", raw, err)
			continue
		}
		if *asHTML {
			html, err := dict.RenderHTML(entry)
			if err != nil {
				return err
			}
			fmt.Println(html)
			continue
		}
		printEntry(entry)
	}
	return nil
}

func printEntry(e dict.Entry) {
	fmt.Printf("%s", e.Word)
	if e.Phonetic != "" {
		fmt.Printf("  %s", e.Phonetic)
	}
	if e.PartOfSpeech != "" {
		fmt.Printf("  (%s)", e.PartOfSpeech)
	}
	fmt.Println()
	fmt.Printf("  %s\n", e.Definition)
	if e.Example != "" {
		fmt.Printf("  e.g. %s\n", e.Example)
	}
}
