// Command process-wiki ingests a raw Wikipedia JSONL dump into a SQLite
// corpus store ready for dataset builds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/densetext/wikiweave/pkg/weave/corpus/sqlite"
	"github.com/densetext/wikiweave/pkg/weave/ingest"
)

func main() {
	var (
		inputPath   = flag.String("input", "", "Wikipedia JSONL dump to ingest (required)")
		dbPath      = flag.String("db", "articles.sqlite3", "SQLite corpus database to create or extend")
		encoding    = flag.String("encoding", ingest.DefaultEncoding, "tiktoken encoding used for token counts")
		wordTokens  = flag.Bool("word-tokens", false, "count whitespace words instead of tokenizing (offline mode)")
		maxArticles = flag.Int("max-articles", 0, "stop after storing this many articles (0 = no limit)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: process-wiki -input dump.jsonl [-db articles.sqlite3]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*inputPath, *dbPath, *encoding, *wordTokens, *maxArticles); err != nil {
		log.Fatalf("process-wiki: %v", err)
	}
}

func run(inputPath, dbPath, encoding string, wordTokens bool, maxArticles int) error {
	ctx := context.Background()

	var counter ingest.Counter
	if wordTokens {
		counter = ingest.WordCounter{}
	} else {
		tc, err := ingest.NewTiktokenCounter(encoding)
		if err != nil {
			return err
		}
		counter = tc
	}

	store, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("opening corpus store: %w", err)
	}
	defer store.Close()

	in, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	proc := ingest.NewProcessor(ingest.Options{
		Store:       store,
		Counter:     counter,
		Logger:      log.Default(),
		MaxArticles: maxArticles,
	})

	stats, err := proc.Run(ctx, in)
	if err != nil {
		return err
	}

	log.Printf("corpus ready at %s: %d articles stored, %d blank skipped, %d duplicates (%d superseded)",
		dbPath, stats.Stored, stats.Blank, stats.Duplicates, stats.Superseded)
	return nil
}
