// Command build-dataset runs the two-pass link-expansion build from a YAML
// run configuration and writes the dataset artifacts into a timestamped run
// directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/densetext/wikiweave/pkg/weave"
	"github.com/densetext/wikiweave/pkg/weave/config"
	"github.com/densetext/wikiweave/pkg/weave/corpus"
	"github.com/densetext/wikiweave/pkg/weave/corpus/jsondir"
	"github.com/densetext/wikiweave/pkg/weave/corpus/sqlite"
	"github.com/densetext/wikiweave/pkg/weave/dataset"
)

func main() {
	// Optional .env next to the binary; absence is fine.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "", "YAML run configuration (required)")
		outputDir  = flag.String("output", "", "override the configured output directory")
	)
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: build-dataset -config run.yaml [-output dir]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*configPath, *outputDir); err != nil {
		log.Fatalf("build-dataset: %v", err)
	}
}

func run(configPath, outputOverride string) error {
	ctx := context.Background()

	f, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg, err := f.Resolve()
	if err != nil {
		return err
	}

	outDir := f.Output.Dir
	if outputOverride != "" {
		outDir = outputOverride
	}
	if outDir == "" {
		outDir = "."
	}

	store, err := openCorpus(ctx, f)
	if err != nil {
		return err
	}
	defer store.Close()

	runDir := filepath.Join(outDir, time.Now().Format("2006-01-02-15-04-05"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	log.Printf("writing run artifacts to %s", runDir)

	w, err := dataset.NewWriter(filepath.Join(runDir, dataset.SamplesFile))
	if err != nil {
		return err
	}
	defer w.Close()

	b := weave.New(weave.Options{Corpus: store, Config: cfg, Logger: log.Default()})
	res, err := b.Build(ctx, w)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	// Counters land on disk only after every sample has.
	if err := dataset.WriteSummary(filepath.Join(runDir, dataset.SummaryFile), res.LinkExpansionCounts); err != nil {
		return err
	}

	report := dataset.Report{
		RunID:          dataset.NewRunID(),
		GeneratedAt:    time.Now().UTC(),
		CorpusArticles: res.TitlesVisited,
		SamplesWritten: res.SamplesEmitted,
		LinksExpanded:  len(res.LinkExpansionCounts),
		CarryForward:   res.CarryForwardLinks,
		Config:         f,
	}
	if err := dataset.WriteReport(filepath.Join(runDir, dataset.ReportFile), report); err != nil {
		return err
	}

	log.Printf("done: %d samples from %d articles (%d carried-forward links)",
		res.SamplesEmitted, res.TitlesVisited, res.CarryForwardLinks)
	return nil
}

func openCorpus(ctx context.Context, f *config.File) (corpus.Corpus, error) {
	switch f.Corpus.Source {
	case config.SourceSQLite:
		return sqlite.Open(ctx, f.Corpus.Path)
	case config.SourceJSONDir:
		return jsondir.Load(ctx, f.Corpus.Path)
	}
	return nil, fmt.Errorf("unknown corpus source %q", f.Corpus.Source)
}
