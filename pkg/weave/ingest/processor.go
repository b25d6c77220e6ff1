// Package ingest turns raw Wikipedia JSONL dumps into a corpus store:
// article text rendered with a title heading, internal links extracted and
// deduplicated, token counts attached, and per-link frequencies maintained.
package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
	"github.com/densetext/wikiweave/pkg/weave/internalerr"
)

// WikiArticle is one line of a Wikipedia JSONL dump. Only the fields the
// processor reads are declared.
type WikiArticle struct {
	Title     string        `json:"title"`
	Plaintext string        `json:"plaintext"`
	Sections  []WikiSection `json:"sections"`
}

type WikiSection struct {
	Paragraphs []WikiParagraph `json:"paragraphs"`
}

type WikiParagraph struct {
	Sentences []WikiSentence `json:"sentences"`
}

type WikiSentence struct {
	Links []WikiLink `json:"links"`
}

// WikiLink is a sentence-level link annotation. Page carries the target
// article title for internal links.
type WikiLink struct {
	Type string `json:"type"`
	Page string `json:"page"`
}

const (
	progressLogInterval = 10000

	// Dump lines hold whole articles; the default scanner limit is far too
	// small for the long ones.
	maxLineBytes = 16 << 20
)

// Options configures a Processor.
type Options struct {
	Store   corpus.Store
	Counter Counter
	Logger  *log.Logger

	// MaxArticles stops ingestion after storing that many articles; zero or
	// negative means no limit.
	MaxArticles int
}

// Stats summarizes one ingestion run.
type Stats struct {
	Stored     int
	Blank      int
	Duplicates int
	Superseded int
}

// Processor streams a dump into a corpus store.
type Processor struct {
	store       corpus.Store
	counter     Counter
	logger      *log.Logger
	maxArticles int
}

// NewProcessor creates a Processor. A nil Counter falls back to word
// counting.
func NewProcessor(opts Options) *Processor {
	counter := opts.Counter
	if counter == nil {
		counter = WordCounter{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{
		store:       opts.Store,
		counter:     counter,
		logger:      logger,
		maxArticles: opts.MaxArticles,
	}
}

// Run reads JSONL from r until EOF or the article limit. Articles with no
// plaintext are skipped. When a title repeats, the longer text wins and the
// loser's link contributions are withdrawn from the frequency table.
func (p *Processor) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		if line%progressLogInterval == 0 {
			p.logger.Printf("processed %d articles", line)
		}

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var a WikiArticle
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return stats, fmt.Errorf("%w: line %d: %v", internalerr.ErrInvalidInput, line, err)
		}

		plain := strings.TrimSpace(StripHTML(a.Plaintext))
		if plain == "" {
			stats.Blank++
			continue
		}

		text := "# " + a.Title + "\n\n" + plain
		article := corpus.Article{
			Title:     a.Title,
			Text:      text,
			Links:     extractLinks(a),
			NumTokens: p.counter.Count(text),
		}

		stored, err := p.upsert(ctx, article, &stats)
		if err != nil {
			return stats, err
		}
		if !stored {
			continue
		}

		stats.Stored++
		if p.maxArticles > 0 && stats.Stored >= p.maxArticles {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading dump: %w", err)
	}

	p.logger.Printf("done: %d articles stored, %d blank, %d duplicates (%d superseded)",
		stats.Stored, stats.Blank, stats.Duplicates, stats.Superseded)
	return stats, nil
}

// upsert stores the article unless an existing entry with the same title has
// longer text. Superseding an entry withdraws its link frequencies first.
func (p *Processor) upsert(ctx context.Context, a corpus.Article, stats *Stats) (bool, error) {
	existing, found, err := p.store.Get(ctx, a.Title)
	if err != nil {
		return false, err
	}
	if found {
		stats.Duplicates++
		if len(existing.Text) >= len(a.Text) {
			return false, nil
		}
		stats.Superseded++
		for _, link := range existing.Links {
			if err := p.store.AddLinkFrequency(ctx, link, -1); err != nil {
				return false, err
			}
		}
	}

	if err := p.store.UpsertArticle(ctx, a); err != nil {
		return false, err
	}
	for _, link := range a.Links {
		if err := p.store.AddLinkFrequency(ctx, link, 1); err != nil {
			return false, err
		}
	}
	return true, nil
}

// extractLinks collects internal link targets in first-appearance order,
// without duplicates.
func extractLinks(a WikiArticle) []string {
	var links []string
	seen := make(map[string]struct{})
	for _, section := range a.Sections {
		for _, paragraph := range section.Paragraphs {
			for _, sentence := range paragraph.Sentences {
				for _, link := range sentence.Links {
					if link.Type != "internal" || link.Page == "" {
						continue
					}
					if _, ok := seen[link.Page]; ok {
						continue
					}
					seen[link.Page] = struct{}{}
					links = append(links, link.Page)
				}
			}
		}
	}
	return links
}
