// Package weave builds an expanded-article training corpus: every article is
// grown toward a token threshold by splicing in the articles it links to,
// across two passes over the whole corpus.
package weave

import (
	"context"
	"fmt"
	"log"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
	"github.com/densetext/wikiweave/pkg/weave/dataset"
	"github.com/densetext/wikiweave/pkg/weave/expand"
	"github.com/densetext/wikiweave/pkg/weave/internalerr"
	"github.com/densetext/wikiweave/pkg/weave/priority"
)

// Config fixes every knob of a two-pass dataset build. All values hold for
// the whole run.
type Config struct {
	// TokenThreshold is the target sample length.
	TokenThreshold int

	// MinTokens/MaxTokens bound sample acceptance (inclusive). MaxTokens may
	// be expand.Unlimited.
	MinTokens int
	MaxTokens int

	// MaxDatasetLength caps the number of emitted samples; zero or negative
	// means no cap.
	MaxDatasetLength int

	// MaxLinkExpansions is the global per-link quota, MaxLinksPerArticle the
	// local per-sample cap; either may be expand.Unlimited.
	MaxLinkExpansions  int
	MaxLinksPerArticle int

	Include           expand.IncludeStrategy
	Priority          priority.Strategy
	PenaltyMultiplier float64
}

// Options configures a Builder instance.
type Options struct {
	Corpus corpus.Corpus
	Config Config
	Logger *log.Logger
}

// Sink receives accepted samples during the commit pass, in title-iteration
// order.
type Sink interface {
	Write(s dataset.Sample) error
}

// Result summarizes a finished build. LinkExpansionCounts are the commit
// pass's final counters, the run's summary artifact.
type Result struct {
	TitlesVisited       int
	SamplesEmitted      int
	CarryForwardLinks   int
	LinkExpansionCounts map[string]int
}

// Builder runs the expansion engine over every article in the corpus, twice.
//
// A single pass in enumeration order lets early articles monopolize rare
// filler links before later articles get a chance. The discovery pass
// therefore runs the full expansion without emitting anything, only to learn
// which reachable links never got expanded; those are promoted to highest
// priority before the commit pass runs the corpus again for real.
type Builder struct {
	corpus corpus.Corpus
	cfg    Config
	logger *log.Logger
}

// New creates a Builder.
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		corpus: opts.Corpus,
		cfg:    opts.Config,
		logger: logger,
	}
}

const progressLogInterval = 1000

// Build runs both passes and streams accepted commit-pass samples to sink.
// The carried-forward set is frozen at the pass boundary; expansion counters
// start from zero in each pass.
func (b *Builder) Build(ctx context.Context, sink Sink) (Result, error) {
	titles, err := b.corpus.Titles(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(titles) == 0 {
		return Result{}, fmt.Errorf("%w: corpus holds no articles", internalerr.ErrMissingInput)
	}

	engine := expand.New(b.corpus, priority.NewRanker(b.cfg.Priority, b.cfg.PenaltyMultiplier), expand.Config{
		TokenThreshold:     b.cfg.TokenThreshold,
		MaxLinkExpansions:  b.cfg.MaxLinkExpansions,
		MaxLinksPerArticle: b.cfg.MaxLinksPerArticle,
		Include:            b.cfg.Include,
	})

	carry, err := b.discoveryPass(ctx, engine, titles)
	if err != nil {
		return Result{}, err
	}
	b.logger.Printf("discovery pass done: %d links considered but never expanded", len(carry))

	emitted, counts, err := b.commitPass(ctx, engine, titles, carry, sink)
	if err != nil {
		return Result{}, err
	}
	b.logger.Printf("commit pass done: %d samples emitted", emitted)

	return Result{
		TitlesVisited:       len(titles),
		SamplesEmitted:      emitted,
		CarryForwardLinks:   len(carry),
		LinkExpansionCounts: counts,
	}, nil
}

// discoveryPass expands every article without emitting output and returns
// the set of links that appeared as a candidate somewhere but were never
// spliced in.
func (b *Builder) discoveryPass(ctx context.Context, engine *expand.Engine, titles []string) (map[string]struct{}, error) {
	st := expand.NewState()
	considered := make(map[string]struct{})

	for i, title := range titles {
		if i%progressLogInterval == 0 {
			b.logger.Printf("discovery pass: %d/%d titles", i, len(titles))
		}

		a, found, err := b.corpus.Get(ctx, title)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}

		sample, err := engine.Expand(ctx, a, st)
		if err != nil {
			return nil, err
		}
		if !b.accept(sample) {
			continue
		}

		st.RecordExpansions(sample.LinksExpanded)
		for _, link := range a.Links {
			if link != "" && link != a.Title {
				considered[link] = struct{}{}
			}
		}
	}

	for link := range st.ExpandedLinks() {
		delete(considered, link)
	}
	return considered, nil
}

// commitPass expands every article again with the carried-forward set active
// and emits accepted samples until the dataset cap is hit.
func (b *Builder) commitPass(ctx context.Context, engine *expand.Engine, titles []string, carry map[string]struct{}, sink Sink) (int, map[string]int, error) {
	st := expand.NewState()
	st.SetCarryForward(carry)

	emitted := 0
	for i, title := range titles {
		if i%progressLogInterval == 0 {
			b.logger.Printf("commit pass: %d/%d titles", i, len(titles))
		}

		a, found, err := b.corpus.Get(ctx, title)
		if err != nil {
			return 0, nil, err
		}
		if !found {
			continue
		}

		sample, err := engine.Expand(ctx, a, st)
		if err != nil {
			return 0, nil, err
		}
		if !b.accept(sample) {
			continue
		}

		st.RecordExpansions(sample.LinksExpanded)
		if err := sink.Write(sample); err != nil {
			return 0, nil, err
		}
		emitted++

		if b.cfg.MaxDatasetLength > 0 && emitted >= b.cfg.MaxDatasetLength {
			break
		}
	}
	return emitted, st.Counts(), nil
}

// accept applies the [MinTokens, MaxTokens] window. Rejected samples are
// skipped silently and never retried.
func (b *Builder) accept(s dataset.Sample) bool {
	if s.NTokens < b.cfg.MinTokens {
		return false
	}
	if b.cfg.MaxTokens != expand.Unlimited && s.NTokens > b.cfg.MaxTokens {
		return false
	}
	return true
}
