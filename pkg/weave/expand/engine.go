// Package expand grows a single article toward a token threshold by splicing
// in the text of its linked articles, best link first.
package expand

import (
	"context"
	"fmt"
	"strings"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
	"github.com/densetext/wikiweave/pkg/weave/dataset"
	"github.com/densetext/wikiweave/pkg/weave/internalerr"
	"github.com/densetext/wikiweave/pkg/weave/priority"
)

// Unlimited disables a quota. Zero is a real value: a zero quota or threshold
// means "expand nothing", not "unbounded".
const Unlimited = -1

// IncludeStrategy controls where a linked article's text is spliced in.
// The choice is global and fixed for a run.
type IncludeStrategy int

const (
	// Prepend inserts the linked text before the accumulated text, so the
	// most recently expanded link ends up closest to the top.
	Prepend IncludeStrategy = iota
	// Append inserts the linked text after the accumulated text.
	Append
)

// String returns the configuration name of the strategy.
func (s IncludeStrategy) String() string {
	switch s {
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	}
	return fmt.Sprintf("include(%d)", int(s))
}

// ParseInclude resolves a configuration string to an IncludeStrategy.
func ParseInclude(name string) (IncludeStrategy, error) {
	switch name {
	case "prepend":
		return Prepend, nil
	case "append":
		return Append, nil
	}
	return 0, fmt.Errorf("%w: unknown include strategy %q", internalerr.ErrInvalidConfig, name)
}

// Config bounds a single article's expansion.
type Config struct {
	// TokenThreshold is the target length; expansion stops once the sample
	// reaches it.
	TokenThreshold int

	// MaxLinkExpansions caps how often any one link may be expanded across
	// the whole pass. Unlimited disables the quota.
	MaxLinkExpansions int

	// MaxLinksPerArticle caps how many links one sample may splice in.
	// Unlimited disables the cap.
	MaxLinksPerArticle int

	Include IncludeStrategy
}

// Engine expands one article at a time against a read-only corpus. It never
// mutates the expansion state it is given.
type Engine struct {
	corpus corpus.Corpus
	ranker *priority.Ranker
	cfg    Config
}

// New creates an engine.
func New(c corpus.Corpus, ranker *priority.Ranker, cfg Config) *Engine {
	return &Engine{corpus: c, ranker: ranker, cfg: cfg}
}

// Expand splices linked articles into a until the token threshold, the local
// link cap, or the candidate supply runs out, whichever comes first. Links
// pointing outside the corpus are silently ineligible. There is no
// backtracking: a committed link stays even if a later one would have fit
// the final length better.
func (e *Engine) Expand(ctx context.Context, a corpus.Article, st *State) (dataset.Sample, error) {
	candidates, targets, err := e.eligibleCandidates(ctx, a, st)
	if err != nil {
		return dataset.Sample{}, err
	}
	stack := e.ranker.Order(candidates)

	text := a.Text
	tokens := a.NumTokens
	linksExpanded := []string{}

	for tokens < e.cfg.TokenThreshold && len(stack) > 0 {
		if e.cfg.MaxLinksPerArticle != Unlimited && len(linksExpanded) >= e.cfg.MaxLinksPerArticle {
			break
		}

		link := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Defensive: the corpus is static, so eligibility should still hold.
		target, ok := targets[link]
		if !ok {
			continue
		}
		if e.cfg.MaxLinkExpansions != Unlimited && st.Count(link) >= e.cfg.MaxLinkExpansions {
			continue
		}

		text = e.splice(text, target.Text)
		tokens += target.NumTokens
		linksExpanded = append(linksExpanded, link)
	}

	return dataset.Sample{
		Title:          a.Title,
		NWords:         len(strings.Fields(text)),
		NTokens:        tokens,
		LinksExpanded:  linksExpanded,
		NLinksExpanded: len(linksExpanded),
		ExpandedText:   text,
	}, nil
}

// eligibleCandidates collapses duplicate links and filters out dangling
// targets and links already at the global quota, returning the ranking
// inputs plus the resolved target articles.
func (e *Engine) eligibleCandidates(ctx context.Context, a corpus.Article, st *State) ([]priority.Candidate, map[string]corpus.Article, error) {
	seen := make(map[string]struct{}, len(a.Links))
	targets := make(map[string]corpus.Article, len(a.Links))
	var cands []priority.Candidate

	for _, link := range a.Links {
		if link == "" || link == a.Title {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		if e.cfg.MaxLinkExpansions != Unlimited && st.Count(link) >= e.cfg.MaxLinkExpansions {
			continue
		}

		target, found, err := e.corpus.Get(ctx, link)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			continue // dangling link, never an error
		}

		freq, err := e.corpus.LinkFrequency(ctx, link)
		if err != nil {
			return nil, nil, err
		}

		targets[link] = target
		cands = append(cands, priority.Candidate{
			Title:        link,
			NumTokens:    target.NumTokens,
			Frequency:    freq,
			Expansions:   st.Count(link),
			CarryForward: st.InCarryForward(link),
		})
	}
	return cands, targets, nil
}

// splice joins the linked text per the include strategy, separated by exactly
// one blank line.
func (e *Engine) splice(text, linkText string) string {
	if e.cfg.Include == Append {
		return text + "\n\n" + linkText
	}
	return linkText + "\n\n" + text
}
