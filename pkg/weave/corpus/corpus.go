package corpus

import "context"

// Article is one processed Wikipedia article. Articles are immutable once
// loaded; the corpus is read-only during expansion.
type Article struct {
	Title     string
	Text      string
	Links     []string
	NumTokens int
}

// Corpus is the read-only view the expansion engine works against. Links may
// reference titles that do not exist in the corpus; callers must treat those
// as ineligible, not as errors.
type Corpus interface {
	Close() error

	// Get returns the article for a title, with found=false for unknown titles.
	Get(ctx context.Context, title string) (Article, bool, error)

	// Has reports whether a title exists without loading its text.
	Has(ctx context.Context, title string) (bool, error)

	// Titles enumerates every article title in insertion order. The order is
	// stable across calls so repeated runs produce identical output streams.
	Titles(ctx context.Context) ([]string, error)

	// LinkFrequency returns the number of articles that link to the title,
	// zero for titles nothing links to.
	LinkFrequency(ctx context.Context, link string) (int64, error)

	// Len returns the number of articles in the corpus.
	Len(ctx context.Context) (int, error)
}

// Store is a writable corpus used during ingestion. The expansion side only
// ever sees the embedded Corpus view.
type Store interface {
	Corpus

	UpsertArticle(ctx context.Context, a Article) error

	// AddLinkFrequency adjusts the global frequency of a link by delta.
	// Frequencies never go below zero. Negative deltas are used when a
	// duplicate article supersedes a previous one during ingestion.
	AddLinkFrequency(ctx context.Context, link string, delta int64) error
}
