package memcorpus

import (
	"context"
	"sync"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
)

// Store is an in-memory implementation of corpus.Store. It preserves article
// insertion order, which is the iteration order of the two-pass builder.
type Store struct {
	mu       sync.RWMutex
	order    []string
	articles map[string]corpus.Article
	linkFreq map[string]int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		articles: make(map[string]corpus.Article),
		linkFreq: make(map[string]int64),
	}
}

// Close implements corpus.Store.
func (s *Store) Close() error { return nil }

// UpsertArticle inserts or replaces an article, keyed by title. A replaced
// article keeps its original position in the enumeration order.
func (s *Store) UpsertArticle(ctx context.Context, a corpus.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Title == "" {
		return nil
	}
	if _, ok := s.articles[a.Title]; !ok {
		s.order = append(s.order, a.Title)
	}
	s.articles[a.Title] = copyArticle(a)
	return nil
}

// AddLinkFrequency adjusts the global frequency of a link, clamping at zero.
func (s *Store) AddLinkFrequency(ctx context.Context, link string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link == "" {
		return nil
	}
	next := s.linkFreq[link] + delta
	if next <= 0 {
		delete(s.linkFreq, link)
		return nil
	}
	s.linkFreq[link] = next
	return nil
}

// Get returns the article for a title.
func (s *Store) Get(ctx context.Context, title string) (corpus.Article, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.articles[title]; ok {
		return copyArticle(a), true, nil
	}
	return corpus.Article{}, false, nil
}

// Has reports whether a title exists.
func (s *Store) Has(ctx context.Context, title string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.articles[title]
	return ok, nil
}

// Titles returns every title in insertion order.
func (s *Store) Titles(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

// LinkFrequency returns how many articles link to the title.
func (s *Store) LinkFrequency(ctx context.Context, link string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkFreq[link], nil
}

// Len returns the number of stored articles.
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles), nil
}

func copyArticle(a corpus.Article) corpus.Article {
	links := make([]string, len(a.Links))
	copy(links, a.Links)
	return corpus.Article{
		Title:     a.Title,
		Text:      a.Text,
		Links:     links,
		NumTokens: a.NumTokens,
	}
}
