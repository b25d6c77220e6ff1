// Package jsondir loads a processed corpus from the directory layout the
// upstream processing step emits: one JSON mapping per concern.
package jsondir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/densetext/wikiweave/pkg/weave/corpus"
	"github.com/densetext/wikiweave/pkg/weave/corpus/memcorpus"
	"github.com/densetext/wikiweave/pkg/weave/internalerr"
)

// File names within a processed-corpus directory.
const (
	TitleToTextFile      = "title_to_text.json"
	TitleToLinksFile     = "title_to_links.json"
	LinkToFreqFile       = "link_to_freq.json"
	TitleToNumTokensFile = "title_to_num_tokens.json"
	TitleToTokensFile    = "title_to_tokens.json"
)

// Load reads the processed mappings from dir into an in-memory corpus.
// Token counts come from title_to_num_tokens.json when present, otherwise
// from the lengths of the token-ID lists in title_to_tokens.json. A missing
// required mapping is a fatal input error reported before any pass starts.
//
// Titles are enumerated in sorted order: JSON objects carry no order of
// their own, and the enumeration must be stable across runs.
func Load(ctx context.Context, dir string) (corpus.Corpus, error) {
	var titleToText map[string]string
	if err := readJSON(filepath.Join(dir, TitleToTextFile), &titleToText); err != nil {
		return nil, err
	}

	var titleToLinks map[string][]string
	if err := readJSON(filepath.Join(dir, TitleToLinksFile), &titleToLinks); err != nil {
		return nil, err
	}

	var linkToFreq map[string]int64
	if err := readJSON(filepath.Join(dir, LinkToFreqFile), &linkToFreq); err != nil {
		return nil, err
	}

	numTokens, err := loadTokenCounts(dir)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(titleToText))
	for title := range titleToText {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	store := memcorpus.New()
	for _, title := range titles {
		a := corpus.Article{
			Title:     title,
			Text:      titleToText[title],
			Links:     titleToLinks[title],
			NumTokens: numTokens[title],
		}
		if err := store.UpsertArticle(ctx, a); err != nil {
			return nil, err
		}
	}
	for link, freq := range linkToFreq {
		if err := store.AddLinkFrequency(ctx, link, freq); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func loadTokenCounts(dir string) (map[string]int, error) {
	countPath := filepath.Join(dir, TitleToNumTokensFile)
	if _, err := os.Stat(countPath); err == nil {
		var counts map[string]int
		if err := readJSON(countPath, &counts); err != nil {
			return nil, err
		}
		return counts, nil
	}

	var tokenLists map[string][]int
	if err := readJSON(filepath.Join(dir, TitleToTokensFile), &tokenLists); err != nil {
		return nil, fmt.Errorf("%w: need %s or %s in %s", internalerr.ErrMissingInput,
			TitleToNumTokensFile, TitleToTokensFile, dir)
	}
	counts := make(map[string]int, len(tokenLists))
	for title, tokens := range tokenLists {
		counts[title] = len(tokens)
	}
	return counts, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", internalerr.ErrMissingInput, path)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidInput, path, err)
	}
	return nil
}
