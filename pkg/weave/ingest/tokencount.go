package ingest

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter measures article length in tokens. Counts are stored with each
// article so dataset builds never re-tokenize.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with a tiktoken BPE encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// DefaultEncoding is used when no encoding name is given.
const DefaultEncoding = "cl100k_base"

// NewTiktokenCounter initializes a counter for the named encoding. The first
// call downloads the encoding's vocabulary unless it is cached locally.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("initializing tokenizer %q: %w", encoding, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// WordCounter approximates token counts by whitespace-separated words. It
// needs no vocabulary download, which keeps offline runs and tests cheap.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}
