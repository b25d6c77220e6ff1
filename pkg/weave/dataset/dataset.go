// Package dataset defines the output records of a dataset build and their
// on-disk writers.
package dataset

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
)

// Default file names inside a run directory.
const (
	SamplesFile = "dataset.jsonl"
	SummaryFile = "link_expansion_count.json"
	ReportFile  = "build-report.json"
)

// Sample is one expanded article, the unit of the output stream.
type Sample struct {
	Title          string   `json:"title"`
	NWords         int      `json:"n_words"`
	NTokens        int      `json:"n_tokens"`
	LinksExpanded  []string `json:"links_expanded"`
	NLinksExpanded int      `json:"n_links_expanded"`
	ExpandedText   string   `json:"expanded_text"`
}

// Writer appends samples to a JSONL stream. Samples are written continuously
// during the commit pass; the summary is written once at the very end, so a
// crash mid-run never leaves a summary ahead of the sample stream.
type Writer struct {
	f   *os.File
	enc *json.Encoder
	n   int
}

// NewWriter creates (truncating) the sample stream at path.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one sample.
func (w *Writer) Write(s Sample) error {
	if s.LinksExpanded == nil {
		s.LinksExpanded = []string{}
	}
	if err := w.enc.Encode(s); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of samples written so far.
func (w *Writer) Count() int { return w.n }

// Close flushes and closes the stream.
func (w *Writer) Close() error { return w.f.Close() }

// WriteSummary persists the final per-link expansion counts as a plain JSON
// map, matching the processed-corpus artifact layout.
func WriteSummary(path string, counts map[string]int) error {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Report captures run-level metadata for a finished build.
type Report struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	CorpusArticles int       `json:"corpus_articles"`
	SamplesWritten int       `json:"samples_written"`
	LinksExpanded  int       `json:"distinct_links_expanded"`
	CarryForward   int       `json:"carry_forward_links"`
	Config         any       `json:"config"`
}

// NewRunID returns a fresh ULID for tagging a build run.
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String()
}

// WriteReport persists the run report next to the sample stream.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
