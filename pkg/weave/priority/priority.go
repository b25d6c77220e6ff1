// Package priority orders a title's candidate links for expansion.
//
// Rankers return candidates as a stack: the engine pops from the END of the
// returned slice, so the most-preferred link is always last. All policies are
// pure and deterministic; ties keep the caller's candidate order.
package priority

import (
	"fmt"
	"math"
	"sort"

	"github.com/densetext/wikiweave/pkg/weave/internalerr"
)

// Strategy selects the link-ordering policy for a run.
type Strategy int

const (
	// Staged prefers links left unexpanded by the discovery pass, then links
	// expanded fewer times, then globally rarer links, then longer links.
	Staged Strategy = iota
	// Length prefers links with fewer tokens (descending sort, popped from
	// the end).
	Length
	// Frequency prefers globally rare links, with already-expanded links
	// pushed further down by the penalty multiplier.
	Frequency
	// LengthMixFrequency buckets links by penalized frequency and prefers
	// short links in low buckets, which tend to be cheap filler.
	LengthMixFrequency
)

var strategyNames = map[Strategy]string{
	Staged:             "staged",
	Length:             "length",
	Frequency:          "frequency",
	LengthMixFrequency: "length_mix_frequency",
}

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy resolves a configuration string to a Strategy. Unknown names
// are a configuration error and must abort the run before any processing.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown link priority strategy %q", internalerr.ErrInvalidConfig, name)
}

// Candidate is one eligible outgoing link with the state the policies rank by.
type Candidate struct {
	Title        string
	NumTokens    int
	Frequency    int64
	Expansions   int
	CarryForward bool
}

// Ranker orders candidates under a fixed strategy and penalty multiplier.
type Ranker struct {
	strategy Strategy
	penalty  float64
}

// NewRanker creates a ranker. The penalty multiplier is only consulted by the
// frequency-based strategies and must be non-negative.
func NewRanker(strategy Strategy, penalty float64) *Ranker {
	if penalty < 0 {
		penalty = 0
	}
	return &Ranker{strategy: strategy, penalty: penalty}
}

// Order returns the candidate titles as an expansion stack, most-preferred
// last. The input slice is not modified.
func (r *Ranker) Order(cands []Candidate) []string {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)

	switch r.strategy {
	case Staged:
		sort.SliceStable(sorted, func(i, j int) bool {
			return stagedLessPreferred(sorted[i], sorted[j])
		})
	case Length:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].NumTokens > sorted[j].NumTokens
		})
	case Frequency:
		sort.SliceStable(sorted, func(i, j int) bool {
			return r.penalized(sorted[i]) > r.penalized(sorted[j])
		})
	case LengthMixFrequency:
		sort.SliceStable(sorted, func(i, j int) bool {
			bi, bj := r.bucket(sorted[i]), r.bucket(sorted[j])
			if bi != bj {
				return bi > bj
			}
			return sorted[i].NumTokens > sorted[j].NumTokens
		})
	}

	titles := make([]string, len(sorted))
	for i, c := range sorted {
		titles[i] = c.Title
	}
	return titles
}

// stagedLessPreferred reports whether a should sit earlier (further from the
// popping end) than b: carried-forward links go last, then links with fewer
// expansions, then rarer links, then longer links.
func stagedLessPreferred(a, b Candidate) bool {
	if a.CarryForward != b.CarryForward {
		return !a.CarryForward
	}
	if a.Expansions != b.Expansions {
		return a.Expansions > b.Expansions
	}
	if a.Frequency != b.Frequency {
		return a.Frequency > b.Frequency
	}
	return a.NumTokens < b.NumTokens
}

// penalized inflates the apparent popularity of links that have already been
// expanded, pushing them away from the popping end when the multiplier is
// positive.
func (r *Ranker) penalized(c Candidate) float64 {
	return float64(c.Frequency) + r.penalty*float64(c.Expansions)
}

// bucket assigns a candidate to a penalized-frequency bucket. With a zero
// multiplier everything lands in bucket 0.
func (r *Ranker) bucket(c Candidate) int {
	if r.penalty <= 0 {
		return 0
	}
	return int(math.Floor(r.penalized(c) / r.penalty))
}
