package priority

import (
	"errors"
	"reflect"
	"testing"

	"github.com/densetext/wikiweave/pkg/weave/internalerr"
)

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		name string
		want Strategy
	}{
		{"staged", Staged},
		{"length", Length},
		{"frequency", Frequency},
		{"length_mix_frequency", LengthMixFrequency},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.name)
		if err != nil {
			t.Errorf("ParseStrategy(%q): %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tc.name, got, tc.want)
		}
		if got.String() != tc.name {
			t.Errorf("String() = %q, want %q", got.String(), tc.name)
		}
	}
}

func TestParseStrategyUnknown(t *testing.T) {
	_, err := ParseStrategy("coin_flip")
	if err == nil {
		t.Fatal("unknown strategy should be rejected")
	}
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
	}
}

func TestLengthOrder(t *testing.T) {
	r := NewRanker(Length, 0)
	got := r.Order([]Candidate{
		{Title: "short", NumTokens: 10},
		{Title: "long", NumTokens: 500},
		{Title: "mid", NumTokens: 100},
	})
	// Descending by tokens; the engine pops the shortest first.
	want := []string{"long", "mid", "short"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestFrequencyOrderWithPenalty(t *testing.T) {
	r := NewRanker(Frequency, 10)
	got := r.Order([]Candidate{
		{Title: "rare-but-worn", Frequency: 2, Expansions: 3}, // 2 + 30 = 32
		{Title: "common", Frequency: 20},                      // 20
		{Title: "rare-fresh", Frequency: 2},                   // 2
	})
	// Highest penalized value first; rare-fresh pops first.
	want := []string{"rare-but-worn", "common", "rare-fresh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestFrequencyOrderZeroPenalty(t *testing.T) {
	r := NewRanker(Frequency, 0)
	got := r.Order([]Candidate{
		{Title: "worn", Frequency: 5, Expansions: 100},
		{Title: "fresh", Frequency: 5},
	})
	// With no penalty, expansion counts are ignored and ties keep input order.
	want := []string{"worn", "fresh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestLengthMixFrequencyBuckets(t *testing.T) {
	r := NewRanker(LengthMixFrequency, 5)
	got := r.Order([]Candidate{
		{Title: "earth", Frequency: 70, NumTokens: 13156},  // bucket 14
		{Title: "star", Frequency: 15, NumTokens: 14476},   // bucket 3
		{Title: "helium", Frequency: 15, NumTokens: 9416},  // bucket 3
		{Title: "parsec", Frequency: 5, NumTokens: 570},    // bucket 1
		{Title: "brightness", Frequency: 2, NumTokens: 92}, // bucket 0
		{Title: "cepheus", Frequency: 3, NumTokens: 133},   // bucket 0
	})
	// Descending (bucket, tokens); bucket-0 short links pop first.
	want := []string{"earth", "star", "helium", "parsec", "cepheus", "brightness"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestLengthMixFrequencyZeroPenaltySingleBucket(t *testing.T) {
	r := NewRanker(LengthMixFrequency, 0)
	got := r.Order([]Candidate{
		{Title: "a", Frequency: 100, NumTokens: 10},
		{Title: "b", Frequency: 1, NumTokens: 30},
	})
	// One bucket, so ordering degenerates to length.
	want := []string{"b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestStagedCarryForwardLast(t *testing.T) {
	r := NewRanker(Staged, 0)
	got := r.Order([]Candidate{
		{Title: "ordinary", NumTokens: 1000, Frequency: 1},
		{Title: "gap", NumTokens: 5, Frequency: 50, CarryForward: true},
	})
	// Carried-forward links sit at the popping end no matter what.
	if got[len(got)-1] != "gap" {
		t.Errorf("carried-forward link must be most preferred, got %v", got)
	}
}

func TestStagedTieBreaks(t *testing.T) {
	r := NewRanker(Staged, 0)

	// Fewer expansions beats frequency and length.
	got := r.Order([]Candidate{
		{Title: "worn", Expansions: 4, Frequency: 1, NumTokens: 9000},
		{Title: "fresh", Expansions: 0, Frequency: 90, NumTokens: 1},
	})
	if got[len(got)-1] != "fresh" {
		t.Errorf("fewest expansions should pop first, got %v", got)
	}

	// Among equal expansion counts, rarer pops first.
	got = r.Order([]Candidate{
		{Title: "common", Frequency: 40, NumTokens: 10},
		{Title: "rare", Frequency: 2, NumTokens: 10},
	})
	if got[len(got)-1] != "rare" {
		t.Errorf("rarer link should pop first, got %v", got)
	}

	// Among full ties on state, the longer article pops first.
	got = r.Order([]Candidate{
		{Title: "short", NumTokens: 3, Frequency: 1},
		{Title: "long", NumTokens: 300, Frequency: 1},
	})
	if got[len(got)-1] != "long" {
		t.Errorf("longer link should pop first on ties, got %v", got)
	}
}

func TestOrderDeterministic(t *testing.T) {
	cands := []Candidate{
		{Title: "a", NumTokens: 10, Frequency: 3},
		{Title: "b", NumTokens: 10, Frequency: 3},
		{Title: "c", NumTokens: 10, Frequency: 3},
	}
	for _, s := range []Strategy{Staged, Length, Frequency, LengthMixFrequency} {
		r := NewRanker(s, 1.5)
		first := r.Order(cands)
		for i := 0; i < 10; i++ {
			if got := r.Order(cands); !reflect.DeepEqual(got, first) {
				t.Fatalf("%v: ordering not deterministic: %v vs %v", s, got, first)
			}
		}
		// Full ties preserve input order.
		if !reflect.DeepEqual(first, []string{"a", "b", "c"}) {
			t.Errorf("%v: ties should keep input order, got %v", s, first)
		}
	}
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	cands := []Candidate{
		{Title: "z", NumTokens: 1},
		{Title: "a", NumTokens: 99},
	}
	NewRanker(Length, 0).Order(cands)
	if cands[0].Title != "z" || cands[1].Title != "a" {
		t.Error("Order must not reorder the caller's slice")
	}
}
