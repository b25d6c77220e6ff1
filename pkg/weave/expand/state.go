package expand

// State is the mutable expansion bookkeeping for one pass over the corpus.
// It is owned and reset exclusively by the pass driver and handed to the
// engine by reference; no other component holds it.
type State struct {
	// counts maps a link title to the number of times it has been spliced
	// into any sample so far in the current pass.
	counts map[string]int

	// carryForward is the frozen set of links that were candidates in the
	// discovery pass but never expanded. Nil during discovery.
	carryForward map[string]struct{}
}

// NewState creates fresh per-pass state with zeroed counters.
func NewState() *State {
	return &State{counts: make(map[string]int)}
}

// SetCarryForward installs the carried-forward link set computed at the pass
// boundary. The set is treated as immutable from here on.
func (s *State) SetCarryForward(links map[string]struct{}) {
	s.carryForward = links
}

// Count returns how many times the link has been expanded this pass.
func (s *State) Count(link string) int {
	return s.counts[link]
}

// RecordExpansions bumps the per-link counters for an accepted sample.
func (s *State) RecordExpansions(links []string) {
	for _, link := range links {
		s.counts[link]++
	}
}

// InCarryForward reports whether the link was reachable but unexpanded in the
// discovery pass.
func (s *State) InCarryForward(link string) bool {
	_, ok := s.carryForward[link]
	return ok
}

// Counts returns a copy of the per-link expansion counters.
func (s *State) Counts() map[string]int {
	out := make(map[string]int, len(s.counts))
	for link, n := range s.counts {
		out[link] = n
	}
	return out
}

// ExpandedLinks returns the set of links expanded at least once this pass.
func (s *State) ExpandedLinks() map[string]struct{} {
	out := make(map[string]struct{}, len(s.counts))
	for link, n := range s.counts {
		if n > 0 {
			out[link] = struct{}{}
		}
	}
	return out
}
