// Package ranker orders items by asking a judge which of two matters more.
//
// Sorter is a binary insertion sort driven from outside: each Pair is a question, each Decide an
// answer. Ranking n items takes O(n log n) questions.
package ranker

// Sorter inserts the remaining ids one at a time into the sorted list.
// The zero value has no work.
type Sorter struct {
	sorted    []string
	remaining []string

	// Search window in sorted for remaining[0]; active is false until the first Pair.
	lo, hi int
	active bool

	comparisons int
}

// NewSorter starts from an already ordered prefix and a queue of ids still to place.
func NewSorter(sorted, remaining []string) *Sorter {
	return &Sorter{
		sorted:    append([]string(nil), sorted...),
		remaining: append([]string(nil), remaining...),
	}
}

// Seed places the first candidate without a question when nothing is sorted yet.
func (s *Sorter) Seed() (string, bool) {
	if len(s.sorted) > 0 || len(s.remaining) == 0 {
		return "", false
	}
	id := s.remaining[0]
	s.remaining = s.remaining[1:]
	s.sorted = append(s.sorted, id)
	return id, true
}

func (s *Sorter) HasWork() bool { return len(s.remaining) > 0 }

// Pair returns the next question: is candidate more important than pivot?
// ok is false when there is nothing left to ask or Seed is still needed.
func (s *Sorter) Pair() (candidate, pivot string, ok bool) {
	if len(s.remaining) == 0 || len(s.sorted) == 0 {
		return "", "", false
	}
	if !s.active {
		s.lo, s.hi, s.active = 0, len(s.sorted), true
	}
	return s.remaining[0], s.sorted[(s.lo+s.hi)/2], true
}

// Decide answers the current Pair. candidateFirst means the candidate ranks above the pivot.
// When the answer pins down the candidate's slot it is inserted and returned with its index.
func (s *Sorter) Decide(candidateFirst bool) (placed string, index int, done bool) {
	if _, _, ok := s.Pair(); !ok {
		return "", 0, false
	}
	s.comparisons++
	mid := (s.lo + s.hi) / 2
	if candidateFirst {
		s.hi = mid
	} else {
		s.lo = mid + 1
	}
	if s.lo < s.hi {
		return "", 0, false
	}

	id := s.remaining[0]
	at := s.lo
	s.remaining = s.remaining[1:]
	s.sorted = append(s.sorted, "")
	copy(s.sorted[at+1:], s.sorted[at:])
	s.sorted[at] = id
	s.active = false
	return id, at, true
}

// Remaining returns the ids not placed yet, current candidate first.
func (s *Sorter) Remaining() []string { return append([]string(nil), s.remaining...) }

// Sorted returns the placed ids, most important first.
func (s *Sorter) Sorted() []string { return append([]string(nil), s.sorted...) }

// Comparisons counts answered questions.
func (s *Sorter) Comparisons() int { return s.comparisons }
