// Package domain contains the conversion core: the interval algebra, the
// alias resolver, and the single-pass traversal that derives the token-level
// edits for porting D1 syntax to D2.
package domain

import (
	"fmt"

	m "github.com/mouse-blink/scopefix/internal/model"
)

// IntervalSet is an ordered collection of pairwise-disjoint half-open ranges
// over token-array indices. The sorted-and-disjoint invariant holds after
// every Add and Remove, not just at the end of a traversal.
//
// Point entries (Start == End) encode insertion sites. A set is used either
// for points or for ranges, never both.
type IntervalSet struct {
	intervals []m.Interval
}

// Add inserts [start, end), merging it with every existing interval that
// overlaps or abuts it. start > end is a caller contract violation.
func (s *IntervalSet) Add(start, end int) {
	checkBounds(start, end)

	next := m.Interval{Start: start, End: end}
	placed := false

	out := make([]m.Interval, 0, len(s.intervals)+1)

	for _, iv := range s.intervals {
		switch {
		case iv.End < next.Start:
			out = append(out, iv)

		case next.End < iv.Start:
			if !placed {
				out = append(out, next)
				placed = true
			}

			out = append(out, iv)

		default: // overlapping or abutting: fold into next
			if iv.Start < next.Start {
				next.Start = iv.Start
			}

			if iv.End > next.End {
				next.End = iv.End
			}
		}
	}

	if !placed {
		out = append(out, next)
	}

	s.intervals = out
}

// AddPoint records a single insertion index, sugar for Add(idx, idx).
func (s *IntervalSet) AddPoint(idx int) {
	s.Add(idx, idx)
}

// Remove punches [start, end) out of every existing interval: fully covered
// intervals disappear, partially covered ones are truncated, and an interval
// strictly containing the range is split in two. Point entries inside the
// removed range are dropped.
func (s *IntervalSet) Remove(start, end int) {
	checkBounds(start, end)

	if start == end {
		return
	}

	out := make([]m.Interval, 0, len(s.intervals)+1)

	for _, iv := range s.intervals {
		if iv.IsPoint() {
			if iv.Start < start || iv.Start >= end {
				out = append(out, iv)
			}

			continue
		}

		if iv.End <= start || iv.Start >= end {
			out = append(out, iv)
			continue
		}

		if iv.Start < start {
			out = append(out, m.Interval{Start: iv.Start, End: start})
		}

		if iv.End > end {
			out = append(out, m.Interval{Start: end, End: iv.End})
		}
	}

	s.intervals = out
}

// Intervals returns the intervals in ascending start order. The returned
// slice aliases internal state and must not be mutated.
func (s *IntervalSet) Intervals() []m.Interval {
	return s.intervals
}

// Len returns the number of disjoint intervals currently held.
func (s *IntervalSet) Len() int {
	return len(s.intervals)
}

// Contains reports whether idx falls inside any range of the set.
func (s *IntervalSet) Contains(idx int) bool {
	for _, iv := range s.intervals {
		if iv.Contains(idx) {
			return true
		}

		if iv.Start > idx {
			break
		}
	}

	return false
}

func checkBounds(start, end int) {
	if start > end {
		panic(fmt.Sprintf("interval start %d > end %d", start, end))
	}
}
