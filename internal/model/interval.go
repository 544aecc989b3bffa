package model

// Interval is a half-open range [Start, End) over token-array indices.
// A point entry (an insertion site) is encoded as Start == End; consumers of
// point entries only ever read Start.
type Interval struct {
	Start int
	End   int
}

// IsPoint reports whether the interval encodes a single insertion index
// rather than a token span.
func (i Interval) IsPoint() bool {
	return i.Start == i.End
}

// Contains reports whether idx falls inside the half-open range.
func (i Interval) Contains(idx int) bool {
	return idx >= i.Start && idx < i.End
}
