package model

// Resolution is the tri-state answer of an alias-table lookup. "Not found"
// and "found but not a delegate" drive different fallback behavior in the
// traversal, so a plain boolean is not enough.
type Resolution int

const (
	// ResolutionUnknown means no alias with the queried name was indexed.
	ResolutionUnknown Resolution = iota
	// ResolutionDelegateAlias means the name resolves to an aliased
	// callable-delegate type.
	ResolutionDelegateAlias
	// ResolutionOtherAlias means the name resolves to an alias of a
	// non-delegate type.
	ResolutionOtherAlias
)

func (r Resolution) String() string {
	switch r {
	case ResolutionDelegateAlias:
		return "delegate-alias"
	case ResolutionOtherAlias:
		return "other-alias"
	default:
		return "unknown"
	}
}
