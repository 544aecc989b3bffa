package domain

// TokenMappings is the output of one traversal: two independent interval
// sets over the same token array. ScopeDelegates holds point insertions (the
// index at which the `scope` keyword must be prepended to a delegate-typed
// parameter); ValueAggregates holds the struct/union body ranges whose
// `this` self-reference must be rewritten, with nested class bodies and
// static constructor/destructor spans punched out.
//
// A TokenMappings value is written exclusively by the Visitor during its
// single walk and is read-only from the moment the walk returns.
type TokenMappings struct {
	ScopeDelegates  IntervalSet
	ValueAggregates IntervalSet
}

// NewTokenMappings creates an empty aggregator.
func NewTokenMappings() *TokenMappings {
	return &TokenMappings{}
}
