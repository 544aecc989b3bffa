package domain

import (
	m "github.com/mouse-blink/scopefix/internal/model"
)

// Resolver answers whether an unqualified identifier denotes an aliased
// callable-delegate type. The lookup is name-based, not scope-based: two
// distinct declarations sharing a name across scopes can collide, which is
// an accepted imprecision of the conversion, not a defect.
type Resolver interface {
	Resolve(name string) m.Resolution
}

// AliasTable is the plain key-value table backing the Resolver. It must be
// fully populated before any traversal starts; after that it is read-only
// and safe for concurrent lookups from multiple visitors.
type AliasTable struct {
	entries map[string]m.Resolution
}

// NewAliasTable creates an empty table.
func NewAliasTable() *AliasTable {
	return &AliasTable{entries: make(map[string]m.Resolution)}
}

// Set records the resolution for name. A later Set for the same name wins,
// matching the last-declaration-seen behavior of the whole-project scan.
func (t *AliasTable) Set(name string, r m.Resolution) {
	if name == "" || r == m.ResolutionUnknown {
		return
	}

	t.entries[name] = r
}

// Resolve performs the global unqualified lookup.
func (t *AliasTable) Resolve(name string) m.Resolution {
	if r, ok := t.entries[name]; ok {
		return r
	}

	return m.ResolutionUnknown
}

// Merge copies all entries of src into the table, overwriting collisions.
func (t *AliasTable) Merge(src map[string]m.Resolution) {
	for name, r := range src {
		t.Set(name, r)
	}
}

// Entries returns a copy of the table contents for persistence.
func (t *AliasTable) Entries() map[string]m.Resolution {
	out := make(map[string]m.Resolution, len(t.entries))
	for name, r := range t.entries {
		out[name] = r
	}

	return out
}

// Len returns the number of indexed aliases.
func (t *AliasTable) Len() int {
	return len(t.entries)
}
