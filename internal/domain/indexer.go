package domain

import (
	"github.com/mouse-blink/scopefix/internal/dlang"
	m "github.com/mouse-blink/scopefix/internal/model"
)

// aliasChainLimit caps transitive alias-of-alias resolution.
const aliasChainLimit = 16

// AliasIndexer builds the project-wide alias table consumed by the
// resolver. Collect is called once per parsed module; Finish resolves
// alias-of-alias chains and seals the table. Population must complete before
// any Visitor starts (the table is read-only during traversal).
type AliasIndexer struct {
	table   *AliasTable
	pending map[string]string
}

// NewAliasIndexer creates an indexer with an empty table.
func NewAliasIndexer() *AliasIndexer {
	return &AliasIndexer{
		table:   NewAliasTable(),
		pending: make(map[string]string),
	}
}

// Seed pre-loads previously persisted entries. In-run scan results collected
// afterwards overwrite colliding names.
func (x *AliasIndexer) Seed(entries map[string]m.Resolution) {
	x.table.Merge(entries)
}

// Collect walks a module and records every alias/typedef declaration,
// wherever it is nested.
func (x *AliasIndexer) Collect(mod *dlang.Module) {
	x.collect(mod)
}

func (x *AliasIndexer) collect(node dlang.Node) {
	if decl, ok := node.(*dlang.AliasDecl); ok {
		x.record(decl)
		return
	}

	for _, child := range node.Children() {
		x.collect(child)
	}
}

func (x *AliasIndexer) record(decl *dlang.AliasDecl) {
	if decl.Name == "" || decl.Target == nil {
		return
	}

	if suffix, ok := decl.Target.CallableSuffix(); ok && suffix.Kind == dlang.DelegateSuffix {
		x.table.Set(decl.Name, m.ResolutionDelegateAlias)
		return
	}

	// an alias whose target is itself a bare name is classified once the
	// whole project has been scanned
	if decl.Target.IsBareSymbol() {
		x.pending[decl.Name] = decl.Target.LastSegment()
		return
	}

	x.table.Set(decl.Name, m.ResolutionOtherAlias)
}

// Finish resolves pending alias-of-alias chains and returns the sealed
// table. Chains that dead-end or exceed the depth cap are classified as
// non-delegate aliases.
func (x *AliasIndexer) Finish() *AliasTable {
	for name, target := range x.pending {
		x.table.Set(name, x.chase(target, aliasChainLimit))
	}

	x.pending = nil

	return x.table
}

func (x *AliasIndexer) chase(name string, depth int) m.Resolution {
	if depth == 0 {
		return m.ResolutionOtherAlias
	}

	if next, ok := x.pending[name]; ok && next != name {
		return x.chase(next, depth-1)
	}

	if r := x.table.Resolve(name); r != m.ResolutionUnknown {
		return r
	}

	return m.ResolutionOtherAlias
}
