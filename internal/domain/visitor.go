package domain

import (
	"fmt"

	"github.com/mouse-blink/scopefix/internal/dlang"
	m "github.com/mouse-blink/scopefix/internal/model"
)

// forwardDeclSpan is the token width excluded for a signature-only static
// constructor/destructor (`static this`, `static ~`).
const forwardDeclSpan = 2

// Visitor walks one file's AST exactly once, depth-first, accumulating the
// token mappings. An instance is single-use: it owns its TokenMappings
// during the walk and hands ownership to the caller when Walk returns.
type Visitor struct {
	file     string
	tokens   []dlang.Token
	resolver Resolver
	mappings *TokenMappings
	walked   bool
}

// NewVisitor creates a Visitor over an immutable token array. file is used
// for diagnostics only; resolver backs the aliased-delegate heuristic.
func NewVisitor(file string, tokens []dlang.Token, resolver Resolver) *Visitor {
	return &Visitor{file: file, tokens: tokens, resolver: resolver}
}

// Walk traverses the AST and returns the finished mappings. Any returned
// error is fatal for this file: a partial mapping would silently corrupt
// source code if applied.
func (v *Visitor) Walk(root *dlang.Module) (*TokenMappings, error) {
	if v.walked {
		return nil, fmt.Errorf("visitor for %s already used", v.file)
	}

	v.walked = true
	v.mappings = NewTokenMappings()

	if err := v.visit(root); err != nil {
		return nil, err
	}

	return v.mappings, nil
}

func (v *Visitor) visit(node dlang.Node) error {
	switch n := node.(type) {
	case *dlang.AggregateDecl:
		return v.visitAggregate(n)

	case *dlang.StaticCtorDecl:
		return v.excludeStatic(n.Loc, n.Body)

	case *dlang.StaticDtorDecl:
		return v.excludeStatic(n.Loc, n.Body)

	case *dlang.FuncDecl:
		return v.visitCallable(n.Params, n.Children())

	case *dlang.CtorDecl:
		return v.visitCallable(n.Params, n.Children())

	default:
		return v.visitAll(node.Children())
	}
}

func (v *Visitor) visitAll(nodes []dlang.Node) error {
	for _, n := range nodes {
		if err := v.visit(n); err != nil {
			return err
		}
	}

	return nil
}

// visitAggregate marks struct/union bodies before descending, so nested
// class bodies and static constructor/destructor spans are carved out of the
// just-added range by the same walk.
func (v *Visitor) visitAggregate(n *dlang.AggregateDecl) error {
	if n.Body != nil {
		start, err := v.tokenIndex(n.Body.Start)
		if err != nil {
			return err
		}

		end, err := v.tokenIndex(n.Body.End)
		if err != nil {
			return err
		}

		if n.Kind == dlang.ClassKind {
			// classes keep reference semantics even when lexically nested
			// inside a struct or union
			v.mappings.ValueAggregates.Remove(start, end+1)
		} else {
			v.mappings.ValueAggregates.Add(start, end+1)
		}
	}

	return v.visitAll(n.Children())
}

// excludeStatic removes the span of a static constructor or destructor from
// the value-aggregate set. The subtree is not recursed into further.
func (v *Visitor) excludeStatic(start dlang.Loc, body *dlang.FuncBody) error {
	startIdx, err := v.tokenIndex(start)
	if err != nil {
		return err
	}

	end := startIdx + forwardDeclSpan

	if body != nil {
		block := body.Block

		if body.Wrapped {
			// the parser guarantees the inner block whenever contracts are
			// present; its absence means the AST is inconsistent
			if body.Inner == nil {
				return &InconsistencyError{
					File: v.file, Line: start.Line, Column: start.Column,
					Msg: "contract-wrapped body without inner block",
				}
			}

			block = body.Inner
		}

		endIdx, err := v.tokenIndex(block.End)
		if err != nil {
			return err
		}

		end = endIdx + 1
	}

	v.mappings.ValueAggregates.Remove(startIdx, end)

	return nil
}

// visitCallable runs delegate-detection on every typed parameter. The body
// is only descended into when the declaration has parameters at all.
func (v *Visitor) visitCallable(params []dlang.Param, children []dlang.Node) error {
	for _, p := range params {
		if p.Type == nil {
			continue
		}

		if err := v.mapParam(p); err != nil {
			return err
		}
	}

	if len(params) == 0 {
		return nil
	}

	return v.visitAll(children)
}

// mapParam applies the two detection checks in order, first match wins:
// a directly-spelled callable suffix, then an aliased bare symbol reference
// confirmed by the resolver.
func (v *Visitor) mapParam(p dlang.Param) error {
	typ := p.Type

	if suffix, ok := typ.CallableSuffix(); ok {
		idx, valid, err := v.insertionIndex(typ, suffix)
		if err != nil {
			return err
		}

		if valid {
			v.mappings.ScopeDelegates.AddPoint(idx)
		}

		return nil
	}

	if typ.IsBareSymbol() && v.resolver.Resolve(typ.LastSegment()) == m.ResolutionDelegateAlias {
		idx, valid, err := v.chainIndex(typ)
		if err != nil {
			return err
		}

		if valid {
			v.mappings.ScopeDelegates.AddPoint(idx)
		}
	}

	return nil
}

// insertionIndex computes where the `scope` keyword must land so it precedes
// the parameter's type. For a callable suffix over a built-in base the index
// is the token immediately before the suffix keyword, which must itself be a
// basic-type keyword; anything else is a lexer/parser disagreement.
func (v *Visitor) insertionIndex(typ *dlang.TypeRef, suffix dlang.TypeSuffix) (int, bool, error) {
	if typ.Basic != "" {
		suffixIdx, err := v.tokenIndex(suffix.Loc)
		if err != nil {
			return 0, false, err
		}

		idx := suffixIdx - 1
		if idx < 0 || v.tokens[idx].Kind != dlang.BasicType {
			actual := "nothing"
			if idx >= 0 {
				actual = fmt.Sprintf("%s %q", v.tokens[idx].Kind, v.tokens[idx].Text)
			}

			return 0, false, &TokenKindError{
				File: v.file, Line: suffix.Loc.Line, Column: suffix.Loc.Column,
				Expected: "basic-type keyword", Actual: actual,
			}
		}

		return idx, true, nil
	}

	if len(typ.Chain) > 0 {
		return v.chainIndex(typ)
	}

	// Defensive fallback: a callable suffix over a type with neither a
	// built-in base nor a symbol chain is believed unreachable. Index zero
	// here means "no valid insertion point", never "token zero".
	return 0, false, nil
}

// chainIndex returns the index of the symbol chain's first token, stepping
// one token left when the reference is written with a leading qualifying dot
// so the keyword lands before the dot.
func (v *Visitor) chainIndex(typ *dlang.TypeRef) (int, bool, error) {
	idx, err := v.tokenIndex(typ.Chain[0].Loc)
	if err != nil {
		return 0, false, err
	}

	if typ.LeadingDot {
		idx--
	}

	return idx, true, nil
}

// tokenIndex maps a global source offset back to the token array's local
// index. AST nodes are guaranteed to reference offsets originating from this
// exact token array, so a miss is fatal.
func (v *Visitor) tokenIndex(loc dlang.Loc) (int, error) {
	for i := range v.tokens {
		if v.tokens[i].Offset == loc.Offset {
			return i, nil
		}
	}

	return 0, &InconsistencyError{
		File: v.file, Line: loc.Line, Column: loc.Column,
		Msg: fmt.Sprintf("no token at offset %d", loc.Offset),
	}
}
