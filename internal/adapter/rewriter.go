package adapter

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mouse-blink/scopefix/internal/dlang"
	m "github.com/mouse-blink/scopefix/internal/model"
)

// scopeKeyword is inserted before delegate-typed parameters.
const scopeKeyword = "scope "

// thisReplacement is what `this` becomes inside value-aggregate bodies: in
// D1 it is a pointer there, in D2 a reference, so taking the address
// restores the old meaning.
const thisReplacement = "(&this)"

// Rewriter turns a finished set of token mappings into patched source text.
// It is the emitter collaborator: the conversion core only ever produces
// token indices, never text.
type Rewriter interface {
	// Apply returns the rewritten source plus the number of `this`
	// occurrences that were rewritten. inserts are point intervals in
	// token-index space; thisRanges are token spans.
	Apply(src []byte, tokens []dlang.Token, inserts, thisRanges []m.Interval) ([]byte, int)

	// Diff renders a unified diff between the original and patched text.
	Diff(path m.Path, original, patched []byte) (string, error)
}

// TokenRewriter is the concrete Rewriter.
type TokenRewriter struct{}

// NewTokenRewriter constructs a TokenRewriter.
func NewTokenRewriter() *TokenRewriter {
	return &TokenRewriter{}
}

// edit is a single byte-level change: replace src[offset:offset+length) with
// text. Insertions have length zero.
type edit struct {
	offset int
	length int
	text   string
}

// Apply composes both mapping sets into one ordered, non-overlapping edit
// list and applies it in a single pass over the source bytes.
func (r *TokenRewriter) Apply(src []byte, tokens []dlang.Token, inserts, thisRanges []m.Interval) ([]byte, int) {
	var edits []edit

	for _, p := range inserts {
		if p.Start < 0 || p.Start >= len(tokens) {
			continue
		}

		edits = append(edits, edit{offset: tokens[p.Start].Offset, text: scopeKeyword})
	}

	rewrites := 0

	for _, iv := range thisRanges {
		for i := iv.Start; i < iv.End && i < len(tokens); i++ {
			if !isRewritableThis(tokens, i) {
				continue
			}

			edits = append(edits, edit{offset: tokens[i].Offset, length: len("this"), text: thisReplacement})
			rewrites++
		}
	}

	if len(edits) == 0 {
		return src, 0
	}

	sort.Slice(edits, func(i, j int) bool {
		return edits[i].offset < edits[j].offset
	})

	var out bytes.Buffer

	pos := 0
	for _, e := range edits {
		out.Write(src[pos:e.offset])
		out.WriteString(e.text)
		pos = e.offset + e.length
	}

	out.Write(src[pos:])

	return out.Bytes(), rewrites
}

// isRewritableThis reports whether the token at i is a `this` keyword used
// as a value. Constructor declarations (`this(`) and destructors (`~this`)
// keep their spelling.
func isRewritableThis(tokens []dlang.Token, i int) bool {
	if tokens[i].Kind != dlang.Keyword || tokens[i].Text != "this" {
		return false
	}

	if i > 0 && tokens[i-1].Text == "~" {
		return false
	}

	if i+1 < len(tokens) && tokens[i+1].Text == "(" {
		return false
	}

	return true
}

// Diff renders a unified diff for dry runs.
func (r *TokenRewriter) Diff(path m.Path, original, patched []byte) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(patched)),
		FromFile: string(path),
		ToFile:   string(path) + " (converted)",
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}

	return text, nil
}
