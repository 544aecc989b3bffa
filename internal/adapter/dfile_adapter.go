// Package adapter contains infrastructure adapters for the scopefix CLI.
package adapter

import (
	"fmt"

	"github.com/mouse-blink/scopefix/internal/dlang"
	m "github.com/mouse-blink/scopefix/internal/model"
)

// DFileAdapter encapsulates D-specific lexing and parsing so the domain
// layer can focus on the conversion rules while delegating language details
// to an infrastructure component.
type DFileAdapter interface {
	// Lex scans source text into the immutable token array.
	Lex(path m.Path, src []byte) ([]dlang.Token, error)

	// Parse builds the declaration-level AST over an already-lexed token
	// array. The AST references offsets from exactly that array.
	Parse(path m.Path, tokens []dlang.Token) (*dlang.Module, error)
}

// LocalDFileAdapter provides a concrete DFileAdapter backed by the dlang
// package.
type LocalDFileAdapter struct{}

// NewLocalDFileAdapter constructs a LocalDFileAdapter.
func NewLocalDFileAdapter() *LocalDFileAdapter {
	return &LocalDFileAdapter{}
}

// Lex scans src into tokens.
func (a *LocalDFileAdapter) Lex(path m.Path, src []byte) ([]dlang.Token, error) {
	tokens, err := dlang.NewLexer(src).Lex()
	if err != nil {
		return nil, fmt.Errorf("lex %s: %w", path, err)
	}

	return tokens, nil
}

// Parse builds the AST for the provided path/token pair.
func (a *LocalDFileAdapter) Parse(path m.Path, tokens []dlang.Token) (*dlang.Module, error) {
	mod, err := dlang.NewParser(string(path), tokens).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return mod, nil
}
