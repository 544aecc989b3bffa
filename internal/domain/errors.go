package domain

import "fmt"

// InconsistencyError signals a lexer/parser/visitor disagreement: an
// AST-referenced offset with no corresponding token, or an expected nested
// structural element that is absent. It aborts processing of the current
// file; the driver decides whether the batch continues.
type InconsistencyError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s:%d:%d: internal inconsistency: %s", e.File, e.Line, e.Column, e.Msg)
}

// TokenKindError signals that a computed insertion point does not sit on the
// expected token kind. Like InconsistencyError it is fatal for the file.
type TokenKindError struct {
	File     string
	Line     int
	Column   int
	Expected string
	Actual   string
}

func (e *TokenKindError) Error() string {
	return fmt.Sprintf("%s:%d:%d: expected %s token, found %s", e.File, e.Line, e.Column, e.Expected, e.Actual)
}
