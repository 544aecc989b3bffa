package dlang

import "fmt"

// multi-character operators, longest first so maximal munch works with a
// simple prefix check.
var operators = []string{
	">>>=", "<<=", ">>=", ">>>", "...", "^^=",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"<<", ">>", "~=", "..", "=>", "^^",
}

// Lexer scans D source text into a token array. Whitespace and comments are
// skipped but never alter the byte offsets recorded on the surviving tokens,
// so every token maps back to its exact source position.
type Lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

// NewLexer creates a Lexer over src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Lex scans the whole input and returns the token array. The returned slice
// never includes an EOF token; callers use the slice length as the bound.
func (l *Lexer) Lex() ([]Token, error) {
	var tokens []Token

	for {
		if err := l.skipBlanks(); err != nil {
			return nil, err
		}

		if l.pos >= len(l.src) {
			return tokens, nil
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}
}

func (l *Lexer) next() (Token, error) {
	start, line, col := l.pos, l.line, l.col
	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		l.scanWhile(isIdentPart)
		text := string(l.src[start:l.pos])

		kind := Identifier
		if IsBasicType(text) {
			kind = BasicType
		} else if IsKeyword(text) {
			kind = Keyword
		}

		return Token{Kind: kind, Text: text, Offset: start, Line: line, Column: col}, nil

	case c >= '0' && c <= '9':
		kind := l.scanNumber()
		return Token{Kind: kind, Text: string(l.src[start:l.pos]), Offset: start, Line: line, Column: col}, nil

	case c == '"' || c == '`':
		if err := l.scanString(c); err != nil {
			return Token{}, err
		}

		return Token{Kind: StringLiteral, Text: string(l.src[start:l.pos]), Offset: start, Line: line, Column: col}, nil

	case c == '\'':
		if err := l.scanChar(); err != nil {
			return Token{}, err
		}

		return Token{Kind: CharLiteral, Text: string(l.src[start:l.pos]), Offset: start, Line: line, Column: col}, nil
	}

	for _, op := range operators {
		if l.hasPrefix(op) {
			l.advanceN(len(op))
			return Token{Kind: Operator, Text: op, Offset: start, Line: line, Column: col}, nil
		}
	}

	l.advance()

	return Token{Kind: Operator, Text: string(c), Offset: start, Line: line, Column: col}, nil
}

// skipBlanks consumes whitespace and all three D comment forms, including
// nested /+ +/ comments.
func (l *Lexer) skipBlanks() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()

		case l.hasPrefix("//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}

		case l.hasPrefix("/*"):
			l.advanceN(2)

			for !l.hasPrefix("*/") {
				if l.pos >= len(l.src) {
					return fmt.Errorf("unterminated block comment at line %d", l.line)
				}

				l.advance()
			}

			l.advanceN(2)

		case l.hasPrefix("/+"):
			l.advanceN(2)
			depth := 1

			for depth > 0 {
				switch {
				case l.pos >= len(l.src):
					return fmt.Errorf("unterminated nesting comment at line %d", l.line)
				case l.hasPrefix("/+"):
					depth++
					l.advanceN(2)
				case l.hasPrefix("+/"):
					depth--
					l.advanceN(2)
				default:
					l.advance()
				}
			}

		default:
			return nil
		}
	}

	return nil
}

func (l *Lexer) scanNumber() TokenKind {
	kind := IntLiteral

	// Loose scan: suffixes and malformed digit groups are the upstream
	// compiler's problem, positions are ours.
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentPart(c) || c == '.' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
			if c == '.' {
				kind = FloatLiteral
			}

			l.advance()

			continue
		}

		break
	}

	return kind
}

func (l *Lexer) scanString(quote byte) error {
	l.advance()

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && quote == '"' {
			// a trailing backslash has nothing to escape
			if l.pos+1 >= len(l.src) {
				break
			}

			l.advanceN(2)

			continue
		}

		l.advance()

		if c == quote {
			return nil
		}
	}

	return fmt.Errorf("unterminated string literal at line %d", l.line)
}

func (l *Lexer) scanChar() error {
	l.advance()

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			if l.pos+1 >= len(l.src) {
				break
			}

			l.advanceN(2)

			continue
		}

		l.advance()

		if c == '\'' {
			return nil
		}
	}

	return fmt.Errorf("unterminated character literal at line %d", l.line)
}

func (l *Lexer) scanWhile(pred func(byte) bool) {
	for l.pos < len(l.src) && pred(l.src[l.pos]) {
		l.advance()
	}
}

func (l *Lexer) hasPrefix(s string) bool {
	if l.pos+len(s) > len(l.src) {
		return false
	}

	return string(l.src[l.pos:l.pos+len(s)]) == s
}

func (l *Lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
