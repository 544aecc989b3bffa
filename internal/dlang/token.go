// Package dlang provides the lexer and declaration-level parser for D source
// files. It plays the role go/token and go/parser play for Go tooling: it
// turns raw text into an immutable token array plus an AST, and the domain
// layer consumes both without ever touching the text again.
package dlang

// TokenKind classifies a lexical unit.
type TokenKind int

// Token kinds produced by the lexer.
const (
	EOF TokenKind = iota
	Identifier
	Keyword
	BasicType
	IntLiteral
	FloatLiteral
	StringLiteral
	CharLiteral
	Operator
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case BasicType:
		return "basic-type"
	case IntLiteral:
		return "int-literal"
	case FloatLiteral:
		return "float-literal"
	case StringLiteral:
		return "string-literal"
	case CharLiteral:
		return "char-literal"
	default:
		return "operator"
	}
}

// Token is an immutable lexical unit. Offset is the global byte index into
// the source text; Line and Column are 1-based.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
	Line   int
	Column int
}

// basicTypes are the built-in D value types. They get their own token kind
// because the insertion-index rule asserts on it.
var basicTypes = map[string]bool{
	"void": true, "bool": true,
	"byte": true, "ubyte": true,
	"short": true, "ushort": true,
	"int": true, "uint": true,
	"long": true, "ulong": true,
	"cent": true, "ucent": true,
	"float": true, "double": true, "real": true,
	"ifloat": true, "idouble": true, "ireal": true,
	"cfloat": true, "cdouble": true, "creal": true,
	"char": true, "wchar": true, "dchar": true,
}

var keywords = map[string]bool{
	"abstract": true, "alias": true, "align": true, "asm": true,
	"assert": true, "auto": true, "body": true, "break": true,
	"case": true, "cast": true, "catch": true, "class": true,
	"const": true, "continue": true, "debug": true, "default": true,
	"delegate": true, "delete": true, "deprecated": true, "do": true,
	"else": true, "enum": true, "export": true, "extern": true,
	"false": true, "final": true, "finally": true, "for": true,
	"foreach": true, "foreach_reverse": true, "function": true,
	"goto": true, "if": true, "immutable": true, "import": true,
	"in": true, "inout": true, "interface": true, "invariant": true,
	"is": true, "lazy": true, "mixin": true, "module": true,
	"new": true, "nothrow": true, "null": true, "out": true,
	"override": true, "package": true, "pragma": true, "private": true,
	"protected": true, "public": true, "pure": true, "ref": true,
	"return": true, "scope": true, "shared": true, "static": true,
	"struct": true, "super": true, "switch": true, "synchronized": true,
	"template": true, "this": true, "throw": true, "true": true,
	"try": true, "typedef": true, "typeid": true, "typeof": true,
	"union": true, "unittest": true, "version": true, "volatile": true,
	"while": true, "with": true,
}

// IsBasicType reports whether name is a built-in D value type.
func IsBasicType(name string) bool {
	return basicTypes[name]
}

// IsKeyword reports whether name is a reserved word (basic types excluded).
func IsKeyword(name string) bool {
	return keywords[name]
}
