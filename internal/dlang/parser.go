package dlang

import "fmt"

// attributes are declaration prefixes the parser consumes without modeling.
// const/immutable/shared/inout are absent on purpose: they can begin a type
// and are handled by parseType instead.
var attributes = map[string]bool{
	"public": true, "private": true, "protected": true, "package": true,
	"export": true, "final": true, "override": true, "abstract": true,
	"deprecated": true, "pure": true, "nothrow": true, "synchronized": true,
	"static": true, "auto": true, "ref": true,
}

// paramStorage are storage classes allowed before a parameter's type.
var paramStorage = map[string]bool{
	"in": true, "out": true, "ref": true, "lazy": true, "scope": true,
	"final": true,
}

// Parser builds the declaration-level AST the conversion traversal dispatches
// on. It recognizes aggregates, constructors, static constructors and
// destructors, functions with parameter lists, and alias/typedef
// declarations; everything else is consumed as an opaque balanced region
// whose nested declarations are still collected.
type Parser struct {
	file   string
	tokens []Token
	pos    int
}

// NewParser creates a Parser over an already-lexed token array. file is used
// in diagnostics only.
func NewParser(file string, tokens []Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// Parse consumes the whole token array and returns the module root.
func (p *Parser) Parse() (*Module, error) {
	mod := &Module{}
	if len(p.tokens) > 0 {
		mod.Loc = p.loc(0)
	}

	decls, err := p.parseDecls()
	if err != nil {
		return nil, err
	}

	mod.Decls = decls

	if p.pos < len(p.tokens) {
		return nil, p.errorf(p.pos, "unmatched %q", p.tokens[p.pos].Text)
	}

	return mod, nil
}

// parseDecls parses declarations until EOF or an unconsumed closing brace.
func (p *Parser) parseDecls() ([]Node, error) {
	var decls []Node

	for p.pos < len(p.tokens) && !p.isText(p.pos, "}") {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}

		if decl != nil {
			decls = append(decls, decl)
		}
	}

	return decls, nil
}

func (p *Parser) parseDecl() (Node, error) {
	save := p.pos

	if node, ok, err := p.parseStaticCtorDtor(); ok || err != nil {
		return node, err
	}

	p.skipAttributes()

	// attributes may precede a static constructor (`shared static this` is
	// D2, but `private static this` is legal D1)
	if node, ok, err := p.parseStaticCtorDtor(); ok || err != nil {
		return node, err
	}

	switch {
	case p.isAnyText(p.pos, "struct", "union", "class"):
		return p.parseAggregate()

	case p.isText(p.pos, "this") && p.isText(p.pos+1, "("):
		return p.parseCtor()

	case p.isAnyText(p.pos, "alias", "typedef"):
		if node := p.parseAlias(); node != nil {
			return node, nil
		}

		p.pos = save

		return p.parseOther()
	}

	afterAttrs := p.pos

	if node := p.parseFunc(); node != nil {
		return node, nil
	}

	p.pos = afterAttrs

	return p.parseOther()
}

// parseStaticCtorDtor recognizes `static this(...)` and `static ~this(...)`
// in both bodied and forward-declaration forms. The reported location is the
// `static` keyword itself.
func (p *Parser) parseStaticCtorDtor() (Node, bool, error) {
	if !p.isText(p.pos, "static") {
		return nil, false, nil
	}

	isCtor := p.isText(p.pos+1, "this")
	isDtor := p.isText(p.pos+1, "~") && p.isText(p.pos+2, "this")

	if !isCtor && !isDtor {
		return nil, false, nil
	}

	start := p.loc(p.pos)
	p.pos++ // static

	if isDtor {
		p.pos++ // ~
	}

	p.pos++ // this

	if p.isText(p.pos, "(") {
		p.skipBalanced("(", ")")
	}

	if p.isText(p.pos, ";") {
		p.pos++

		if isDtor {
			return &StaticDtorDecl{Loc: start}, true, nil
		}

		return &StaticCtorDecl{Loc: start}, true, nil
	}

	body, _, err := p.parseFuncBody()
	if err != nil {
		return nil, true, err
	}

	if isDtor {
		return &StaticDtorDecl{Loc: start, Body: body}, true, nil
	}

	return &StaticCtorDecl{Loc: start, Body: body}, true, nil
}

func (p *Parser) parseAggregate() (Node, error) {
	kind := StructKind

	switch p.tokens[p.pos].Text {
	case "union":
		kind = UnionKind
	case "class":
		kind = ClassKind
	}

	decl := &AggregateDecl{Kind: kind, Loc: p.loc(p.pos)}
	p.pos++

	if p.is(p.pos, Identifier) {
		decl.Name = p.tokens[p.pos].Text
		p.pos++
	}

	// template parameter list
	if p.isText(p.pos, "(") {
		p.skipBalanced("(", ")")
	}

	// base class list
	if p.isText(p.pos, ":") {
		for p.pos < len(p.tokens) && !p.isText(p.pos, "{") && !p.isText(p.pos, ";") {
			p.pos++
		}
	}

	if p.isText(p.pos, ";") {
		p.pos++
		return decl, nil
	}

	if !p.isText(p.pos, "{") {
		return nil, p.errorf(p.pos, "expected %s body", kind)
	}

	body := &Body{Start: p.loc(p.pos)}
	p.pos++

	members, err := p.parseDecls()
	if err != nil {
		return nil, err
	}

	if !p.isText(p.pos, "}") {
		return nil, p.errorf(p.pos, "unterminated %s body", kind)
	}

	body.End = p.loc(p.pos)
	p.pos++

	decl.Body = body
	decl.Members = members

	return decl, nil
}

func (p *Parser) parseCtor() (Node, error) {
	decl := &CtorDecl{Loc: p.loc(p.pos)}
	p.pos++ // this

	params, ok := p.parseParams()
	if !ok {
		return nil, p.errorf(p.pos, "malformed constructor parameter list")
	}

	decl.Params = params

	if p.isText(p.pos, ";") {
		p.pos++
		return decl, nil
	}

	body, decls, err := p.parseFuncBody()
	if err != nil {
		return nil, err
	}

	decl.Body = body
	decl.BodyDecls = decls

	return decl, nil
}

// parseFunc attempts `Type name(params) body`. It returns nil (with the
// position untouched by the caller's restore) when the tokens do not match
// that shape.
func (p *Parser) parseFunc() *FuncDecl {
	save := p.pos

	typ, ok := p.parseType()
	if !ok || !p.is(p.pos, Identifier) {
		p.pos = save
		return nil
	}

	_ = typ // the return type does not participate in any mapping

	decl := &FuncDecl{Name: p.tokens[p.pos].Text, Loc: p.loc(p.pos)}
	p.pos++

	params, ok := p.parseParams()
	if !ok {
		p.pos = save
		return nil
	}

	// `void f(T)(T x)`: the first list was template parameters
	if p.isText(p.pos, "(") {
		params, ok = p.parseParams()
		if !ok {
			p.pos = save
			return nil
		}
	}

	decl.Params = params

	if p.isText(p.pos, ";") {
		p.pos++
		return decl
	}

	body, decls, err := p.parseFuncBody()
	if err != nil {
		p.pos = save
		return nil
	}

	decl.Body = body
	decl.BodyDecls = decls

	return decl
}

// parseFuncBody parses `{...}` or the contract-wrapped form
// `in {...} out(...) {...} body {...}`. For the wrapped form, Block spans
// the whole contract region while Inner locates the actual body block.
func (p *Parser) parseFuncBody() (*FuncBody, []Node, error) {
	fb := &FuncBody{}

	var outerStart Loc

	for p.isAnyText(p.pos, "in", "out") {
		fb.Wrapped = true
		p.pos++

		if p.isText(p.pos, "(") {
			p.skipBalanced("(", ")")
		}

		if !p.isText(p.pos, "{") {
			return nil, nil, p.errorf(p.pos, "expected contract block")
		}

		if outerStart == (Loc{}) {
			outerStart = p.loc(p.pos)
		}

		if _, _, err := p.parseBlock(); err != nil {
			return nil, nil, err
		}
	}

	if fb.Wrapped && p.isAnyText(p.pos, "body", "do") {
		p.pos++
	}

	if !p.isText(p.pos, "{") {
		return nil, nil, p.errorf(p.pos, "expected function body")
	}

	block, decls, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}

	if fb.Wrapped {
		fb.Block = &Body{Start: outerStart, End: block.End}
		fb.Inner = block
	} else {
		fb.Block = block
	}

	return fb, decls, nil
}

// parseBlock consumes a `{...}` region, collecting nested declarations.
func (p *Parser) parseBlock() (*Body, []Node, error) {
	body := &Body{Start: p.loc(p.pos)}
	p.pos++

	decls, err := p.parseDecls()
	if err != nil {
		return nil, nil, err
	}

	if !p.isText(p.pos, "}") {
		return nil, nil, p.errorf(p.pos, "unterminated block")
	}

	body.End = p.loc(p.pos)
	p.pos++

	return body, decls, nil
}

func (p *Parser) parseParams() ([]Param, bool) {
	if !p.isText(p.pos, "(") {
		return nil, false
	}

	p.pos++

	var params []Param

	for p.pos < len(p.tokens) && !p.isText(p.pos, ")") {
		params = append(params, p.parseParam())

		if p.isText(p.pos, ",") {
			p.pos++
		}
	}

	if !p.isText(p.pos, ")") {
		return nil, false
	}

	p.pos++

	return params, true
}

func (p *Parser) parseParam() Param {
	param := Param{Loc: p.loc(p.pos)}

	if p.isText(p.pos, "...") {
		p.pos++
		return param
	}

	for p.pos < len(p.tokens) && paramStorage[p.tokens[p.pos].Text] {
		p.pos++
	}

	if typ, ok := p.parseType(); ok {
		param.Type = typ
	}

	if p.is(p.pos, Identifier) {
		param.Name = p.tokens[p.pos].Text
		p.pos++
	}

	if p.isText(p.pos, "=") {
		p.pos++
		p.skipDefaultArg()
	}

	// give up on anything else before the next separator
	for p.pos < len(p.tokens) && !p.isText(p.pos, ",") && !p.isText(p.pos, ")") {
		p.skipOne()
	}

	return param
}

// skipDefaultArg consumes a default argument expression up to the next
// top-level comma or closing parenthesis.
func (p *Parser) skipDefaultArg() {
	for p.pos < len(p.tokens) {
		switch p.tokens[p.pos].Text {
		case ",", ")":
			return
		case "(":
			p.skipBalanced("(", ")")
		case "[":
			p.skipBalanced("[", "]")
		default:
			p.pos++
		}
	}
}

// parseType parses a declared type: optional const/immutable/shared/inout
// qualifier, a built-in base or (possibly dot-led) identifier/template
// chain, then declarator suffixes ordered innermost to outermost.
func (p *Parser) parseType() (*TypeRef, bool) {
	save := p.pos

	if p.isAnyText(p.pos, "const", "immutable", "shared", "inout") {
		p.pos++

		if p.isText(p.pos, "(") {
			p.pos++

			typ, ok := p.parseType()
			if !ok || !p.isText(p.pos, ")") {
				p.pos = save
				return nil, false
			}

			p.pos++
			p.parseSuffixes(typ)

			return typ, true
		}
	}

	typ := &TypeRef{}

	if p.isText(p.pos, ".") && p.is(p.pos+1, Identifier) {
		typ.LeadingDot = true
		typ.DotLoc = p.loc(p.pos)
		p.pos++
	}

	switch {
	case p.is(p.pos, BasicType):
		typ.Basic = p.tokens[p.pos].Text
		typ.BasicLoc = p.loc(p.pos)
		p.pos++

	case p.is(p.pos, Identifier):
		if !p.parseChain(typ) {
			p.pos = save
			return nil, false
		}

	case p.isText(p.pos, "typeof"):
		// typeof(expr) as a base type; it can never resolve through the
		// alias table, so a single opaque segment is enough
		typ.Chain = append(typ.Chain, ChainSegment{Name: "typeof", Loc: p.loc(p.pos)})
		p.pos++

		if !p.isText(p.pos, "(") {
			p.pos = save
			return nil, false
		}

		p.skipBalanced("(", ")")

	default:
		p.pos = save
		return nil, false
	}

	p.parseSuffixes(typ)

	return typ, true
}

func (p *Parser) parseChain(typ *TypeRef) bool {
	for {
		if !p.is(p.pos, Identifier) {
			return false
		}

		seg := ChainSegment{Name: p.tokens[p.pos].Text, Loc: p.loc(p.pos)}
		p.pos++

		if p.isText(p.pos, "!") {
			seg.Template = true
			p.pos++

			if p.isText(p.pos, "(") {
				p.skipBalanced("(", ")")
			} else if p.pos < len(p.tokens) {
				p.pos++ // single-token template argument
			}
		}

		typ.Chain = append(typ.Chain, seg)

		if !p.isText(p.pos, ".") || !p.is(p.pos+1, Identifier) {
			return true
		}

		p.pos++
	}
}

func (p *Parser) parseSuffixes(typ *TypeRef) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Text {
		case "*":
			typ.Suffixes = append(typ.Suffixes, TypeSuffix{Kind: PointerSuffix, Loc: p.loc(p.pos)})
			p.pos++

		case "[":
			typ.Suffixes = append(typ.Suffixes, TypeSuffix{Kind: ArraySuffix, Loc: p.loc(p.pos)})
			p.skipBalanced("[", "]")

		case "delegate", "function":
			kind := DelegateSuffix
			if tok.Text == "function" {
				kind = FunctionSuffix
			}

			typ.Suffixes = append(typ.Suffixes, TypeSuffix{Kind: kind, Loc: p.loc(p.pos)})
			p.pos++

			if p.isText(p.pos, "(") {
				p.skipBalanced("(", ")")
			}

		default:
			return
		}
	}
}

// parseAlias handles `alias Target Name;`, `alias Name = Target;` and the
// D1 `typedef Target Name;` form. Returns nil when the tokens do not fit
// either shape.
func (p *Parser) parseAlias() *AliasDecl {
	start := p.loc(p.pos)
	p.pos++ // alias | typedef

	// D2 form: alias Name = Target;
	if p.is(p.pos, Identifier) && p.isText(p.pos+1, "=") {
		decl := &AliasDecl{Name: p.tokens[p.pos].Text, Loc: start}
		p.pos += 2

		typ, ok := p.parseType()
		if !ok {
			return nil
		}

		decl.Target = typ
		p.skipToSemicolon()

		return decl
	}

	// D1 form: alias Target Name;
	typ, ok := p.parseType()
	if !ok || !p.is(p.pos, Identifier) {
		return nil
	}

	decl := &AliasDecl{Name: p.tokens[p.pos].Text, Target: typ, Loc: start}
	p.pos++

	if !p.isText(p.pos, ";") {
		return nil
	}

	p.pos++

	return decl
}

// parseOther consumes one unmodeled construct: everything up to a top-level
// semicolon, a single balanced braced region (whose nested declarations are
// still parsed), or the enclosing scope's closing brace.
func (p *Parser) parseOther() (Node, error) {
	node := &OtherNode{Loc: p.loc(p.pos)}

	for p.pos < len(p.tokens) {
		switch p.tokens[p.pos].Text {
		case ";":
			p.pos++
			return node, nil

		case "}":
			return node, nil

		case "{":
			_, decls, err := p.parseBlock()
			if err != nil {
				return nil, err
			}

			node.Nodes = decls

			return node, nil

		case "(":
			p.skipBalanced("(", ")")

		case "[":
			p.skipBalanced("[", "]")

		default:
			p.pos++
		}
	}

	return node, nil
}

func (p *Parser) skipAttributes() {
	for p.pos < len(p.tokens) {
		text := p.tokens[p.pos].Text

		switch {
		case text == "extern":
			p.pos++

			if p.isText(p.pos, "(") {
				p.skipBalanced("(", ")")
			}

		case attributes[text]:
			// `static this` must stay intact for the caller
			if text == "static" && (p.isText(p.pos+1, "this") || p.isText(p.pos+1, "~")) {
				return
			}

			p.pos++

		default:
			return
		}

		if p.isText(p.pos, ":") {
			p.pos++
		}
	}
}

// skipOne advances one token, treating bracket pairs as single units.
func (p *Parser) skipOne() {
	switch p.tokens[p.pos].Text {
	case "(":
		p.skipBalanced("(", ")")
	case "[":
		p.skipBalanced("[", "]")
	default:
		p.pos++
	}
}

func (p *Parser) skipBalanced(open, close string) {
	depth := 0

	for p.pos < len(p.tokens) {
		switch p.tokens[p.pos].Text {
		case open:
			depth++
		case close:
			depth--
		}

		p.pos++

		if depth == 0 {
			return
		}
	}
}

func (p *Parser) skipToSemicolon() {
	for p.pos < len(p.tokens) {
		if p.tokens[p.pos].Text == ";" {
			p.pos++
			return
		}

		p.skipOne()
	}
}

func (p *Parser) is(i int, kind TokenKind) bool {
	return i < len(p.tokens) && p.tokens[i].Kind == kind
}

func (p *Parser) isText(i int, text string) bool {
	return i < len(p.tokens) && p.tokens[i].Text == text
}

func (p *Parser) isAnyText(i int, texts ...string) bool {
	for _, t := range texts {
		if p.isText(i, t) {
			return true
		}
	}

	return false
}

func (p *Parser) loc(i int) Loc {
	if i >= len(p.tokens) {
		if n := len(p.tokens); n > 0 {
			t := p.tokens[n-1]
			return Loc{Offset: t.Offset + len(t.Text), Line: t.Line, Column: t.Column + len(t.Text)}
		}

		return Loc{Line: 1, Column: 1}
	}

	t := p.tokens[i]

	return Loc{Offset: t.Offset, Line: t.Line, Column: t.Column}
}

func (p *Parser) errorf(i int, format string, args ...any) error {
	loc := p.loc(i)
	return fmt.Errorf("%s:%d:%d: %s", p.file, loc.Line, loc.Column, fmt.Sprintf(format, args...))
}
