package dlang

// Loc is a source location: a global byte offset plus the human-readable
// line/column pair carried into diagnostics.
type Loc struct {
	Offset int
	Line   int
	Column int
}

// Node is the closed set of AST node kinds. The traversal dispatches with a
// type switch; kinds it does not recognize fall through to generic
// recursive descent over Children.
type Node interface {
	Pos() Loc
	Children() []Node
}

// Module is the root node for one parsed source file.
type Module struct {
	Loc   Loc
	Decls []Node
}

func (m *Module) Pos() Loc         { return m.Loc }
func (m *Module) Children() []Node { return m.Decls }

// Body delimits a brace-enclosed region. Start locates the opening brace,
// End the closing one.
type Body struct {
	Start Loc
	End   Loc
}

// FuncBody is a function body. When the declaration carries in/out
// contracts, Wrapped is set and Inner locates the actual body block; Block
// then spans the whole contract region. The parser guarantees Inner is
// non-nil whenever Wrapped is true.
type FuncBody struct {
	Wrapped bool
	Block   *Body
	Inner   *Body
}

// AggregateKind distinguishes the three aggregate declaration forms.
type AggregateKind int

// Aggregate kinds.
const (
	StructKind AggregateKind = iota
	UnionKind
	ClassKind
)

func (k AggregateKind) String() string {
	switch k {
	case StructKind:
		return "struct"
	case UnionKind:
		return "union"
	default:
		return "class"
	}
}

// AggregateDecl is a struct, union or class declaration. Body is nil for
// forward declarations.
type AggregateDecl struct {
	Kind    AggregateKind
	Name    string
	Loc     Loc
	Body    *Body
	Members []Node
}

func (a *AggregateDecl) Pos() Loc         { return a.Loc }
func (a *AggregateDecl) Children() []Node { return a.Members }

// StaticCtorDecl is a `static this()` declaration. Body is nil for the
// signature-only forward form. Loc points at the `static` keyword.
type StaticCtorDecl struct {
	Loc  Loc
	Body *FuncBody
}

func (s *StaticCtorDecl) Pos() Loc         { return s.Loc }
func (s *StaticCtorDecl) Children() []Node { return nil }

// StaticDtorDecl is a `static ~this()` declaration. Same shape as the
// static constructor.
type StaticDtorDecl struct {
	Loc  Loc
	Body *FuncBody
}

func (s *StaticDtorDecl) Pos() Loc         { return s.Loc }
func (s *StaticDtorDecl) Children() []Node { return nil }

// Param is one formal parameter. Type is nil when the declaration carries
// no parseable type (variadic tail, for instance).
type Param struct {
	Type *TypeRef
	Name string
	Loc  Loc
}

// FuncDecl is a function declaration with a parameter list. Nested
// declarations found inside the body are parsed into BodyDecls.
type FuncDecl struct {
	Name      string
	Loc       Loc
	Params    []Param
	Body      *FuncBody
	BodyDecls []Node
}

func (f *FuncDecl) Pos() Loc         { return f.Loc }
func (f *FuncDecl) Children() []Node { return f.BodyDecls }

// CtorDecl is a `this(...)` constructor declaration.
type CtorDecl struct {
	Loc       Loc
	Params    []Param
	Body      *FuncBody
	BodyDecls []Node
}

func (c *CtorDecl) Pos() Loc         { return c.Loc }
func (c *CtorDecl) Children() []Node { return c.BodyDecls }

// AliasDecl records `alias Target Name;` (D1) or `alias Name = Target;`
// (D2). Only the pieces the alias indexer needs are kept.
type AliasDecl struct {
	Name   string
	Target *TypeRef
	Loc    Loc
}

func (a *AliasDecl) Pos() Loc         { return a.Loc }
func (a *AliasDecl) Children() []Node { return nil }

// OtherNode covers every construct the parser does not model. Declarations
// discovered inside its braced regions are collected as Nodes so the
// traversal's default arm still reaches them.
type OtherNode struct {
	Loc   Loc
	Nodes []Node
}

func (o *OtherNode) Pos() Loc         { return o.Loc }
func (o *OtherNode) Children() []Node { return o.Nodes }

// SuffixKind classifies a type suffix.
type SuffixKind int

// Type suffix kinds. Delegate and Function are the callable suffixes.
const (
	PointerSuffix SuffixKind = iota
	ArraySuffix
	DelegateSuffix
	FunctionSuffix
)

// TypeSuffix is one declarator suffix. Loc points at the suffix token
// (`*`, `[`, `delegate` or `function`).
type TypeSuffix struct {
	Kind SuffixKind
	Loc  Loc
}

// ChainSegment is one segment of a dotted identifier or template-instance
// chain. Loc points at the segment's first token.
type ChainSegment struct {
	Name     string
	Loc      Loc
	Template bool
}

// TypeRef is a declared type as spelled at the use site: an optional
// built-in base or identifier chain, decorated by zero or more suffixes
// ordered innermost to outermost.
type TypeRef struct {
	Basic      string
	BasicLoc   Loc
	LeadingDot bool
	DotLoc     Loc
	Chain      []ChainSegment
	Suffixes   []TypeSuffix
}

// CallableSuffix returns the outermost suffix when it describes a callable
// (delegate or function pointer) kind.
func (t *TypeRef) CallableSuffix() (TypeSuffix, bool) {
	if len(t.Suffixes) == 0 {
		return TypeSuffix{}, false
	}

	last := t.Suffixes[len(t.Suffixes)-1]
	if last.Kind == DelegateSuffix || last.Kind == FunctionSuffix {
		return last, true
	}

	return TypeSuffix{}, false
}

// IsBareSymbol reports whether the type is a plain identifier or
// template-instance chain with no suffixes and no built-in base.
func (t *TypeRef) IsBareSymbol() bool {
	return t.Basic == "" && len(t.Chain) > 0 && len(t.Suffixes) == 0
}

// LastSegment returns the unqualified name of the chain's final segment.
func (t *TypeRef) LastSegment() string {
	if len(t.Chain) == 0 {
		return ""
	}

	return t.Chain[len(t.Chain)-1].Name
}
