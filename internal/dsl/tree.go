package dsl

// Raw syntax tree emitted by the grammar parser. Nodes mirror the block
// structure of the source without classifying types or attributes; that is
// the AST builder's job.

// Unit is the top of the raw tree: every endpoint block in one source text.
type Unit struct {
	Endpoints []*EndpointBlock
}

// EndpointBlock is one `[pub Name: { ... }]` block.
type EndpointBlock struct {
	Pos     Pos
	Public  bool
	Name    string
	Methods []*MethodBlock
}

// MethodBlock is one `VERB "path" => { ... }` block.
type MethodBlock struct {
	Pos     Pos
	Verb    string
	Path    string
	PathPos Pos
	Decls   []*Decl
}

// DeclKind distinguishes the three structure-head forms.
type DeclKind int

const (
	DeclRole DeclKind = iota
	DeclStruct
	DeclEnum
)

// Decl is a role block, generic struct, or enum declared inside a method.
type Decl struct {
	Pos      Pos
	Attr     *AttrNode
	Kind     DeclKind
	Name     string // role name for DeclRole, declared name otherwise
	Fields   []*FieldNode
	Variants []*VariantNode // DeclEnum only
}

// AttrNode is a bracketed attribute annotation; its scope is positional.
type AttrNode struct {
	Pos     Pos
	Literal string
}

// FieldNode is one `name: ?Type` declaration. The type is kept as the raw
// token run between the colon and the field terminator.
type FieldNode struct {
	Pos      Pos
	Attr     *AttrNode
	Name     string
	Optional bool
	Type     []Token
}

// VariantNode is one enum variant: bare, tuple payload, or inline fields.
type VariantNode struct {
	Pos         Pos
	Attr        *AttrNode
	Name        string
	HasPayload  bool
	PayloadOpt  bool
	PayloadType []Token
	Fields      []*FieldNode
}
