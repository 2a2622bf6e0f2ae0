package ast

import (
	"fmt"

	"github.com/TylerAldrich814/restify/internal/dsl"
)

// Intermediate representation built from the raw syntax tree. The analyzer
// enriches it in place; the generator only reads it.

// Role classifies a data structure and decides its serialization
// capabilities. The set is closed so the analyzer's capability table stays
// exhaustive.
type Role int

const (
	RoleNone Role = iota // generic untagged struct
	RoleHeader
	RoleRequest
	RoleResponse
	RoleReqRes
	RoleQuery
)

var roleStrings = map[Role]string{
	RoleNone:     "struct",
	RoleHeader:   "Header",
	RoleRequest:  "Request",
	RoleResponse: "Response",
	RoleReqRes:   "ReqRes",
	RoleQuery:    "Query",
}

func (r Role) String() string { return roleStrings[r] }

// Capability holds the serialization support derived from a structure's
// role. URLEncoded marks Query structures whose outbound form is a query
// string rather than a JSON body.
type Capability struct {
	Encode     bool
	Decode     bool
	URLEncoded bool
}

// Primitive is the closed set of leaf types the DSL recognizes.
type Primitive int

const (
	PrimInvalid Primitive = iota
	PrimString
	PrimI32
	PrimI64
	PrimU32
	PrimU64
	PrimF64
	PrimBool
	PrimDateTime
	PrimBytes
)

var primitiveNames = map[string]Primitive{
	"String":   PrimString,
	"i32":      PrimI32,
	"i64":      PrimI64,
	"u32":      PrimU32,
	"u64":      PrimU64,
	"f64":      PrimF64,
	"bool":     PrimBool,
	"DateTime": PrimDateTime,
	"Bytes":    PrimBytes,
}

var primitiveStrings = map[Primitive]string{
	PrimString:   "String",
	PrimI32:      "i32",
	PrimI64:      "i64",
	PrimU32:      "u32",
	PrimU64:      "u64",
	PrimF64:      "f64",
	PrimBool:     "bool",
	PrimDateTime: "DateTime",
	PrimBytes:    "Bytes",
}

func (p Primitive) String() string { return primitiveStrings[p] }

// TypeKind tags a TypeDescriptor.
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindCollection
	KindReference
	KindOptional
)

// TypeDescriptor is the tagged union over primitive, collection, nested
// reference, and optional-wrapper types. Optionality is a wrapper, never a
// property of the underlying type: the same flag drives skip-on-encode or
// default-on-decode depending on the owning structure's capability.
type TypeDescriptor struct {
	Kind      TypeKind
	Primitive Primitive // KindPrimitive
	Elem      *TypeDescriptor
	Ref       string // KindReference: name of a struct/enum in the same method
}

func (t *TypeDescriptor) String() string {
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive.String()
	case KindCollection:
		return "Vec<" + t.Elem.String() + ">"
	case KindReference:
		return t.Ref
	case KindOptional:
		return "?" + t.Elem.String()
	}
	return "<invalid>"
}

// Unwrap strips an optional wrapper, if present.
func (t *TypeDescriptor) Unwrap() *TypeDescriptor {
	if t.Kind == KindOptional {
		return t.Elem
	}
	return t
}

// IsOptional reports whether the descriptor is an optional wrapper.
func (t *TypeDescriptor) IsOptional() bool { return t.Kind == KindOptional }

// AttrKind tags an Attribute.
type AttrKind int

const (
	AttrRenameAll AttrKind = iota // type-level casing rule
	AttrRename                    // field/variant-level verbatim wire name
	AttrIsError                   // field-level error-indicator marker
)

// Attribute is a bracketed annotation. Scope comes from syntactic position;
// the builder resolves the kind, the analyzer validates the literal.
type Attribute struct {
	Kind    AttrKind
	Literal string
	Pos     dsl.Pos
}

// Field is one typed member of a structure or struct-variant.
type Field struct {
	Name     string
	Pos      dsl.Pos
	Type     *TypeDescriptor
	Optional bool
	Attr     *Attribute // Rename or IsError, nil when absent

	// Set by the analyzer.
	WireName       string
	IsError        bool
	OmitWhenAbsent bool // encode-capable owner: skip field when unset
	DefaultMissing bool // decode-capable owner: zero-value when missing
}

// DataStructure is a role-tagged or generic struct declared in a method.
type DataStructure struct {
	Role   Role
	Name   string // declared name; equals the role name for role structs
	Pos    dsl.Pos
	Attr   *Attribute // RenameAll, nil when absent
	Fields []*Field

	// Set by the analyzer.
	Caps Capability
}

// Variant is one enum case: bare, tuple payload, or inline struct.
type Variant struct {
	Name    string
	Pos     dsl.Pos
	Attr    *Attribute      // Rename, nil when absent
	Payload *TypeDescriptor // tuple payload, nil for bare/struct variants
	Fields  []*Field        // struct-variant fields

	// Set by the analyzer.
	WireName string
}

// EnumDefinition is an enum declared in a method. Enums always carry both
// encode and decode behavior in generated output.
type EnumDefinition struct {
	Name     string
	Pos      dsl.Pos
	Attr     *Attribute // RenameAll, nil when absent
	Variants []*Variant
}

// Decl is the ordered union of structures and enums inside a method.
type Decl interface {
	DeclName() string
	DeclPos() dsl.Pos
}

func (d *DataStructure) DeclName() string  { return d.Name }
func (d *DataStructure) DeclPos() dsl.Pos  { return d.Pos }
func (e *EnumDefinition) DeclName() string { return e.Name }
func (e *EnumDefinition) DeclPos() dsl.Pos { return e.Pos }

// Method is one verb + path template with its declarations in source order.
type Method struct {
	Verb       string
	Path       string
	PathParams []string
	Pos        dsl.Pos
	PathPos    dsl.Pos
	Decls      []Decl
}

// Structs returns the method's data structures in declaration order.
func (m *Method) Structs() []*DataStructure {
	var out []*DataStructure
	for _, d := range m.Decls {
		if ds, ok := d.(*DataStructure); ok {
			out = append(out, ds)
		}
	}
	return out
}

// Enums returns the method's enums in declaration order.
func (m *Method) Enums() []*EnumDefinition {
	var out []*EnumDefinition
	for _, d := range m.Decls {
		if en, ok := d.(*EnumDefinition); ok {
			out = append(out, en)
		}
	}
	return out
}

// Endpoint is one generated namespace: a name plus its ordered methods.
type Endpoint struct {
	Name    string
	Public  bool
	Pos     dsl.Pos
	Methods []*Method
}

// PackageName lowercases the endpoint name into the Go package generated
// for it, dropping every rune a package identifier cannot carry. The
// analyzer rejects endpoints whose names reduce to the empty string or to
// a package another endpoint already claims.
func (ep *Endpoint) PackageName() string {
	var b []rune
	for _, r := range ep.Name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b = append(b, r)
		case r >= 'A' && r <= 'Z':
			b = append(b, r-'A'+'a')
		}
	}
	return string(b)
}

// BuildError reports a raw tree node that could not be classified into the
// IR. Siblings of the failed structure are still processed.
type BuildError struct {
	Pos     dsl.Pos
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build error at %s: %s", e.Pos, e.Message)
}

// Position returns the source location of the error.
func (e *BuildError) Position() dsl.Pos { return e.Pos }
