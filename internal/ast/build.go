package ast

import (
	"fmt"

	"github.com/TylerAldrich814/restify/internal/dsl"
)

// markerIsError is the field-attribute literal recognized as the semantic
// error-indicator marker instead of a rename.
const markerIsError = "isError"

var rolesByName = map[string]Role{
	"Header":   RoleHeader,
	"Request":  RoleRequest,
	"Response": RoleResponse,
	"ReqRes":   RoleReqRes,
	"Query":    RoleQuery,
}

func buildError(pos dsl.Pos, format string, args ...any) *BuildError {
	return &BuildError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Build translates the raw block tree into the typed IR. It is a pure
// structural pass: cross-field and cross-structure rules belong to the
// analyzer. A structure that cannot be classified is dropped with a
// BuildError while its siblings continue. The returned slice holds
// *BuildError values.
func Build(unit *dsl.Unit) ([]*Endpoint, []error) {
	var endpoints []*Endpoint
	var diags []error

	for _, eb := range unit.Endpoints {
		ep := &Endpoint{Name: eb.Name, Public: eb.Public, Pos: eb.Pos}
		for _, mb := range eb.Methods {
			m := &Method{
				Verb:       mb.Verb,
				Path:       mb.Path,
				PathParams: dsl.PathParams(mb.Path),
				Pos:        mb.Pos,
				PathPos:    mb.PathPos,
			}
			for _, db := range mb.Decls {
				decl, err := buildDecl(db)
				if err != nil {
					diags = append(diags, err)
					continue
				}
				m.Decls = append(m.Decls, decl)
			}
			ep.Methods = append(ep.Methods, m)
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, diags
}

func buildDecl(db *dsl.Decl) (Decl, *BuildError) {
	switch db.Kind {
	case dsl.DeclEnum:
		return buildEnum(db)
	case dsl.DeclRole, dsl.DeclStruct:
		return buildStruct(db)
	}
	return nil, buildError(db.Pos, "unclassifiable declaration %q", db.Name)
}

func buildStruct(db *dsl.Decl) (*DataStructure, *BuildError) {
	ds := &DataStructure{
		Role: RoleNone,
		Name: db.Name,
		Pos:  db.Pos,
		Attr: typeAttr(db.Attr),
	}
	if db.Kind == dsl.DeclRole {
		ds.Role = rolesByName[db.Name]
	}
	for _, fb := range db.Fields {
		f, err := buildField(fb)
		if err != nil {
			return nil, err
		}
		ds.Fields = append(ds.Fields, f)
	}
	return ds, nil
}

func buildEnum(db *dsl.Decl) (*EnumDefinition, *BuildError) {
	en := &EnumDefinition{
		Name: db.Name,
		Pos:  db.Pos,
		Attr: typeAttr(db.Attr),
	}
	for _, vb := range db.Variants {
		v := &Variant{Name: vb.Name, Pos: vb.Pos, Attr: variantAttr(vb.Attr)}
		if vb.HasPayload {
			ty, err := buildType(vb.PayloadType, vb.Pos)
			if err != nil {
				return nil, err
			}
			if vb.PayloadOpt {
				ty = &TypeDescriptor{Kind: KindOptional, Elem: ty}
			}
			v.Payload = ty
		}
		for _, fb := range vb.Fields {
			f, err := buildField(fb)
			if err != nil {
				return nil, err
			}
			v.Fields = append(v.Fields, f)
		}
		en.Variants = append(en.Variants, v)
	}
	return en, nil
}

func buildField(fb *dsl.FieldNode) (*Field, *BuildError) {
	ty, err := buildType(fb.Type, fb.Pos)
	if err != nil {
		return nil, err
	}
	f := &Field{
		Name:     fb.Name,
		Pos:      fb.Pos,
		Optional: fb.Optional,
		Attr:     fieldAttr(fb.Attr),
	}
	if fb.Optional {
		ty = &TypeDescriptor{Kind: KindOptional, Elem: ty}
	}
	f.Type = ty
	return f, nil
}

// buildType classifies a raw token run into a TypeDescriptor. Identifiers
// outside the primitive set become nested references; their existence is
// checked during semantic analysis so forward references stay legal.
func buildType(run []dsl.Token, pos dsl.Pos) (*TypeDescriptor, *BuildError) {
	ty, rest, err := parseTypeTokens(run, pos)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, buildError(rest[0].Pos, "unexpected %s after type expression", rest[0])
	}
	return ty, nil
}

func parseTypeTokens(run []dsl.Token, pos dsl.Pos) (*TypeDescriptor, []dsl.Token, *BuildError) {
	if len(run) == 0 {
		return nil, nil, buildError(pos, "missing type expression")
	}
	head := run[0]
	if head.Kind != dsl.IDENT {
		return nil, nil, buildError(head.Pos, "expected type name, found %s", head)
	}
	rest := run[1:]

	if head.Text == "Vec" {
		if len(rest) == 0 || rest[0].Kind != dsl.LANGLE {
			return nil, nil, buildError(head.Pos, "malformed collection type: Vec requires an element type in angle brackets")
		}
		elem, after, err := parseTypeTokens(rest[1:], head.Pos)
		if err != nil {
			return nil, nil, err
		}
		if len(after) == 0 || after[0].Kind != dsl.RANGLE {
			return nil, nil, buildError(head.Pos, "malformed collection type: missing '>'")
		}
		return &TypeDescriptor{Kind: KindCollection, Elem: elem}, after[1:], nil
	}

	if prim, ok := primitiveNames[head.Text]; ok {
		return &TypeDescriptor{Kind: KindPrimitive, Primitive: prim}, rest, nil
	}
	return &TypeDescriptor{Kind: KindReference, Ref: head.Text}, rest, nil
}

func typeAttr(a *dsl.AttrNode) *Attribute {
	if a == nil {
		return nil
	}
	return &Attribute{Kind: AttrRenameAll, Literal: a.Literal, Pos: a.Pos}
}

func fieldAttr(a *dsl.AttrNode) *Attribute {
	if a == nil {
		return nil
	}
	if a.Literal == markerIsError {
		return &Attribute{Kind: AttrIsError, Literal: a.Literal, Pos: a.Pos}
	}
	return &Attribute{Kind: AttrRename, Literal: a.Literal, Pos: a.Pos}
}

func variantAttr(a *dsl.AttrNode) *Attribute {
	if a == nil {
		return nil
	}
	return &Attribute{Kind: AttrRename, Literal: a.Literal, Pos: a.Pos}
}
