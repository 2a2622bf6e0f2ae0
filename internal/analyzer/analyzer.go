// Package analyzer validates and enriches the IR in a single pass per
// endpoint, accumulating every rule violation instead of halting, so one
// compilation attempt surfaces all problems at once.
package analyzer

import (
	"fmt"

	"github.com/stoewer/go-strcase"

	"github.com/TylerAldrich814/restify/internal/ast"
	"github.com/TylerAldrich814/restify/internal/dsl"
)

// SemanticError reports a validated-rule violation with its source position.
type SemanticError struct {
	Pos     dsl.Pos
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %s", e.Pos, e.Message)
}

// Position returns the source location of the error.
func (e *SemanticError) Position() dsl.Pos { return e.Pos }

// capabilities is the fixed role → serialization-capability table.
var capabilities = map[ast.Role]ast.Capability{
	ast.RoleHeader:   {Encode: true, Decode: true},
	ast.RoleRequest:  {Encode: true},
	ast.RoleResponse: {Decode: true},
	ast.RoleReqRes:   {Encode: true, Decode: true},
	ast.RoleQuery:    {Encode: true, URLEncoded: true},
	ast.RoleNone:     {Encode: true, Decode: true}, // generic structs serve as nested payloads
}

// casing styles accepted by a type-level rename-all attribute.
var casings = map[string]func(string) string{
	"camelCase":            strcase.LowerCamelCase,
	"PascalCase":           strcase.UpperCamelCase,
	"snake_case":           strcase.SnakeCase,
	"SCREAMING_SNAKE_CASE": strcase.UpperSnakeCase,
	"kebab-case":           strcase.KebabCase,
}

// CasingStyles lists the supported rename-all literals in stable order.
func CasingStyles() []string {
	return []string{"camelCase", "PascalCase", "snake_case", "SCREAMING_SNAKE_CASE", "kebab-case"}
}

type pass struct {
	diags []error
}

func (p *pass) errorf(pos dsl.Pos, format string, args ...any) {
	p.diags = append(p.diags, &SemanticError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Analyze mutates the IR in place with derived capability flags and
// resolved wire names, and returns the ordered list of rule violations.
// Generation must be refused when the list is non-empty.
func Analyze(endpoints []*ast.Endpoint) []error {
	p := &pass{}

	seenEndpoints := map[string]dsl.Pos{}
	seenPackages := map[string]string{}
	for _, ep := range endpoints {
		if prev, dup := seenEndpoints[ep.Name]; dup {
			p.errorf(ep.Pos, "duplicate endpoint name %q (first declared at %s)", ep.Name, prev)
		} else {
			seenEndpoints[ep.Name] = ep.Pos
			p.packageName(ep, seenPackages)
		}
		p.endpoint(ep)
	}
	return p.diags
}

// packageName rejects endpoint names that reduce to an empty or
// already-claimed generated package, so the generator never sees a
// namespace it cannot place.
func (p *pass) packageName(ep *ast.Endpoint, seen map[string]string) {
	pkg := ep.PackageName()
	if pkg == "" {
		p.errorf(ep.Pos, "endpoint name %q yields an empty package name", ep.Name)
		return
	}
	key := pkg
	if !ep.Public {
		key = "internal/" + pkg
	}
	if prev, dup := seen[key]; dup {
		p.errorf(ep.Pos, "endpoint %q generates package %q, already claimed by endpoint %q", ep.Name, pkg, prev)
		return
	}
	seen[key] = ep.Name
}

func (p *pass) endpoint(ep *ast.Endpoint) {
	seenVerbs := map[string]dsl.Pos{}
	for _, m := range ep.Methods {
		if prev, dup := seenVerbs[m.Verb]; dup {
			p.errorf(m.Pos, "duplicate %s method in endpoint %q (first declared at %s)", m.Verb, ep.Name, prev)
		} else {
			seenVerbs[m.Verb] = m.Pos
		}
		p.method(m)
	}
}

func (p *pass) method(m *ast.Method) {
	// Duplicate structure/enum names within one method.
	seen := map[string]dsl.Pos{}
	for _, d := range m.Decls {
		if prev, dup := seen[d.DeclName()]; dup {
			p.errorf(d.DeclPos(), "duplicate declaration %q in method %s %q (first declared at %s)",
				d.DeclName(), m.Verb, m.Path, prev)
			continue
		}
		seen[d.DeclName()] = d.DeclPos()
	}

	for _, ds := range m.Structs() {
		p.structure(ds)
	}
	for _, en := range m.Enums() {
		p.enum(en)
	}
	p.pathCoverage(m)
	p.references(m)
}

func (p *pass) structure(ds *ast.DataStructure) {
	ds.Caps = capabilities[ds.Role]

	var casing func(string) string
	if ds.Attr != nil {
		if fn, ok := casings[ds.Attr.Literal]; ok {
			casing = fn
		} else {
			p.errorf(ds.Attr.Pos, "unsupported casing style %q (supported: %v)", ds.Attr.Literal, CasingStyles())
		}
	}

	seen := map[string]dsl.Pos{}
	var errField *ast.Field
	for _, f := range ds.Fields {
		if prev, dup := seen[f.Name]; dup {
			p.errorf(f.Pos, "duplicate field %q in %s (first declared at %s)", f.Name, ds.Name, prev)
		} else {
			seen[f.Name] = f.Pos
		}

		p.resolveField(f, casing)

		if f.IsError {
			if !ds.Caps.Decode {
				p.errorf(f.Attr.Pos, "error-indicator marker on field %q of %s, which has no decode capability", f.Name, ds.Name)
			} else if errField != nil {
				p.errorf(f.Attr.Pos, "second error-indicator marker on %s (already on field %q)", ds.Name, errField.Name)
			} else {
				errField = f
			}
		}

		// Optional-field policy: omit on encode, default on decode.
		if f.Optional {
			f.OmitWhenAbsent = ds.Caps.Encode
			f.DefaultMissing = ds.Caps.Decode
		}
	}
}

// resolveField computes the effective wire name: a field-level rename wins
// over the structure casing rule; absent both, the declared name is used.
func (p *pass) resolveField(f *ast.Field, casing func(string) string) {
	f.WireName = f.Name
	if casing != nil {
		f.WireName = casing(f.Name)
	}
	if f.Attr != nil {
		switch f.Attr.Kind {
		case ast.AttrRename:
			if f.Attr.Literal == "" {
				p.errorf(f.Attr.Pos, "empty rename on field %q", f.Name)
			} else {
				f.WireName = f.Attr.Literal
			}
		case ast.AttrIsError:
			f.IsError = true
		}
	}
}

func (p *pass) enum(en *ast.EnumDefinition) {
	var casing func(string) string
	if en.Attr != nil {
		if fn, ok := casings[en.Attr.Literal]; ok {
			casing = fn
		} else {
			p.errorf(en.Attr.Pos, "unsupported casing style %q (supported: %v)", en.Attr.Literal, CasingStyles())
		}
	}

	seen := map[string]dsl.Pos{}
	for _, v := range en.Variants {
		if prev, dup := seen[v.Name]; dup {
			p.errorf(v.Pos, "duplicate variant %q in enum %s (first declared at %s)", v.Name, en.Name, prev)
		} else {
			seen[v.Name] = v.Pos
		}

		v.WireName = v.Name
		if casing != nil {
			v.WireName = casing(v.Name)
		}
		if v.Attr != nil && v.Attr.Kind == ast.AttrRename {
			if v.Attr.Literal == "" {
				p.errorf(v.Attr.Pos, "empty rename on variant %q", v.Name)
			} else {
				v.WireName = v.Attr.Literal
			}
		}

		fieldSeen := map[string]dsl.Pos{}
		for _, f := range v.Fields {
			if prev, dup := fieldSeen[f.Name]; dup {
				p.errorf(f.Pos, "duplicate field %q in variant %s (first declared at %s)", f.Name, v.Name, prev)
			} else {
				fieldSeen[f.Name] = f.Pos
			}
			p.resolveField(f, casing)
			if f.IsError {
				p.errorf(f.Attr.Pos, "error-indicator marker is not allowed inside enum variant %q", v.Name)
				f.IsError = false
			}
			// Variant payloads follow enum encode+decode behavior.
			if f.Optional {
				f.OmitWhenAbsent = true
				f.DefaultMissing = true
			}
		}
	}
}

// pathCoverage checks that every template parameter is satisfied by a
// same-named field in one of the method's URL-capable structures (Query or
// Request). Unmatched structure fields are fine; unmatched template
// parameters are not.
func (p *pass) pathCoverage(m *ast.Method) {
	covered := map[string]bool{}
	for _, ds := range m.Structs() {
		if ds.Role != ast.RoleQuery && ds.Role != ast.RoleRequest {
			continue
		}
		for _, f := range ds.Fields {
			covered[f.Name] = true
		}
	}
	for _, param := range m.PathParams {
		if !covered[param] {
			p.errorf(m.PathPos, "path parameter {%s} of %s %q has no matching field in a Query or Request structure",
				param, m.Verb, m.Path)
		}
	}
}

// references checks nested type references against the declarations of the
// same method. The pass runs after every declaration is built, so forward
// references resolve naturally.
func (p *pass) references(m *ast.Method) {
	defined := map[string]bool{}
	for _, d := range m.Decls {
		defined[d.DeclName()] = true
	}

	check := func(f *ast.Field) {
		if ref, pos, ok := findRef(f.Type, f.Pos); ok && !defined[ref] {
			p.errorf(pos, "field %q references unknown type %q in method %s %q", f.Name, ref, m.Verb, m.Path)
		}
	}
	for _, ds := range m.Structs() {
		for _, f := range ds.Fields {
			check(f)
		}
	}
	for _, en := range m.Enums() {
		for _, v := range en.Variants {
			if v.Payload != nil {
				if ref, pos, ok := findRef(v.Payload, v.Pos); ok && !defined[ref] {
					p.errorf(pos, "variant %q references unknown type %q in method %s %q", v.Name, ref, m.Verb, m.Path)
				}
			}
			for _, f := range v.Fields {
				check(f)
			}
		}
	}
}

func findRef(t *ast.TypeDescriptor, pos dsl.Pos) (string, dsl.Pos, bool) {
	switch t.Kind {
	case ast.KindReference:
		return t.Ref, pos, true
	case ast.KindCollection, ast.KindOptional:
		return findRef(t.Elem, pos)
	}
	return "", pos, false
}
