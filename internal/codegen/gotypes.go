package codegen

import (
	"fmt"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/TylerAldrich814/restify/internal/ast"
)

// GenerationError indicates an internal invariant broken after validation.
// It is always a bug in the analyzer/generator contract, never user input.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string { return "generation error: " + e.Message }

func generationErrorf(format string, args ...any) *GenerationError {
	return &GenerationError{Message: fmt.Sprintf(format, args...)}
}

var primitiveGoTypes = map[ast.Primitive]string{
	ast.PrimString:   "string",
	ast.PrimI32:      "int32",
	ast.PrimI64:      "int64",
	ast.PrimU32:      "uint32",
	ast.PrimU64:      "uint64",
	ast.PrimF64:      "float64",
	ast.PrimBool:     "bool",
	ast.PrimDateTime: "time.Time",
	ast.PrimBytes:    "[]byte",
}

// exportedName turns a declared DSL name into an exported Go identifier.
func exportedName(name string) string {
	return strcase.UpperCamelCase(name)
}

// methodTypeName is the per-method prefixed name of a generated structure,
// e.g. Query in a GET method becomes GETQuery.
func methodTypeName(verb, declared string) string {
	return verb + exportedName(declared)
}

// typeResolver maps nested references of one method to generated Go type
// names: structs take the verb prefix, enums keep their declared name.
type typeResolver struct {
	verb    string
	structs map[string]bool
	enums   map[string]bool
}

func newTypeResolver(m *ast.Method) *typeResolver {
	r := &typeResolver{verb: m.Verb, structs: map[string]bool{}, enums: map[string]bool{}}
	for _, ds := range m.Structs() {
		r.structs[ds.Name] = true
	}
	for _, en := range m.Enums() {
		r.enums[en.Name] = true
	}
	return r
}

func (r *typeResolver) resolve(ref string) (string, error) {
	switch {
	case r.structs[ref]:
		return methodTypeName(r.verb, ref), nil
	case r.enums[ref]:
		return exportedName(ref), nil
	}
	return "", generationErrorf("unresolved type reference %q survived analysis", ref)
}

// componentName is the resolver counterpart for schema exports: the name a
// referenced declaration is registered under in components/schemas.
func (r *typeResolver) componentName(ref string) (string, error) {
	return r.resolve(ref)
}

// goType renders a TypeDescriptor as Go source. The optional wrapper
// becomes a pointer so absence is representable.
func (r *typeResolver) goType(t *ast.TypeDescriptor) (string, error) {
	switch t.Kind {
	case ast.KindPrimitive:
		if s, ok := primitiveGoTypes[t.Primitive]; ok {
			return s, nil
		}
		return "", generationErrorf("unknown primitive %d", int(t.Primitive))
	case ast.KindCollection:
		elem, err := r.goType(t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case ast.KindReference:
		return r.resolve(t.Ref)
	case ast.KindOptional:
		elem, err := r.goType(t.Elem)
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	}
	return "", generationErrorf("unknown type kind %d", int(t.Kind))
}

// pathSlug builds a file-name fragment from a path template, keeping
// parameter names so templates differing only by parameter stay distinct.
func pathSlug(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(collapseUnderscores(b.String()), "_")
}

func collapseUnderscores(s string) string {
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return s
}
