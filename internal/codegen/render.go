package codegen

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TylerAldrich814/restify/internal/ast"
)

// runtimeImport is the support package generated code leans on for query
// encoding, value formatting, and validation.
const runtimeImport = "github.com/TylerAldrich814/restify/pkg/runtime"

var verbConstants = map[string]string{
	"GET":     "http.MethodGet",
	"POST":    "http.MethodPost",
	"PUT":     "http.MethodPut",
	"DELETE":  "http.MethodDelete",
	"PATCH":   "http.MethodPatch",
	"OPTIONS": "http.MethodOptions",
	"HEAD":    "http.MethodHead",
}

// fileRenderer accumulates one generated file and the imports its body
// needs, then assembles a gofmt-shaped source file.
type fileRenderer struct {
	pkg     string
	buf     strings.Builder
	imports map[string]bool
}

func newFileRenderer(pkg string) *fileRenderer {
	return &fileRenderer{pkg: pkg, imports: map[string]bool{}}
}

func (r *fileRenderer) use(path string)               { r.imports[path] = true }
func (r *fileRenderer) p(s string)                    { r.buf.WriteString(s) }
func (r *fileRenderer) pf(format string, args ...any) { fmt.Fprintf(&r.buf, format, args...) }

func (r *fileRenderer) source() []byte {
	var out strings.Builder
	out.WriteString("// Code generated by restify. DO NOT EDIT.\n\n")
	out.WriteString("package " + r.pkg + "\n\n")

	if len(r.imports) > 0 {
		var std, ext []string
		for imp := range r.imports {
			if strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
				ext = append(ext, imp)
			} else {
				std = append(std, imp)
			}
		}
		sort.Strings(std)
		sort.Strings(ext)
		out.WriteString("import (\n")
		for _, imp := range std {
			out.WriteString("\t\"" + imp + "\"\n")
		}
		if len(std) > 0 && len(ext) > 0 {
			out.WriteString("\n")
		}
		for _, imp := range ext {
			out.WriteString("\t\"" + imp + "\"\n")
		}
		out.WriteString(")\n\n")
	}

	out.WriteString(r.buf.String())
	return []byte(out.String())
}

// RenderEndpoint renders every generated file of one endpoint namespace,
// keyed by path relative to the output root. Private endpoints land under
// internal/ so the surrounding module cannot export them by accident.
func RenderEndpoint(ep *ast.Endpoint) (map[string][]byte, error) {
	pkg := ep.PackageName()
	if pkg == "" {
		return nil, generationErrorf("endpoint %q produced an empty package name", ep.Name)
	}
	dir := pkg
	if !ep.Public {
		dir = filepath.Join("internal", pkg)
	}

	files := map[string][]byte{}
	files[filepath.Join(dir, "doc.go")] = renderDocFile(pkg, ep)

	for _, m := range ep.Methods {
		name := strings.ToLower(m.Verb)
		if slug := pathSlug(m.Path); slug != "" {
			name += "_" + slug
		}
		content, err := renderMethodFile(pkg, ep, m)
		if err != nil {
			return nil, err
		}
		files[filepath.Join(dir, name+".go")] = content
	}
	return files, nil
}

func renderDocFile(pkg string, ep *ast.Endpoint) []byte {
	doc := newDocString().
		addf("Package %s contains generated client bindings for the %s endpoint.", pkg, ep.Name).
		blank().
		add("Methods:")
	for _, m := range ep.Methods {
		doc.addf("  %s %q", m.Verb, m.Path)
	}

	var out strings.Builder
	out.WriteString("// Code generated by restify. DO NOT EDIT.\n\n")
	out.WriteString(doc.render())
	out.WriteString("package " + pkg + "\n")
	return []byte(out.String())
}

func renderMethodFile(pkg string, ep *ast.Endpoint, m *ast.Method) ([]byte, error) {
	r := newFileRenderer(pkg)
	resolver := newTypeResolver(m)

	for _, d := range m.Decls {
		switch node := d.(type) {
		case *ast.DataStructure:
			if err := renderStruct(r, resolver, m, node); err != nil {
				return nil, err
			}
		case *ast.EnumDefinition:
			if err := renderEnum(r, resolver, node); err != nil {
				return nil, err
			}
		}
	}
	if err := renderMethodFuncs(r, resolver, m); err != nil {
		return nil, err
	}
	return r.source(), nil
}

func goFieldName(f *ast.Field) string { return exportedName(f.Name) }

func renderStruct(r *fileRenderer, res *typeResolver, m *ast.Method, ds *ast.DataStructure) error {
	typeName := methodTypeName(m.Verb, ds.Name)

	doc := newDocString()
	if ds.Role == ast.RoleNone {
		doc.addf("%s is a generated structure used by %s %q.", typeName, m.Verb, m.Path)
	} else {
		doc.addf("%s is the %s structure for %s %q.", typeName, ds.Role, m.Verb, m.Path)
	}
	if len(ds.Fields) > 0 {
		doc.blank().add("Fields:").fieldList(ds.Fields)
	}
	r.p(doc.render())

	r.pf("type %s struct {\n", typeName)
	for _, f := range ds.Fields {
		goType, err := res.goType(f.Type)
		if err != nil {
			return err
		}
		if strings.Contains(goType, "time.Time") {
			r.use("time")
		}
		if f.WireName == "" {
			return generationErrorf("field %q of %s has no resolved wire name", f.Name, typeName)
		}
		r.pf("\t%s %s %s\n", goFieldName(f), goType, structTag(ds, f))
	}
	r.p("}\n\n")

	if ds.Role != ast.RoleNone {
		caps := ds.Caps
		switch {
		case caps.URLEncoded:
			renderQueryHelpers(r, typeName, ds)
		default:
			if caps.Encode {
				renderEncodeHelper(r, typeName, ds)
			}
			if caps.Decode && ds.Role != ast.RoleHeader {
				renderDecodeHelper(r, typeName, ds)
			}
		}
		if ds.Role == ast.RoleHeader {
			if err := renderHeaderHelpers(r, res, typeName, ds); err != nil {
				return err
			}
		}
	}
	// Generic structs decode as nested payloads, so a declared indicator
	// field still gets its accessor.
	renderErrIndicator(r, typeName, ds)
	return nil
}

// structTag renders the wire tag: Query structures URL-encode through the
// schema tag, everything else rides JSON.
func structTag(ds *ast.DataStructure, f *ast.Field) string {
	if ds.Caps.URLEncoded {
		return fmt.Sprintf("`schema:\"%s\"`", f.WireName)
	}
	tag := f.WireName
	if f.OmitWhenAbsent {
		tag += ",omitempty"
	}
	return fmt.Sprintf("`json:%q`", tag)
}

func renderEncodeHelper(r *fileRenderer, typeName string, ds *ast.DataStructure) {
	r.use("encoding/json")
	doc := newDocString().
		addf("Encode serializes %s to its JSON wire form.", typeName)
	if hasOmittedOptional(ds) {
		doc.add("Optional fields that are unset are omitted entirely, not encoded as null.")
	}
	r.p(doc.render())
	r.pf("func (v %s) Encode() ([]byte, error) {\n\treturn json.Marshal(v)\n}\n\n", typeName)
}

func renderDecodeHelper(r *fileRenderer, typeName string, ds *ast.DataStructure) {
	r.use("encoding/json")
	r.use("io")
	doc := newDocString().
		addf("Decode%s reads the JSON wire form of %s.", typeName, typeName)
	if hasDefaultedOptional(ds) {
		doc.add("Optional fields missing from the payload decode to their absent state instead of failing.")
	}
	r.p(doc.render())
	r.pf("func Decode%s(r io.Reader) (*%s, error) {\n", typeName, typeName)
	r.pf("\tvar v %s\n", typeName)
	r.p("\tif err := json.NewDecoder(r).Decode(&v); err != nil {\n\t\treturn nil, err\n\t}\n")
	r.p("\treturn &v, nil\n}\n\n")
}

func renderQueryHelpers(r *fileRenderer, typeName string, ds *ast.DataStructure) {
	r.use("net/url")
	r.use(runtimeImport)
	doc := newDocString().
		addf("Values URL-encodes the fields of %s.", typeName)
	if hasOmittedOptional(ds) {
		doc.add("Unset optional fields are dropped from the encoded form.")
	}
	r.p(doc.render())
	r.pf("func (v %s) Values() (url.Values, error) {\n", typeName)
	r.p("\tvals, err := runtime.EncodeQuery(v)\n\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	for _, f := range ds.Fields {
		if f.Optional {
			r.pf("\tif v.%s == nil {\n\t\tvals.Del(%q)\n\t}\n", goFieldName(f), f.WireName)
		}
	}
	r.p("\treturn vals, nil\n}\n\n")
}

func renderHeaderHelpers(r *fileRenderer, res *typeResolver, typeName string, ds *ast.DataStructure) error {
	r.use("net/http")
	r.use(runtimeImport)

	doc := newDocString().
		addf("Apply sets the fields of %s as HTTP headers on the request.", typeName)
	if hasOmittedOptional(ds) {
		doc.add("Unset optional fields add no header at all.")
	}
	r.p(doc.render())
	r.pf("func (v %s) Apply(req *http.Request) {\n", typeName)
	for _, f := range ds.Fields {
		name := goFieldName(f)
		if f.Optional {
			r.pf("\tif v.%s != nil {\n\t\treq.Header.Set(%q, runtime.FormatValue(*v.%s))\n\t}\n", name, f.WireName, name)
		} else {
			r.pf("\treq.Header.Set(%q, runtime.FormatValue(v.%s))\n", f.WireName, name)
		}
	}
	r.p("}\n\n")

	doc = newDocString().
		addf("Parse%s reads %s fields from a received header set.", typeName, typeName).
		add("Missing optional fields stay unset; missing required fields fail.")
	r.p(doc.render())
	r.pf("func Parse%s(h http.Header) (*%s, error) {\n", typeName, typeName)
	r.pf("\tvar v %s\n", typeName)
	for _, f := range ds.Fields {
		name := goFieldName(f)
		goType, err := res.goType(f.Type.Unwrap())
		if err != nil {
			return err
		}
		r.pf("\tif raw := h.Get(%q); raw != \"\" {\n", f.WireName)
		if f.Optional {
			r.pf("\t\tvar tmp %s\n", goType)
			r.p("\t\tif err := runtime.DecodeString(raw, &tmp); err != nil {\n")
			r.pf("\t\t\treturn nil, fmt.Errorf(\"header %%q: %%w\", %q, err)\n", f.WireName)
			r.p("\t\t}\n")
			r.pf("\t\tv.%s = &tmp\n", name)
		} else {
			r.pf("\t\tif err := runtime.DecodeString(raw, &v.%s); err != nil {\n", name)
			r.pf("\t\t\treturn nil, fmt.Errorf(\"header %%q: %%w\", %q, err)\n", f.WireName)
			r.p("\t\t}\n")
		}
		if f.Optional {
			r.p("\t}\n")
		} else {
			r.p("\t} else {\n")
			r.pf("\t\treturn nil, fmt.Errorf(\"missing required header %%q\", %q)\n", f.WireName)
			r.p("\t}\n")
		}
		r.use("fmt")
	}
	r.p("\treturn &v, nil\n}\n\n")
	return nil
}

// renderErrIndicator emits the accessor for the structure's single
// error-indicator field, when one was declared.
func renderErrIndicator(r *fileRenderer, typeName string, ds *ast.DataStructure) {
	for _, f := range ds.Fields {
		if !f.IsError {
			continue
		}
		name := goFieldName(f)
		doc := newDocString().
			addf("ErrIndicated reports whether the error-indicator field %s is set.", name)
		r.p(doc.render())
		if f.Optional {
			r.pf("func (v *%s) ErrIndicated() bool {\n\treturn v.%s != nil\n}\n\n", typeName, name)
		} else {
			r.use(runtimeImport)
			r.pf("func (v *%s) ErrIndicated() bool {\n\treturn runtime.IsSet(v.%s)\n}\n\n", typeName, name)
		}
		return
	}
}

func hasOmittedOptional(ds *ast.DataStructure) bool {
	for _, f := range ds.Fields {
		if f.OmitWhenAbsent {
			return true
		}
	}
	return false
}

func hasDefaultedOptional(ds *ast.DataStructure) bool {
	for _, f := range ds.Fields {
		if f.DefaultMissing {
			return true
		}
	}
	return false
}
