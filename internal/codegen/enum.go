package codegen

import (
	"strings"

	"github.com/TylerAldrich814/restify/internal/ast"
)

func enumIsBare(en *ast.EnumDefinition) bool {
	for _, v := range en.Variants {
		if v.Payload != nil || len(v.Fields) > 0 {
			return false
		}
	}
	return true
}

func renderEnum(r *fileRenderer, res *typeResolver, en *ast.EnumDefinition) error {
	if enumIsBare(en) {
		renderBareEnum(r, en)
		return nil
	}
	return renderUnionEnum(r, res, en)
}

// renderBareEnum maps a payload-free enumeration onto a string type with
// one constant per variant, so values compare and serialize directly.
func renderBareEnum(r *fileRenderer, en *ast.EnumDefinition) {
	typeName := exportedName(en.Name)

	doc := newDocString().
		addf("%s enumerates the wire values of %s.", typeName, en.Name)
	r.p(doc.render())
	r.pf("type %s string\n\n", typeName)

	r.pf("// Values of %s.\nconst (\n", typeName)
	for _, v := range en.Variants {
		r.pf("\t%s%s %s = %q\n", typeName, exportedName(v.Name), typeName, v.WireName)
	}
	r.p(")\n\n")
}

// renderUnionEnum emits an externally tagged union: exactly one variant
// field is set at a time, and the JSON form is either the bare variant
// name or a single-key object holding the variant payload.
func renderUnionEnum(r *fileRenderer, res *typeResolver, en *ast.EnumDefinition) error {
	typeName := exportedName(en.Name)

	doc := newDocString().
		addf("%s is a tagged union. Exactly one variant field is non-nil at", typeName).
		add("a time. Bare variants serialize as their name, payload variants as").
		add("a single-key object keyed by the variant name.").
		blank().
		add("Variants:")
	for _, v := range en.Variants {
		doc.addf("  - %s", v.Name)
	}
	r.p(doc.render())

	type variantField struct {
		v      *ast.Variant
		field  string
		goType string
		bare   bool
	}
	fields := make([]variantField, 0, len(en.Variants))
	for _, v := range en.Variants {
		vf := variantField{v: v, field: exportedName(v.Name)}
		switch {
		case v.Payload == nil && len(v.Fields) == 0:
			vf.bare = true
			vf.goType = "bool"
		case v.Payload != nil:
			inner, err := res.goType(v.Payload.Unwrap())
			if err != nil {
				return err
			}
			if v.Payload.IsOptional() {
				r.use(runtimeImport)
				vf.goType = "*runtime.Optional[" + inner + "]"
			} else {
				vf.goType = "*" + inner
			}
		default:
			vf.goType = "*" + typeName + exportedName(v.Name)
		}
		if strings.Contains(vf.goType, "time.Time") {
			r.use("time")
		}
		fields = append(fields, vf)
	}

	r.pf("type %s struct {\n", typeName)
	for _, vf := range fields {
		r.pf("\t%s %s `json:\"-\"`\n", vf.field, vf.goType)
	}
	r.p("}\n\n")

	for _, vf := range fields {
		if vf.v.Payload != nil || vf.bare {
			continue
		}
		payloadName := typeName + exportedName(vf.v.Name)
		doc := newDocString().
			addf("%s is the payload of the %s variant of %s.", payloadName, vf.v.Name, typeName)
		r.p(doc.render())
		r.pf("type %s struct {\n", payloadName)
		for _, f := range vf.v.Fields {
			goType, err := res.goType(f.Type)
			if err != nil {
				return err
			}
			if strings.Contains(goType, "time.Time") {
				r.use("time")
			}
			tag := f.WireName
			if f.OmitWhenAbsent {
				tag += ",omitempty"
			}
			r.pf("\t%s %s `json:%q`\n", goFieldName(f), goType, tag)
		}
		r.p("}\n\n")
	}

	r.use("encoding/json")
	r.use("fmt")

	r.pf("// MarshalJSON encodes whichever variant of %s is set.\n", typeName)
	r.pf("func (v %s) MarshalJSON() ([]byte, error) {\n", typeName)
	r.p("\tswitch {\n")
	for _, vf := range fields {
		if vf.bare {
			r.pf("\tcase v.%s:\n", vf.field)
			r.pf("\t\treturn json.Marshal(%q)\n", vf.v.WireName)
		} else {
			r.pf("\tcase v.%s != nil:\n", vf.field)
			r.pf("\t\treturn json.Marshal(map[string]any{%q: v.%s})\n", vf.v.WireName, vf.field)
		}
	}
	r.p("\t}\n")
	r.pf("\treturn nil, fmt.Errorf(\"%s: no variant set\")\n", typeName)
	r.p("}\n\n")

	r.pf("// UnmarshalJSON decodes a %s from either wire form.\n", typeName)
	r.pf("func (v *%s) UnmarshalJSON(data []byte) error {\n", typeName)
	r.pf("\t*v = %s{}\n", typeName)
	r.p("\tvar tag string\n")
	r.p("\tif err := json.Unmarshal(data, &tag); err == nil {\n")
	r.p("\t\tswitch tag {\n")
	for _, vf := range fields {
		if !vf.bare {
			continue
		}
		r.pf("\t\tcase %q:\n", vf.v.WireName)
		r.pf("\t\t\tv.%s = true\n", vf.field)
		r.p("\t\t\treturn nil\n")
	}
	r.p("\t\t}\n")
	r.pf("\t\treturn fmt.Errorf(\"%s: unknown variant %%q\", tag)\n", typeName)
	r.p("\t}\n")
	r.p("\tvar obj map[string]json.RawMessage\n")
	r.p("\tif err := json.Unmarshal(data, &obj); err != nil {\n\t\treturn err\n\t}\n")
	r.pf("\tif len(obj) != 1 {\n\t\treturn fmt.Errorf(\"%s: expected exactly one variant key, got %%d\", len(obj))\n\t}\n", typeName)
	r.p("\tfor key, raw := range obj {\n")
	r.p("\t\tswitch key {\n")
	for _, vf := range fields {
		if vf.bare {
			continue
		}
		r.pf("\t\tcase %q:\n", vf.v.WireName)
		r.pf("\t\t\tvar p %s\n", strings.TrimPrefix(vf.goType, "*"))
		r.p("\t\t\tif err := json.Unmarshal(raw, &p); err != nil {\n\t\t\t\treturn err\n\t\t\t}\n")
		r.pf("\t\t\tv.%s = &p\n", vf.field)
		r.p("\t\t\treturn nil\n")
	}
	r.p("\t\tdefault:\n")
	r.pf("\t\t\treturn fmt.Errorf(\"%s: unknown variant %%q\", key)\n", typeName)
	r.p("\t\t}\n")
	r.p("\t}\n")
	r.pf("\treturn fmt.Errorf(\"%s: no variant set\")\n", typeName)
	r.p("}\n\n")
	return nil
}
