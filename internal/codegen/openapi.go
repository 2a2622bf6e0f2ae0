package codegen

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/TylerAldrich814/restify/internal/ast"
)

// BuildDocument projects the analyzed program onto an OpenAPI 3 document.
// Query and Header structures become parameters, Request structures become
// JSON request bodies, and Response structures become the 200 response.
// Named structures and enumerations are collected under components using
// the same verb-prefixed names the generated Go types carry.
func BuildDocument(title, version string, endpoints []*ast.Endpoint) (*openapi3.T, error) {
	if title == "" {
		title = "restify"
	}
	if version == "" {
		version = "0.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	for _, ep := range endpoints {
		for _, m := range ep.Methods {
			op, err := buildOperation(doc, ep, m)
			if err != nil {
				return nil, err
			}
			item := doc.Paths[m.Path]
			if item == nil {
				item = &openapi3.PathItem{}
				doc.Paths[m.Path] = item
			}
			item.SetOperation(m.Verb, op)
		}
	}
	return doc, nil
}

func buildOperation(doc *openapi3.T, ep *ast.Endpoint, m *ast.Method) (*openapi3.Operation, error) {
	res := newTypeResolver(m)
	s := shapeOf(m)

	op := &openapi3.Operation{
		OperationID: ep.Name + m.Verb,
		Tags:        []string{ep.Name},
		Responses:   openapi3.Responses{},
	}

	for _, name := range m.PathParams {
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:     name,
				In:       openapi3.ParameterInPath,
				Required: true,
				Schema:   openapi3.NewStringSchema().NewRef(),
			},
		})
	}

	if err := addParamStruct(doc, res, op, m, s.query, openapi3.ParameterInQuery); err != nil {
		return nil, err
	}
	if err := addParamStruct(doc, res, op, m, s.header, openapi3.ParameterInHeader); err != nil {
		return nil, err
	}

	if s.request != nil {
		ref, err := schemaForStruct(doc, res, m, s.request)
		if err != nil {
			return nil, err
		}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Required: true,
				Content:  openapi3.NewContentWithJSONSchemaRef(ref),
			},
		}
	}

	desc := "Success"
	if s.response != nil {
		ref, err := schemaForStruct(doc, res, m, s.response)
		if err != nil {
			return nil, err
		}
		op.Responses["200"] = &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(ref),
			},
		}
	} else {
		op.Responses["200"] = &openapi3.ResponseRef{
			Value: &openapi3.Response{Description: &desc},
		}
	}

	for _, en := range m.Enums() {
		if _, err := schemaForEnum(doc, res, m, en); err != nil {
			return nil, err
		}
	}
	for _, ds := range m.Structs() {
		if ds.Role == ast.RoleNone {
			if _, err := schemaForStruct(doc, res, m, ds); err != nil {
				return nil, err
			}
		}
	}
	return op, nil
}

func addParamStruct(doc *openapi3.T, res *typeResolver, op *openapi3.Operation, m *ast.Method, ds *ast.DataStructure, in string) error {
	if ds == nil {
		return nil
	}
	for _, f := range ds.Fields {
		schema, err := typeSchema(res, m, f.Type.Unwrap())
		if err != nil {
			return err
		}
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:     f.WireName,
				In:       in,
				Required: !f.Optional,
				Schema:   schema,
			},
		})
	}
	return nil
}

func schemaForStruct(doc *openapi3.T, res *typeResolver, m *ast.Method, ds *ast.DataStructure) (*openapi3.SchemaRef, error) {
	name := methodTypeName(m.Verb, ds.Name)
	if _, ok := doc.Components.Schemas[name]; ok {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil), nil
	}
	schema := openapi3.NewObjectSchema()
	schema.Properties = openapi3.Schemas{}
	for _, f := range ds.Fields {
		prop, err := typeSchema(res, m, f.Type)
		if err != nil {
			return nil, err
		}
		schema.Properties[f.WireName] = prop
		if !f.Optional {
			schema.Required = append(schema.Required, f.WireName)
		}
	}
	sort.Strings(schema.Required)
	doc.Components.Schemas[name] = schema.NewRef()
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil), nil
}

func schemaForEnum(doc *openapi3.T, res *typeResolver, m *ast.Method, en *ast.EnumDefinition) (*openapi3.SchemaRef, error) {
	name := exportedName(en.Name)
	if _, ok := doc.Components.Schemas[name]; ok {
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil), nil
	}
	if enumIsBare(en) {
		schema := openapi3.NewStringSchema()
		for _, v := range en.Variants {
			schema.Enum = append(schema.Enum, v.WireName)
		}
		doc.Components.Schemas[name] = schema.NewRef()
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil), nil
	}

	// Tagged unions export as oneOf: a bare variant name string, or a
	// single-key object per payload variant.
	union := openapi3.NewSchema()
	doc.Components.Schemas[name] = union.NewRef()
	var bare []any
	for _, v := range en.Variants {
		if v.Payload == nil && len(v.Fields) == 0 {
			bare = append(bare, v.WireName)
			continue
		}
		var payload *openapi3.SchemaRef
		var err error
		if v.Payload != nil {
			payload, err = typeSchema(res, m, v.Payload)
		} else {
			obj := openapi3.NewObjectSchema()
			obj.Properties = openapi3.Schemas{}
			for _, f := range v.Fields {
				var prop *openapi3.SchemaRef
				prop, err = typeSchema(res, m, f.Type)
				if err != nil {
					break
				}
				obj.Properties[f.WireName] = prop
				if !f.Optional {
					obj.Required = append(obj.Required, f.WireName)
				}
			}
			sort.Strings(obj.Required)
			payload = obj.NewRef()
		}
		if err != nil {
			return nil, err
		}
		wrapper := openapi3.NewObjectSchema()
		wrapper.Properties = openapi3.Schemas{v.WireName: payload}
		wrapper.Required = []string{v.WireName}
		union.OneOf = append(union.OneOf, wrapper.NewRef())
	}
	if len(bare) > 0 {
		tags := openapi3.NewStringSchema()
		tags.Enum = bare
		union.OneOf = append([]*openapi3.SchemaRef{tags.NewRef()}, union.OneOf...)
	}
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil), nil
}

func typeSchema(res *typeResolver, m *ast.Method, t *ast.TypeDescriptor) (*openapi3.SchemaRef, error) {
	switch t.Kind {
	case ast.KindOptional:
		inner, err := typeSchema(res, m, t.Elem)
		if err != nil {
			return nil, err
		}
		if inner.Value != nil {
			inner.Value.Nullable = true
		}
		return inner, nil
	case ast.KindCollection:
		elem, err := typeSchema(res, m, t.Elem)
		if err != nil {
			return nil, err
		}
		schema := openapi3.NewArraySchema()
		schema.Items = elem
		return schema.NewRef(), nil
	case ast.KindReference:
		name, err := res.componentName(t.Ref)
		if err != nil {
			return nil, err
		}
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil), nil
	case ast.KindPrimitive:
		return primitiveSchema(t.Primitive), nil
	}
	return nil, generationErrorf("unmapped type descriptor %s", t)
}

func primitiveSchema(p ast.Primitive) *openapi3.SchemaRef {
	switch p {
	case ast.PrimString:
		return openapi3.NewStringSchema().NewRef()
	case ast.PrimI32, ast.PrimU32:
		return openapi3.NewInt32Schema().NewRef()
	case ast.PrimI64, ast.PrimU64:
		return openapi3.NewInt64Schema().NewRef()
	case ast.PrimF64:
		return openapi3.NewFloat64Schema().NewRef()
	case ast.PrimBool:
		return openapi3.NewBoolSchema().NewRef()
	case ast.PrimDateTime:
		return openapi3.NewDateTimeSchema().NewRef()
	case ast.PrimBytes:
		return openapi3.NewBytesSchema().NewRef()
	}
	return openapi3.NewStringSchema().NewRef()
}
