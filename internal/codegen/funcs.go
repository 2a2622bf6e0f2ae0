package codegen

import (
	"github.com/TylerAldrich814/restify/internal/ast"
)

// methodShape collects the role structures a method's generated functions
// are built from. Analysis guarantees at most one structure per role.
type methodShape struct {
	query    *ast.DataStructure
	request  *ast.DataStructure
	header   *ast.DataStructure
	response *ast.DataStructure
}

func shapeOf(m *ast.Method) methodShape {
	var s methodShape
	for _, ds := range m.Structs() {
		switch ds.Role {
		case ast.RoleQuery:
			s.query = ds
		case ast.RoleRequest:
			s.request = ds
		case ast.RoleHeader:
			s.header = ds
		case ast.RoleResponse:
			s.response = ds
		case ast.RoleReqRes:
			if s.request == nil {
				s.request = ds
			}
			if s.response == nil {
				s.response = ds
			}
		}
	}
	return s
}

// paramSource is where one path parameter's value comes from at call time.
type paramSource struct {
	param string
	recv  string
	field *ast.Field
}

func pathParamSources(m *ast.Method, s methodShape) []paramSource {
	sources := make([]paramSource, 0, len(m.PathParams))
	for _, param := range m.PathParams {
		src := paramSource{param: param}
		if s.query != nil {
			for _, f := range s.query.Fields {
				if f.Name == param {
					src.recv, src.field = "q", f
				}
			}
		}
		if src.field == nil && s.request != nil {
			for _, f := range s.request.Fields {
				if f.Name == param {
					src.recv, src.field = "r", f
				}
			}
		}
		sources = append(sources, src)
	}
	return sources
}

func renderMethodFuncs(r *fileRenderer, res *typeResolver, m *ast.Method) error {
	s := shapeOf(m)
	sources := pathParamSources(m, s)

	verb := m.Verb

	requestInPath := false
	for _, src := range sources {
		if src.recv == "r" {
			requestInPath = true
		}
	}

	uriArgs := ""
	uriCall := ""
	if s.query != nil {
		uriArgs += "q " + methodTypeName(m.Verb, s.query.Name)
		uriCall += "q"
	}
	if requestInPath {
		if uriArgs != "" {
			uriArgs += ", "
			uriCall += ", "
		}
		uriArgs += "r " + methodTypeName(m.Verb, s.request.Name)
		uriCall += "r"
	}

	renderURIFunc(r, m, s, sources, verb, uriArgs)
	if err := renderRequestFunc(r, m, s, verb, uriArgs, uriCall, requestInPath); err != nil {
		return err
	}
	renderResponseFunc(r, m, s, verb)
	return nil
}

func renderURIFunc(r *fileRenderer, m *ast.Method, s methodShape, sources []paramSource, verb, uriArgs string) {
	doc := newDocString().
		addf("%sURI builds the request path for %s %q, substituting path", verb, m.Verb, m.Path).
		add("parameters and appending the URL-encoded query string.")
	hasOptionalParam := false
	for _, src := range sources {
		if src.field != nil && src.field.Optional {
			hasOptionalParam = true
		}
	}
	if hasOptionalParam {
		doc.add("An unset optional path parameter is an error, never an empty segment.")
	}
	r.p(doc.render())

	r.pf("func %sURI(%s) (string, error) {\n", verb, uriArgs)
	r.pf("\tp := %q\n", m.Path)
	for _, src := range sources {
		expr := src.recv + "." + goFieldName(src.field)
		if src.field.Optional {
			r.use("fmt")
			r.pf("\tif %s == nil {\n", expr)
			r.pf("\t\treturn \"\", fmt.Errorf(\"path parameter %%q is unset\", %q)\n", src.param)
			r.p("\t}\n")
			expr = "*" + expr
		}
		r.use("strings")
		r.use("net/url")
		r.use(runtimeImport)
		r.pf("\tp = strings.Replace(p, %q, url.PathEscape(runtime.FormatValue(%s)), 1)\n",
			"{"+src.param+"}", expr)
	}
	if s.query != nil {
		r.p("\tvals, err := q.Values()\n\tif err != nil {\n\t\treturn \"\", err\n\t}\n")
		for _, src := range sources {
			if src.recv == "q" {
				r.pf("\tvals.Del(%q)\n", src.field.WireName)
			}
		}
		r.p("\tif enc := vals.Encode(); enc != \"\" {\n\t\tp += \"?\" + enc\n\t}\n")
	}
	r.p("\treturn p, nil\n}\n\n")
}

func renderRequestFunc(r *fileRenderer, m *ast.Method, s methodShape, verb, uriArgs, uriCall string, requestInPath bool) error {
	r.use("net/http")

	args := "baseURL string"
	if s.header != nil {
		args += ", h " + methodTypeName(m.Verb, s.header.Name)
	}
	if uriArgs != "" {
		args += ", " + uriArgs
	}
	if s.request != nil && !requestInPath {
		args += ", r " + methodTypeName(m.Verb, s.request.Name)
	}

	doc := newDocString().
		addf("New%sRequest assembles an *http.Request for %s %q.", verb, m.Verb, m.Path)
	if s.request != nil {
		doc.add("The request body is validated and JSON-encoded before sending.")
	}
	r.p(doc.render())

	r.pf("func New%sRequest(%s) (*http.Request, error) {\n", verb, args)
	r.pf("\turi, err := %sURI(%s)\n", verb, uriCall)
	r.p("\tif err != nil {\n\t\treturn nil, err\n\t}\n")

	body := "nil"
	if s.request != nil {
		r.use("bytes")
		r.use(runtimeImport)
		r.p("\tif err := runtime.Validate(r); err != nil {\n\t\treturn nil, err\n\t}\n")
		r.p("\tpayload, err := r.Encode()\n\tif err != nil {\n\t\treturn nil, err\n\t}\n")
		body = "bytes.NewReader(payload)"
	}

	verbConst, ok := verbConstants[m.Verb]
	if !ok {
		return generationErrorf("unsupported HTTP verb %q survived analysis", m.Verb)
	}
	r.use(runtimeImport)
	r.pf("\treq, err := http.NewRequest(%s, runtime.JoinURL(baseURL, uri), %s)\n", verbConst, body)
	r.p("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	if s.request != nil {
		r.p("\treq.Header.Set(\"Content-Type\", \"application/json\")\n")
	}
	if s.header != nil {
		r.p("\th.Apply(req)\n")
	}
	r.p("\treturn req, nil\n}\n\n")
	return nil
}

func renderResponseFunc(r *fileRenderer, m *ast.Method, s methodShape, verb string) {
	if s.response == nil {
		return
	}
	r.use("net/http")
	typeName := methodTypeName(m.Verb, s.response.Name)

	doc := newDocString().
		addf("Parse%sResponse decodes the response body into %s.", verb, typeName).
		add("The body is read but not closed.")
	r.p(doc.render())
	r.pf("func Parse%sResponse(res *http.Response) (*%s, error) {\n", verb, typeName)
	r.pf("\treturn Decode%s(res.Body)\n", typeName)
	r.p("}\n\n")
}
