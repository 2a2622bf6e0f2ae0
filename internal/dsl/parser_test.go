package dsl

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) *EndpointBlock {
	t.Helper()
	unit, diags := Parse(src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(unit.Endpoints) != 1 {
		t.Fatalf("want 1 endpoint, got %d", len(unit.Endpoints))
	}
	return unit.Endpoints[0]
}

func TestParseEndpointHeader(t *testing.T) {
	t.Parallel()

	ep := parseOne(t, `[pub User: { GET "/api/user" => { } }]`)
	if !ep.Public {
		t.Errorf("expected public endpoint")
	}
	if ep.Name != "User" {
		t.Errorf("name: want User got %q", ep.Name)
	}
	if len(ep.Methods) != 1 {
		t.Fatalf("want 1 method, got %d", len(ep.Methods))
	}
	m := ep.Methods[0]
	if m.Verb != "GET" || m.Path != "/api/user" {
		t.Errorf("method: got %s %q", m.Verb, m.Path)
	}
}

func TestParsePrivateEndpoint(t *testing.T) {
	t.Parallel()

	ep := parseOne(t, `[Audit: { POST "/internal/audit" => { } }]`)
	if ep.Public {
		t.Errorf("expected private endpoint")
	}
}

func TestParseRoleBlocks(t *testing.T) {
	t.Parallel()

	src := `
[pub User: {
    POST "/api/user" => {
        ["camelCase"]
        Request: {
            userName: String,
            age: ?u32,
        }
        Response: {
            id: i64,
        }
    }
}]`
	ep := parseOne(t, src)
	decls := ep.Methods[0].Decls
	if len(decls) != 2 {
		t.Fatalf("want 2 decls, got %d", len(decls))
	}
	req := decls[0]
	if req.Kind != DeclRole || req.Name != "Request" {
		t.Errorf("first decl: got kind %v name %q", req.Kind, req.Name)
	}
	if req.Attr == nil || req.Attr.Literal != "camelCase" {
		t.Errorf("expected camelCase attribute, got %+v", req.Attr)
	}
	if len(req.Fields) != 2 {
		t.Fatalf("want 2 fields, got %d", len(req.Fields))
	}
	if req.Fields[0].Name != "userName" || req.Fields[0].Optional {
		t.Errorf("field 0: %+v", req.Fields[0])
	}
	if req.Fields[1].Name != "age" || !req.Fields[1].Optional {
		t.Errorf("field 1: %+v", req.Fields[1])
	}
}

func TestParseStructAndEnum(t *testing.T) {
	t.Parallel()

	src := `
[pub Search: {
    GET "/api/search" => {
        struct Filter {
            terms: Vec<String>,
        }
        enum Sort {
            Ascending,
            Descending,
            ["byField"] ByField(String),
            Weighted { factor: f64 },
        }
    }
}]`
	ep := parseOne(t, src)
	decls := ep.Methods[0].Decls
	if decls[0].Kind != DeclStruct || decls[0].Name != "Filter" {
		t.Fatalf("struct decl: %+v", decls[0])
	}
	if got := len(decls[0].Fields[0].Type); got != 4 {
		t.Errorf("Vec<String> token run length: want 4 got %d", got)
	}

	en := decls[1]
	if en.Kind != DeclEnum || en.Name != "Sort" {
		t.Fatalf("enum decl: %+v", en)
	}
	if len(en.Variants) != 4 {
		t.Fatalf("want 4 variants, got %d", len(en.Variants))
	}
	if en.Variants[2].Name != "ByField" || !en.Variants[2].HasPayload {
		t.Errorf("ByField variant: %+v", en.Variants[2])
	}
	if en.Variants[2].Attr == nil || en.Variants[2].Attr.Literal != "byField" {
		t.Errorf("ByField attr: %+v", en.Variants[2].Attr)
	}
	if en.Variants[3].Name != "Weighted" || len(en.Variants[3].Fields) != 1 {
		t.Errorf("Weighted variant: %+v", en.Variants[3])
	}
}

func TestParseOptionalTuplePayload(t *testing.T) {
	t.Parallel()

	src := `
[pub Jobs: {
    GET "/api/jobs" => {
        enum Status {
            Done(?String),
        }
    }
}]`
	ep := parseOne(t, src)
	v := ep.Methods[0].Decls[0].Variants[0]
	if !v.HasPayload || !v.PayloadOpt {
		t.Fatalf("expected optional payload, got %+v", v)
	}
}

func TestParseUnknownRoleIsError(t *testing.T) {
	t.Parallel()

	src := `[pub User: { GET "/api/user" => { Resquest: { id: i64, } } }]`
	_, diags := Parse(src)
	if len(diags) != 1 {
		t.Fatalf("want 1 diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Error(), `unknown structure role "Resquest"`) {
		t.Errorf("unexpected message: %v", diags[0])
	}
}

func TestParseUnknownVerbIsError(t *testing.T) {
	t.Parallel()

	_, diags := Parse(`[pub User: { FETCH "/api/user" => { } }]`)
	if len(diags) != 1 {
		t.Fatalf("want 1 diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Error(), `unknown HTTP verb "FETCH"`) {
		t.Errorf("unexpected message: %v", diags[0])
	}
}

func TestParseRecoversPerEndpoint(t *testing.T) {
	t.Parallel()

	src := `
[pub Broken: {
    GET "/a" => { Resquest: { } }
}]
[pub Fine: {
    GET "/b" => { }
}]`
	unit, diags := Parse(src)
	if len(diags) != 1 {
		t.Fatalf("want 1 diagnostic, got %v", diags)
	}
	if len(unit.Endpoints) != 1 || unit.Endpoints[0].Name != "Fine" {
		t.Fatalf("expected recovery to keep endpoint Fine, got %+v", unit.Endpoints)
	}
}

func TestValidatePathTemplate(t *testing.T) {
	t.Parallel()

	bad := []string{
		"/a/{",
		"/a/}",
		"/a/{}",
		"/a/{x{y}}",
		"/a/{id}/{id}",
		"/a/{9bad}",
	}
	for _, path := range bad {
		if err := validatePathTemplate(path, Pos{Line: 1, Col: 1}); err == nil {
			t.Errorf("expected error for %q", path)
		}
	}
	if err := validatePathTemplate("/a/{id}/b/{name}", Pos{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPathParams(t *testing.T) {
	t.Parallel()

	got := PathParams("/api/{org}/user/{id}")
	if len(got) != 2 || got[0] != "org" || got[1] != "id" {
		t.Fatalf("unexpected params: %v", got)
	}
	if got := PathParams("/api/plain"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
