package codegen

import (
	"strings"
	"testing"

	"github.com/TylerAldrich814/restify/internal/analyzer"
	"github.com/TylerAldrich814/restify/internal/ast"
	"github.com/TylerAldrich814/restify/internal/dsl"
)

func compile(t *testing.T, src string) []*ast.Endpoint {
	t.Helper()
	unit, diags := dsl.Parse(src)
	if len(diags) > 0 {
		t.Fatalf("parse: %v", diags)
	}
	endpoints, buildDiags := ast.Build(unit)
	if len(buildDiags) > 0 {
		t.Fatalf("build: %v", buildDiags)
	}
	if errs := analyzer.Analyze(endpoints); len(errs) > 0 {
		t.Fatalf("analyze: %v", errs)
	}
	return endpoints
}

func renderOne(t *testing.T, src string) map[string]string {
	t.Helper()
	endpoints := compile(t, src)
	if len(endpoints) != 1 {
		t.Fatalf("want 1 endpoint, got %d", len(endpoints))
	}
	raw, err := RenderEndpoint(endpoints[0])
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	files := make(map[string]string, len(raw))
	for rel, content := range raw {
		formatted, err := formatSource(rel, content)
		if err != nil {
			t.Fatalf("format %s: %v\n%s", rel, err, content)
		}
		files[rel] = string(formatted)
	}
	return files
}

// containsSrc looks for a snippet in formatted source, collapsing runs of
// whitespace so gofmt column alignment does not matter.
func containsSrc(src, snippet string) bool {
	return strings.Contains(collapseSpace(src), collapseSpace(snippet))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mustFile(t *testing.T, files map[string]string, rel string) string {
	t.Helper()
	content, ok := files[rel]
	if !ok {
		keys := make([]string, 0, len(files))
		for k := range files {
			keys = append(keys, k)
		}
		t.Fatalf("missing file %s (have %v)", rel, keys)
	}
	return content
}

func TestRenderQueryAndResponse(t *testing.T) {
	t.Parallel()

	src := `
[pub User: {
    GET "/api/user/{id}" => {
        Query: {
            id: i64,
            verbose: ?bool,
        }
        Response: {
            name: String,
            lastSeen: ?DateTime,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "user/get_api_user_id.go")

	for _, want := range []string{
		"// Code generated by restify. DO NOT EDIT.",
		"package user",
		"type GETQuery struct {",
		"Id int64 `schema:\"id\"`",
		"Verbose *bool `schema:\"verbose\"`",
		"type GETResponse struct {",
		"Name string `json:\"name\"`",
		"LastSeen *time.Time `json:\"lastSeen,omitempty\"`",
		"func (v GETQuery) Values() (url.Values, error) {",
		"func DecodeGETResponse(r io.Reader) (*GETResponse, error) {",
		"func GETURI(q GETQuery) (string, error) {",
		`p = strings.Replace(p, "{id}", url.PathEscape(runtime.FormatValue(q.Id)), 1)`,
		`vals.Del("id")`,
		"func NewGETRequest(baseURL string, q GETQuery) (*http.Request, error) {",
		"func ParseGETResponse(res *http.Response) (*GETResponse, error) {",
	} {
		if !containsSrc(got, want) {
			t.Errorf("generated source missing %q:\n%s", want, got)
		}
	}
}

func TestRenderRequestBodyAndHeader(t *testing.T) {
	t.Parallel()

	src := `
[pub User: {
    POST "/api/user" => {
        Header: {
            ["X-Auth-Token"] token: String,
            ["X-Trace"] trace: ?String,
        }
        Request: {
            name: String,
            note: ?String,
        }
        Response: {
            id: i64,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "user/post_api_user.go")

	for _, want := range []string{
		"type POSTHeader struct {",
		"func (v POSTHeader) Apply(req *http.Request) {",
		`req.Header.Set("X-Auth-Token", runtime.FormatValue(v.Token))`,
		"if v.Trace != nil {",
		"func ParsePOSTHeader(h http.Header) (*POSTHeader, error) {",
		"type POSTRequest struct {",
		"Note *string `json:\"note,omitempty\"`",
		"func (v POSTRequest) Encode() ([]byte, error) {",
		"func NewPOSTRequest(baseURL string, h POSTHeader, r POSTRequest) (*http.Request, error) {",
		"if err := runtime.Validate(r); err != nil {",
		`req.Header.Set("Content-Type", "application/json")`,
		"h.Apply(req)",
	} {
		if !containsSrc(got, want) {
			t.Errorf("generated source missing %q:\n%s", want, got)
		}
	}
}

func TestRenderErrorIndicator(t *testing.T) {
	t.Parallel()

	src := `
[pub User: {
    GET "/api/user" => {
        Response: {
            name: String,
            ["isError"] failure: ?String,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "user/get_api_user.go")

	if !containsSrc(got, "func (v *GETResponse) ErrIndicated() bool {") {
		t.Fatalf("missing ErrIndicated accessor:\n%s", got)
	}
	if !containsSrc(got, "return v.Failure != nil") {
		t.Fatalf("expected pointer check for optional indicator:\n%s", got)
	}
}

func TestRenderBareEnum(t *testing.T) {
	t.Parallel()

	src := `
[pub Search: {
    GET "/api/search" => {
        ["snake_case"]
        enum Sort {
            Newest,
            ["legacy-oldest"] Oldest,
        }
        Response: {
            sort: Sort,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "search/get_api_search.go")

	for _, want := range []string{
		"type Sort string",
		`SortNewest Sort = "newest"`,
		`SortOldest Sort = "legacy-oldest"`,
		"Sort Sort `json:\"sort\"`",
	} {
		if !containsSrc(got, want) {
			t.Errorf("generated source missing %q:\n%s", want, got)
		}
	}
}

func TestRenderUnionEnum(t *testing.T) {
	t.Parallel()

	src := `
[pub Jobs: {
    GET "/api/jobs" => {
        enum State {
            Queued,
            Running(u32),
            Finished(?String),
            Failed { code: i32, message: String, },
        }
        Response: {
            state: State,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "jobs/get_api_jobs.go")

	for _, want := range []string{
		"type State struct {",
		"Queued bool `json:\"-\"`",
		"Running *uint32 `json:\"-\"`",
		"Finished *runtime.Optional[string] `json:\"-\"`",
		"Failed *StateFailed `json:\"-\"`",
		"type StateFailed struct {",
		"func (v State) MarshalJSON() ([]byte, error) {",
		"func (v *State) UnmarshalJSON(data []byte) error {",
		`case "Queued":`,
		"if len(obj) != 1 {",
	} {
		if !containsSrc(got, want) {
			t.Errorf("generated source missing %q:\n%s", want, got)
		}
	}
}

func TestRenderPrivateEndpointUnderInternal(t *testing.T) {
	t.Parallel()

	src := `
[Audit: {
    POST "/internal/audit" => {
        Request: { event: String, }
    }
}]`
	files := renderOne(t, src)
	doc := mustFile(t, files, "internal/audit/doc.go")
	mustFile(t, files, "internal/audit/post_internal_audit.go")

	for _, want := range []string{
		"// Code generated by restify. DO NOT EDIT.",
		"Package audit contains generated client bindings for the Audit endpoint.",
		"package audit",
	} {
		if !containsSrc(doc, want) {
			t.Errorf("doc file missing %q:\n%s", want, doc)
		}
	}
}

func TestRenderGenericStructErrorIndicator(t *testing.T) {
	t.Parallel()

	src := `
[pub User: {
    GET "/api/user" => {
        Response: {
            result: Outcome,
        }
        struct Outcome {
            value: String,
            ["isError"] failed: bool,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "user/get_api_user.go")

	if !containsSrc(got, "func (v *GETOutcome) ErrIndicated() bool {") {
		t.Fatalf("missing ErrIndicated accessor on nested structure:\n%s", got)
	}
	if !containsSrc(got, "return runtime.IsSet(v.Failed)") {
		t.Fatalf("expected zero-value check for required indicator:\n%s", got)
	}
}

func TestRenderOptionalPathParamGuard(t *testing.T) {
	t.Parallel()

	src := `
[pub User: {
    GET "/api/user/{id}" => {
        Query: {
            id: ?i64,
        }
    }
}]`
	files := renderOne(t, src)
	got := mustFile(t, files, "user/get_api_user_id.go")

	if !containsSrc(got, "if q.Id == nil {") {
		t.Fatalf("expected nil guard for optional path parameter:\n%s", got)
	}
	if !containsSrc(got, `path parameter %q is unset`) {
		t.Fatalf("expected unset path parameter error:\n%s", got)
	}
}

func TestPathSlugAndPackageName(t *testing.T) {
	t.Parallel()

	if got := pathSlug("/api/user/{id}"); got != "api_user_id" {
		t.Errorf("pathSlug: got %q", got)
	}
	if got := pathSlug("/"); got != "" {
		t.Errorf("pathSlug root: got %q", got)
	}
	if got := (&ast.Endpoint{Name: "UserProfile"}).PackageName(); got != "userprofile" {
		t.Errorf("PackageName: got %q", got)
	}
}
