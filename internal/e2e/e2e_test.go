package e2e

import (
	"crypto/sha256"
	"encoding/hex"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	cli "github.com/TylerAldrich814/restify/internal/cli"
)

// Endpoint definition exercising every structure kind end to end.
const sampleDefinition = `
[pub User: {
    GET "/api/user/{id}" => {
        ["camelCase"]
        Query: {
            id: i64,
            verbose: ?bool,
        }
        ["camelCase"]
        Response: {
            userName: String,
            profile: Profile,
            ["isError"] failure: ?String,
        }
        struct Profile {
            bio: String,
            links: Vec<String>,
        }
        enum Plan {
            Free,
            Paid(u32),
        }
    }
}]
[Audit: {
    POST "/internal/audit" => {
        Header: {
            ["X-Trace"] trace: ?String,
        }
        Request: {
            event: String,
            at: DateTime,
        }
    }
}]
`

func writeTempDefinition(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "api.rfy")
	if err := os.WriteFile(p, []byte(sampleDefinition), 0o600); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	var list []string
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		list = append(list, rel)
		_, _ = h.Write([]byte(rel))
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		_, _ = h.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	sort.Strings(list)
	return list, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_Generate_Deterministic(t *testing.T) {
	t.Parallel()
	input := writeTempDefinition(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	runCLI(t, "generate", "--input", input, "--out", dir1, "--force")
	runCLI(t, "generate", "--input", input, "--out", dir2, "--force")

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	if !slicesEqual(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v\nsum1=%s\nsum2=%s", files1, files2, sum1, sum2)
	}

	want := []string{
		"internal/audit/doc.go",
		"internal/audit/post_internal_audit.go",
		"user/doc.go",
		"user/get_api_user_id.go",
	}
	if !slicesEqual(files1, want) {
		t.Fatalf("generated tree mismatch:\nwant %v\ngot  %v", want, files1)
	}
}

func TestE2E_GeneratedSourcesParse(t *testing.T) {
	t.Parallel()
	input := writeTempDefinition(t)
	out := t.TempDir()

	runCLI(t, "generate", "--input", input, "--out", out, "--force")

	fset := token.NewFileSet()
	err := filepath.WalkDir(out, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return err
		}
		src, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		if _, perr := parser.ParseFile(fset, path, src, parser.ParseComments); perr != nil {
			t.Errorf("generated file does not parse: %v", perr)
		}
		if !strings.HasPrefix(string(src), "// Code generated by restify. DO NOT EDIT.") {
			t.Errorf("missing generated-code header in %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func TestE2E_CheckAndExport(t *testing.T) {
	t.Parallel()
	input := writeTempDefinition(t)
	exportPath := filepath.Join(t.TempDir(), "openapi.yaml")

	runCLI(t, "check", "--input", input)
	runCLI(t, "export", "--input", input, "--out", exportPath, "--format", "yaml")

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	doc := string(data)
	for _, want := range []string{"openapi: 3.0.3", "/api/user/{id}", "/internal/audit", "GETResponse"} {
		if !strings.Contains(doc, want) {
			t.Errorf("export missing %q", want)
		}
	}
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
