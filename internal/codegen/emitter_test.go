package codegen

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const emitterSource = `
[pub User: {
    GET "/api/user/{id}" => {
        Query: { id: i64, }
        Response: { name: String, }
    }
}]
[Audit: {
    POST "/internal/audit" => {
        Request: { event: String, }
    }
}]`

func TestGenerateWritesTree(t *testing.T) {
	t.Parallel()

	endpoints := compile(t, emitterSource)
	out := t.TempDir()

	res, err := Generate(context.Background(), endpoints, Options{OutDir: out, Force: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	wantRel := []string{
		"internal/audit/doc.go",
		"internal/audit/post_internal_audit.go",
		"user/doc.go",
		"user/get_api_user_id.go",
	}
	gotRel := make([]string, 0, len(res.Planned))
	for _, p := range res.Planned {
		gotRel = append(gotRel, p.RelPath)
	}
	if !reflect.DeepEqual(gotRel, wantRel) {
		t.Fatalf("plan mismatch:\nwant %v\ngot  %v", wantRel, gotRel)
	}

	for _, rel := range wantRel {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("missing written file %s: %v", rel, err)
		}
	}
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	endpoints := compile(t, emitterSource)
	out := filepath.Join(t.TempDir(), "never-created")

	res, err := Generate(context.Background(), endpoints, Options{OutDir: out, DryRun: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Planned) == 0 {
		t.Fatalf("expected planned files")
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatalf("dry-run must not create the output directory")
	}
}

func TestGenerateRefusesNonEmptyDir(t *testing.T) {
	t.Parallel()

	endpoints := compile(t, emitterSource)
	out := t.TempDir()
	if err := os.WriteFile(filepath.Join(out, "existing.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	if _, err := Generate(context.Background(), endpoints, Options{OutDir: out}); err == nil {
		t.Fatalf("expected error for non-empty output directory without force")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	endpoints := compile(t, emitterSource)

	dirA := t.TempDir()
	dirB := t.TempDir()
	if _, err := Generate(context.Background(), endpoints, Options{OutDir: dirA, Force: true}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := Generate(context.Background(), endpoints, Options{OutDir: dirB, Force: true}); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rel := "user/get_api_user_id.go"
	a, err := os.ReadFile(filepath.Join(dirA, rel))
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dirB, rel))
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("generated output differs between runs")
	}
}

func TestGenerateRequiresOutDir(t *testing.T) {
	t.Parallel()

	endpoints := compile(t, emitterSource)
	if _, err := Generate(context.Background(), endpoints, Options{}); err == nil {
		t.Fatalf("expected error for missing out dir")
	}
}
