package codegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/tools/imports"

	"github.com/TylerAldrich814/restify/internal/ast"
)

// Options controls how generated client packages are written out.
type Options struct {
	OutDir  string // required; target directory for the generated tree
	Force   bool   // overwrite a non-empty output directory
	DryRun  bool   // don't write, only plan
	Verbose bool
}

// PlannedFile describes a file the generator intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files of one generation run.
type Result struct {
	Planned []PlannedFile
}

// Generate renders every endpoint of the analyzed program into Go source
// files under opts.OutDir. The plan is deterministic: the same input
// always yields the same files in the same order with the same bytes.
func Generate(ctx context.Context, endpoints []*ast.Endpoint, opts Options) (*Result, error) {
	_ = ctx
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, generationErrorf("output directory is required")
	}

	files := map[string][]byte{}
	for _, ep := range endpoints {
		rendered, err := RenderEndpoint(ep)
		if err != nil {
			return nil, err
		}
		for rel, content := range rendered {
			if _, dup := files[rel]; dup {
				return nil, generationErrorf("endpoint %q produced colliding output file %q", ep.Name, rel)
			}
			formatted, err := formatSource(rel, content)
			if err != nil {
				return nil, err
			}
			files[rel] = formatted
		}
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{Planned: planned}, nil
}

// formatSource runs the rendered file through the gofmt layout pass.
// FormatOnly keeps the import set exactly as rendered, so formatting can
// never silently add or drop a dependency of the generated code.
func formatSource(rel string, src []byte) ([]byte, error) {
	out, err := imports.Process(rel, src, &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, generationErrorf("format %s: %v", rel, err)
	}
	return out, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("codegen: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
