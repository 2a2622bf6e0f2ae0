package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/TylerAldrich814/restify/internal/codegen"
	"github.com/TylerAldrich814/restify/internal/compiler"
)

// ExportConfig captures the options for the export command.
type ExportConfig struct {
	Input   string
	Out     string
	Format  string
	Title   string
	Version string
	Verbose bool
}

var exportRunner = runExport

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an endpoint definition file as an OpenAPI 3 document",
		Long:  "Export an endpoint definition file as an OpenAPI 3 document in YAML or JSON, after full validation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &ExportConfig{}
			var err error
			if cfg.Input, err = cmd.Flags().GetString("input"); err != nil {
				return err
			}
			if cfg.Out, err = cmd.Flags().GetString("out"); err != nil {
				return err
			}
			if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
				return err
			}
			if cfg.Title, err = cmd.Flags().GetString("title"); err != nil {
				return err
			}
			if cfg.Version, err = cmd.Flags().GetString("doc-version"); err != nil {
				return err
			}
			if cfg.Verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
				return err
			}
			return exportRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the endpoint definition file")
	flags.String("out", "", "Output file (stdout when omitted)")
	flags.String("format", "yaml", "Output format (yaml|json)")
	flags.String("title", "", "Document title (defaults to the input file name)")
	flags.String("doc-version", "0.1.0", "Document version")

	return cmd
}

func runExport(ctx context.Context, cfg *ExportConfig) error {
	input := strings.TrimSpace(cfg.Input)
	if input == "" {
		return newUsageError("export: --input is required")
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case "", "yaml", "json":
		if format == "" {
			format = "yaml"
		}
	default:
		return usageErrorf("export: unsupported --format %q (allowed: yaml, json)", cfg.Format)
	}

	source, err := os.ReadFile(input)
	if err != nil {
		return usageErrorf("export: read input %q: %v", input, err)
	}

	comp := compiler.New(compiler.Options{Logger: newLogger(cfg.Verbose)})
	unit := compiler.Unit{ID: filepath.Base(input), Source: string(source)}

	endpoints, diags := comp.Check(ctx, unit)
	if diags.HasErrors() {
		return reportDiagnostics(input, diags)
	}

	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	doc, err := codegen.BuildDocument(title, strings.TrimSpace(cfg.Version), endpoints)
	if err != nil {
		return err
	}

	// kin-openapi types marshal through JSON; YAML output round-trips the
	// JSON form so field names and omissions stay identical across formats.
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode document: %w", err)
	}
	out := append(raw, '\n')
	if format == "yaml" {
		var generic map[string]any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("export: reshape document: %w", err)
		}
		out, err = yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("export: encode document: %w", err)
		}
	}

	target := strings.TrimSpace(cfg.Out)
	if target == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return usageErrorf("export: cannot create parent directory: %v", err)
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return usageErrorf("export: write %q: %v", target, err)
	}
	return nil
}
