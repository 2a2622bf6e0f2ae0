package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TylerAldrich814/restify/internal/compiler"
)

// CheckConfig captures the options for the check command.
type CheckConfig struct {
	Input   string
	Verbose bool
}

var checkRunner = runCheck

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate an endpoint definition file without generating code",
		Long:  "Validate an endpoint definition file, reporting every syntax and semantic error with its source position.",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &CheckConfig{
				Input:   strings.TrimSpace(input),
				Verbose: verbose,
			}
			return checkRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("input", "", "Path to the endpoint definition file")

	return cmd
}

func runCheck(ctx context.Context, cfg *CheckConfig) error {
	if cfg.Input == "" {
		return newUsageError("check: --input is required")
	}
	source, err := os.ReadFile(cfg.Input)
	if err != nil {
		return usageErrorf("check: read input %q: %v", cfg.Input, err)
	}

	comp := compiler.New(compiler.Options{Logger: newLogger(cfg.Verbose)})
	unit := compiler.Unit{ID: filepath.Base(cfg.Input), Source: string(source)}

	endpoints, diags := comp.Check(ctx, unit)
	if diags.HasErrors() {
		return reportDiagnostics(cfg.Input, diags)
	}

	methods := 0
	for _, ep := range endpoints {
		methods += len(ep.Methods)
	}
	fmt.Fprintf(os.Stdout, "%s: ok (%d endpoint(s), %d method(s))\n", cfg.Input, len(endpoints), methods)
	return nil
}
