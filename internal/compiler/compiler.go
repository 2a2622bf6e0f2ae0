// Package compiler drives the full pipeline: parse, build, analyze, and
// generate. It is the programmatic entry point the CLI sits on top of.
package compiler

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TylerAldrich814/restify/internal/analyzer"
	"github.com/TylerAldrich814/restify/internal/ast"
	"github.com/TylerAldrich814/restify/internal/codegen"
	"github.com/TylerAldrich814/restify/internal/dsl"
)

// Unit is one DSL source to compile. ID is a stable handle for logging;
// it defaults to a fresh UUID when empty.
type Unit struct {
	ID     string
	Source string
}

// Options configures a compiler instance.
type Options struct {
	Logger *zap.Logger
}

// Compiler checks DSL sources and generates client packages from them.
type Compiler struct {
	log *zap.Logger
}

func New(opts Options) *Compiler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{log: log}
}

// Diagnostic is a positioned error from any pipeline stage.
type Diagnostic interface {
	error
	Position() dsl.Pos
}

// Diagnostics is the accumulated error set of one run, ordered by source
// position.
type Diagnostics []Diagnostic

func (d Diagnostics) HasErrors() bool { return len(d) > 0 }

func (d Diagnostics) sorted() Diagnostics {
	sort.SliceStable(d, func(i, j int) bool {
		a, b := d[i].Position(), d[j].Position()
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return d
}

func collect(errs []error) Diagnostics {
	var out Diagnostics
	for _, err := range errs {
		if diag, ok := err.(Diagnostic); ok {
			out = append(out, diag)
		} else {
			out = append(out, &unpositioned{err: err})
		}
	}
	return out
}

// unpositioned adapts a stage error that carries no source location.
type unpositioned struct {
	err error
}

func (u *unpositioned) Error() string     { return u.err.Error() }
func (u *unpositioned) Position() dsl.Pos { return dsl.Pos{} }

// Check runs parse, build, and analysis without generating anything.
// The returned endpoints are nil whenever diagnostics are present.
func (c *Compiler) Check(ctx context.Context, unit Unit) ([]*ast.Endpoint, Diagnostics) {
	_ = ctx
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	log := c.log.With(zap.String("unit", unit.ID))

	tree, parseErrs := dsl.Parse(unit.Source)
	if len(parseErrs) > 0 {
		log.Debug("parse failed", zap.Int("errors", len(parseErrs)))
		return nil, collect(parseErrs).sorted()
	}
	log.Debug("parsed", zap.Int("endpoints", len(tree.Endpoints)))

	endpoints, buildErrs := ast.Build(tree)
	if len(buildErrs) > 0 {
		log.Debug("build failed", zap.Int("errors", len(buildErrs)))
		return nil, collect(buildErrs).sorted()
	}
	log.Debug("built", zap.Int("endpoints", len(endpoints)))

	if semErrs := analyzer.Analyze(endpoints); len(semErrs) > 0 {
		log.Debug("analysis failed", zap.Int("errors", len(semErrs)))
		return nil, collect(semErrs).sorted()
	}
	log.Debug("analyzed")
	return endpoints, nil
}

// Compile checks a unit and, when it is clean, writes the generated
// packages. No file is written when any diagnostic is present.
func (c *Compiler) Compile(ctx context.Context, unit Unit, opts codegen.Options) (*codegen.Result, Diagnostics, error) {
	endpoints, diags := c.Check(ctx, unit)
	if diags.HasErrors() {
		return nil, diags, nil
	}
	res, err := codegen.Generate(ctx, endpoints, opts)
	if err != nil {
		return nil, nil, err
	}
	c.log.Debug("generated", zap.Int("files", len(res.Planned)))
	return res, nil, nil
}
