package codegen

import (
	"fmt"
	"strings"

	"github.com/TylerAldrich814/restify/internal/ast"
)

// docString accumulates generated documentation lines and renders them as a
// Go doc comment attached to the emitted definition.
type docString struct {
	lines []string
}

func newDocString() *docString { return &docString{} }

func (d *docString) add(line string) *docString {
	d.lines = append(d.lines, line)
	return d
}

func (d *docString) addf(format string, args ...any) *docString {
	return d.add(fmt.Sprintf(format, args...))
}

func (d *docString) blank() *docString { return d.add("") }

// fieldList appends one bullet per field, declared type included, matching
// the field listing the DSL author wrote.
func (d *docString) fieldList(fields []*ast.Field) *docString {
	for _, f := range fields {
		d.addf("  - %s: %s", f.Name, f.Type.String())
	}
	return d
}

// render emits the comment block, trimming trailing blank lines.
func (d *docString) render() string {
	lines := d.lines
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
