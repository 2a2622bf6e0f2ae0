package dsl

import (
	"strings"
)

// Verbs accepted in method position.
var validVerbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"}

// The five reserved structure roles. Anything else in structure-head
// position must be introduced with `struct` or `enum`; a near-miss like
// `Resquest` is a hard syntax error rather than a silent generic struct.
var roleNames = []string{"Header", "Request", "Response", "ReqRes", "Query"}

func isVerb(s string) bool {
	for _, v := range validVerbs {
		if v == s {
			return true
		}
	}
	return false
}

func isRole(s string) bool {
	for _, r := range roleNames {
		if r == s {
			return true
		}
	}
	return false
}

type parser struct {
	toks []Token
	i    int
}

func (p *parser) cur() Token { return p.toks[p.i] }

func (p *parser) advance() Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) accept(kind TokenKind) bool {
	if p.cur().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind, context string) (Token, *SyntaxError) {
	t := p.cur()
	if t.Kind != kind {
		return t, syntaxErrorf(t.Pos, "expected %s in %s, found %s", kind, context, t)
	}
	return p.advance(), nil
}

// Parse tokenizes and parses a full DSL source text into the raw block
// tree. Errors inside one endpoint block abandon that block and resume at
// the next top-level `[`, so a single run reports problems from every
// endpoint it can reach. The returned slice holds *SyntaxError values.
func Parse(src string) (*Unit, []error) {
	tokens, lerr := Lex(src)
	if lerr != nil {
		return &Unit{}, []error{lerr}
	}
	p := &parser{toks: tokens}
	unit := &Unit{}
	var diags []error

	for {
		for p.accept(COMMA) {
		}
		if p.cur().Kind == EOF {
			break
		}
		ep, err := p.parseEndpoint()
		if err != nil {
			diags = append(diags, err)
			p.recoverToNextEndpoint()
			continue
		}
		unit.Endpoints = append(unit.Endpoints, ep)
	}
	return unit, diags
}

// recoverToNextEndpoint skips tokens until a plausible top-level `[`.
// Depth is floored at zero so a stray closer cannot push recovery past the
// next endpoint block.
func (p *parser) recoverToNextEndpoint() {
	depth := 0
	for p.cur().Kind != EOF {
		switch p.cur().Kind {
		case LBRACKET:
			if depth == 0 {
				return
			}
			depth++
		case LBRACE:
			depth++
		case RBRACKET, RBRACE:
			if depth > 0 {
				depth--
			}
		}
		p.advance()
	}
}

func (p *parser) parseEndpoint() (*EndpointBlock, *SyntaxError) {
	open, err := p.expect(LBRACKET, "endpoint block")
	if err != nil {
		return nil, err
	}
	ep := &EndpointBlock{Pos: open.Pos}

	if p.cur().Kind == IDENT && p.cur().Text == "pub" {
		ep.Public = true
		p.advance()
	}
	name, err := p.expect(IDENT, "endpoint name")
	if err != nil {
		return nil, err
	}
	ep.Name = name.Text
	if _, err := p.expect(COLON, "endpoint header"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE, "endpoint body"); err != nil {
		return nil, err
	}
	for p.cur().Kind != RBRACE {
		if p.cur().Kind == EOF {
			return nil, syntaxErrorf(open.Pos, "endpoint %q block not terminated", ep.Name)
		}
		m, err := p.parseMethod()
		if err != nil {
			return nil, err
		}
		ep.Methods = append(ep.Methods, m)
	}
	p.advance() // RBRACE
	if _, err := p.expect(RBRACKET, "endpoint block"); err != nil {
		return nil, err
	}
	return ep, nil
}

func (p *parser) parseMethod() (*MethodBlock, *SyntaxError) {
	verb, err := p.expect(IDENT, "method declaration")
	if err != nil {
		return nil, err
	}
	if !isVerb(verb.Text) {
		return nil, syntaxErrorf(verb.Pos, "unknown HTTP verb %q (expected one of %s)", verb.Text, strings.Join(validVerbs, ", "))
	}
	path, err := p.expect(STRING, "method path template")
	if err != nil {
		return nil, err
	}
	if err := validatePathTemplate(path.Text, path.Pos); err != nil {
		return nil, err
	}
	if _, err := p.expect(ARROW, "method declaration"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE, "method body"); err != nil {
		return nil, err
	}
	m := &MethodBlock{Pos: verb.Pos, Verb: verb.Text, Path: path.Text, PathPos: path.Pos}
	for p.cur().Kind != RBRACE {
		if p.cur().Kind == EOF {
			return nil, syntaxErrorf(verb.Pos, "method %s %q block not terminated", verb.Text, path.Text)
		}
		d, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		m.Decls = append(m.Decls, d)
	}
	p.advance() // RBRACE
	return m, nil
}

func (p *parser) parseAttr() (*AttrNode, *SyntaxError) {
	open := p.advance() // LBRACKET
	lit, err := p.expect(STRING, "attribute")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACKET, "attribute"); err != nil {
		return nil, err
	}
	return &AttrNode{Pos: open.Pos, Literal: lit.Text}, nil
}

func (p *parser) parseDecl() (*Decl, *SyntaxError) {
	var attr *AttrNode
	if p.cur().Kind == LBRACKET {
		a, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		attr = a
	}

	head, err := p.expect(IDENT, "structure declaration")
	if err != nil {
		return nil, err
	}

	switch {
	case isRole(head.Text):
		d := &Decl{Pos: head.Pos, Attr: attr, Kind: DeclRole, Name: head.Text}
		if _, err := p.expect(COLON, "role block"); err != nil {
			return nil, err
		}
		if d.Fields, err = p.parseFieldBlock(head.Text); err != nil {
			return nil, err
		}
		return d, nil
	case head.Text == "struct":
		name, err := p.expect(IDENT, "struct declaration")
		if err != nil {
			return nil, err
		}
		d := &Decl{Pos: head.Pos, Attr: attr, Kind: DeclStruct, Name: name.Text}
		if d.Fields, err = p.parseFieldBlock(name.Text); err != nil {
			return nil, err
		}
		return d, nil
	case head.Text == "enum":
		name, err := p.expect(IDENT, "enum declaration")
		if err != nil {
			return nil, err
		}
		d := &Decl{Pos: head.Pos, Attr: attr, Kind: DeclEnum, Name: name.Text}
		if d.Variants, err = p.parseVariantBlock(name.Text); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, syntaxErrorf(head.Pos,
			"unknown structure role %q (expected %s, struct, or enum)",
			head.Text, strings.Join(roleNames, ", "))
	}
}

func (p *parser) parseFieldBlock(owner string) ([]*FieldNode, *SyntaxError) {
	open, err := p.expect(LBRACE, "field block")
	if err != nil {
		return nil, err
	}
	var fields []*FieldNode
	for p.cur().Kind != RBRACE {
		if p.cur().Kind == EOF {
			return nil, syntaxErrorf(open.Pos, "field block of %q not terminated", owner)
		}
		f, err := p.parseField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	p.advance() // RBRACE
	return fields, nil
}

func (p *parser) parseField() (*FieldNode, *SyntaxError) {
	var attr *AttrNode
	if p.cur().Kind == LBRACKET {
		a, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		attr = a
	}
	name, err := p.expect(IDENT, "field declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "field declaration"); err != nil {
		return nil, err
	}
	f := &FieldNode{Pos: name.Pos, Attr: attr, Name: name.Text}
	f.Optional = p.accept(QUESTION)
	if f.Type, err = p.collectTypeTokens(); err != nil {
		return nil, err
	}
	p.accept(COMMA)
	return f, nil
}

// collectTypeTokens gathers the raw token run of one type expression. Only
// identifiers and angle brackets belong to a type; classification of the
// run happens in the AST builder.
func (p *parser) collectTypeTokens() ([]Token, *SyntaxError) {
	if p.cur().Kind != IDENT {
		return nil, syntaxErrorf(p.cur().Pos, "expected type name, found %s", p.cur())
	}
	var run []Token
	depth := 0
	for {
		switch p.cur().Kind {
		case IDENT:
			run = append(run, p.advance())
		case LANGLE:
			depth++
			run = append(run, p.advance())
		case RANGLE:
			if depth == 0 {
				return nil, syntaxErrorf(p.cur().Pos, "unexpected '>' in type expression")
			}
			depth--
			run = append(run, p.advance())
		default:
			return run, nil
		}
	}
}

func (p *parser) parseVariantBlock(owner string) ([]*VariantNode, *SyntaxError) {
	open, err := p.expect(LBRACE, "enum body")
	if err != nil {
		return nil, err
	}
	var variants []*VariantNode
	for p.cur().Kind != RBRACE {
		if p.cur().Kind == EOF {
			return nil, syntaxErrorf(open.Pos, "enum %q block not terminated", owner)
		}
		v, err := p.parseVariant()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	p.advance() // RBRACE
	return variants, nil
}

func (p *parser) parseVariant() (*VariantNode, *SyntaxError) {
	var attr *AttrNode
	if p.cur().Kind == LBRACKET {
		a, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		attr = a
	}
	name, err := p.expect(IDENT, "enum variant")
	if err != nil {
		return nil, err
	}
	v := &VariantNode{Pos: name.Pos, Attr: attr, Name: name.Text}
	switch p.cur().Kind {
	case LPAREN:
		p.advance()
		v.HasPayload = true
		v.PayloadOpt = p.accept(QUESTION)
		if v.PayloadType, err = p.collectTypeTokens(); err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "variant payload"); err != nil {
			return nil, err
		}
	case LBRACE:
		if v.Fields, err = p.parseFieldBlock(name.Text); err != nil {
			return nil, err
		}
	}
	p.accept(COMMA)
	return v, nil
}

// validatePathTemplate rejects unbalanced or empty `{}` parameters and
// duplicated parameter names at the grammar stage.
func validatePathTemplate(path string, pos Pos) *SyntaxError {
	seen := map[string]bool{}
	depth := 0
	var name strings.Builder
	for _, r := range path {
		switch r {
		case '{':
			depth++
			if depth > 1 {
				return syntaxErrorf(pos, "path template %q: nested '{'", path)
			}
			name.Reset()
		case '}':
			if depth == 0 {
				return syntaxErrorf(pos, "path template %q: '}' without matching '{'", path)
			}
			depth--
			param := name.String()
			if param == "" {
				return syntaxErrorf(pos, "path template %q: empty parameter name", path)
			}
			if !isIdentStart(param[0]) {
				return syntaxErrorf(pos, "path template %q: invalid parameter name %q", path, param)
			}
			for i := 1; i < len(param); i++ {
				if !isIdentPart(param[i]) {
					return syntaxErrorf(pos, "path template %q: invalid parameter name %q", path, param)
				}
			}
			if seen[param] {
				return syntaxErrorf(pos, "path template %q: duplicate parameter %q", path, param)
			}
			seen[param] = true
		default:
			if depth == 1 {
				name.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return syntaxErrorf(pos, "path template %q: '{' without matching '}'", path)
	}
	return nil
}

// PathParams lists the `{name}` parameters of a validated template in
// order of appearance.
func PathParams(path string) []string {
	var params []string
	var name strings.Builder
	inParam := false
	for _, r := range path {
		switch {
		case r == '{':
			inParam = true
			name.Reset()
		case r == '}' && inParam:
			inParam = false
			params = append(params, name.String())
		case inParam:
			name.WriteRune(r)
		}
	}
	return params
}
