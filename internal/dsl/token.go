package dsl

import "fmt"

// Pos is a location in DSL source, tracked per token so every diagnostic
// can point back at the offending byte.
type Pos struct {
	Offset int // byte offset from the start of the source
	Line   int // 1-based
	Col    int // 1-based, in bytes
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// IsValid reports whether the position refers to actual source.
func (p Pos) IsValid() bool { return p.Line > 0 }

// TokenKind enumerates the lexical classes of the endpoint DSL.
type TokenKind int

const (
	EOF TokenKind = iota
	IDENT
	STRING // double-quoted literal, Text holds the unquoted value
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	COLON
	COMMA
	QUESTION
	ARROW // =>
	LANGLE
	RANGLE
	ILLEGAL
)

var tokenNames = map[TokenKind]string{
	EOF:      "end of input",
	IDENT:    "identifier",
	STRING:   "string literal",
	LBRACKET: "'['",
	RBRACKET: "']'",
	LBRACE:   "'{'",
	RBRACE:   "'}'",
	LPAREN:   "'('",
	RPAREN:   "')'",
	COLON:    "':'",
	COMMA:    "','",
	QUESTION: "'?'",
	ARROW:    "'=>'",
	LANGLE:   "'<'",
	RANGLE:   "'>'",
	ILLEGAL:  "illegal token",
}

func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is a single lexeme with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Text)
	case STRING:
		return fmt.Sprintf("string %q", t.Text)
	case EOF:
		return "end of input"
	default:
		return t.Kind.String()
	}
}

// SyntaxError reports malformed grammar with the source position where
// lexing or parsing gave up on the enclosing block.
type SyntaxError struct {
	Pos     Pos
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Message)
}

// Position returns the source location of the error.
func (e *SyntaxError) Position() Pos { return e.Pos }

func syntaxErrorf(pos Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
