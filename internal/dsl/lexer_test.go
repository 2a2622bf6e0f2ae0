package dsl

import (
	"testing"
)

func TestLexBasicTokens(t *testing.T) {
	t.Parallel()

	src := `[pub User: { GET "/api/user" => { } }]`
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}

	want := []TokenKind{
		LBRACKET, IDENT, IDENT, COLON, LBRACE,
		IDENT, STRING, ARROW, LBRACE, RBRACE,
		RBRACE, RBRACKET, EOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("token count: want %d got %d (%v)", len(want), len(tokens), tokens)
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: want %v got %v (%q)", i, kind, tokens[i].Kind, tokens[i].Text)
		}
	}
}

func TestLexStringLiteral(t *testing.T) {
	t.Parallel()

	tokens, err := Lex(`"camelCase"`)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if tokens[0].Kind != STRING || tokens[0].Text != "camelCase" {
		t.Fatalf("want STRING %q, got %v %q", "camelCase", tokens[0].Kind, tokens[0].Text)
	}
}

func TestLexSkipsComments(t *testing.T) {
	t.Parallel()

	src := "foo // trailing comment\n// full line\nbar"
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("want 3 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Text != "foo" || tokens[1].Text != "bar" {
		t.Fatalf("unexpected idents: %q %q", tokens[0].Text, tokens[1].Text)
	}
	if tokens[1].Pos.Line != 3 {
		t.Errorf("bar line: want 3 got %d", tokens[1].Pos.Line)
	}
}

func TestLexPositions(t *testing.T) {
	t.Parallel()

	tokens, err := Lex("a\n  b")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	if tokens[0].Pos.Line != 1 || tokens[0].Pos.Col != 1 {
		t.Errorf("a position: got %s", tokens[0].Pos)
	}
	if tokens[1].Pos.Line != 2 || tokens[1].Pos.Col != 3 {
		t.Errorf("b position: got %s", tokens[1].Pos)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	t.Parallel()

	_, err := Lex(`"never closed`)
	if err == nil {
		t.Fatalf("expected error for unterminated string")
	}
	if err.Pos.Line != 1 {
		t.Errorf("error line: want 1 got %d", err.Pos.Line)
	}
}

func TestLexArrowAndPunctuation(t *testing.T) {
	t.Parallel()

	tokens, err := Lex("=> ? , < > ( )")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	want := []TokenKind{ARROW, QUESTION, COMMA, LANGLE, RANGLE, LPAREN, RPAREN, EOF}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: want %v got %v", i, kind, tokens[i].Kind)
		}
	}
}

func TestLexIllegalRune(t *testing.T) {
	t.Parallel()

	_, err := Lex("foo @ bar")
	if err == nil {
		t.Fatalf("expected error for illegal rune")
	}
}
