package dsl

// lexer walks the raw source byte by byte. The grammar is ASCII-only at the
// structural level; identifiers and string literals may carry arbitrary
// UTF-8 payload bytes, which pass through untouched.
type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) pos() Pos { return Pos{Offset: l.off, Line: l.line, Col: l.col} }

func (l *lexer) peek() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) peekAt(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) advance() byte {
	c := l.src[l.off]
	l.off++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for l.off < len(l.src) {
		switch c := l.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for l.off < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) next() (Token, *SyntaxError) {
	l.skipSpaceAndComments()
	start := l.pos()
	if l.off >= len(l.src) {
		return Token{Kind: EOF, Pos: start}, nil
	}

	c := l.peek()
	switch {
	case isIdentStart(c):
		begin := l.off
		for l.off < len(l.src) && isIdentPart(l.peek()) {
			l.advance()
		}
		return Token{Kind: IDENT, Text: l.src[begin:l.off], Pos: start}, nil
	case c == '"':
		l.advance()
		begin := l.off
		for l.off < len(l.src) {
			if l.peek() == '"' {
				text := l.src[begin:l.off]
				l.advance()
				return Token{Kind: STRING, Text: text, Pos: start}, nil
			}
			if l.peek() == '\n' {
				return Token{Kind: ILLEGAL, Pos: start}, syntaxErrorf(start, "string literal not terminated before end of line")
			}
			l.advance()
		}
		return Token{Kind: ILLEGAL, Pos: start}, syntaxErrorf(start, "string literal not terminated")
	}

	single := map[byte]TokenKind{
		'[': LBRACKET, ']': RBRACKET,
		'{': LBRACE, '}': RBRACE,
		'(': LPAREN, ')': RPAREN,
		':': COLON, ',': COMMA,
		'?': QUESTION,
		'<': LANGLE, '>': RANGLE,
	}
	if kind, ok := single[c]; ok {
		l.advance()
		return Token{Kind: kind, Text: string(c), Pos: start}, nil
	}
	if c == '=' && l.peekAt(1) == '>' {
		l.advance()
		l.advance()
		return Token{Kind: ARROW, Text: "=>", Pos: start}, nil
	}

	return Token{Kind: ILLEGAL, Pos: start}, syntaxErrorf(start, "unexpected character %q", string(c))
}

// Lex tokenizes the full source. It stops at the first lexical error since
// token stream recovery below the grammar level is not worth the noise.
func Lex(src string) ([]Token, *SyntaxError) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
	}
}
