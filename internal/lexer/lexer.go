// Package lexer tokenizes JavaScript/TypeScript source a byte at a time,
// in the same low-level, hand-rolled style as the Astro compiler's
// internal/js_scanner/js_scanner.go (which walks bytes directly rather than
// delegating to a general-purpose lexer library — the compiler's own choice
// for this exact concern, extended here into a full tokenizer instead of
// js_scanner's narrow one-off scans). Operator/keyword dispatch and the
// regex-vs-divide disambiguation follow the shape of evanw/esbuild's
// internal/js_lexer (observed via _examples/other_examples's retrieved
// esbuild ts_parser.go: a Token enum, lexer.Next()/Expect() methods, and a
// "previous significant token decides if / starts a regex" heuristic).
package lexer

import (
	"unicode"
	"unicode/utf8"
)

// Kind enumerates token categories. The parser only needs to distinguish
// these coarse categories plus a handful of contextual keywords, not the
// full ECMAScript punctuator table.
type Kind int

const (
	EOF Kind = iota
	Identifier
	PrivateIdentifier // #name
	Keyword
	StringLiteral
	TemplateLiteral
	NumericLiteral
	RegexLiteral
	Punctuator
	Comment
)

// Token is a view into the source buffer: no text is copied.
type Token struct {
	Kind       Kind
	Start, End int // byte offsets, half-open
	Text       []byte
}

var keywords = map[string]bool{
	"async": true, "await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true, "function": true,
	"get": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "module": true, "namespace": true,
	"new": true, "null": true, "of": true, "private": true, "protected": true,
	"public": true, "readonly": true, "return": true, "set": true, "static": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "type": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "declare": true, "abstract": true,
	"as": true, "from": true, "accessor": true, "satisfies": true, "is": true,
	"asserts": true, "keyof": true, "infer": true, "require": true,
}

// IsKeyword reports whether text names an ECMAScript/TypeScript keyword
// recognised by the parser (as opposed to an ordinary identifier).
func IsKeyword(text string) bool { return keywords[text] }

// Lexer tokenizes a source buffer on demand; it holds no parser state.
type Lexer struct {
	src  []byte
	pos  int
	prev Token // last non-comment token, used for regex/divide disambiguation
}

func New(src []byte) *Lexer {
	return &Lexer{src: src}
}

func isIDStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIDPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Next scans and returns the next non-comment token, advancing the
// lexer's position. Comments are available via NextRaw when needed.
func (l *Lexer) Next() Token {
	for {
		t := l.NextRaw()
		if t.Kind != Comment {
			if t.Kind != EOF {
				l.prev = t
			}
			return t
		}
	}
}

// NextRaw scans the next token including comments.
func (l *Lexer) NextRaw() Token {
	l.skipNonCommentWhitespace()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Start: start, End: start}
	}

	c := l.src[l.pos]

	switch {
	case c == '/' && l.peek(1) == '/':
		l.pos += 2
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return l.tok(Comment, start)

	case c == '/' && l.peek(1) == '*':
		l.pos += 2
		for l.pos < len(l.src) && !(l.src[l.pos] == '*' && l.peek(1) == '/') {
			l.pos++
		}
		if l.pos < len(l.src) {
			l.pos += 2
		}
		return l.tok(Comment, start)

	case c == '/' && l.regexAllowed():
		return l.scanRegex(start)

	case c == '"' || c == '\'':
		return l.scanString(start, c)

	case c == '`':
		return l.scanTemplate(start)

	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		return l.scanNumber(start)

	case c == '#':
		l.pos++
		l.scanIdentRest()
		return l.tok(PrivateIdentifier, start)

	default:
		if r, size := utf8.DecodeRune(l.src[l.pos:]); isIDStart(r) {
			l.pos += size
			l.scanIdentRest()
			text := l.src[start:l.pos]
			if IsKeyword(string(text)) {
				return l.tok(Keyword, start)
			}
			return l.tok(Identifier, start)
		}
		return l.scanPunctuator(start)
	}
}

func (l *Lexer) tok(k Kind, start int) Token {
	return Token{Kind: k, Start: start, End: l.pos, Text: l.src[start:l.pos]}
}

func (l *Lexer) peek(ahead int) byte {
	if l.pos+ahead >= len(l.src) {
		return 0
	}
	return l.src[l.pos+ahead]
}

func (l *Lexer) skipNonCommentWhitespace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentRest() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if !isIDPart(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) scanString(start int, quote byte) Token {
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			break
		}
		if c == '\n' {
			break // unterminated; let the parser's re-parse guard catch it
		}
		l.pos++
	}
	return l.tok(StringLiteral, start)
}

// scanTemplate treats the whole template literal — including any ${...}
// substitutions — as a single opaque token. This loses span accuracy for
// expressions nested inside template substitutions: such nested spans are
// not addressable entries.
func (l *Lexer) scanTemplate(start int) Token {
	l.pos++
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
			continue
		case c == '`' && depth == 0:
			l.pos++
			return l.tok(TemplateLiteral, start)
		case c == '$' && l.peek(1) == '{':
			depth++
			l.pos += 2
			continue
		case c == '{' && depth > 0:
			depth++
		case c == '}' && depth > 0:
			depth--
		}
		l.pos++
	}
	return l.tok(TemplateLiteral, start)
}

func (l *Lexer) scanNumber(start int) Token {
	if l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X' || l.peek(1) == 'b' || l.peek(1) == 'B' || l.peek(1) == 'o' || l.peek(1) == 'O') {
		l.pos += 2
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || isHexLetter(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
		return l.tok(NumericLiteral, start)
	}
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.src) && l.src[l.pos] == 'n' { // BigInt suffix
		l.pos++
	}
	return l.tok(NumericLiteral, start)
}

func isHexLetter(b byte) bool {
	return (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (l *Lexer) scanRegex(start int) Token {
	l.pos++
	inClass := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == '[' {
			inClass = true
		} else if c == ']' {
			inClass = false
		} else if c == '/' && !inClass {
			l.pos++
			break
		} else if c == '\n' {
			break
		}
		l.pos++
	}
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if !unicode.IsLetter(r) {
			break
		}
		l.pos += size
	}
	return l.tok(RegexLiteral, start)
}

// regexAllowed implements the classic "what did the previous significant
// token look like" heuristic: a slash starts a regex unless the previous
// token was something a division could follow (an identifier, literal, or
// closing bracket/paren), mirroring esbuild's js_lexer disambiguation.
func (l *Lexer) regexAllowed() bool {
	switch l.prev.Kind {
	case Identifier, StringLiteral, NumericLiteral, TemplateLiteral, RegexLiteral, PrivateIdentifier:
		return false
	case Keyword:
		switch string(l.prev.Text) {
		case "this", "super", "true", "false", "null":
			return false
		}
		return true
	case Punctuator:
		switch string(l.prev.Text) {
		case ")", "]", "}":
			return false
		}
		return true
	default:
		return true
	}
}

var multiCharPunctuators = []string{
	">>>=", "...", "=>", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--", "+=", "-=", "*=", "/=",
	"%=", "&=", "|=", "^=", "**", "<<", ">>",
}

func (l *Lexer) scanPunctuator(start int) Token {
	rest := l.src[l.pos:]
	for _, op := range multiCharPunctuators {
		if hasPrefix(rest, op) {
			l.pos += len(op)
			return l.tok(Punctuator, start)
		}
	}
	l.pos++
	return l.tok(Punctuator, start)
}

func hasPrefix(b []byte, s string) bool {
	if len(b) < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if b[i] != s[i] {
			return false
		}
	}
	return true
}

// Pos returns the lexer's current byte offset, for parsers that need to
// checkpoint/rewind (e.g. arrow-function-vs-parenthesised-expression
// backtracking, the same ambiguity esbuild's
// trySkipTypeScriptArrowArgsWithBacktracking resolves).
func (l *Lexer) Pos() int { return l.pos }

// Checkpoint/Restore let the parser backtrack across an ambiguous prefix.
type Checkpoint struct {
	pos  int
	prev Token
}

func (l *Lexer) Checkpoint() Checkpoint { return Checkpoint{pos: l.pos, prev: l.prev} }
func (l *Lexer) Restore(c Checkpoint)   { l.pos = c.pos; l.prev = c.prev }
