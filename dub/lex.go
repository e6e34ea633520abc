package dub

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	typeUnknown tokenType = iota
	typeInt
	typeFloat
	typeIdentifier
	typeString
	typeQuote
	typeComma
	typeColon
	typeSlash
	typeAsterisk
	typeSemicolon
	typeEOF
)

var tokenNames = map[tokenType]string{
	typeUnknown:    "unknown",
	typeInt:        "integer",
	typeFloat:      "float",
	typeIdentifier: "identifier",
	typeString:     "string",
	typeQuote:      "quote",
	typeComma:      "comma",
	typeColon:      "colon",
	typeSlash:      "slash",
	typeAsterisk:   "asterisk",
	typeSemicolon:  "semicolon",
	typeEOF:        "end of input",
}

func (t tokenType) String() string { return tokenNames[t] }

const eof = -1

var punctuation = map[rune]tokenType{
	'\'': typeQuote,
	',':  typeComma,
	':':  typeColon,
	'/':  typeSlash,
	'*':  typeAsterisk,
	';':  typeSemicolon,
}

// token.pos is the byte offset of the first character of text.
type token struct {
	typ  tokenType
	pos  int
	text string
}

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

func syntaxErrorf(pos int, format string, args ...interface{}) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func lex(input string) ([]token, error) {
	s := &scanner{input: input}
	for s.err == nil {
		if s.scan() == typeEOF {
			break
		}
	}
	return s.tokens, s.err
}

type scanner struct {
	input  string
	start  int
	pos    int
	width  int
	tokens []token
	err    error
}

// scan reads one token, or skips whitespace and comments, and returns the
// type of the last token emitted.
func (s *scanner) scan() tokenType {
	r := s.next()
	switch {
	case r == eof:
		s.emit(typeEOF)
		return typeEOF
	case isSpace(r):
		s.skipSpace()
	case r == '#':
		// comment until the end of the line
		s.pos = len(s.input)
		s.start = s.pos
	case unicode.IsLetter(r):
		s.scanIdentifier()
	case r == '"':
		s.scanString()
	case s.startsNumber(r):
		s.scanNumber()
	default:
		typ, ok := punctuation[r]
		if !ok {
			s.invalid(r)
			return typeUnknown
		}
		s.emit(typ)
	}
	if len(s.tokens) == 0 {
		return typeUnknown
	}
	return s.tokens[len(s.tokens)-1].typ
}

func (s *scanner) next() rune {
	if s.pos >= len(s.input) {
		s.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(s.input[s.pos:])
	s.width = w
	s.pos += w
	return r
}

func (s *scanner) peek() rune {
	r := s.next()
	s.backup()
	return r
}

func (s *scanner) backup() {
	s.pos -= s.width
}

func (s *scanner) emit(t tokenType) {
	s.tokens = append(s.tokens, token{typ: t, pos: s.start, text: s.input[s.start:s.pos]})
	s.start = s.pos
	s.width = 0
}

func (s *scanner) invalid(r rune) {
	s.err = syntaxErrorf(s.pos-s.width, "unexpected character %#U", r)
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }

func (s *scanner) skipSpace() {
	for isSpace(s.peek()) {
		s.next()
	}
	s.start = s.pos
}

func (s *scanner) acceptRun(set string) {
	for strings.ContainsRune(set, s.next()) {
	}
	s.backup()
}

func (s *scanner) accept(set string) bool {
	if strings.ContainsRune(set, s.next()) {
		return true
	}
	s.backup()
	return false
}

// endsToken reports whether r may directly follow an identifier or number.
func endsToken(r rune) bool {
	return r == eof || isSpace(r) || r == ',' || r == ';'
}

// identifierChars may follow the first letter of an identifier, so that
// property names like env.attack and note names like C#4 or C-1 lex as one token.
const identifierChars = "_.#-"

func (s *scanner) scanIdentifier() {
	for {
		r := s.next()
		if unicode.IsLetter(r) || isDigit(r) || strings.ContainsRune(identifierChars, r) {
			continue
		}
		if !endsToken(r) {
			s.invalid(r)
			return
		}
		s.backup()
		s.emit(typeIdentifier)
		return
	}
}

func (s *scanner) scanString() {
	for {
		switch s.next() {
		case '"':
			s.emit(typeString)
			return
		case eof:
			s.err = syntaxErrorf(s.start, "unterminated string")
			return
		}
	}
}

const digits = "0123456789"

// startsNumber reports whether r, already consumed, begins a number such as
// 1, -2, .5 or -.5.
func (s *scanner) startsNumber(r rune) bool {
	rest := s.input[s.pos:]
	switch {
	case isDigit(r):
		return true
	case r == '-' && strings.HasPrefix(rest, "."):
		return len(rest) > 1 && isDigit(rune(rest[1]))
	case r == '-' || r == '.':
		return len(rest) > 0 && isDigit(rune(rest[0]))
	}
	return false
}

func (s *scanner) scanNumber() {
	s.pos = s.start
	s.accept("-")
	s.acceptRun(digits)
	float := s.accept(".")
	s.acceptRun(digits)

	r := s.peek()
	if !endsToken(r) && r != '/' && r != ':' {
		s.next()
		s.invalid(r)
		return
	}
	if float {
		s.emit(typeFloat)
	} else {
		s.emit(typeInt)
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
