// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package scan implements a lexical scanner and an event-driven stream parser
// for JSON text held in memory.
package scan

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/creachadair/jtable/internal/escape"
	"go4.org/mem"
)

// Token is the type of a lexical token in the JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
}

func (t Token) String() string {
	if int(t) >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[t]
}

// A Scanner reads lexical tokens from a JSON source held in memory. Each call
// to Next advances the scanner to the next token, or reports an error.
type Scanner struct {
	src []byte
	off int // read offset into src

	tok      Token
	err      error
	pos, end int // start and end offsets of current token

	// Line and column offsets (0-based) of the read offset and of the start
	// of the current token.
	line, col   int
	pline, pcol int
}

// NewScanner constructs a new lexical scanner that consumes src.
// The scanner does not copy src, and the caller must not modify it while the
// scanner is in use.
func NewScanner(src []byte) *Scanner { return &Scanner{src: src} }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF.
func (s *Scanner) Next() error {
	s.tok = Invalid
	s.err = nil
	s.skipSpace()
	s.pos, s.end = s.off, s.off
	s.pline, s.pcol = s.line, s.col
	if s.off >= len(s.src) {
		return s.setErr(io.EOF)
	}

	ch := s.src[s.off]
	if i := strings.IndexByte("{}[],:", ch); i >= 0 {
		s.advance(1)
		s.tok = self[i]
		return nil
	}
	switch {
	case ch == '"':
		return s.scanString()
	case ch == '-' || isDigit(ch):
		return s.scanNumber()
	case 'a' <= ch && ch <= 'z':
		return s.scanName()
	}
	r, _ := utf8.DecodeRune(s.src[s.off:])
	return s.failf("unexpected %q", r)
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token. The result is a view
// of the source and must not be modified.
func (s *Scanner) Text() []byte { return s.src[s.pos:s.end:s.end] }

// Start returns the position of the first byte of the current token.
func (s *Scanner) Start() Pos { return Pos{Offset: s.pos, Line: s.pline + 1, Column: s.pcol} }

// End returns the position just past the last byte of the current token.
func (s *Scanner) End() Pos { return Pos{Offset: s.end, Line: s.line + 1, Column: s.col} }

// Unquote returns the decoded contents of the current String token.
func (s *Scanner) Unquote() (string, error) {
	if s.tok != String {
		return "", fmt.Errorf("token is %v, not string", s.tok)
	}
	text := s.Text()
	dec, err := escape.Unquote(mem.B(text[1 : len(text)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// Float64 returns the value of the current Integer or Number token.
// A magnitude too large to represent is reported as an infinity, not an error.
func (s *Scanner) Float64() (float64, error) {
	if s.tok != Integer && s.tok != Number {
		return 0, fmt.Errorf("token is %v, not number", s.tok)
	}
	v, err := strconv.ParseFloat(string(s.Text()), 64)
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		err = nil
	}
	return v, err
}

func (s *Scanner) skipSpace() {
	for s.off < len(s.src) {
		switch s.src[s.off] {
		case ' ', '\t', '\r':
			s.off++
			s.col++
		case '\n':
			s.off++
			s.line++
			s.col = 0
		default:
			return
		}
	}
}

// advance consumes n bytes of the current line into the current token.
func (s *Scanner) advance(n int) {
	s.off += n
	s.col += n
	s.end = s.off
}

func (s *Scanner) peek() (byte, bool) {
	if s.off < len(s.src) {
		return s.src[s.off], true
	}
	return 0, false
}

func (s *Scanner) scanString() error {
	s.advance(1) // open quote
	for s.off < len(s.src) {
		ch := s.src[s.off]
		switch {
		case ch == '"':
			s.advance(1)
			s.tok = String
			return nil
		case ch == '\\':
			if err := s.scanEscape(); err != nil {
				return err
			}
		case ch < ' ':
			return s.failf("unescaped control %q", rune(ch))
		default:
			_, n := utf8.DecodeRune(s.src[s.off:])
			s.advance(n)
		}
	}
	return s.fail(io.ErrUnexpectedEOF)
}

func (s *Scanner) scanEscape() error {
	s.advance(1) // backslash
	ch, ok := s.peek()
	if !ok {
		return s.fail(io.ErrUnexpectedEOF)
	}
	switch ch {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		s.advance(1)
	case 'u':
		s.advance(1)
		for i := 0; i < 4; i++ {
			h, ok := s.peek()
			if !ok {
				return s.failf("invalid Unicode escape: %w", io.ErrUnexpectedEOF)
			} else if !isHexDigit(h) {
				return s.failf("invalid Unicode escape: not a hex digit: %q", rune(h))
			}
			s.advance(1)
		}
	default:
		return s.failf("invalid %q after escape", rune(ch))
	}
	return nil
}

// scanNumber consumes a number in the grammar
//
//	-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func (s *Scanner) scanNumber() error {
	if ch, _ := s.peek(); ch == '-' {
		s.advance(1)
	}
	start := s.off
	if s.digits() == 0 {
		return s.failf("want digit after sign")
	} else if s.src[start] == '0' && s.off-start > 1 {
		return s.failf("extra leading zeroes")
	}
	s.tok = Integer

	if ch, ok := s.peek(); ok && ch == '.' {
		s.advance(1)
		if s.digits() == 0 {
			return s.failf("no digits after decimal point")
		}
		s.tok = Number
	}
	if ch, ok := s.peek(); ok && (ch == 'e' || ch == 'E') {
		s.advance(1)
		if ch, ok := s.peek(); ok && (ch == '+' || ch == '-') {
			s.advance(1)
		}
		if s.digits() == 0 {
			return s.failf("missing exponent digits")
		}
		s.tok = Number
	}
	return nil
}

// digits consumes a run of decimal digits and reports how many there were.
func (s *Scanner) digits() int {
	var n int
	for s.off+n < len(s.src) && isDigit(s.src[s.off+n]) {
		n++
	}
	s.advance(n)
	return n
}

func (s *Scanner) scanName() error {
	var n int
	for s.off+n < len(s.src) && isNameByte(s.src[s.off+n]) {
		n++
	}
	s.advance(n)
	switch name := mem.B(s.Text()); {
	case name.EqualString("true"):
		s.tok = True
	case name.EqualString("false"):
		s.tok = False
	case name.EqualString("null"):
		s.tok = Null
	default:
		return s.failf("unknown constant %q", name.StringCopy())
	}
	return nil
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

func (s *Scanner) fail(err error) error {
	return s.setErr(posError{s.off, err})
}

func (s *Scanner) failf(msg string, args ...any) error {
	return s.setErr(posError{s.off, fmt.Errorf(msg, args...)})
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return 'a' <= ch && ch <= 'z' }

func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
