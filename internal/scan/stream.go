// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package scan

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// An Anchor is the current token of a Stream, as seen by a Handler.
type Anchor interface {
	Token() Token              // the type of the token
	Text() []byte              // a view of the undecoded text of the token
	Start() Pos                // the position of the token
	Unquote() (string, error)  // the decoded contents of a String token
	Float64() (float64, error) // the value of an Integer or Number token
}

// A Handler receives the structure of a value from a Stream. If a method
// reports an error, parsing stops and the Stream returns that error
// unmodified. The Stream guarantees that objects and arrays are balanced.
//
// The Anchor passed to each method is valid only until the method returns.
type Handler interface {
	BeginObject(loc Anchor) error // at the open brace
	EndObject(loc Anchor) error   // at the close brace
	BeginArray(loc Anchor) error  // at the open bracket
	EndArray(loc Anchor) error    // at the close bracket

	// BeginMember begins an object member whose quoted key is at loc.
	BeginMember(loc Anchor) error

	// EndMember ends the current member at the comma or close brace that
	// follows its value.
	EndMember(loc Anchor) error

	// Value reports a number, string, or constant at loc.
	Value(loc Anchor) error
}

// ErrExtraInput is reported by Stream.Done when the input contains further
// tokens after a complete value.
var ErrExtraInput = errors.New("extra input after value")

// A Stream parses a sequence of JSON values and delivers their structure to
// a Handler. Nesting is tracked with an explicit stack, so the depth of the
// input does not consume goroutine stack.
type Stream struct {
	s   *Scanner
	stk []Token // open containers, LBrace or LSquare
}

// NewStream constructs a Stream that consumes src.
func NewStream(src []byte) *Stream { return &Stream{s: NewScanner(src)} }

// Parse delivers every value of the input to h, stopping at the first error.
// Syntax errors have concrete type [*SyntaxError].
func (s *Stream) Parse(h Handler) error {
	for {
		err := s.ParseOne(h)
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// ParseOne delivers the next complete value of the input to h. It returns
// io.EOF if the input has no further value. Syntax errors have concrete type
// [*SyntaxError].
func (s *Stream) ParseOne(h Handler) error {
	s.stk = s.stk[:0]
	if err := s.s.Next(); err == io.EOF {
		return err
	} else if err != nil {
		return s.fail(err, "%v", err)
	}
	for {
		if err := s.begin(h); err != nil {
			return err
		}
		done, err := s.finish(h)
		if err != nil || done {
			return err
		}
	}
}

// Done returns nil if nothing but whitespace remains in the input. Otherwise
// it reports a syntax error, wrapping ErrExtraInput if the remaining input
// begins with a valid token.
func (s *Stream) Done() error {
	if err := s.s.Next(); err == io.EOF {
		return nil
	} else if err != nil {
		return s.fail(err, "%v", err)
	}
	return s.fail(ErrExtraInput, "unexpected %v after value", s.s.Token())
}

// begin handles the current token, which must start a value. It delivers
// scalars and empty containers whole. For a non-empty container it leaves the
// first token of the first element current, and pushes the container.
func (s *Stream) begin(h Handler) error {
	for {
		switch tok := s.s.Token(); tok {
		case Integer, Number, String, True, False, Null:
			return h.Value(s.s)

		case LBrace:
			if err := h.BeginObject(s.s); err != nil {
				return err
			}
			next, err := s.expect(RBrace, String)
			if err != nil {
				return err
			}
			if next == RBrace {
				return h.EndObject(s.s)
			}
			s.stk = append(s.stk, LBrace)
			if err := s.member(h); err != nil {
				return err
			}

		case LSquare:
			if err := h.BeginArray(s.s); err != nil {
				return err
			}
			next, err := s.expect()
			if err != nil {
				return err
			}
			if next == RSquare {
				return h.EndArray(s.s)
			}
			s.stk = append(s.stk, LSquare)

		default:
			return s.fail(nil, "unexpected %v", tok)
		}
	}
}

// member begins an object member whose key is the current token, and leaves
// the first token of its value current.
func (s *Stream) member(h Handler) error {
	if err := h.BeginMember(s.s); err != nil {
		return err
	}
	if _, err := s.expect(Colon); err != nil {
		return err
	}
	_, err := s.expect()
	return err
}

// finish is called after a value is complete. It closes the containers that
// end after the value, and reports whether the outermost value is done. If
// not, the first token of the next element is current.
func (s *Stream) finish(h Handler) (bool, error) {
	for len(s.stk) != 0 {
		top := s.stk[len(s.stk)-1]
		if top == LBrace {
			next, err := s.expect(RBrace, Comma)
			if err != nil {
				return false, err
			}
			if err := h.EndMember(s.s); err != nil {
				return false, err
			}
			if next == Comma {
				if _, err := s.expect(String); err != nil {
					return false, err
				}
				return false, s.member(h)
			}
			s.stk = s.stk[:len(s.stk)-1]
			if err := h.EndObject(s.s); err != nil {
				return false, err
			}
			continue
		}

		next, err := s.expect(RSquare, Comma)
		if err != nil {
			return false, err
		}
		if next == Comma {
			_, err := s.expect()
			return false, err
		}
		s.stk = s.stk[:len(s.stk)-1]
		if err := h.EndArray(s.s); err != nil {
			return false, err
		}
	}
	return true, nil
}

// expect advances to the next token, which must be one of tokens if any are
// given, and returns its type.
func (s *Stream) expect(tokens ...Token) (Token, error) {
	if err := s.s.Next(); err == io.EOF {
		return Invalid, s.fail(io.ErrUnexpectedEOF, "%s", tokLabel(tokens, io.ErrUnexpectedEOF))
	} else if err != nil {
		return Invalid, s.fail(err, "%s", tokLabel(tokens, err))
	}
	tok := s.s.Token()
	if len(tokens) != 0 && !slices.Contains(tokens, tok) {
		return Invalid, s.fail(nil, "%s", tokLabel(tokens, tok))
	}
	return tok, nil
}

// fail returns a syntax error at the start of the current token.
func (s *Stream) fail(err error, msg string, args ...any) error {
	return &SyntaxError{Pos: s.s.Start(), Message: fmt.Sprintf(msg, args...), err: err}
}

// tokLabel describes a mismatch between the expected tokens and what was
// found. With no expected tokens, it describes only what was found.
func tokLabel(tokens []Token, got any) string {
	switch len(tokens) {
	case 0:
		return fmt.Sprint(got)
	case 1:
		return fmt.Sprintf("expected %v, got %v", tokens[0], got)
	}
	last := len(tokens) - 1
	names := make([]string, last)
	for i, tok := range tokens[:last] {
		names[i] = tok.String()
	}
	return fmt.Sprintf("expected %s or %v, got %v", strings.Join(names, ", "), tokens[last], got)
}

// SyntaxError is the concrete type of syntax errors reported by a Stream.
type SyntaxError struct {
	Pos     Pos // where the error was found
	Message string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string { return fmt.Sprintf("at %v: %s", s.Pos, s.Message) }

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
