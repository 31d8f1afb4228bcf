// Package jpath implements a parser for simple JSONPath selection expressions.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = "[" name "]"
  step = "[" INDEX "]"
  name = WORD
  name = "'" QTEXT "'"

  WORD = RE `\w+`
 QTEXT = { text, with \' and \\ escapes }
 INDEX = RE `-?\d+`

Recursive descent (..), wildcards (*), unions (,), slices (:), filters ?(...)
and scripts (...) are recognized and rejected with ErrUnsupported.

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// ErrUnsupported is reported for JSONPath operators that select more than one
// value.
var ErrUnsupported = errors.New("unsupported path operator")

// An Expr is a parsed JSONPath expression. The empty Expr selects the root.
type Expr []Step

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	rest, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var e Expr
	for rest != "" {
		step, next, err := parseStep(rest)
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", len(s)-len(rest), err)
		}
		e = append(e, step)
		rest = next
	}
	return e, nil
}

// String renders e in canonical form: names matching WORD use dot notation,
// other names are quoted in brackets.
func (e Expr) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range e {
		buf.WriteString(s.String())
	}
	return buf.String()
}

// Path returns the steps of e as path elements for value.Path: a string for
// each member step and an int for each index step.
func (e Expr) Path() []any {
	out := make([]any, len(e))
	for i, s := range e {
		if s.Op == Index {
			out[i] = s.Index
		} else {
			out[i] = s.Name
		}
	}
	return out
}

// An Op is a path operator.
type Op byte

const (
	Invalid Op = iota // invalid operator
	Member            // object member lookup
	Index             // array index lookup
)

func (o Op) String() string {
	switch o {
	case Member:
		return "member"
	case Index:
		return "index"
	}
	return "invalid"
}

// A Step is a single step of a JSONPath expression.
type Step struct {
	Op    Op
	Name  string // for Member
	Index int    // for Index; negative values count from the end
}

func (s Step) String() string {
	switch s.Op {
	case Member:
		if wordOnlyRE.MatchString(s.Name) {
			return "." + s.Name
		}
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
		return "['" + r.Replace(s.Name) + "']"
	case Index:
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return "[?]"
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if strings.HasPrefix(s, "..") {
		return Step{}, s, fmt.Errorf("%w: recursive descent", ErrUnsupported)
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		name, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		}
		return Step{Op: Member, Name: name}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		step, u, err := parseValue(t)
		if err != nil {
			return Step{}, s, err
		}
		u, ok := strings.CutPrefix(u, "]")
		if !ok {
			return Step{}, s, errors.New("missing close bracket")
		}
		return step, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (name, rest string, _ error) {
	if strings.HasPrefix(s, "*") {
		return "", s, fmt.Errorf("%w: wildcard", ErrUnsupported)
	}
	if m := wordRE.FindString(s); m != "" {
		return m, s[len(m):], nil
	}
	if t, ok := strings.CutPrefix(s, "'"); ok {
		return parseQuoted(t)
	}
	return "", s, errors.New("invalid name")
}

func parseQuoted(s string) (name, rest string, _ error) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'':
			return sb.String(), s[i+1:], nil
		case '\\':
			if i+1 < len(s) && (s[i+1] == '\'' || s[i+1] == '\\') {
				i++
			}
			sb.WriteByte(s[i])
		default:
			sb.WriteByte(c)
		}
	}
	return "", s, errors.New("unterminated quoted name")
}

func parseValue(s string) (_ Step, rest string, _ error) {
	switch {
	case strings.HasPrefix(s, "?("):
		return Step{}, s, fmt.Errorf("%w: filter", ErrUnsupported)
	case strings.HasPrefix(s, "("):
		return Step{}, s, fmt.Errorf("%w: script", ErrUnsupported)
	case strings.HasPrefix(s, ":"):
		return Step{}, s, fmt.Errorf("%w: slice", ErrUnsupported)
	}
	if m := indexRE.FindString(s); m != "" {
		u := s[len(m):]
		if strings.HasPrefix(u, ":") {
			return Step{}, s, fmt.Errorf("%w: slice", ErrUnsupported)
		} else if strings.HasPrefix(u, ",") {
			return Step{}, s, fmt.Errorf("%w: union", ErrUnsupported)
		}
		i, err := strconv.Atoi(m)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid index: %w", err)
		}
		return Step{Op: Index, Index: i}, u, nil
	}
	name, u, err := parseName(s)
	if err != nil {
		return Step{}, s, fmt.Errorf("invalid value: %w", err)
	}
	if strings.HasPrefix(u, ",") {
		return Step{}, s, fmt.Errorf("%w: union", ErrUnsupported)
	}
	return Step{Op: Member, Name: name}, u, nil
}

var (
	wordRE     = regexp.MustCompile(`^\w+`)
	wordOnlyRE = regexp.MustCompile(`^\w+$`)
	indexRE    = regexp.MustCompile(`^-?\d+`)
)
