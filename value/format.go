// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"fmt"
	"io"

	"github.com/creachadair/jtable/internal/escape"
	"go4.org/mem"
)

// A Formatter carries the settings for rendering values as JSON text.
// A zero value is ready for use with default settings, which produce the
// canonical two-space indented layout.
type Formatter struct {
	// Indent is the text used for each level of indentation.
	// If empty, two spaces are used.
	Indent string

	// Compact, if true, renders values without any whitespace.
	Compact bool
}

func (f Formatter) indent() string {
	if f.Indent == "" {
		return "  "
	}
	return f.Indent
}

// Format renders the canonical indented representation of v to w.
func Format(w io.Writer, v Value) error {
	var f Formatter
	return f.Format(w, v)
}

// Indent returns the canonical indented representation of v as a string.
// Objects and arrays are laid out one element per line with two-space
// indentation, empty containers render as "{}" and "[]", and there is no
// trailing newline.
func Indent(v Value) string {
	var f Formatter
	return string(f.Append(nil, v))
}

func compactJSON(v Value) string { return string(Formatter{Compact: true}.Append(nil, v)) }

// Format renders v to w using the settings from f.
func (f Formatter) Format(w io.Writer, v Value) error {
	_, err := w.Write(f.Append(nil, v))
	return err
}

// Append appends the representation of v to buf and returns the result.
func (f Formatter) Append(buf []byte, v Value) []byte {
	return f.appendValue(buf, v, "")
}

func (f Formatter) appendValue(buf []byte, v Value, indent string) []byte {
	switch t := v.(type) {
	case Null:
		return append(buf, "null"...)
	case Bool:
		if t {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case Number:
		if !t.IsFinite() {
			return append(buf, "null"...)
		}
		return append(buf, FormatNumber(float64(t))...)
	case String:
		return escape.Quote(buf, mem.S(string(t)))
	case *Object:
		return f.appendObject(buf, t, indent)
	case *Array:
		return f.appendArray(buf, t, indent)
	default:
		panic(fmt.Sprintf("unknown value type %T", v))
	}
}

func (f Formatter) appendObject(buf []byte, o *Object, indent string) []byte {
	if len(o.Members) == 0 {
		return append(buf, "{}"...)
	}
	inner := indent + f.indent()
	buf = append(buf, '{')
	for i, m := range o.Members {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = f.newline(buf, inner)
		buf = escape.Quote(buf, mem.S(m.Key))
		buf = append(buf, ':')
		if !f.Compact {
			buf = append(buf, ' ')
		}
		buf = f.appendValue(buf, m.Value, inner)
	}
	buf = f.newline(buf, indent)
	return append(buf, '}')
}

func (f Formatter) appendArray(buf []byte, a *Array, indent string) []byte {
	if len(a.Values) == 0 {
		return append(buf, "[]"...)
	}
	inner := indent + f.indent()
	buf = append(buf, '[')
	for i, v := range a.Values {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = f.newline(buf, inner)
		buf = f.appendValue(buf, v, inner)
	}
	buf = f.newline(buf, indent)
	return append(buf, ']')
}

func (f Formatter) newline(buf []byte, indent string) []byte {
	if f.Compact {
		return buf
	}
	buf = append(buf, '\n')
	return append(buf, indent...)
}

// FormatToString formats v to a string with the settings from f.
func (f Formatter) FormatToString(v Value) string {
	return string(f.Append(nil, v))
}
