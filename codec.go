// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/creachadair/jtable/value"
	"github.com/creachadair/mds/mstr"
)

// DefaultPreviewWidth is the default maximum length in bytes of an object or
// array preview, not counting the ellipsis.
const DefaultPreviewWidth = 50

// Decode converts the free text of a table cell into a value. The first of
// these rules that applies determines the result:
//
//  1. If text, less surrounding space, is a number, the result is a Number.
//  2. If text is "true" or "false", the result is a Bool.
//  3. If text is "null" or contains only space, the result is Null.
//  4. If text is a JSON object or array, the result is that value.
//  5. Otherwise, the result is text as a String, unmodified.
//
// Numbers include an optional sign, decimal digits with an optional fraction
// and exponent (".5" and "5." are allowed), and unsigned 0x, 0o, and 0b
// integer literals of any length, rounded to the nearest float64. Digit
// separators, infinities, and magnitudes too large to represent are not
// numbers. Quoted text such as "\"x\"" is not unquoted.
//
// Space is as in JavaScript: Unicode white space and U+FEFF, but not U+0085.
//
// Decode does not fail.
func Decode(text string) value.Value {
	if v, ok := decodeNumber(text); ok {
		return v
	}
	switch text {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Null{}
	}
	if trimSpace(text) == "" {
		return value.Null{}
	}
	if v, err := value.Parse([]byte(text)); err == nil && value.IsContainer(v) {
		return v
	}
	return value.String(text)
}

func decodeNumber(text string) (value.Value, bool) {
	t := trimSpace(text)
	if t == "" || strings.ContainsRune(t, '_') {
		return nil, false
	}
	if len(t) > 2 && t[0] == '0' {
		if base := radixOf(t[1]); base != 0 {
			if t[2] == '+' || t[2] == '-' {
				return nil, false
			}
			z, ok := new(big.Int).SetString(t[2:], base)
			if !ok {
				return nil, false
			}
			f, _ := new(big.Float).SetInt(z).Float64()
			if math.IsInf(f, 0) {
				return nil, false
			}
			return value.Number(f), true
		}
	}
	if strings.IndexFunc(t, notNumeric) >= 0 {
		return nil, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, false
	}
	return value.Number(f), true
}

func trimSpace(s string) string { return strings.TrimFunc(s, isSpace) }

func isSpace(r rune) bool {
	switch r {
	case 0xFEFF:
		return true
	case 0x85:
		return false
	}
	return unicode.IsSpace(r)
}

func radixOf(b byte) int {
	switch b {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

func notNumeric(r rune) bool {
	return !('0' <= r && r <= '9') && !strings.ContainsRune(".eE+-", r)
}

// Encode renders v as the editable text of a cell. Strings are rendered as
// their raw text without quotation marks; all other values are rendered as
// compact JSON. A nil value renders as "".
//
// For any value v that is not a numeric-looking or keyword-like string,
// Decode(Encode(v)) is equal to v.
func Encode(v value.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case value.String:
		return string(t)
	default:
		return t.JSON()
	}
}

// Display renders v as the text shown in a table cell. It is the same as
// Encode; an absent cell (nil) displays as empty while null displays as "null".
func Display(v value.Value) string { return Encode(v) }

// Preview renders v like Display, except that the JSON text of an object or
// array longer than n bytes is truncated to at most n bytes and followed by an
// ellipsis. Truncation does not split a UTF-8 sequence. If n <= 0,
// DefaultPreviewWidth is used.
func Preview(v value.Value, n int) string {
	s := Display(v)
	if !value.IsContainer(v) {
		return s
	}
	if n <= 0 {
		n = DefaultPreviewWidth
	}
	if t := mstr.Trunc(s, n); len(t) < len(s) {
		return t + "..."
	}
	return s
}
