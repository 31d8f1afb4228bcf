// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string. The
// input must have the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A pair of
// \u escapes encoding a UTF-16 surrogate pair decodes to a single rune, and an
// unpaired surrogate decodes to the Unicode replacement rune. Unquote reports
// an error for an incomplete or invalid escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(nil, src), nil
	}
	dec := make([]byte, 0, src.Len())
	for {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		if b := simpleEsc[c]; b != 0 {
			dec = append(dec, b)
		} else if c == 'u' {
			r, rest, err := unicodeEscape(src)
			if err != nil {
				return nil, err
			}
			dec = utf8.AppendRune(dec, r)
			src = rest
		} else {
			return nil, fmt.Errorf("invalid escape %q", c)
		}

		i = mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dec, src), nil
		}
	}
}

// unicodeEscape decodes the hex digits of a \u escape at the front of src, and
// if they denote a high surrogate followed by a second \u escape for a low
// surrogate, combines the two.
func unicodeEscape(src mem.RO) (rune, mem.RO, error) {
	if src.Len() < 4 {
		return 0, src, errors.New("incomplete Unicode escape")
	}
	v, err := parseHex(src.SliceTo(4))
	if err != nil {
		return 0, src, err
	}
	src = src.SliceFrom(4)
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, src, nil
	}
	if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
		if w, err := parseHex(src.Slice(2, 6)); err == nil {
			if p := utf16.DecodeRune(r, rune(w)); p != utf8.RuneError {
				return p, src.SliceFrom(6), nil
			}
		}
	}
	return utf8.RuneError, src, nil
}

// simpleEsc maps the byte after a backslash to the byte it denotes, for the
// escapes other than \u. Other entries are zero.
var simpleEsc = [256]byte{
	'"': '"', '\\': '\\', '/': '/',
	'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
}

// hexVal maps each hexadecimal digit to its value plus one. Other entries
// are zero.
var hexVal = func() (t [256]byte) {
	for i, c := range "0123456789abcdef" {
		t[c] = byte(i + 1)
		if c >= 'a' {
			t[c-'a'+'A'] = byte(i + 1)
		}
	}
	return
}()

func parseHex(data mem.RO) (int64, error) {
	var v int64
	for i := range data.Len() {
		d := hexVal[data.At(i)]
		if d == 0 {
			return 0, fmt.Errorf("invalid hex digit %q", data.At(i))
		}
		v = v<<4 | int64(d-1)
	}
	return v, nil
}
