// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable_test

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/creachadair/jtable"
	"github.com/creachadair/jtable/value"
)

func mustParse(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse %#q: unexpected error: %v", src, err)
	}
	return v
}

func TestDecode(t *testing.T) {
	tests := []struct {
		input string
		want  value.Value
	}{
		// Numbers
		{"42", value.Number(42)},
		{" 42\t", value.Number(42)},
		{"-1.5e3", value.Number(-1500)},
		{"+7", value.Number(7)},
		{".5", value.Number(0.5)},
		{"5.", value.Number(5)},
		{"0", value.Number(0)},
		{"0x1F", value.Number(31)},
		{"0o17", value.Number(15)},
		{"0b101", value.Number(5)},
		{"1_000", value.String("1_000")},
		{"Infinity", value.String("Infinity")},
		{"NaN", value.String("NaN")},
		{"1e400", value.String("1e400")},
		{"-", value.String("-")},
		{"0x", value.String("0x")},
		{"-0x10", value.String("-0x10")},
		{"1.2.3", value.String("1.2.3")},
		{"0xFFFFFFFFFFFFFFFFFF", value.Number(math.Ldexp(1, 72))},
		{"0b" + strings.Repeat("1", 70), value.Number(math.Ldexp(1, 70))},
		{"0x" + strings.Repeat("F", 300), value.String("0x" + strings.Repeat("F", 300))},
		{"0x+1", value.String("0x+1")},
		{"0o19", value.String("0o19")},
		{"\uFEFF12 ", value.Number(12)},
		{"\u008512", value.String("\u008512")},

		// Keywords
		{"true", value.Bool(true)},
		{"false", value.Bool(false)},
		{"True", value.String("True")},
		{" true", value.String(" true")},
		{"null", value.Null{}},
		{"", value.Null{}},
		{"   ", value.Null{}},
		{"\uFEFF", value.Null{}},
		{" \u3000", value.Null{}},
		{"\u0085", value.String("\u0085")},

		// Containers
		{`{"a": 1}`, value.ObjectOf(value.Field("a", 1))},
		{` [1, "x"] `, value.ArrayOf[any](1, "x")},
		{"{}", value.ObjectOf()},
		{`{bad`, value.String(`{bad`)},
		{`[1,]`, value.String(`[1,]`)},

		// Everything else is a string.
		{"hello world", value.String("hello world")},
		{`"quoted"`, value.String(`"quoted"`)},
		{"  padded  ", value.String("  padded  ")},
	}
	for _, test := range tests {
		got := jtable.Decode(test.input)
		if !value.Equal(got, test.want) {
			t.Errorf("Decode(%q): got %s %s, want %s %s",
				test.input, got.Kind(), got.JSON(), test.want.Kind(), test.want.JSON())
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		input value.Value
		want  string
	}{
		{nil, ""},
		{value.Null{}, "null"},
		{value.Bool(false), "false"},
		{value.Number(1.5), "1.5"},
		{value.Number(1e21), "1e+21"},
		{value.String("plain text"), "plain text"},
		{value.String(`say "hi"`), `say "hi"`},
		{value.ObjectOf(value.Field("a", []any{1, "b"})), `{"a":[1,"b"]}`},
		{value.ArrayOf[any](), `[]`},
	}
	for _, test := range tests {
		if got := jtable.Encode(test.input); got != test.want {
			t.Errorf("Encode(%v): got %q, want %q", test.input, got, test.want)
		}
		if got := jtable.Display(test.input); got != test.want {
			t.Errorf("Display(%v): got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, v := range []value.Value{
		value.Null{},
		value.Bool(true),
		value.Number(-0.25),
		value.Number(123456789),
		value.String("hello world"),
		value.String(""),
		value.ObjectOf(value.Field("k", "v"), value.Field("n", nil)),
		value.ArrayOf[any](1, []any{true}, map[string]any{"x": "y"}),
	} {
		// The empty string is the one non-numeric string that does not
		// survive, since empty text decodes as null.
		if v == value.String("") {
			if got := jtable.Decode(jtable.Encode(v)); got != (value.Null{}) {
				t.Errorf("Decode(Encode(%q)): got %v, want null", v, got)
			}
			continue
		}
		if got := jtable.Decode(jtable.Encode(v)); !value.Equal(got, v) {
			t.Errorf("Decode(Encode(%s)): got %s", v.JSON(), got.JSON())
		}
	}

	// Strings that look like numbers or keywords do not survive.
	for _, s := range []string{"123", "true", "null", "[]"} {
		got := jtable.Decode(jtable.Encode(value.String(s)))
		if got.Kind() == value.StringKind {
			t.Errorf("Decode(Encode(%q)): got string, want %s", s, jtable.Decode(s).Kind())
		}
	}
}

func TestPreview(t *testing.T) {
	long := value.ArrayOf(strings.Repeat("x", 80))
	if got, want := jtable.Preview(long, 0), `["`+strings.Repeat("x", 48)+"..."; got != want {
		t.Errorf("Preview default: got %q, want %q", got, want)
	}
	if got, want := jtable.Preview(long, 10), `["xxxxxxxx...`; got != want {
		t.Errorf("Preview 10: got %q, want %q", got, want)
	}

	short := value.ObjectOf(value.Field("a", 1))
	if got, want := jtable.Preview(short, 0), `{"a":1}`; got != want {
		t.Errorf("Preview short: got %q, want %q", got, want)
	}

	// Scalars are never truncated.
	text := value.String(strings.Repeat("y", 100))
	if got := jtable.Preview(text, 10); got != string(text) {
		t.Errorf("Preview string: got %q, want %q", got, text)
	}

	// Truncation does not split a multi-byte character.
	wide := value.ArrayOf(strings.Repeat("é", 40))
	got := jtable.Preview(wide, 51)
	if !utf8.ValidString(got) {
		t.Errorf("Preview wide: invalid UTF-8 %q", got)
	}
	if body := strings.TrimSuffix(got, "..."); len(body) > 51 || body == got {
		t.Errorf("Preview wide: got %q (%d bytes), want at most 51 bytes plus ellipsis", got, len(got))
	}
}
