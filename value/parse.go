// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package value

import (
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jtable/internal/scan"
	"github.com/tailscale/hujson"
)

// SyntaxError is the concrete type of errors reported for malformed input.
type SyntaxError = scan.SyntaxError

// ErrExtraInput is reported by Parse when the input contains further text
// after a complete value.
var ErrExtraInput = scan.ErrExtraInput

// ErrEmptyInput is reported by Parse when the input contains no value.
var ErrEmptyInput = errors.New("no value in input")

// Parse parses src as a single JSON value. Leading and trailing whitespace
// are permitted; any other text after the value is an error wrapping
// ErrExtraInput. If an object repeats a key, the member keeps its first
// position and takes the last value.
func Parse(src []byte) (Value, error) {
	h := new(parseHandler)
	st := scan.NewStream(src)
	if err := st.ParseOne(h); err == io.EOF {
		return nil, ErrEmptyInput
	} else if err != nil {
		return nil, err
	}
	if err := st.Done(); err != nil {
		return nil, err
	}
	return h.out, nil
}

// ParseJWCC parses src as a single value in JSON With Commas and Comments
// (JWCC), which extends JSON with comments and trailing commas. Comments are
// discarded.
func ParseJWCC(src []byte) (Value, error) {
	std, err := hujson.Standardize(src)
	if err != nil {
		return nil, fmt.Errorf("parse JWCC: %w", err)
	}
	return Parse(std)
}

// A parseHandler implements the scan.Handler interface to construct values.
type parseHandler struct {
	stk []*frame
	out Value
}

// A frame is a partially-constructed object or array.
type frame struct {
	v     Value          // *Object or *Array
	key   string         // current member key, for an object
	index map[string]int // member offsets by key, for an object
}

func (h *parseHandler) top() *frame { return h.stk[len(h.stk)-1] }

func (h *parseHandler) push(v Value) { h.stk = append(h.stk, &frame{v: v}) }

func (h *parseHandler) pop() Value {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last.v
}

func (h *parseHandler) reduce(v Value) error {
	if len(h.stk) == 0 {
		h.out = v
		return nil
	}
	switch f := h.top(); t := f.v.(type) {
	case *Object:
		if i, ok := f.index[f.key]; ok {
			t.Members[i].Value = v
			return nil
		}
		if f.index == nil {
			f.index = make(map[string]int)
		}
		f.index[f.key] = len(t.Members)
		t.Members = append(t.Members, &Member{Key: f.key, Value: v})
	case *Array:
		t.Values = append(t.Values, v)
	default:
		return fmt.Errorf("unexpected container %T", f.v)
	}
	return nil
}

func (h *parseHandler) BeginObject(scan.Anchor) error {
	h.push(&Object{Members: []*Member{}})
	return nil
}

func (h *parseHandler) EndObject(scan.Anchor) error { return h.reduce(h.pop()) }

func (h *parseHandler) BeginArray(scan.Anchor) error {
	h.push(&Array{Values: []Value{}})
	return nil
}

func (h *parseHandler) EndArray(scan.Anchor) error { return h.reduce(h.pop()) }

func (h *parseHandler) BeginMember(loc scan.Anchor) error {
	key, err := loc.Unquote()
	if err != nil {
		return err
	}
	h.top().key = key
	return nil
}

func (h *parseHandler) EndMember(scan.Anchor) error { return nil }

func (h *parseHandler) Value(loc scan.Anchor) error {
	switch loc.Token() {
	case scan.String:
		s, err := loc.Unquote()
		if err != nil {
			return err
		}
		return h.reduce(String(s))
	case scan.Integer, scan.Number:
		f, err := loc.Float64()
		if err != nil {
			return err
		}
		return h.reduce(Number(f))
	case scan.True:
		return h.reduce(Bool(true))
	case scan.False:
		return h.reduce(Bool(false))
	case scan.Null:
		return h.reduce(Null{})
	default:
		return fmt.Errorf("unknown value %v", loc.Token())
	}
}
