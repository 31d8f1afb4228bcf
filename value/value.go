// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package value defines a mutable, order-preserving representation of JSON
// values, with a parser that constructs values from JSON source and a
// formatter that renders them back to canonical JSON text.
//
// A Value has one of exactly six concrete types:
//
//	JSON type | Go type  | Notes
//	--------- | -------- | ---------------------------------------------
//	null      | Null     |
//	boolean   | Bool     |
//	number    | Number   | IEEE 754 double, as in JavaScript
//	string    | String   | decoded text, no quotation marks
//	object    | *Object  | members in first-seen insertion order
//	array     | *Array   |
//
// Code that consumes values should switch over these types.
package value

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// A Value is an arbitrary JSON value. The concrete type of a Value is one of
// Null, Bool, Number, String, *Object, or *Array.
type Value interface {
	// Kind reports which of the JSON types this value has.
	Kind() Kind

	// JSON renders the value as compact JSON text.
	JSON() string

	isValue()
}

// Kind identifies the type of a JSON value.
type Kind byte

// Constants defining the valid Kind values.
const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ObjectKind
	ArrayKind
)

var kindStr = [...]string{
	NullKind:   "null",
	BoolKind:   "boolean",
	NumberKind: "number",
	StringKind: "string",
	ObjectKind: "object",
	ArrayKind:  "array",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Null is the JSON null constant.
type Null struct{}

// A Bool is a Boolean constant, true or false.
type Bool bool

// A Number is a numeric value. Non-finite numbers render as null.
type Number float64

// A String is a string value.
type String string

// An Object is an ordered collection of key-value members. Keys are unique;
// use Set to add or replace a member.
type Object struct {
	Members []*Member
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// An Array is a sequence of values.
type Array struct {
	Values []Value
}

func (Null) Kind() Kind    { return NullKind }
func (Bool) Kind() Kind    { return BoolKind }
func (Number) Kind() Kind  { return NumberKind }
func (String) Kind() Kind  { return StringKind }
func (*Object) Kind() Kind { return ObjectKind }
func (*Array) Kind() Kind  { return ArrayKind }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (*Object) isValue() {}
func (*Array) isValue()  {}

func (n Null) JSON() string    { return compactJSON(n) }
func (b Bool) JSON() string    { return compactJSON(b) }
func (n Number) JSON() string  { return compactJSON(n) }
func (s String) JSON() string  { return compactJSON(s) }
func (o *Object) JSON() string { return compactJSON(o) }
func (a *Array) JSON() string  { return compactJSON(a) }

// IsFinite reports whether n can be represented in JSON.
func (n Number) IsFinite() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String renders n the way JavaScript converts a number to a string.
func (n Number) String() string { return FormatNumber(float64(n)) }

// Len reports the number of members in o.
func (o *Object) Len() int { return len(o.Members) }

// Index returns the offset of the member of o with the given key, or -1.
func (o *Object) Index(key string) int {
	return slices.IndexFunc(o.Members, func(m *Member) bool { return m.Key == key })
}

// Find returns the member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	if i := o.Index(key); i >= 0 {
		return o.Members[i]
	}
	return nil
}

// Get returns the value of the member of o with the given key, and reports
// whether such a member exists.
func (o *Object) Get(key string) (Value, bool) {
	if m := o.Find(key); m != nil {
		return m.Value, true
	}
	return nil, false
}

// Set sets the value of key in o to v. If o already has a member with that
// key its value is replaced in place; otherwise a new member is appended.
// Set returns the affected member.
func (o *Object) Set(key string, v Value) *Member {
	if m := o.Find(key); m != nil {
		m.Value = v
		return m
	}
	m := &Member{Key: key, Value: v}
	o.Members = append(o.Members, m)
	return m
}

// Delete removes the member with the given key from o, and reports whether
// such a member was present.
func (o *Object) Delete(key string) bool {
	i := o.Index(key)
	if i < 0 {
		return false
	}
	o.Members = slices.Delete(o.Members, i, i+1)
	return true
}

// Keys returns the keys of o in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Members))
	for i, m := range o.Members {
		keys[i] = m.Key
	}
	return keys
}

// Len reports the number of elements in a.
func (a *Array) Len() int { return len(a.Values) }

// Append adds vs to the end of a.
func (a *Array) Append(vs ...Value) { a.Values = append(a.Values, vs...) }

// Delete removes and returns the element of a at offset i.
// It panics if i is out of range.
func (a *Array) Delete(i int) Value {
	old := a.Values[i]
	a.Values = slices.Delete(a.Values, i, i+1)
	return old
}

// Insert adds v to a at offset i, shifting later elements up.
// It panics if i is out of range.
func (a *Array) Insert(i int, v Value) { a.Values = slices.Insert(a.Values, i, v) }

// Field constructs an object member with the given key and value.
// The value must be acceptable to From.
func Field(key string, v any) *Member { return &Member{Key: key, Value: From(v)} }

// ObjectOf constructs an object from the given members. If a key repeats, the
// later value replaces the earlier at its original position.
func ObjectOf(ms ...*Member) *Object {
	o := &Object{Members: make([]*Member, 0, len(ms))}
	for _, m := range ms {
		o.Set(m.Key, m.Value)
	}
	return o
}

// ArrayOf constructs an array from the given values, each of which must be
// acceptable to From.
func ArrayOf[T any](vs ...T) *Array {
	a := &Array{Values: make([]Value, len(vs))}
	for i, v := range vs {
		a.Values[i] = From(v)
	}
	return a
}

// From converts a Go value into a Value. It accepts nil, bool, string, any
// integer or floating-point type, []any, map[string]any, and Value. Map keys
// are added in sorted order. From panics for any other type.
func From(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Number(t)
	case int8:
		return Number(t)
	case int16:
		return Number(t)
	case int32:
		return Number(t)
	case int64:
		return Number(t)
	case uint:
		return Number(t)
	case uint8:
		return Number(t)
	case uint16:
		return Number(t)
	case uint32:
		return Number(t)
	case uint64:
		return Number(t)
	case float32:
		return Number(t)
	case float64:
		return Number(t)
	case []any:
		return ArrayOf(t...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := &Object{Members: make([]*Member, len(keys))}
		for i, k := range keys {
			o.Members[i] = Field(k, t[k])
		}
		return o
	default:
		panic(fmt.Sprintf("value: cannot convert %T", v))
	}
}

// Clone returns a deep copy of v. Objects and arrays in the result share no
// storage with v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Object:
		o := &Object{Members: make([]*Member, len(t.Members))}
		for i, m := range t.Members {
			o.Members[i] = &Member{Key: m.Key, Value: Clone(m.Value)}
		}
		return o
	case *Array:
		a := &Array{Values: make([]Value, len(t.Values))}
		for i, elt := range t.Values {
			a.Values[i] = Clone(elt)
		}
		return a
	default:
		return v
	}
}

// Equal reports whether a and b are structurally identical. Objects are equal
// only if they have the same keys in the same order with equal values.
// A nil Value is equal only to nil.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case *Object:
		bt, ok := b.(*Object)
		if !ok || len(at.Members) != len(bt.Members) {
			return false
		}
		for i, m := range at.Members {
			if n := bt.Members[i]; m.Key != n.Key || !Equal(m.Value, n.Value) {
				return false
			}
		}
		return true
	case *Array:
		bt, ok := b.(*Array)
		if !ok || len(at.Values) != len(bt.Values) {
			return false
		}
		for i, elt := range at.Values {
			if !Equal(elt, bt.Values[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// IsContainer reports whether v is an object or an array.
func IsContainer(v Value) bool {
	switch v.(type) {
	case *Object, *Array:
		return true
	}
	return false
}
