// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable

import (
	"github.com/creachadair/jtable/value"
)

// A Nested is a table editor for an object or array held in a cell. It works
// on a private copy of the value and has no knowledge of where the value came
// from: the caller writes a committed value back to the parent cell.
type Nested struct {
	v     value.Value // *value.Object or *value.Array
	model *Model
}

// OpenNested opens a nested table on a copy of cell, which must be an object
// or an array. Otherwise it reports an error of kind NestedNotEditable.
func OpenNested(cell value.Value) (*Nested, error) {
	if !value.IsContainer(cell) {
		return nil, errorf(NestedNotEditable, "cannot open %s as a table", kindName(cell))
	}
	v := value.Clone(cell)
	return &Nested{v: v, model: Project(v)}, nil
}

// Model returns the tabular model of the nested value. The caller must not
// modify it.
func (n *Nested) Model() *Model { return n.model }

// Value returns a copy of the nested value.
func (n *Nested) Value() value.Value { return value.Clone(n.v) }

// Open opens a nested table on the cell at row and key of n.
func (n *Nested) Open(row int, key string) (*Nested, error) {
	if !n.model.Addressable(row) {
		return nil, errorf(InvalidCoordinate, "row %d is not addressable (n=%d)", row, n.model.Len())
	}
	cell, _ := n.model.Cell(row, key)
	return OpenNested(cell)
}

// An Edit is a single cell edit applied by Commit.
type Edit struct {
	Row int
	Key string

	Text  string      // the cell text, decoded with Decode if Value == nil
	Value value.Value // if non-nil, the new cell value
}

func (e Edit) value() value.Value {
	if e.Value != nil {
		return value.Clone(e.Value)
	}
	return Decode(e.Text)
}

// Commit applies edits in order to a fresh copy of the nested value, and
// returns the result. The nested value itself is not modified. If any edit
// addresses a row that is out of range or not an object, Commit reports an
// error of kind InvalidCoordinate and returns no value.
func (n *Nested) Commit(edits ...Edit) (value.Value, error) {
	out := value.Clone(n.v)
	m := Project(out)
	for _, e := range edits {
		if !m.Addressable(e.Row) {
			return nil, errorf(InvalidCoordinate, "row %d is not addressable (n=%d)", e.Row, m.Len())
		}
		m.Rows[e.Row].(*value.Object).Set(e.Key, e.value())
	}
	return out, nil
}

func kindName(v value.Value) string {
	if v == nil {
		return "absent value"
	}
	return v.Kind().String()
}
