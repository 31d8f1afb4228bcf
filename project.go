// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable

import (
	"slices"
	"strings"

	"github.com/creachadair/jtable/value"
	"github.com/creachadair/mds/mapset"
)

// WrapKey is the column name of the synthetic row that holds a scalar root.
const WrapKey = "value"

// A Model is a tabular projection of a JSON value. A Model is derived from
// the value it projects and is never authoritative.
type Model struct {
	// Columns are the unique keys of the object rows, in the order they are
	// first seen scanning rows from top to bottom and each row's keys from
	// left to right.
	Columns []string

	// Rows are the rows of the table. An array projects to its elements, an
	// object to a single row holding the object, and a scalar to a single
	// synthetic row {"value": scalar}.
	Rows []value.Value

	// Wrapped reports whether the projected value is a scalar held by a
	// synthetic row.
	Wrapped bool

	// Mixed reports whether any row is not an object. Such rows are shown in
	// a single unnamed column, addressed with the key "".
	Mixed bool
}

// A Coord is the coordinate of a cell in a table.
type Coord struct {
	Row int
	Key string
}

// Project constructs the tabular model of root. The rows of the model share
// storage with root. Project is deterministic: the same root always produces
// the same columns and rows in the same order.
func Project(root value.Value) *Model {
	m := new(Model)
	switch t := root.(type) {
	case *value.Array:
		m.Rows = slices.Clone(t.Values)
	case *value.Object:
		m.Rows = []value.Value{t}
	default:
		if root == nil {
			root = value.Null{}
		}
		m.Rows = []value.Value{value.ObjectOf(&value.Member{Key: WrapKey, Value: root})}
		m.Wrapped = true
	}
	m.rederive()
	return m
}

// rederive recomputes the columns and the mixed flag from the rows of m.
func (m *Model) rederive() {
	seen := mapset.New[string]()
	m.Columns, m.Mixed = []string{}, false
	for _, row := range m.Rows {
		obj, ok := row.(*value.Object)
		if !ok {
			m.Mixed = true
			continue
		}
		for _, mem := range obj.Members {
			if !seen.Has(mem.Key) {
				seen.Add(mem.Key)
				m.Columns = append(m.Columns, mem.Key)
			}
		}
	}
}

// Len reports the number of rows in m.
func (m *Model) Len() int { return len(m.Rows) }

// Addressable reports whether row is a valid row index whose row is an object,
// so that its cells can be edited.
func (m *Model) Addressable(row int) bool {
	if row < 0 || row >= len(m.Rows) {
		return false
	}
	_, ok := m.Rows[row].(*value.Object)
	return ok
}

// Cell returns the value at the given row and column key, and reports whether
// it is present. For a row that is not an object, the key "" returns the
// whole row.
func (m *Model) Cell(row int, key string) (value.Value, bool) {
	if row < 0 || row >= len(m.Rows) {
		return nil, false
	}
	switch t := m.Rows[row].(type) {
	case *value.Object:
		return t.Get(key)
	default:
		if key == "" {
			return t, true
		}
		return nil, false
	}
}

// Editable reports whether the cell at row and key can be edited as text.
// Absent cells in an addressable row are editable; cells holding an object or
// array are edited through a nested table instead.
func (m *Model) Editable(row int, key string) bool {
	if !m.Addressable(row) {
		return false
	}
	v, ok := m.Cell(row, key)
	return !ok || !value.IsContainer(v)
}

// Search returns the coordinates of the cells whose display text contains
// term, ignoring case, in row-major and column order. The unnamed column of a
// non-object row is included. An empty term matches nothing.
func (m *Model) Search(term string) []Coord {
	if term == "" {
		return nil
	}
	needle := strings.ToLower(term)
	match := func(v value.Value) bool {
		return strings.Contains(strings.ToLower(Display(v)), needle)
	}

	var out []Coord
	for i, row := range m.Rows {
		obj, ok := row.(*value.Object)
		if !ok {
			if match(row) {
				out = append(out, Coord{Row: i})
			}
			continue
		}
		for _, col := range m.Columns {
			if v, ok := obj.Get(col); ok && match(v) {
				out = append(out, Coord{Row: i, Key: col})
			}
		}
	}
	return out
}
