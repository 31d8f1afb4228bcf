// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jtable"
	"github.com/creachadair/jtable/value"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func mustOpen(t *testing.T, src string, opts *jtable.Options) *jtable.Session {
	t.Helper()
	s, err := jtable.Open([]byte(src), opts)
	if err != nil {
		t.Fatalf("Open %#q: unexpected error: %v", src, err)
	}
	return s
}

// checkModel verifies that the session model matches a fresh projection of
// the session document, and that the document text is canonical.
func checkModel(t *testing.T, s *jtable.Session) {
	t.Helper()
	root := s.Root()
	if diff := cmp.Diff(s.Model(), jtable.Project(root), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Model differs from projection (-got, +want):\n%s", diff)
	}
	if got, want := s.Text(), value.Indent(root); got != want {
		t.Errorf("Text: got %q, want %q", got, want)
	}
}

// mustResult returns a function that checks the result of a mutation and
// fails the test if it reports an error.
func mustResult(t *testing.T) func(*jtable.Result, error) *jtable.Result {
	return func(res *jtable.Result, err error) *jtable.Result {
		t.Helper()
		if err != nil {
			t.Fatalf("Mutation failed: %v", err)
		}
		return res
	}
}

func checkKind(t *testing.T, op string, err error, want jtable.Kind) {
	t.Helper()
	if got := jtable.KindOf(err); got != want {
		t.Errorf("%s: got error %v (kind %v), want kind %v", op, err, got, want)
	}
}

func TestOpen(t *testing.T) {
	s := mustOpen(t, "  [1, 2]\n", &jtable.Options{Target: "file.json"})
	if got := s.Target(); got != "file.json" {
		t.Errorf("Target: got %q, want file.json", got)
	}
	if !s.Writable() || s.Closed() {
		t.Errorf("Open: writable=%v closed=%v, want true, false", s.Writable(), s.Closed())
	}
	checkModel(t, s)

	for _, bad := range []string{"", "{", `{"a":1} x`, "// c\n[1,]"} {
		s, err := jtable.Open([]byte(bad), nil)
		if err == nil {
			t.Errorf("Open %#q: got %v, want error", bad, s.Text())
			continue
		}
		if !errors.Is(err, jtable.ErrParse) {
			t.Errorf("Open %#q: got error %v, want %v", bad, err, jtable.ErrParse)
		}
	}

	// Syntax errors carry a location.
	_, err := jtable.Open([]byte("[1,\n  2,,]"), nil)
	var serr *value.SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("Open: got error %v, want *SyntaxError", err)
	} else if got, want := serr.Pos.Line, 2; got != want {
		t.Errorf("SyntaxError line: got %d, want %d", got, want)
	}
}

func TestOpenJWCC(t *testing.T) {
	const src = `// Inventory
[
  {"sku": "a1", "count": 3}, // first
  {"sku": "b2",},
]`
	if _, err := jtable.Open([]byte(src), nil); !errors.Is(err, jtable.ErrParse) {
		t.Errorf("Open without JWCC: got %v, want %v", err, jtable.ErrParse)
	}
	s := mustOpen(t, src, &jtable.Options{JWCC: true})
	if diff := cmp.Diff(s.Model().Columns, []string{"sku", "count"}); diff != "" {
		t.Errorf("Columns (-got, +want):\n%s", diff)
	}
	res := mustResult(t)(s.UpdateCell(1, "count", "0"))
	const want = `[
  {
    "sku": "a1",
    "count": 3
  },
  {
    "sku": "b2",
    "count": 0
  }
]`
	if res.Text != want {
		t.Errorf("Text after update:\ngot  %s\nwant %s", res.Text, want)
	}
}

func TestScenarios(t *testing.T) {
	t.Run("TypedUpdate", func(t *testing.T) {
		s := mustOpen(t, `[{"a":1},{"b":2}]`, nil)
		res := mustResult(t)(s.UpdateCell(0, "a", "true"))
		v, _ := s.Model().Cell(0, "a")
		if v != value.Bool(true) {
			t.Errorf("Cell 0.a: got %v (%v), want boolean true", v, v.Kind())
		}
		want := jtable.CellUpdated{Row: 0, Key: "a", Value: value.Bool(true)}
		if diff := cmp.Diff(res.Update, jtable.Update(want)); diff != "" {
			t.Errorf("Update (-got, +want):\n%s", diff)
		}
		checkModel(t, s)
	})

	t.Run("StringUpdate", func(t *testing.T) {
		s := mustOpen(t, `[{"a":1},{"b":2}]`, nil)
		mustResult(t)(s.UpdateCell(0, "a", "hello world"))
		v, _ := s.Model().Cell(0, "a")
		if v != value.String("hello world") {
			t.Errorf("Cell 0.a: got %v (%v), want string", v, v.Kind())
		}
		checkModel(t, s)
	})

	t.Run("AddRow", func(t *testing.T) {
		s := mustOpen(t, `[{"x":1,"y":2}]`, nil)
		res := mustResult(t)(s.AddRow())
		want := jtable.RowAdded{
			Row:     1,
			NewRow:  value.ObjectOf(value.Field("x", ""), value.Field("y", "")),
			Columns: []string{"x", "y"},
		}
		if diff := cmp.Diff(res.Update, jtable.Update(want), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Update (-got, +want):\n%s", diff)
		}
		const text = `[
  {
    "x": 1,
    "y": 2
  },
  {
    "x": "",
    "y": ""
  }
]`
		if res.Text != text {
			t.Errorf("Text:\ngot  %s\nwant %s", res.Text, text)
		}
		checkModel(t, s)
	})

	t.Run("DeleteRow", func(t *testing.T) {
		s := mustOpen(t, `[{"id":0},{"id":1},{"id":2}]`, nil)
		res := mustResult(t)(s.DeleteRow(0))
		if diff := cmp.Diff(res.Update, jtable.Update(jtable.RowDeleted{Row: 0})); diff != "" {
			t.Errorf("Update (-got, +want):\n%s", diff)
		}
		if got, want := s.Root().JSON(), `[{"id":1},{"id":2}]`; got != want {
			t.Errorf("Root: got %s, want %s", got, want)
		}
		checkModel(t, s)
	})

	t.Run("ScalarRoot", func(t *testing.T) {
		s := mustOpen(t, `"hi"`, nil)
		m := s.Model()
		if diff := cmp.Diff(m.Columns, []string{"value"}); diff != "" {
			t.Errorf("Columns (-got, +want):\n%s", diff)
		}
		if got := render(m); len(got) != 1 || got[0] != "value=hi" {
			t.Errorf("Rows: got %q, want [value=hi]", got)
		}
		_, err := s.AddRow()
		checkKind(t, "AddRow", err, jtable.NotAnArray)
		_, err = s.DeleteRow(0)
		checkKind(t, "DeleteRow", err, jtable.NotAnArray)
		if !errors.Is(err, jtable.ErrNotAnArray) {
			t.Errorf("DeleteRow: got %v, want %v", err, jtable.ErrNotAnArray)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	const src = `[
  {"id": 1, "name": "widget", "price": 2.5, "ok": true, "note": null},
  {"id": 2, "name": "gadget", "tags": ["a", "b"], "dims": {"w": 1, "h": 2}},
  {"id": 3, "name": "", "price": -0.001}
]`
	s := mustOpen(t, src, nil)
	before := s.Root()
	m := jtable.Project(before)
	for i := range m.Rows {
		for _, col := range m.Columns {
			v, ok := m.Cell(i, col)
			if !ok {
				continue
			}
			if _, err := s.UpdateCell(i, col, jtable.Encode(v)); err != nil {
				t.Fatalf("UpdateCell(%d, %q): %v", i, col, err)
			}
			got, _ := jtable.Project(s.Root()).Cell(i, col)
			if v == value.String("") {
				continue // empty text decodes as null
			}
			if !value.Equal(got, v) {
				t.Errorf("Cell(%d, %q): got %s, want %s", i, col, got.JSON(), v.JSON())
			}
		}
	}
	checkModel(t, s)
}

func TestUpdateCell(t *testing.T) {
	t.Run("ObjectRoot", func(t *testing.T) {
		s := mustOpen(t, `{"name":"x","n":1}`, nil)
		mustResult(t)(s.UpdateCell(0, "n", "2"))
		res := mustResult(t)(s.UpdateCell(0, "extra", "[1, 2]"))
		u := res.Update.(jtable.CellUpdated)
		if diff := cmp.Diff(u.Columns, []string{"name", "n", "extra"}); diff != "" {
			t.Errorf("Columns (-got, +want):\n%s", diff)
		}
		if got, want := s.Root().JSON(), `{"name":"x","n":2,"extra":[1,2]}`; got != want {
			t.Errorf("Root: got %s, want %s", got, want)
		}
		_, err := s.UpdateCell(1, "n", "3")
		checkKind(t, "UpdateCell row 1", err, jtable.InvalidCoordinate)
		checkModel(t, s)
	})

	t.Run("NewKeyOrder", func(t *testing.T) {
		s := mustOpen(t, `[{"a":1},{"b":2},{"c":3}]`, nil)
		res := mustResult(t)(s.UpdateCell(0, "c", "x"))
		u := res.Update.(jtable.CellUpdated)
		if diff := cmp.Diff(u.Columns, []string{"a", "c", "b"}); diff != "" {
			t.Errorf("Columns (-got, +want):\n%s", diff)
		}
		checkModel(t, s)

		// Replacing an existing key does not change the columns.
		res = mustResult(t)(s.UpdateCell(0, "c", "y"))
		if u := res.Update.(jtable.CellUpdated); u.Columns != nil {
			t.Errorf("Columns: got %q, want nil", u.Columns)
		}
	})

	t.Run("InvalidCoordinate", func(t *testing.T) {
		s := mustOpen(t, `[{"a":1}, 2, [3]]`, nil)
		before := s.Text()
		for _, row := range []int{-1, 1, 2, 3} {
			_, err := s.UpdateCell(row, "a", "5")
			checkKind(t, "UpdateCell", err, jtable.InvalidCoordinate)
		}
		if got := s.Text(); got != before {
			t.Errorf("Text changed after failed updates:\ngot  %s\nwant %s", got, before)
		}
		checkModel(t, s)
	})

	t.Run("ScalarRoot", func(t *testing.T) {
		s := mustOpen(t, `42`, nil)
		_, err := s.UpdateCell(0, "other", "1")
		checkKind(t, "UpdateCell other", err, jtable.InvalidCoordinate)

		res := mustResult(t)(s.UpdateCell(0, "value", "forty two"))
		if res.Text != `"forty two"` {
			t.Errorf("Text: got %q, want %q", res.Text, `"forty two"`)
		}
		if u := res.Update.(jtable.CellUpdated); u.Reshaped || u.Columns != nil {
			t.Errorf("Update: got %+v, want no reshape", u)
		}
		checkModel(t, s)

		// Replacing the scalar with an array changes the shape of the table.
		res = mustResult(t)(s.UpdateCell(0, "value", `[{"k": 1}]`))
		u := res.Update.(jtable.CellUpdated)
		if !u.Reshaped {
			t.Error("Update: not reshaped")
		}
		if diff := cmp.Diff(u.Columns, []string{"k"}); diff != "" {
			t.Errorf("Columns (-got, +want):\n%s", diff)
		}
		if s.Model().Wrapped {
			t.Error("Model is still wrapped after reshape")
		}
		checkModel(t, s)
		mustResult(t)(s.AddRow())
		checkModel(t, s)
	})

	t.Run("UpdateCellValue", func(t *testing.T) {
		s := mustOpen(t, `[{"a":1}]`, nil)
		v := value.ArrayOf(1, 2)
		mustResult(t)(s.UpdateCellValue(0, "a", v))
		v.Append(value.Number(3)) // the session holds a copy
		if got, want := s.Root().JSON(), `[{"a":[1,2]}]`; got != want {
			t.Errorf("Root: got %s, want %s", got, want)
		}
		mustResult(t)(s.UpdateCellValue(0, "b", nil))
		if got, want := s.Root().JSON(), `[{"a":[1,2],"b":null}]`; got != want {
			t.Errorf("Root: got %s, want %s", got, want)
		}
		checkModel(t, s)
	})
}

func TestRows(t *testing.T) {
	t.Run("AddRowShapes", func(t *testing.T) {
		tests := []struct {
			input, want string
		}{
			{`[]`, `[{}]`},
			{`[1, {"a": 1}]`, `[1,{"a":1},{}]`},
			{`[{"b": [], "a": {}}, {"c": 1}]`, `[{"b":[],"a":{}},{"c":1},{"b":"","a":""}]`},
		}
		for _, test := range tests {
			s := mustOpen(t, test.input, nil)
			res := mustResult(t)(s.AddRow())
			if got := s.Root().JSON(); got != test.want {
				t.Errorf("AddRow %s: got %s, want %s", test.input, got, test.want)
			}
			if u := res.Update.(jtable.RowAdded); u.Row != s.Model().Len()-1 {
				t.Errorf("AddRow %s: row %d, want %d", test.input, u.Row, s.Model().Len()-1)
			}
			checkModel(t, s)
		}
	})

	t.Run("DeleteRowColumns", func(t *testing.T) {
		s := mustOpen(t, `[{"a":1},{"b":2},3]`, nil)
		res := mustResult(t)(s.DeleteRow(1))
		want := jtable.RowDeleted{Row: 1, Columns: []string{"a"}}
		if diff := cmp.Diff(res.Update, jtable.Update(want)); diff != "" {
			t.Errorf("Update (-got, +want):\n%s", diff)
		}
		checkModel(t, s)
		mustResult(t)(s.DeleteRow(1))
		if s.Model().Mixed {
			t.Error("Model is still mixed after removing the scalar row")
		}
		checkModel(t, s)

		for _, row := range []int{-1, 1, 5} {
			_, err := s.DeleteRow(row)
			checkKind(t, "DeleteRow", err, jtable.InvalidCoordinate)
		}
	})

	t.Run("NotAnArray", func(t *testing.T) {
		s := mustOpen(t, `{"a": 1}`, nil)
		_, err := s.AddRow()
		checkKind(t, "AddRow", err, jtable.NotAnArray)
		_, err = s.DeleteRow(99)
		checkKind(t, "DeleteRow", err, jtable.NotAnArray)
	})
}

func TestReadOnlyClosed(t *testing.T) {
	mutations := map[string]func(*jtable.Session) error{
		"UpdateCell": func(s *jtable.Session) error {
			_, err := s.UpdateCell(0, "a", "2")
			return err
		},
		"UpdateCellValue": func(s *jtable.Session) error {
			_, err := s.UpdateCellValue(0, "a", value.Null{})
			return err
		},
		"AddRow": func(s *jtable.Session) error {
			_, err := s.AddRow()
			return err
		},
		"DeleteRow": func(s *jtable.Session) error {
			_, err := s.DeleteRow(0)
			return err
		},
	}
	const src = `[{"a":1}]`

	t.Run("ReadOnly", func(t *testing.T) {
		s := mustOpen(t, src, &jtable.Options{ReadOnly: true})
		if s.Writable() {
			t.Error("Writable: got true, want false")
		}
		for name, mutate := range mutations {
			checkKind(t, name, mutate(s), jtable.ReadOnly)
		}
		if got := s.Root().JSON(); got != src {
			t.Errorf("Root: got %s, want %s", got, src)
		}

		// Nested tables can be opened for viewing.
		s2 := mustOpen(t, `[{"o":{"x":1}}]`, &jtable.Options{ReadOnly: true})
		if _, err := s2.OpenNested(0, "o"); err != nil {
			t.Errorf("OpenNested: unexpected error: %v", err)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		for _, ro := range []bool{false, true} {
			s := mustOpen(t, src, &jtable.Options{ReadOnly: ro})
			if err := s.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close again: %v", err)
			}
			if !s.Closed() {
				t.Error("Closed: got false, want true")
			}
			for name, mutate := range mutations {
				err := mutate(s)
				checkKind(t, name, err, jtable.SessionClosed)
				if !errors.Is(err, jtable.ErrSessionClosed) {
					t.Errorf("%s: got %v, want %v", name, err, jtable.ErrSessionClosed)
				}
			}
			_, err := s.OpenNested(0, "a")
			checkKind(t, "OpenNested", err, jtable.SessionClosed)
			if s.Root() != nil || s.Model() != nil || s.Text() != "" {
				t.Error("Closed session still holds its document")
			}
		}
	})
}

func TestConfirm(t *testing.T) {
	s := mustOpen(t, `[{"a":1}]`, nil)
	res := mustResult(t)(s.UpdateCell(0, "a", "2.50"))

	got := s.Confirm(res, true)
	want := jtable.CellUpdated{Row: 0, Key: "a", Value: value.Number(2.5)}
	if diff := cmp.Diff(got, jtable.Update(want)); diff != "" {
		t.Errorf("Confirm (-got, +want):\n%s", diff)
	}

	// A persistence failure does not roll back the change.
	res = mustResult(t)(s.AddRow())
	got = s.Confirm(res, false)
	if diff := cmp.Diff(got, jtable.Update(jtable.MutationFailed{Kind: jtable.PersistFailed})); diff != "" {
		t.Errorf("Confirm failed (-got, +want):\n%s", diff)
	}
	if n := s.Model().Len(); n != 2 {
		t.Errorf("Rows after failed persist: got %d, want 2", n)
	}
	if diff := cmp.Diff(s.Confirm(res, true), res.Update); diff != "" {
		t.Errorf("Confirm RowAdded (-got, +want):\n%s", diff)
	}

	t.Run("Reshaped", func(t *testing.T) {
		s := mustOpen(t, `"hi"`, nil)
		res := mustResult(t)(s.UpdateCell(0, "value", `{"value":1,"b":2}`))

		u, ok := s.Confirm(res, true).(jtable.CellUpdated)
		if !ok || !u.Reshaped {
			t.Fatalf("Confirm: got %#v, want a reshaped CellUpdated", u)
		}
		want := mustParse(t, `{"value":1,"b":2}`)
		if !value.Equal(u.Value, want) {
			t.Errorf("Confirm value: got %s, want %s", u.Value.JSON(), want.JSON())
		}
		if diff := cmp.Diff(u.Columns, []string{"value", "b"}); diff != "" {
			t.Errorf("Confirm columns (-got, +want):\n%s", diff)
		}
	})
}

func TestNestedWriteBack(t *testing.T) {
	const src = `[{"id": 1, "meta": {"tags": [{"k": "a"}, {"k": "b"}], "n": 0}}]`
	s := mustOpen(t, src, nil)

	// Open the nested object, then the array inside it.
	meta, err := s.OpenNested(0, "meta")
	if err != nil {
		t.Fatalf("OpenNested meta: %v", err)
	}
	if diff := cmp.Diff(meta.Model().Columns, []string{"tags", "n"}); diff != "" {
		t.Errorf("meta columns (-got, +want):\n%s", diff)
	}
	tags, err := meta.Open(0, "tags")
	if err != nil {
		t.Fatalf("Open tags: %v", err)
	}
	if n := tags.Model().Len(); n != 2 {
		t.Errorf("tags rows: got %d, want 2", n)
	}

	// Commit at depth 2, then write back through depth 1 into the session.
	newTags, err := tags.Commit(jtable.Edit{Row: 1, Key: "k", Text: "z"}, jtable.Edit{Row: 0, Key: "on", Text: "true"})
	if err != nil {
		t.Fatalf("Commit tags: %v", err)
	}
	newMeta, err := meta.Commit(jtable.Edit{Row: 0, Key: "tags", Value: newTags}, jtable.Edit{Row: 0, Key: "n", Text: "7"})
	if err != nil {
		t.Fatalf("Commit meta: %v", err)
	}
	mustResult(t)(s.UpdateCellValue(0, "meta", newMeta))

	const want = `[{"id":1,"meta":{"tags":[{"k":"a","on":true},{"k":"z"}],"n":7}}]`
	if got := s.Root().JSON(); got != want {
		t.Errorf("Root after write-back:\ngot  %s\nwant %s", got, want)
	}
	checkModel(t, s)

	// The nested editors are unchanged by their commits.
	if got := tags.Value().JSON(); got != `[{"k":"a"},{"k":"b"}]` {
		t.Errorf("tags after commit: got %s", got)
	}

	// Write-back through the encoded text form is equivalent.
	s2 := mustOpen(t, src, nil)
	mustResult(t)(s2.UpdateCell(0, "meta", jtable.Encode(newMeta)))
	if got := s2.Root().JSON(); got != want {
		t.Errorf("Root after text write-back:\ngot  %s\nwant %s", got, want)
	}
}

func TestNestedErrors(t *testing.T) {
	for _, v := range []value.Value{nil, value.Null{}, value.Number(1), value.String("x"), value.Bool(true)} {
		_, err := jtable.OpenNested(v)
		checkKind(t, "OpenNested", err, jtable.NestedNotEditable)
	}

	s := mustOpen(t, `[{"s": "text", "o": {}}, 5]`, nil)
	_, err := s.OpenNested(0, "s")
	checkKind(t, "OpenNested scalar", err, jtable.NestedNotEditable)
	_, err = s.OpenNested(0, "missing")
	checkKind(t, "OpenNested absent", err, jtable.NestedNotEditable)
	_, err = s.OpenNested(1, "")
	checkKind(t, "OpenNested non-object row", err, jtable.InvalidCoordinate)
	_, err = s.OpenNested(2, "o")
	checkKind(t, "OpenNested out of range", err, jtable.InvalidCoordinate)

	n, err := s.OpenNested(0, "o")
	if err != nil {
		t.Fatalf("OpenNested: %v", err)
	}
	// An object projects to a single row.
	if v, err := n.Commit(jtable.Edit{Row: 1, Key: "a", Text: "1"}); err == nil {
		t.Errorf("Commit row 1: got %v, want error", v)
	} else {
		checkKind(t, "Commit", err, jtable.InvalidCoordinate)
	}
	_, err = n.Open(0, "nothing")
	checkKind(t, "Open absent", err, jtable.NestedNotEditable)
	_, err = n.Open(3, "x")
	checkKind(t, "Open out of range", err, jtable.InvalidCoordinate)
}

func TestErrors(t *testing.T) {
	err := &jtable.Error{Kind: jtable.InvalidCoordinate, Err: errors.New("row 5")}
	if got, want := err.Error(), "invalid coordinate: row 5"; got != want {
		t.Errorf("Error: got %q, want %q", got, want)
	}
	if !errors.Is(err, jtable.ErrInvalidCoordinate) {
		t.Error("errors.Is: sentinel did not match")
	}
	if errors.Is(err, jtable.ErrReadOnly) {
		t.Error("errors.Is: wrong sentinel matched")
	}
	if got := jtable.KindOf(errors.New("other")); got != 0 {
		t.Errorf("KindOf: got %v, want 0", got)
	}
	if got := jtable.FailureOf(err); got.Kind != jtable.InvalidCoordinate {
		t.Errorf("FailureOf: got %v, want %v", got.Kind, jtable.InvalidCoordinate)
	}
	if got := jtable.ErrReadOnly.Error(); got != "read only" {
		t.Errorf("Error: got %q, want %q", got, "read only")
	}
	if got := jtable.Kind(0).String(); !strings.HasPrefix(got, "Kind(") {
		t.Errorf("Kind(0): got %q", got)
	}
}
