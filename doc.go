// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package jtable projects JSON values into tables for display and editing,
// and reconciles table edits back into a single well-formed JSON document.
//
// # Projection
//
// Project derives a Model from any JSON value. The rows of the model depend
// on the shape of the value:
//
//	Value      | Rows                        | Columns
//	---------- | --------------------------- | ------------------------------
//	array      | the elements, in order      | union of object element keys
//	object     | the object itself           | the object keys
//	scalar     | a synthetic {"value": x}    | "value"
//
// Columns are listed in the order they are first seen, scanning rows from top
// to bottom and each row's keys from left to right. Rows that are not objects
// contribute no columns, and are shown in a single unnamed column.
//
// # Editing
//
// A Session owns one document. Open parses the source text, and the mutation
// methods UpdateCell, AddRow, and DeleteRow apply table edits to it:
//
//	s, err := jtable.Open(src, &jtable.Options{Target: path})
//	if err != nil {
//	   log.Fatalf("Open: %v", err)
//	}
//	res, err := s.UpdateCell(0, "name", "Alice")
//	if err != nil {
//	   log.Fatalf("Update: %v", err)
//	}
//	ok := write(path, res.Text) == nil
//	view.Apply(s.Confirm(res, ok))
//
// Each successful mutation returns the canonical text of the whole document,
// formatted as JavaScript JSON.stringify(v, null, 2) would, and an Update the
// view can use to patch only the affected region. Errors have concrete type
// *Error, and can be classified with KindOf or with errors.Is against the
// sentinel values ErrReadOnly, ErrNotAnArray, and so on.
//
// # Cell text
//
// Cells are edited as free text. Decode recovers the closest JSON value for
// the text of a cell, and Encode renders a value as editable text, so that
// plain strings need not be quoted.
//
// # Nested values
//
// A cell holding an object or array is edited as a table of its own. Use
// Session.OpenNested (or OpenNested on any value) to open a Nested editor,
// Nested.Commit to apply edits to a copy, and Session.UpdateCellValue to write
// the committed value back into the parent cell.
package jtable
