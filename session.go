// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable

import (
	"fmt"
	"slices"
	"strings"

	"github.com/creachadair/jtable/value"
)

// Options are settings for an edit session. A nil *Options provides defaults.
type Options struct {
	// ReadOnly, if true, causes every mutation to fail with kind ReadOnly.
	// Use this for a view that has no backing document.
	ReadOnly bool

	// Target is an opaque identifier for the document, used by the host to
	// persist the serialized text. The session does not interpret it.
	Target string

	// JWCC, if true, permits comments and trailing commas in the source.
	// Comments are not preserved.
	JWCC bool
}

func (o *Options) readOnly() bool { return o != nil && o.ReadOnly }
func (o *Options) jwcc() bool     { return o != nil && o.JWCC }

func (o *Options) target() string {
	if o == nil {
		return ""
	}
	return o.Target
}

// A Session owns a single JSON document and applies table edits to it.
// Each successful mutation returns the canonical text of the whole document.
//
// A Session is not safe for concurrent use by multiple goroutines; the
// caller must apply one mutation at a time.
type Session struct {
	root     value.Value
	model    *Model
	target   string
	readOnly bool
	closed   bool
}

// Open parses src as a JSON document and opens a session to edit it. If src
// is not valid, Open reports an error of kind ParseError.
func Open(src []byte, opts *Options) (*Session, error) {
	parse := value.Parse
	if opts.jwcc() {
		parse = value.ParseJWCC
	}
	root, err := parse(src)
	if err != nil {
		return nil, &Error{Kind: ParseError, Err: err}
	}
	return newSession(root, opts), nil
}

// OpenValue opens a session to edit a copy of v. A nil v is treated as null.
func OpenValue(v value.Value, opts *Options) *Session {
	if v == nil {
		v = value.Null{}
	}
	return newSession(value.Clone(v), opts)
}

func newSession(root value.Value, opts *Options) *Session {
	return &Session{
		root:     root,
		model:    Project(root),
		target:   opts.target(),
		readOnly: opts.readOnly(),
	}
}

// Model returns the tabular model of the document. The model is owned by the
// session and is updated in place by later mutations; the caller must not
// modify it. After Close, Model returns nil.
func (s *Session) Model() *Model { return s.model }

// Root returns a copy of the current document. After Close, Root returns nil.
func (s *Session) Root() value.Value {
	if s.closed {
		return nil
	}
	return value.Clone(s.root)
}

// Text returns the canonical serialization of the current document.
// After Close, Text returns "".
func (s *Session) Text() string {
	if s.closed {
		return ""
	}
	return value.Indent(s.root)
}

// Target returns the target identifier the session was opened with.
func (s *Session) Target() string { return s.target }

// Writable reports whether the session permits mutations.
func (s *Session) Writable() bool { return !s.readOnly }

// Closed reports whether s has been closed.
func (s *Session) Closed() bool { return s.closed }

// Close closes the session and releases the document. After Close, every
// mutation reports an error of kind SessionClosed. Close is idempotent.
func (s *Session) Close() error {
	s.closed = true
	s.root, s.model = nil, nil
	return nil
}

// checkMutable reports whether s accepts mutations.
// A closed session reports SessionClosed even if it is also read-only.
func (s *Session) checkMutable() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// UpdateCell decodes text with Decode and stores the result at the given
// row and column key, as UpdateCellValue.
func (s *Session) UpdateCell(row int, key, text string) (*Result, error) {
	if err := s.checkMutable(); err != nil {
		return nil, err
	}
	return s.setCell(row, key, Decode(text))
}

// UpdateCellValue stores a copy of v at the given row and column key. The row
// must be addressable. If key is new to the row, it is added after the
// existing keys.
//
// If the document is a scalar, the only valid cell is row 0 with key "value",
// and setting it replaces the whole document.
func (s *Session) UpdateCellValue(row int, key string, v value.Value) (*Result, error) {
	if err := s.checkMutable(); err != nil {
		return nil, err
	}
	if v == nil {
		v = value.Null{}
	}
	return s.setCell(row, key, value.Clone(v))
}

func (s *Session) setCell(row int, key string, v value.Value) (*Result, error) {
	if !s.model.Addressable(row) {
		return nil, errorf(InvalidCoordinate, "row %d is not addressable (n=%d)", row, s.model.Len())
	}
	if s.model.Wrapped {
		if key != WrapKey {
			return nil, errorf(InvalidCoordinate, "scalar document has only column %q", WrapKey)
		}
		old := s.root
		s.root = v
		return s.commit(func() { s.root = old }, func() Update {
			s.model = Project(s.root)
			u := CellUpdated{Row: row, Key: key, Value: value.Clone(v)}
			if !s.model.Wrapped {
				u.Columns = slices.Clone(s.model.Columns)
				u.Reshaped = true
			}
			return u
		})
	}

	obj := s.model.Rows[row].(*value.Object)
	old, had := obj.Get(key)
	obj.Set(key, v)
	return s.commit(func() {
		if had {
			obj.Set(key, old)
		} else {
			obj.Delete(key)
		}
	}, func() Update {
		u := CellUpdated{Row: row, Key: key, Value: value.Clone(v)}
		if !had {
			u.Columns = s.rederive()
		}
		return u
	})
}

// AddRow appends a new row to an array document. The new row is an object
// with the keys of the first row, if that is an object, each set to the empty
// string. If the document is not an array, AddRow reports an error of kind
// NotAnArray.
func (s *Session) AddRow() (*Result, error) {
	if err := s.checkMutable(); err != nil {
		return nil, err
	}
	arr, ok := s.root.(*value.Array)
	if !ok {
		return nil, errorf(NotAnArray, "cannot add a row to %s", kindName(s.root))
	}
	row := &value.Object{Members: []*value.Member{}}
	if len(arr.Values) != 0 {
		if first, ok := arr.Values[0].(*value.Object); ok {
			for _, key := range first.Keys() {
				row.Set(key, value.String(""))
			}
		}
	}
	arr.Append(row)
	pos := len(arr.Values) - 1
	return s.commit(func() { arr.Delete(pos) }, func() Update {
		s.model.Rows = append(s.model.Rows, row)
		return RowAdded{
			Row:     pos,
			NewRow:  value.Clone(row).(*value.Object),
			Columns: slices.Clone(s.model.Columns),
		}
	})
}

// DeleteRow removes the row at the given index of an array document. If the
// document is not an array it reports an error of kind NotAnArray; if row is
// out of range it reports an error of kind InvalidCoordinate.
func (s *Session) DeleteRow(row int) (*Result, error) {
	if err := s.checkMutable(); err != nil {
		return nil, err
	}
	arr, ok := s.root.(*value.Array)
	if !ok {
		return nil, errorf(NotAnArray, "cannot delete a row from %s", kindName(s.root))
	}
	if row < 0 || row >= len(arr.Values) {
		return nil, errorf(InvalidCoordinate, "row %d out of range (n=%d)", row, len(arr.Values))
	}
	old := arr.Delete(row)
	return s.commit(func() { arr.Insert(row, old) }, func() Update {
		s.model.Rows = slices.Delete(s.model.Rows, row, row+1)
		return RowDeleted{Row: row, Columns: s.rederive()}
	})
}

// OpenNested opens a nested table on the object or array at the given cell.
func (s *Session) OpenNested(row int, key string) (*Nested, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.model.Addressable(row) {
		return nil, errorf(InvalidCoordinate, "row %d is not addressable (n=%d)", row, s.model.Len())
	}
	cell, _ := s.model.Cell(row, key)
	return OpenNested(cell)
}

// Confirm reports the view update for res once the host has tried to persist
// res.Text. If persisted is true, the update of res is returned with the value
// now stored in the document. Otherwise Confirm returns a MutationFailed with
// kind PersistFailed; the mutation is not rolled back.
func (s *Session) Confirm(res *Result, persisted bool) Update {
	if !persisted {
		return MutationFailed{Kind: PersistFailed}
	}
	if u, ok := res.Update.(CellUpdated); ok && s.model != nil {
		if u.Reshaped {
			// The stored value replaced the whole document.
			u.Value = value.Clone(s.root)
		} else if v, ok := s.model.Cell(u.Row, u.Key); ok {
			u.Value = value.Clone(v)
		}
		return u
	}
	return res.Update
}

// commit serializes the document after a mutation. If serialization fails,
// it calls undo and reports the error. Otherwise it calls apply to patch the
// model and returns the resulting update.
func (s *Session) commit(undo func(), apply func() Update) (*Result, error) {
	var buf strings.Builder
	if err := value.Format(&buf, s.root); err != nil {
		undo()
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return &Result{Text: buf.String(), Update: apply()}, nil
}

// rederive recomputes the model columns, and returns the new columns if they
// differ from the old ones, or otherwise nil.
func (s *Session) rederive() []string {
	old := s.model.Columns
	s.model.rederive()
	if slices.Equal(old, s.model.Columns) {
		return nil
	}
	return slices.Clone(s.model.Columns)
}
