// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package jtable

import "github.com/creachadair/jtable/value"

// An Update describes the effect of a mutation on the table view, so that a
// view can patch only the affected region. The concrete type of an Update is
// one of CellUpdated, RowAdded, RowDeleted, or MutationFailed.
type Update interface {
	isUpdate()
}

// CellUpdated reports that the cell at Row and Key now holds Value.
type CellUpdated struct {
	Row   int
	Key   string
	Value value.Value

	// If non-nil, the column set changed and these are the new columns.
	Columns []string

	// Reshaped is true if the root value changed shape, and the view must be
	// rebuilt from the session model.
	Reshaped bool
}

// RowAdded reports that NewRow was appended to the table at index Row.
// Columns are the columns of the table after the addition.
type RowAdded struct {
	Row     int
	NewRow  *value.Object
	Columns []string
}

// RowDeleted reports that the row at index Row was removed, and later rows
// shifted down by one.
type RowDeleted struct {
	Row int

	// If non-nil, the column set changed and these are the new columns.
	Columns []string
}

// MutationFailed reports that a mutation was not applied or not persisted.
type MutationFailed struct {
	Kind Kind
}

func (CellUpdated) isUpdate()    {}
func (RowAdded) isUpdate()       {}
func (RowDeleted) isUpdate()     {}
func (MutationFailed) isUpdate() {}

// A Result is the outcome of a successful mutation.
type Result struct {
	// Text is the canonical serialization of the whole document after the
	// mutation, to be written verbatim to the session target.
	Text string

	// Update is the view update to deliver once Text is persisted.
	Update Update
}

// FailureOf returns a MutationFailed update for err.
// If err is not an *Error, the kind is reported as 0.
func FailureOf(err error) MutationFailed { return MutationFailed{Kind: KindOf(err)} }
