// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package host implements a reference host for table edit sessions. A host
// receives edit messages from a view, applies them to a session one at a
// time, persists the resulting document, and reports view updates.
package host

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/jtable"
)

// A Message is an edit request from a view. The concrete type of a Message is
// one of UpdateCell, AddRow, or DeleteRow.
type Message interface {
	isMessage()
}

// UpdateCell requests that the cell at Row and Key be set from Text.
type UpdateCell struct {
	Row  int
	Key  string
	Text string
}

// AddRow requests a new row at the end of an array document.
type AddRow struct{}

// DeleteRow requests removal of the row at index Row of an array document.
type DeleteRow struct {
	Row int
}

func (UpdateCell) isMessage() {}
func (AddRow) isMessage()     {}
func (DeleteRow) isMessage()  {}

func (m UpdateCell) String() string { return fmt.Sprintf("UpdateCell(%d, %q)", m.Row, m.Key) }
func (AddRow) String() string       { return "AddRow" }
func (m DeleteRow) String() string  { return fmt.Sprintf("DeleteRow(%d)", m.Row) }

// A View receives updates from a host.
type View func(jtable.Update)

// A Store persists the serialized text of a document.
type Store interface {
	// Write replaces the contents of target with text.
	Write(ctx context.Context, target, text string) error
}

// FileStore is a Store that treats targets as file paths. Each write replaces
// the file atomically, so that a failed write leaves the file unchanged.
type FileStore struct {
	// Mode is the permission mode for new files. If zero, 0644 is used.
	Mode os.FileMode
}

// Write implements the Store interface.
func (f FileStore) Write(ctx context.Context, target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mode := f.Mode
	if mode == 0 {
		mode = 0644
	}
	return atomicfile.WriteData(target, []byte(text), mode)
}

// MemStore is a Store that keeps documents in memory.
// A zero value is ready for use. It is safe for concurrent use.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]string
	err  error
}

// Write implements the Store interface. If a failure has been set with Fail,
// Write reports that error and does not store text.
func (m *MemStore) Write(ctx context.Context, target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.docs == nil {
		m.docs = make(map[string]string)
	}
	m.docs[target] = text
	return nil
}

// Get returns the text most recently written to target, and reports whether
// any text was written.
func (m *MemStore) Get(target string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.docs[target]
	return text, ok
}

// Fail causes subsequent writes to report err. If err == nil, writes succeed
// again.
func (m *MemStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
