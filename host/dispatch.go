// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/creachadair/jtable"
	"github.com/creachadair/mds/queue"
	"github.com/go-logr/logr"
)

// Config carries the settings for a Dispatcher.
type Config struct {
	// Store persists documents after each mutation. It must not be nil.
	Store Store

	// View receives an update for each message. If nil, updates are
	// discarded.
	View View

	// Logger receives diagnostic logs. If zero, logs are discarded.
	Logger logr.Logger
}

// A Dispatcher applies messages to a single session, one at a time and in
// the order they are posted. For each message it applies the mutation,
// persists the document, and delivers the resulting update to the view.
//
// A Dispatcher is safe for concurrent use by multiple goroutines.
type Dispatcher struct {
	s     *jtable.Session
	store Store
	view  View
	log   logr.Logger

	run sync.Mutex // held while the session is in use

	mu       sync.Mutex // protects the fields below
	q        *queue.Queue[pending]
	draining bool
}

type pending struct {
	ctx context.Context
	msg Message
}

// NewDispatcher constructs a Dispatcher that owns s.
func NewDispatcher(s *jtable.Session, cfg Config) (*Dispatcher, error) {
	if s == nil {
		return nil, errors.New("no session")
	} else if cfg.Store == nil {
		return nil, errors.New("no store")
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	view := cfg.View
	if view == nil {
		view = func(jtable.Update) {}
	}
	return &Dispatcher{
		s:     s,
		store: cfg.Store,
		view:  view,
		log:   log.WithValues("target", s.Target()),
		q:     queue.New[pending](),
	}, nil
}

// Session returns the session owned by d. The caller must not mutate the
// session directly while messages are being posted.
func (d *Dispatcher) Session() *jtable.Session { return d.s }

// Post adds msg to the queue of d. If no other caller is processing the
// queue, Post processes messages until the queue is empty before returning;
// otherwise it returns immediately and msg is processed by the caller that
// is already draining the queue.
//
// The context is used when persisting the document after msg is applied.
func (d *Dispatcher) Post(ctx context.Context, msg Message) {
	d.mu.Lock()
	d.q.Add(pending{ctx: ctx, msg: msg})
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	for {
		d.mu.Lock()
		next, ok := d.q.Pop()
		if !ok {
			d.draining = false
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()

		d.run.Lock()
		u := d.handle(next.ctx, next.msg)
		d.run.Unlock()
		d.view(u)
	}
}

// Close closes the session owned by d.
// Messages posted after Close report failures of kind SessionClosed.
func (d *Dispatcher) Close() error {
	d.run.Lock()
	defer d.run.Unlock()
	return d.s.Close()
}

// handle applies a single message to the session and persists the result.
func (d *Dispatcher) handle(ctx context.Context, msg Message) jtable.Update {
	var res *jtable.Result
	var err error
	switch m := msg.(type) {
	case UpdateCell:
		res, err = d.s.UpdateCell(m.Row, m.Key, m.Text)
	case AddRow:
		res, err = d.s.AddRow()
	case DeleteRow:
		res, err = d.s.DeleteRow(m.Row)
	default:
		panic(fmt.Sprintf("unknown message type %T", msg))
	}
	if err != nil {
		d.log.Info("Mutation rejected", "message", msg, "error", err.Error())
		return jtable.FailureOf(err)
	}

	if err := d.store.Write(ctx, d.s.Target(), res.Text); err != nil {
		d.log.Error(err, "Persist failed", "message", msg)
		return d.s.Confirm(res, false)
	}
	d.log.V(1).Info("Mutation applied", "message", msg, "bytes", len(res.Text))
	return d.s.Confirm(res, true)
}
