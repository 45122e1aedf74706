// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vernuntii Contributors

package events

import (
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewID generates a new ULID used to identify an emission context.
func NewID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// Work is one deferred handler invocation waiting in a context's queue.
type Work struct {
	Channel      string
	Subscription uint64
	Owner        string
	Run          func() error
}

// invoke runs the work item, converting errors and panics into faults.
func (w Work) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			recordFault(w.Channel)
			err = handlerPanic(w, r)
		}
	}()
	if runErr := w.Run(); runErr != nil {
		recordFault(w.Channel)
		return handlerFault(w, runErr)
	}
	return nil
}

// Context is the per-run scheduler for deferred emissions: a FIFO queue of
// work items plus the completing flag. A Context is owned by exactly one
// goroutine; it is not safe for concurrent use.
type Context struct {
	id         ulid.ULID
	queue      []Work
	completing bool
}

// NewContext creates an empty emission context.
func NewContext() *Context {
	return &Context{id: NewID()}
}

// ID returns the unique identifier of this context.
func (c *Context) ID() ulid.ULID {
	return c.id
}

// Completing reports whether the context entered its completing phase.
func (c *Context) Completing() bool {
	return c.completing
}

// BeginCompleting switches the context into the completing phase. From now
// on schedulable handlers are skipped and Schedule fails; entries that are
// already queued still drain.
func (c *Context) BeginCompleting() {
	c.completing = true
}

// Pending returns the number of queued work items.
func (c *Context) Pending() int {
	return len(c.queue)
}

// Schedule appends a work item to the queue.
func (c *Context) Schedule(w Work) error {
	if c.completing {
		return ErrContextClosed(c.id.String(), w.Channel)
	}
	c.queue = append(c.queue, w)
	return nil
}

// Drain invokes queued work in FIFO order until the queue is empty. Work
// scheduled while draining is picked up by the same call. On the first
// fault the remaining entries are discarded and the fault is returned.
func (c *Context) Drain() error {
	for len(c.queue) > 0 {
		w := c.queue[0]
		c.queue[0] = Work{}
		c.queue = c.queue[1:]

		if err := w.invoke(); err != nil {
			if dropped := len(c.queue); dropped > 0 {
				slog.Debug("discarding queued emissions after handler fault",
					"context", c.id.String(),
					"channel", w.Channel,
					"dropped", dropped)
			}
			c.queue = nil
			return err
		}
	}
	c.queue = nil
	return nil
}
