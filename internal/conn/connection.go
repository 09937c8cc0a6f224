/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package conn defines the Connection Handle: the opaque, per-socket record
// threading together a file descriptor, its connection id, and the task
// entry point a worker runs against it. The dispatcher holds only a
// non-owning reference to a Connection once registered; it is the timer
// registry entry that owns it while the socket is live.
package conn

import (
	"github.com/google/uuid"
)

// Handler is the HTTP task entry point bound to every accepted
// Connection. Serve must tolerate spurious wake-ups and EINTR, must never
// panic out to the caller, and is responsible for re-arming the
// descriptor and touching the timer registry before returning.
type Handler interface {
	Serve(c *Connection)
}

// Connection is the per-socket state object. It carries no lock of its
// own: the one-shot readiness discipline already guarantees at most one
// worker ever touches a given FD at a time, so no per-connection mutex is
// needed (see the concurrency model's one-shot invariant).
type Connection struct {
	// FD is the non-negative socket descriptor. It is also the key used
	// in the readiness monitor and the timer registry — see the typed
	// handle table design note for why no separate id allocator exists.
	FD int

	// ID tags the connection for logs and metrics so its lifecycle can be
	// correlated across accept, every task, and close, independent of FD
	// (which the kernel may reuse microseconds after close).
	ID uuid.UUID

	// Listening marks the one Connection that wraps the server's own
	// listening socket; it never gets a Timer Entry.
	Listening bool

	// State is handler-private, per-connection storage — a partially
	// parsed request line, unconsumed bytes from a short read, anything
	// the handler needs to remember between one Task invocation and the
	// next for this same FD. The core never reads or writes it.
	State any

	handler Handler
}

// New wraps fd in a Connection bound to handler. Listening sockets pass a
// nil handler since the dispatcher — not a worker — services them.
func New(fd int, handler Handler) *Connection {
	return &Connection{FD: fd, ID: uuid.New(), handler: handler}
}

// NewListening wraps the server's listening socket.
func NewListening(fd int) *Connection {
	return &Connection{FD: fd, ID: uuid.New(), Listening: true}
}

// Task is the function submitted to the worker pool for this connection;
// its signature matches workerpool.Task.Fn.
func (c *Connection) Task(_ any) {
	if c.handler == nil {
		return
	}
	c.handler.Serve(c)
}
