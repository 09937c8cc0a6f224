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

//go:build linux

// Package poller wraps Linux epoll behind a small, typed surface: callers
// register a file descriptor, ready events carry that descriptor back as an
// integer key, never a raw pointer, and callers resolve that key against
// their own side table. This avoids
// round-tripping an unsafe.Pointer through the kernel just to get an
// attachment back out of Wait.
package poller

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Flag is the semantic readiness option set a descriptor is registered
// with. It maps onto the epoll event bits without exposing them.
type Flag uint32

const (
	Readable Flag = 1 << iota
	EdgeTriggered
	OneShot
	Err
	Hangup
)

// MaxBatch bounds the number of ready events a single Wait call returns.
const MaxBatch = 2048

func (f Flag) toEpoll() uint32 {
	var e uint32
	if f&Readable != 0 {
		e |= unix.EPOLLIN
	}
	if f&EdgeTriggered != 0 {
		e |= unix.EPOLLET
	}
	if f&OneShot != 0 {
		e |= unix.EPOLLONESHOT
	}
	return e
}

func fromEpoll(e uint32) Flag {
	var f Flag
	if e&unix.EPOLLIN != 0 {
		f |= Readable
	}
	if e&unix.EPOLLERR != 0 {
		f |= Err
	}
	if e&unix.EPOLLHUP != 0 || e&unix.EPOLLRDHUP != 0 {
		f |= Hangup
	}
	return f
}

// Event is a single ready-event record. Key is the descriptor passed to
// Add, since a fd is a unique key for as long as it is open.
type Event struct {
	Key   int
	Flags Flag
}

// Poller is the Readiness Monitor: create, add, wait, destroy.
type Poller struct {
	mu     sync.Mutex
	fd     int
	closed bool
}

// New creates a fresh epoll instance.
func New() (*Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorCreate.Error(err)
	}
	return &Poller{fd: fd}, nil
}

// Add registers fd under the given flag set. The caller's key is the fd
// itself; epoll already keys events by descriptor, so reusing the fd as
// the side-table key needs no separate allocator.
func (p *Poller) Add(fd int, flags Flag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrorClosed.Error()
	}

	ev := unix.EpollEvent{Events: flags.toEpoll(), Fd: int32(fd)}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return ErrorAdd.Error(err)
	}
	return nil
}

// Modify re-arms fd with a fresh flag set. Used to re-arm a one-shot
// descriptor at the end of a worker task.
func (p *Poller) Modify(fd int, flags Flag) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrorClosed.Error()
	}

	ev := unix.EpollEvent{Events: flags.toEpoll(), Fd: int32(fd)}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return ErrorModify.Error(err)
	}
	return nil
}

// Remove unregisters fd. Safe to call even if fd was never added; the
// kernel error is swallowed since the caller's intent (fd no longer
// monitored) already holds.
func (p *Poller) Remove(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}

	_ = unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
	return nil
}

// Wait blocks up to timeoutMs (negative blocks indefinitely, 0 polls) and
// fills out with up to len(out) ready events, returning the count. EINTR
// is retried transparently since it is not a meaningful failure for any
// caller.
func (p *Poller) Wait(out []Event, timeoutMs int) (int, error) {
	raw := make([]unix.EpollEvent, len(out))

	for {
		n, err := unix.EpollWait(p.fd, raw, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, ErrorWait.Error(err)
		}

		for i := 0; i < n; i++ {
			out[i] = Event{Key: int(raw[i].Fd), Flags: fromEpoll(raw[i].Events)}
		}
		return n, nil
	}
}

// Close releases the underlying epoll descriptor. Idempotent.
func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.fd)
}
