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

package httptask

import (
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/edgeserve/internal/assets"
	"github.com/nabbar/edgeserve/internal/conn"
	"github.com/nabbar/edgeserve/internal/deflate"
	"github.com/nabbar/edgeserve/internal/metrics"
	"github.com/nabbar/edgeserve/internal/poller"
	"github.com/nabbar/edgeserve/internal/timerwheel"
	"github.com/nabbar/edgeserve/logger"
)

// readChunk is how many bytes Serve asks the kernel for per read(2) call
// while draining a ready descriptor.
const readChunk = 16 * 1024

// maxRequestHeader bounds how many unparsed bytes Serve will hold for one
// connection before giving up on ever seeing a blank line — a client that
// never terminates its headers must not be allowed to grow this buffer
// without limit.
const maxRequestHeader = 64 * 1024

// state is the handler-private data Task keeps in Connection.State between
// Serve invocations for the same FD: bytes read but not yet parsed into a
// complete request.
type state struct {
	buf []byte
}

// Task binds a document root and its precompressed-sibling registry to the
// Readiness Monitor and Timer Registry, and implements conn.Handler.
type Task struct {
	DocRoot     string
	Assets      *assets.Registry
	Timers      *timerwheel.Registry[int]
	Poll        *poller.Poller
	Log         logger.Logger
	Met         *metrics.Metrics
	KeepAliveMs int64

	// OnClose, if set, is invoked with the FD whenever Serve closes a
	// connection — the dispatcher uses it to drop its own fd-to-Connection
	// lookup entry, which this package has no reason to know about.
	OnClose func(fd int)
}

// Serve drains every ready byte from c.FD, answers as many complete
// pipelined requests as the buffered bytes allow, and either re-arms the
// descriptor for the next readiness event or closes it. It never blocks:
// the descriptor is non-blocking and one-shot, so Serve always returns
// once it either sees EAGAIN or decides to close.
func (t *Task) Serve(c *conn.Connection) {
	st, _ := c.State.(*state)
	if st == nil {
		st = &state{}
		c.State = st
	}

	if !t.drain(c, st) {
		return
	}

	resp := &Responder{DocRoot: t.DocRoot, Assets: t.Assets}

	for {
		req, hlen, ok := parseRequest(st.buf)
		if !ok {
			if len(st.buf) > maxRequestHeader {
				t.closeConn(c, "request header too large")
				return
			}
			break
		}

		total := hlen + int(req.ContentLength)
		if len(st.buf) < total {
			if total > maxRequestHeader {
				t.closeConn(c, "request body too large")
				return
			}
			break
		}

		body := st.buf[hlen:total]
		if strings.EqualFold(req.Header["content-encoding"], "deflate") && len(body) > 0 {
			req.Body, req.BodyDecodeFailed = decodeDeflateBody(body)
		} else {
			req.Body = body
		}

		raw, closeAfter := resp.Respond(req)
		st.buf = st.buf[total:]

		if !t.write(c, raw) {
			t.closeConn(c, "write failed")
			return
		}
		if t.Met != nil {
			t.Met.AddBytesServed(len(raw))
		}
		if closeAfter {
			t.closeConn(c, "connection: close")
			return
		}
	}

	if len(st.buf) == 0 {
		st.buf = nil
	}

	now := time.Now().UnixMilli()
	t.Timers.Update(c.FD, now)

	if err := t.Poll.Modify(c.FD, poller.Readable|poller.EdgeTriggered|poller.OneShot); err != nil {
		t.closeConn(c, "re-arm failed")
	}
}

// drain reads every available byte off c.FD into st.buf. It returns false
// if the connection was closed (by either end) during the drain, in which
// case the caller must not touch c again.
func (t *Task) drain(c *conn.Connection, st *state) bool {
	var tmp [readChunk]byte

	for {
		n, err := unix.Read(c.FD, tmp[:])
		switch {
		case n > 0:
			st.buf = append(st.buf, tmp[:n]...)
			if err == nil {
				continue
			}
		case n == 0 && err == nil:
			t.closeConn(c, "peer closed")
			return false
		}

		if err == nil {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return true
		}
		if err == unix.EINTR {
			continue
		}

		t.closeConn(c, "read error")
		return false
	}
}

// write writes the whole of raw to c.FD, retrying on EAGAIN and EINTR. The
// descriptor is one-shot for reads, not writes, so a short write simply
// loops — no re-arm is needed to keep writing.
func (t *Task) write(c *conn.Connection, raw []byte) bool {
	for len(raw) > 0 {
		n, err := unix.Write(c.FD, raw)
		if n > 0 {
			raw = raw[n:]
		}
		if err == nil {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			continue
		}
		return false
	}
	return true
}

// closeConn removes c.FD from the readiness monitor and the timer
// registry and closes the descriptor. Safe to call exactly once per
// connection lifetime; Serve never touches c again afterward.
func (t *Task) closeConn(c *conn.Connection, reason string) {
	_ = t.Poll.Remove(c.FD)
	t.Timers.Remove(c.FD)
	_ = unix.Close(c.FD)

	if t.Log != nil {
		t.Log.Debug("connection closed", logger.Fields{"fd": c.FD, "conn_id": c.ID.String(), "reason": reason})
	}
	if t.OnClose != nil {
		t.OnClose(c.FD)
	}
}

// decodeDeflateBody inflates a Content-Encoding: deflate request body,
// growing the output buffer as needed. ok is false if the stream never
// reaches deflate.ReasonComplete — Respond turns that into a 400 rather
// than forwarding a truncated or corrupt decode.
func decodeDeflateBody(body []byte) (out []byte, ok bool) {
	buf := make([]byte, len(body)*4+64)
	for {
		n, reason := deflate.Inflate(buf, body)
		if reason == deflate.ReasonOutputExhausted {
			buf = make([]byte, len(buf)*2)
			continue
		}
		return buf[:n], reason == deflate.ReasonComplete
	}
}
