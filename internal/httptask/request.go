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

// Package httptask is the HTTP/1.1 request handler bound to every accepted
// Connection: request-line and header parsing, static file responses with
// conditional requests and precompressed sibling negotiation, and
// keep-alive framing. It implements conn.Handler.
package httptask

import (
	"bytes"
	"strconv"
	"strings"
)

// Request is a parsed HTTP/1.1 request line and header block. It never
// holds more than one request's worth of bytes — Task.Serve slices a new
// Request out of the connection's buffer for every pipelined request.
type Request struct {
	Method        string
	Path          string
	Proto         string
	Header        map[string]string
	ContentLength int64
	Close         bool

	// Body is the request body after Content-Encoding: deflate decoding,
	// set by Task.Serve once the full body has arrived. Empty for every
	// route this server answers today (GET/HEAD never carry one), but
	// BodyDecodeFailed still needs to be observable so a malformed
	// deflate stream on a body-bearing request is rejected rather than
	// silently ignored.
	Body             []byte
	BodyDecodeFailed bool
}

// parseRequest looks for a complete request line and header block (ending
// at the blank line) inside buf. ok is false if buf does not yet hold one
// — the caller should wait for more bytes rather than treat this as an
// error, since request headers can arrive across more than one read.
func parseRequest(buf []byte) (req *Request, headerLen int, ok bool) {
	idx := bytes.Index(buf, []byte("\r\n\r\n"))
	if idx < 0 {
		return nil, 0, false
	}
	headerLen = idx + 4

	lines := strings.Split(string(buf[:idx]), "\r\n")
	if len(lines) == 0 {
		return nil, 0, false
	}

	parts := strings.Fields(lines[0])
	if len(parts) != 3 {
		return nil, 0, false
	}

	req = &Request{
		Method: parts[0],
		Path:   parts[1],
		Proto:  parts[2],
		Header: make(map[string]string, len(lines)-1),
	}

	for _, line := range lines[1:] {
		i := strings.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(line[:i]))
		v := strings.TrimSpace(line[i+1:])
		req.Header[k] = v
	}

	if v, present := req.Header["content-length"]; present {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			req.ContentLength = n
		}
	}

	switch strings.ToLower(req.Header["connection"]) {
	case "close":
		req.Close = true
	case "keep-alive":
		req.Close = false
	default:
		req.Close = req.Proto == "HTTP/1.0"
	}

	return req, headerLen, true
}
