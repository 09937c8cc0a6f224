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

package httptask

import (
	"bytes"
	"fmt"
	"time"
)

// httpTimeFormat is RFC 1123 in GMT, the wire format for Last-Modified and
// If-Modified-Since headers.
const httpTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// header is one response header line, kept as an ordered pair rather than
// a map so a response's header order is deterministic and test-friendly.
type header struct {
	Name  string
	Value string
}

func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	default:
		return "Internal Server Error"
	}
}

// buildResponse serializes a full HTTP/1.1 response: status line, headers
// in the order given, blank line, body.
func buildResponse(status int, headers []header, body []byte) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, statusText(status))
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h.Name, h.Value)
	}
	b.WriteString("\r\n")
	b.Write(body)

	return b.Bytes()
}

func contentLengthHeader(n int) header {
	return header{Name: "Content-Length", Value: fmt.Sprintf("%d", n)}
}

func connectionHeader(close bool) header {
	if close {
		return header{Name: "Connection", Value: "close"}
	}
	return header{Name: "Connection", Value: "keep-alive"}
}

func lastModifiedHeader(t time.Time) header {
	return header{Name: "Last-Modified", Value: t.UTC().Format(httpTimeFormat)}
}
