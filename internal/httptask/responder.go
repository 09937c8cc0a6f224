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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nabbar/edgeserve/internal/assets"
)

// Responder answers one parsed Request against a document root, optionally
// consulting a precompressed-sibling Registry before falling back to the
// original file.
type Responder struct {
	DocRoot string
	Assets  *assets.Registry
}

// Respond returns the full serialized response for req and whether the
// connection should close after it is written, following the same
// Connection-header and protocol-version rules a hand-rolled HTTP/1.1
// connection loop always needs.
func (r *Responder) Respond(req *Request) (raw []byte, closeAfter bool) {
	closeAfter = req.Close
	switch strings.ToLower(req.Header["connection"]) {
	case "close":
		closeAfter = true
	case "keep-alive":
	default:
		closeAfter = closeAfter || req.Proto == "HTTP/1.0"
	}

	if req.Method != "GET" && req.Method != "HEAD" {
		body := []byte(statusText(405) + "\n")
		return buildResponse(405, []header{
			{Name: "Allow", Value: "GET, HEAD"},
			contentLengthHeader(len(body)),
			connectionHeader(closeAfter),
		}, body), closeAfter
	}

	if req.BodyDecodeFailed {
		body := []byte(statusText(400) + "\n")
		return buildResponse(400, []header{
			contentLengthHeader(len(body)),
			connectionHeader(closeAfter),
		}, body), true
	}

	relPath, ok := sanitizePath(req.Path)
	if !ok {
		body := []byte(statusText(400) + "\n")
		return buildResponse(400, []header{
			contentLengthHeader(len(body)),
			connectionHeader(closeAfter),
		}, body), true
	}

	fsPath := filepath.Join(r.DocRoot, relPath)
	st, err := os.Stat(fsPath)
	if err == nil && st.IsDir() {
		relPath = filepath.ToSlash(filepath.Join(relPath, "index.html"))
		fsPath = filepath.Join(r.DocRoot, relPath)
		st, err = os.Stat(fsPath)
	}
	if err != nil {
		body := []byte(statusText(404) + "\n")
		return buildResponse(404, []header{
			contentLengthHeader(len(body)),
			connectionHeader(closeAfter),
		}, body), closeAfter
	}

	if ims := req.Header["if-modified-since"]; ims != "" {
		if t, perr := time.Parse(httpTimeFormat, ims); perr == nil {
			if !st.ModTime().UTC().Truncate(time.Second).After(t) {
				return buildResponse(304, []header{
					lastModifiedHeader(st.ModTime()),
					connectionHeader(closeAfter),
				}, nil), closeAfter
			}
		}
	}

	servePath := fsPath
	encoding := ""
	size := st.Size()

	if r.Assets != nil {
		if sib, found := r.Assets.Lookup(filepath.ToSlash(relPath), req.Header["accept-encoding"]); found {
			servePath = sib.Path
			encoding = sib.Algorithm.ContentEncoding()
			size = sib.Size
		}
	}

	headers := []header{
		{Name: "Content-Type", Value: contentTypeFor(fsPath)},
		contentLengthHeader(int(size)),
		lastModifiedHeader(st.ModTime()),
		connectionHeader(closeAfter),
	}
	if encoding != "" {
		headers = append(headers, header{Name: "Content-Encoding", Value: encoding})
	}

	if req.Method == "HEAD" {
		return buildResponse(200, headers, nil), closeAfter
	}

	data, rerr := os.ReadFile(servePath)
	if rerr != nil {
		body := []byte(statusText(500) + "\n")
		return buildResponse(500, []header{
			contentLengthHeader(len(body)),
			connectionHeader(true),
		}, body), true
	}

	return buildResponse(200, headers, data), closeAfter
}

// sanitizePath turns a request path into a document-root-relative path,
// rejecting anything that would climb outside the root once cleaned.
func sanitizePath(reqPath string) (string, bool) {
	if reqPath == "" || reqPath[0] != '/' {
		return "", false
	}

	clean := filepath.Clean(strings.TrimPrefix(reqPath, "/"))
	if clean == "." {
		return "index.html", true
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}

	return clean, true
}
