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

package httptask_test

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	liberr "github.com/nabbar/edgeserve/errors"
	"github.com/nabbar/edgeserve/internal/assets"
	"github.com/nabbar/edgeserve/internal/httptask"
)

func writeFile(dir, name, content string) string {
	p := filepath.Join(dir, name)
	Expect(os.MkdirAll(filepath.Dir(p), 0o755)).To(Succeed())
	Expect(os.WriteFile(p, []byte(content), 0o644)).To(Succeed())
	return p
}

func writeGzipOf(dir, name, content string) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(content))
	Expect(err).NotTo(HaveOccurred())
	Expect(w.Close()).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, name+".gz"), buf.Bytes(), 0o644)).To(Succeed())
}

func splitStatus(raw []byte) string {
	return strings.SplitN(string(raw), "\r\n", 2)[0]
}

func headerValue(raw []byte, name string) (string, bool) {
	parts := strings.Split(string(raw), "\r\n")
	for _, p := range parts[1:] {
		if p == "" {
			break
		}
		i := strings.IndexByte(p, ':')
		if i < 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p[:i]), name) {
			return strings.TrimSpace(p[i+1:]), true
		}
	}
	return "", false
}

var _ = Describe("Responder", func() {
	var (
		root string
		reg  *assets.Registry
		resp *httptask.Responder
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		writeFile(root, "index.html", "<html>hi</html>")
		writeFile(root, "about.txt", "plain text body")
		writeGzipOf(root, "about.txt", "plain text body")

		var rerr liberr.Error
		reg, rerr = assets.NewRegistry(root)
		Expect(rerr).To(BeNil())

		resp = &httptask.Responder{DocRoot: root, Assets: reg}
	})

	parse := func(method, path string, headers map[string]string) *httptask.Request {
		h := map[string]string{}
		for k, v := range headers {
			h[strings.ToLower(k)] = v
		}
		return &httptask.Request{Method: method, Path: path, Proto: "HTTP/1.1", Header: h}
	}

	It("serves the root as index.html", func() {
		raw, closeAfter := resp.Respond(parse("GET", "/", nil))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 200 OK"))
		Expect(closeAfter).To(BeFalse())
		Expect(string(raw)).To(HaveSuffix("<html>hi</html>"))
	})

	It("returns 404 for a missing file", func() {
		raw, _ := resp.Respond(parse("GET", "/nope.html", nil))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 404 Not Found"))
	})

	It("returns 405 with an Allow header for unsupported methods", func() {
		raw, closeAfter := resp.Respond(parse("POST", "/", nil))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 405 Method Not Allowed"))
		Expect(closeAfter).To(BeFalse())
		v, ok := headerValue(raw, "Allow")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("GET, HEAD"))
	})

	It("returns 400 and forces a close on a path escaping the document root", func() {
		raw, closeAfter := resp.Respond(parse("GET", "/../../etc/passwd", nil))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 400 Bad Request"))
		Expect(closeAfter).To(BeTrue())
	})

	It("omits the body for HEAD but still reports Content-Length", func() {
		raw, _ := resp.Respond(parse("HEAD", "/about.txt", nil))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 200 OK"))
		v, ok := headerValue(raw, "Content-Length")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("15"))
		Expect(string(raw)).To(HaveSuffix("\r\n\r\n"))
	})

	It("serves the gzip sibling and sets Content-Encoding when the client accepts it", func() {
		raw, _ := resp.Respond(parse("GET", "/about.txt", map[string]string{"Accept-Encoding": "gzip, deflate"}))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 200 OK"))
		v, ok := headerValue(raw, "Content-Encoding")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("gzip"))
	})

	It("falls back to the original file when the client sends no Accept-Encoding", func() {
		raw, _ := resp.Respond(parse("GET", "/about.txt", nil))
		_, ok := headerValue(raw, "Content-Encoding")
		Expect(ok).To(BeFalse())
		Expect(string(raw)).To(HaveSuffix("plain text body"))
	})

	It("returns 304 when If-Modified-Since is at or after the file's mtime", func() {
		future := time.Now().Add(time.Hour).UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")
		raw, _ := resp.Respond(parse("GET", "/about.txt", map[string]string{"If-Modified-Since": future}))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 304 Not Modified"))
	})

	It("closes after responding when the request asked for Connection: close", func() {
		raw, closeAfter := resp.Respond(parse("GET", "/", map[string]string{"Connection": "close"}))
		Expect(splitStatus(raw)).To(Equal("HTTP/1.1 200 OK"))
		Expect(closeAfter).To(BeTrue())
	})
})
