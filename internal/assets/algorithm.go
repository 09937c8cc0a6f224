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

// Package assets indexes the precompressed siblings (index.html.gz next to
// index.html, and so on) a document root may contain, so the static
// responder can serve bytes straight off disk instead of compressing on
// every request.
package assets

import "bytes"

// Algorithm identifies one of the precompressed sibling encodings the
// static responder knows how to serve untouched.
type Algorithm uint8

const (
	None Algorithm = iota
	Gzip
	Bzip2
	LZ4
	XZ
)

// Preference is the order the negotiator tries candidates in when a
// request's Accept-Encoding names more than one algorithm this server has
// a sibling for.
var Preference = []Algorithm{Gzip, XZ, Bzip2, LZ4}

func (a Algorithm) IsNone() bool {
	return a == None
}

func (a Algorithm) String() string {
	switch a {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case LZ4:
		return "lz4"
	case XZ:
		return "xz"
	default:
		return "none"
	}
}

// Extension is the suffix the sibling file carries relative to its
// uncompressed original.
func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case LZ4:
		return ".lz4"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// ContentEncoding is the HTTP header value this algorithm is advertised
// under. LZ4 and Bzip2 have no registered Content-Encoding token, so a
// sibling in either of those can be indexed but never selected for a
// request — it exists for completeness of the registry, not because the
// wire format is reachable.
func (a Algorithm) ContentEncoding() string {
	switch a {
	case Gzip:
		return "gzip"
	case XZ:
		return "xz"
	default:
		return ""
	}
}

// DetectHeader sniffs a sibling file's leading bytes against the format's
// magic number, the first of two checks (the second being a trial decode)
// an indexed sibling must pass before it is advertised.
func (a Algorithm) DetectHeader(h []byte) bool {
	switch a {
	case Gzip:
		exp := []byte{0x1f, 0x8b}
		return len(h) >= 2 && bytes.Equal(h[:2], exp)
	case Bzip2:
		exp := []byte{'B', 'Z', 'h'}
		return len(h) >= 4 && bytes.Equal(h[:3], exp) && h[3] >= '0' && h[3] <= '9'
	case LZ4:
		exp := []byte{0x04, 0x22, 0x4d, 0x18}
		return len(h) >= 4 && bytes.Equal(h[:4], exp)
	case XZ:
		exp := []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
		return len(h) >= 6 && bytes.Equal(h[:6], exp)
	default:
		return false
	}
}

// List returns every algorithm the registry recognizes, None included.
func List() []Algorithm {
	return []Algorithm{None, Gzip, Bzip2, LZ4, XZ}
}
