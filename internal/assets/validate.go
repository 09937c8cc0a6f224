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

package assets

import (
	"bufio"
	"io"
	"os"

	bz2 "github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// trialReadSize is how many decoded bytes validateSibling asks for — enough
// to catch a truncated or corrupt sibling without decoding the whole file
// at index-build time.
const trialReadSize = 4096

// validateSibling opens path, confirms its magic number matches algo, and
// decodes a few kilobytes to rule out a truncated or corrupt file. It never
// reads the whole sibling: the hot path serves these bytes unmodified, so
// indexing only needs enough confidence that the stream is not garbage.
func validateSibling(path string, algo Algorithm) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	header, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return false
	}
	if !algo.DetectHeader(header) {
		return false
	}

	var rc io.Reader
	switch algo {
	case Gzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return false
		}
		defer func() { _ = gr.Close() }()
		rc = gr

	case Bzip2:
		br2, err := bz2.NewReader(br, nil)
		if err != nil {
			return false
		}
		defer func() { _ = br2.Close() }()
		rc = br2

	case LZ4:
		rc = lz4.NewReader(br)

	case XZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return false
		}
		rc = xr

	default:
		return false
	}

	buf := make([]byte, trialReadSize)
	_, err = rc.Read(buf)
	return err == nil || err == io.EOF
}
