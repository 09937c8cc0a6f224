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
	"os"
	"path/filepath"
	"strings"
	"sync"

	liberr "github.com/nabbar/edgeserve/errors"
)

// Sibling is one precompressed alternative the responder may choose to
// serve in place of the original file.
type Sibling struct {
	Algorithm Algorithm
	Path      string
	Size      int64
}

// entry is everything the index knows about one original file under the
// document root.
type entry struct {
	siblings map[Algorithm]Sibling
}

// Index is a read-mostly snapshot of a document root's precompressed
// siblings. The zero value is an empty, usable index.
type Index struct {
	root    string
	entries map[string]entry
}

// Registry holds the current Index behind a RWMutex and rebuilds it on
// demand; the HTTP task only ever takes the read side, matching §5's
// division of labor between the watcher goroutine and request handling.
type Registry struct {
	mu  sync.RWMutex
	idx *Index
}

// NewRegistry builds an initial index by walking root once. It returns a
// coded error only when root itself cannot be walked — a setup failure,
// not a per-file one; a single malformed sibling is skipped, not fatal.
func NewRegistry(root string) (*Registry, liberr.Error) {
	idx, err := buildIndex(root)
	if err != nil {
		return nil, liberr.Newf(ErrorDocRootMissing.Uint16(), "cannot index document root %q: %s", root, err.Error())
	}
	return &Registry{idx: idx}, nil
}

// Rebuild re-walks the document root and swaps in a fresh Index, discarding
// the previous one. Called by the watcher goroutine after a filesystem
// event settles.
func (r *Registry) Rebuild() liberr.Error {
	idx, err := buildIndex(r.Root())
	if err != nil {
		return liberr.Newf(ErrorDocRootMissing.Uint16(), "cannot rebuild index for %q: %s", r.Root(), err.Error())
	}

	r.mu.Lock()
	r.idx = idx
	r.mu.Unlock()
	return nil
}

// Root returns the document root the registry indexes.
func (r *Registry) Root() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idx.root
}

// Lookup returns the best sibling for relPath given an Accept-Encoding
// header value, following Preference order. ok is false if no sibling
// satisfies the request, meaning the responder must serve the original.
func (r *Registry) Lookup(relPath string, acceptEncoding string) (Sibling, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, found := r.idx.entries[relPath]
	if !found || len(e.siblings) == 0 {
		return Sibling{}, false
	}

	for _, algo := range Preference {
		enc := algo.ContentEncoding()
		if enc == "" || !acceptsEncoding(acceptEncoding, enc) {
			continue
		}
		if s, ok := e.siblings[algo]; ok {
			return s, true
		}
	}
	return Sibling{}, false
}

// acceptsEncoding reports whether token appears among the comma-separated
// entries of an Accept-Encoding header, ignoring any q-value suffix.
func acceptsEncoding(header string, token string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if i := strings.IndexByte(part, ';'); i >= 0 {
			part = part[:i]
		}
		if strings.EqualFold(part, token) {
			return true
		}
	}
	return false
}

// buildIndex walks root and, for every regular file, looks for a sibling
// named after each known Algorithm's Extension. A sibling is only added to
// the index once validateSibling confirms it decodes.
func buildIndex(root string) (*Index, error) {
	idx := &Index{root: root, entries: make(map[string]entry)}

	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		if err == nil {
			err = os.ErrInvalid
		}
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		for _, algo := range List() {
			if algo.IsNone() || !strings.HasSuffix(path, algo.Extension()) {
				continue
			}
			original := strings.TrimSuffix(path, algo.Extension())
			if _, err := os.Stat(original); err != nil {
				continue
			}
			if !validateSibling(path, algo) {
				continue
			}

			rel, err := filepath.Rel(root, original)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			e := idx.entries[rel]
			if e.siblings == nil {
				e.siblings = make(map[Algorithm]Sibling)
			}
			e.siblings[algo] = Sibling{Algorithm: algo, Path: path, Size: info.Size()}
			idx.entries[rel] = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return idx, nil
}
