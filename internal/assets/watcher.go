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
	"time"

	"github.com/fsnotify/fsnotify"

	liberr "github.com/nabbar/edgeserve/errors"
)

// debounceWindow coalesces a burst of filesystem events (e.g. an editor's
// save-as-temp-then-rename dance) into a single rebuild.
const debounceWindow = 150 * time.Millisecond

// Watcher rebuilds a Registry's Index whenever the document root changes
// on disk. It runs on its own goroutine, entirely outside the epoll core.
type Watcher struct {
	reg  *Registry
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher creates an fsnotify watcher over every directory under root
// and returns a Watcher bound to reg. Call Run to start watching and Close
// to stop.
func NewWatcher(reg *Registry) (*Watcher, liberr.Error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, liberr.Newf(ErrorWatchCreate.Uint16(), "cannot create filesystem watcher: %s", err.Error())
	}

	root := reg.Root()
	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if walkErr != nil {
		_ = fsw.Close()
		return nil, liberr.Newf(ErrorWatchAdd.Uint16(), "cannot watch document root %q: %s", root, walkErr.Error())
	}

	return &Watcher{reg: reg, fsw: fsw, done: make(chan struct{})}, nil
}

// Run blocks, rebuilding the bound Registry on every debounced filesystem
// event, until Close is called. onRebuildErr, if non-nil, is called with
// any error a rebuild attempt produces — the watcher itself never treats a
// failed rebuild as fatal, it just keeps serving the last good index.
func (w *Watcher) Run(onRebuildErr func(liberr.Error)) {
	var timer *time.Timer

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					if err := w.reg.Rebuild(); err != nil && onRebuildErr != nil {
						onRebuildErr(err)
					}
				})
			} else {
				timer.Reset(debounceWindow)
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops Run and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
