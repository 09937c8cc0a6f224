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

// Package timerwheel tracks per-connection last-activity timestamps in
// strict insertion order, so the oldest entry is always at the head and an
// idle sweep costs time proportional to the number of entries actually
// expiring rather than to the registry's total size.
package timerwheel

import (
	"container/list"
	"sync"
)

type entry[K comparable] struct {
	key K
	ts  int64
}

// Registry is the Timer Registry: a doubly-linked list ordered by
// insertion (which equals time order, since Update always removes and
// re-appends at the tail) plus a side index for O(1) key lookup.
type Registry[K comparable] struct {
	mu    sync.Mutex
	list  *list.List
	index map[K]*list.Element
}

// New returns an empty Registry keyed by K — typically a connection
// identifier or a file descriptor.
func New[K comparable]() *Registry[K] {
	return &Registry[K]{
		list:  list.New(),
		index: make(map[K]*list.Element),
	}
}

// Append inserts key at the tail with timestamp now. Returns ErrorDuplicate
// if key is already present.
func (r *Registry[K]) Append(key K, now int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[key]; ok {
		return ErrorDuplicate.Error()
	}

	e := r.list.PushBack(&entry[K]{key: key, ts: now})
	r.index[key] = e
	return nil
}

// Update removes the existing node for key, if any, and re-appends it at
// the tail with a fresh timestamp. If key was absent it is silently
// appended, matching the source's tolerant touch() semantics.
func (r *Registry[K]) Update(key K, now int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.index[key]; ok {
		r.list.Remove(e)
	}

	ne := r.list.PushBack(&entry[K]{key: key, ts: now})
	r.index[key] = ne
}

// Remove deletes the node for key. Silent if absent.
func (r *Registry[K]) Remove(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.index[key]; ok {
		r.list.Remove(e)
		delete(r.index, key)
	}
}

// Len returns the number of tracked entries.
func (r *Registry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list.Len()
}

// First returns the oldest entry's key and timestamp, and false if the
// registry is empty.
func (r *Registry[K]) First() (key K, ts int64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.list.Front(); e != nil {
		en := e.Value.(*entry[K])
		return en.key, en.ts, true
	}
	return key, 0, false
}

// Expire walks from the head while now−timestamp ≥ limitMs, invoking
// onExpire(key) for each such entry and stopping at the first entry that
// is still live — the list's insertion-order invariant guarantees every
// later entry is at least as fresh. onExpire is expected to close the
// underlying descriptor and call Remove itself; Expire does not remove
// entries on the caller's behalf, so a callback that forgets to call
// Remove will see the same key again on the next sweep. Returns the
// number of entries passed to onExpire.
func (r *Registry[K]) Expire(now int64, limitMs int64, onExpire func(key K)) int {
	r.mu.Lock()
	var expired []K
	for e := r.list.Front(); e != nil; e = e.Next() {
		en := e.Value.(*entry[K])
		if now-en.ts < limitMs {
			break
		}
		expired = append(expired, en.key)
	}
	r.mu.Unlock()

	for _, k := range expired {
		onExpire(k)
	}
	return len(expired)
}
