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

// Package workerpool implements a fixed-size pool of goroutines draining an
// unbounded FIFO task queue. Concurrency is bounded deliberately: for the
// I/O-bound tasks this pool runs, most workers spend their time blocked in
// a socket read or write, so letting the pool grow unbounded would only
// grow the number of blocked goroutines, not throughput.
package workerpool

import (
	"context"
	"sync"
)

// Task is a unit of work: a function plus its single argument, queued and
// later run by exactly one worker.
type Task struct {
	Fn  func(arg any)
	Arg any
}

// Pool is the Worker Pool State: a fixed worker count, a task FIFO, the
// alive/working counters, a shutdown flag, one mutex and two condition
// variables ("work available" and "all idle").
type Pool struct {
	mu sync.Mutex

	workAvail *sync.Cond
	allIdle   *sync.Cond

	queue []Task

	size     int
	alive    int
	working  int
	shutdown bool
}

// New spawns n workers, all immediately blocked on "work available". n is
// floored at 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}

	p := &Pool{size: n}
	p.workAvail = sync.NewCond(&p.mu)
	p.allIdle = sync.NewCond(&p.mu)

	p.mu.Lock()
	p.alive = n
	p.mu.Unlock()

	for i := 0; i < n; i++ {
		go p.run()
	}

	return p
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	return p.size
}

// Working returns the number of workers currently executing a task.
func (p *Pool) Working() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.working
}

// Submit appends a task to the FIFO under the pool mutex and wakes one
// worker. Never blocks: the queue is unbounded.
func (p *Pool) Submit(fn func(arg any), arg any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return
	}

	p.queue = append(p.queue, Task{Fn: fn, Arg: arg})
	p.workAvail.Signal()
}

// WaitIdle blocks until the queue is empty and no worker is executing a
// task.
func (p *Pool) WaitIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) > 0 || p.working > 0 {
		p.allIdle.Wait()
	}
}

// WaitIdleContext is WaitIdle with early return if ctx is cancelled before
// the pool drains; it is a convenience wrapper, not a replacement for the
// condvar-based WaitIdle the dispatcher's shutdown path uses.
func (p *Pool) WaitIdleContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.WaitIdle()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Destroy sets the shutdown flag, wakes every worker, and blocks until all
// of them have exited. Safe to call once; a second call is a no-op.
func (p *Pool) Destroy() {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return
	}
	p.shutdown = true
	p.workAvail.Broadcast()
	p.mu.Unlock()

	p.mu.Lock()
	for p.alive > 0 {
		p.allIdle.Wait()
	}
	p.mu.Unlock()
}

func (p *Pool) run() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.shutdown {
			p.workAvail.Wait()
		}

		if len(p.queue) == 0 && p.shutdown {
			p.alive--
			p.allIdle.Broadcast()
			p.mu.Unlock()
			return
		}

		t := p.queue[0]
		p.queue = p.queue[1:]
		if len(p.queue) == 0 {
			p.queue = nil
		}
		p.working++
		p.mu.Unlock()

		func() {
			defer func() {
				// A task must not propagate a failure out of the pool; any
				// panic is folded back into "task done" bookkeeping instead
				// of taking the worker goroutine down with it.
				_ = recover()
			}()
			t.Fn(t.Arg)
		}()

		p.mu.Lock()
		p.working--
		if len(p.queue) == 0 && p.working == 0 {
			p.allIdle.Broadcast()
		}
		p.mu.Unlock()
	}
}
