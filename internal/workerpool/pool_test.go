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

package workerpool_test

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	. "github.com/nabbar/edgeserve/internal/workerpool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool", func() {
	It("runs every submitted task exactly once", func() {
		p := New(4)
		defer p.Destroy()

		const n = 200
		var count atomic.Int64
		var wg sync.WaitGroup
		wg.Add(n)

		for i := 0; i < n; i++ {
			p.Submit(func(arg any) {
				count.Add(1)
				wg.Done()
			}, i)
		}

		wg.Wait()
		Expect(count.Load()).To(Equal(int64(n)))
	})

	It("WaitIdle returns only after the last task completes", func() {
		p := New(2)
		defer p.Destroy()

		var running atomic.Int32
		var maxRunning atomic.Int32

		for i := 0; i < 20; i++ {
			p.Submit(func(arg any) {
				n := running.Add(1)
				for {
					cur := maxRunning.Load()
					if n <= cur || maxRunning.CompareAndSwap(cur, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
			}, nil)
		}

		p.WaitIdle()
		Expect(running.Load()).To(Equal(int32(0)))
	})

	It("never runs more concurrent tasks than the configured size", func() {
		p := New(3)
		defer p.Destroy()

		sem := semaphore.NewWeighted(3)
		var violated atomic.Bool

		var wg sync.WaitGroup
		wg.Add(30)
		for i := 0; i < 30; i++ {
			p.Submit(func(arg any) {
				defer wg.Done()
				if !sem.TryAcquire(1) {
					violated.Store(true)
					return
				}
				defer sem.Release(1)
				time.Sleep(2 * time.Millisecond)
			}, nil)
		}

		wg.Wait()
		Expect(violated.Load()).To(BeFalse())
	})

	It("Destroy joins all workers without leaking goroutines, and is idempotent", func() {
		p := New(4)
		p.Destroy()
		p.Destroy() // second call must not block or panic

		done := make(chan struct{})
		p.Submit(func(arg any) {
			close(done)
		}, nil)

		select {
		case <-done:
			Fail("task ran after shutdown")
		case <-time.After(20 * time.Millisecond):
		}
	})
})
