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

package timerwheel_test

import (
	. "github.com/nabbar/edgeserve/internal/timerwheel"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	It("First returns the oldest key and Len tracks entry count", func() {
		r := New[int]()
		Expect(r.Len()).To(Equal(0))

		Expect(r.Append(1, 100)).To(Succeed())
		Expect(r.Append(2, 200)).To(Succeed())
		Expect(r.Append(3, 300)).To(Succeed())
		Expect(r.Len()).To(Equal(3))

		k, ts, ok := r.First()
		Expect(ok).To(BeTrue())
		Expect(k).To(Equal(1))
		Expect(ts).To(Equal(int64(100)))
	})

	It("rejects a duplicate Append", func() {
		r := New[int]()
		Expect(r.Append(1, 100)).To(Succeed())
		Expect(r.Append(1, 200)).To(HaveOccurred())
	})

	It("Update moves a key to the tail with a fresh timestamp", func() {
		r := New[int]()
		Expect(r.Append(1, 100)).To(Succeed())
		Expect(r.Append(2, 200)).To(Succeed())

		r.Update(1, 300)

		k, ts, ok := r.First()
		Expect(ok).To(BeTrue())
		Expect(k).To(Equal(2))
		Expect(ts).To(Equal(int64(200)))

		// 1 is now the tail entry, not the head.
		n := 0
		r.Expire(300, 0, func(key int) {
			n++
		})
		Expect(n).To(Equal(2))
	})

	It("Remove deletes a key and is silent if absent", func() {
		r := New[int]()
		Expect(r.Append(1, 100)).To(Succeed())
		r.Remove(1)
		Expect(r.Len()).To(Equal(0))
		r.Remove(99) // no panic, no error path
	})

	It("Expire walks only entries at or past the limit, oldest first", func() {
		r := New[int]()
		Expect(r.Append(1, 0)).To(Succeed())
		Expect(r.Append(2, 5)).To(Succeed())
		Expect(r.Append(3, 9)).To(Succeed())

		var seen []int
		n := r.Expire(10, 10, func(key int) {
			seen = append(seen, key)
		})

		Expect(n).To(Equal(1))
		Expect(seen).To(Equal([]int{1}))
	})

	It("an entry with activity just under the limit is not expired, one just over is", func() {
		r := New[int]()
		Expect(r.Append(1, 0)).To(Succeed())  // now-ts = 11 > 10: expired
		Expect(r.Append(2, 1)).To(Succeed())  // now-ts = 10 == 10: expired
		Expect(r.Append(3, 2)).To(Succeed())  // now-ts = 9 < 10: alive

		var seen []int
		r.Expire(11, 10, func(key int) {
			seen = append(seen, key)
		})
		Expect(seen).To(Equal([]int{1, 2}))
	})

	It("onExpire is responsible for removal; Expire itself does not mutate the list", func() {
		r := New[int]()
		Expect(r.Append(1, 0)).To(Succeed())

		r.Expire(100, 10, func(key int) {
			// deliberately do not call Remove
		})
		Expect(r.Len()).To(Equal(1))

		r.Expire(100, 10, func(key int) {
			r.Remove(key)
		})
		Expect(r.Len()).To(Equal(0))
	})
})
