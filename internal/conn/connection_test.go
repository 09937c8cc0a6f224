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

package conn_test

import (
	. "github.com/nabbar/edgeserve/internal/conn"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubHandler struct {
	served *Connection
}

func (s *stubHandler) Serve(c *Connection) {
	s.served = c
}

var _ = Describe("Connection", func() {
	It("assigns a unique ID distinct from the FD", func() {
		a := New(5, nil)
		b := New(5, nil)
		Expect(a.ID).NotTo(Equal(b.ID))
		Expect(a.FD).To(Equal(b.FD))
	})

	It("NewListening marks Listening and carries no handler", func() {
		l := NewListening(3)
		Expect(l.Listening).To(BeTrue())
		l.Task(nil) // must not panic despite no handler
	})

	It("Task dispatches to the bound handler", func() {
		h := &stubHandler{}
		c := New(7, h)
		c.Task(nil)
		Expect(h.served).To(Equal(c))
	})

	It("Task on a Connection with a nil handler is a safe no-op", func() {
		c := New(7, nil)
		Expect(func() { c.Task(nil) }).NotTo(Panic())
	})
})
