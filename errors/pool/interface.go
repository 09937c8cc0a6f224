/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package pool collects the errors one burst of work produces without
// halting on the first one. The dispatcher's accept loop is the only
// caller: a single burst-accept pass can see a handful of transient
// accept()/SetNonblock() failures between otherwise-successful accepts, and
// logging each one individually would drown the one line that actually
// matters. Add during the burst, Slice once it's done.
package pool

// Pool is a thread-safe, append-only error log for one unit of burst work.
// There is no indexed access and no delete: nothing in this tree ever
// revisits a specific error once it has been added, only the whole set at
// the end of a burst.
type Pool interface {
	// Add appends every non-nil error in e. Safe to call concurrently.
	Add(e ...error)

	// Slice returns every error added so far, in the order Add saw them.
	Slice() []error
}

// New returns an empty Pool.
func New() Pool {
	return &mod{}
}
