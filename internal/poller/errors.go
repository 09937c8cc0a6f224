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

package poller

import (
	"fmt"

	liberr "github.com/nabbar/edgeserve/errors"
)

const (
	// ErrorCreate indicates epoll_create1 failed.
	ErrorCreate liberr.CodeError = iota + liberr.MinPkgPoller

	// ErrorAdd indicates epoll_ctl(ADD) failed for a descriptor.
	ErrorAdd

	// ErrorModify indicates epoll_ctl(MOD) failed for a descriptor.
	ErrorModify

	// ErrorRemove indicates epoll_ctl(DEL) failed for a descriptor.
	ErrorRemove

	// ErrorWait indicates epoll_wait failed for a reason other than EINTR.
	ErrorWait

	// ErrorClosed indicates an operation was attempted on a closed poller.
	ErrorClosed
)

func init() {
	if liberr.ExistInMapMessage(ErrorCreate) {
		panic(fmt.Errorf("error code collision with package poller"))
	}
	liberr.RegisterIdFctMessage(ErrorCreate, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorCreate:
		return "cannot create readiness monitor"
	case ErrorAdd:
		return "cannot register descriptor with readiness monitor"
	case ErrorModify:
		return "cannot re-arm descriptor with readiness monitor"
	case ErrorRemove:
		return "cannot unregister descriptor from readiness monitor"
	case ErrorWait:
		return "readiness monitor wait failed"
	case ErrorClosed:
		return "readiness monitor is closed"
	}

	return liberr.NullMessage
}
