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

package dispatcher

import (
	"fmt"

	liberr "github.com/nabbar/edgeserve/errors"
)

const (
	// ErrorListenerBind indicates socket/bind/listen setup failed for the
	// core listening socket.
	ErrorListenerBind liberr.CodeError = iota + liberr.MinPkgDispatcher

	// ErrorMonitorCreate indicates the readiness monitor could not be
	// created for the dispatcher loop.
	ErrorMonitorCreate

	// ErrorMonitorRegister indicates the listening socket could not be
	// registered with the readiness monitor.
	ErrorMonitorRegister
)

func init() {
	if liberr.ExistInMapMessage(ErrorListenerBind) {
		panic(fmt.Errorf("error code collision with package dispatcher"))
	}
	liberr.RegisterIdFctMessage(ErrorListenerBind, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorListenerBind:
		return "cannot bind listening socket"
	case ErrorMonitorCreate:
		return "cannot create readiness monitor"
	case ErrorMonitorRegister:
		return "cannot register listening socket with readiness monitor"
	}

	return liberr.NullMessage
}
