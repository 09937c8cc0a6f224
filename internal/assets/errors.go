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
	"fmt"

	liberr "github.com/nabbar/edgeserve/errors"
)

const (
	// ErrorDocRootMissing means the configured document root could not be
	// opened for the initial index walk — a setup failure.
	ErrorDocRootMissing liberr.CodeError = iota + liberr.MinPkgAssets

	// ErrorWatchCreate means the fsnotify watcher could not be created.
	ErrorWatchCreate

	// ErrorWatchAdd means the watcher could not be attached to the document
	// root directory tree.
	ErrorWatchAdd
)

func init() {
	if liberr.ExistInMapMessage(ErrorDocRootMissing) {
		panic(fmt.Errorf("error code collision with package assets"))
	}
	liberr.RegisterIdFctMessage(ErrorDocRootMissing, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorDocRootMissing:
		return "document root is missing or not a directory"
	case ErrorWatchCreate:
		return "cannot create filesystem watcher"
	case ErrorWatchAdd:
		return "cannot watch document root"
	}
	return liberr.NullMessage
}
