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

package config

import (
	"fmt"

	liberr "github.com/nabbar/edgeserve/errors"
)

// Error codes for the config package, following the same disjoint-range
// convention as the rest of the tree (see errors.MinPkgConfig).
const (
	// ErrorParamEmpty describes a missing config path with no
	// EDGESERVE_CONFIG environment variable set. Load does not return it:
	// for Load an empty path is not an error.
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgConfig

	// ErrorConfigRead indicates that Viper failed to read the config file.
	ErrorConfigRead

	// ErrorConfigUnmarshal indicates that Viper's contents could not be
	// decoded into the Config struct.
	ErrorConfigUnmarshal

	// ErrorConfigValidate indicates that a decoded Config failed validation
	// (listen address, keepalive, document root, ...).
	ErrorConfigValidate
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic(fmt.Errorf("error code collision with package config"))
	}
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "no config path given and EDGESERVE_CONFIG is not set"
	case ErrorConfigRead:
		return "cannot read config file"
	case ErrorConfigUnmarshal:
		return "cannot decode config contents"
	case ErrorConfigValidate:
		return "config failed validation"
	}

	return liberr.NullMessage
}
