/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package level is the log severity type logger.Logger is parameterized on:
// the six levels config.Config.LogLevel accepts, plus NilLevel to disable
// logging outright, mapped onto sirupsen/logrus's own Level.
package level

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level orders from most severe (PanicLevel) to least (DebugLevel). NilLevel
// sits past DebugLevel and is reachable only by constructing it directly —
// Parse never returns it, since there is no config string for "off".
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	NilLevel
)

// Parse is case-insensitive over the six names cmd/edgeserve's --log-level
// flag documents. Anything else, including the empty string, falls back to
// InfoLevel rather than erroring — config.Config.Validate is what rejects an
// unrecognized value, Parse itself never fails.
func Parse(l string) Level {
	switch strings.ToLower(l) {
	case "panic":
		return PanicLevel
	case "fatal":
		return FatalLevel
	case "error":
		return ErrorLevel
	case "warn", "warning":
		return WarnLevel
	case "debug":
		return DebugLevel
	default:
		return InfoLevel
	}
}

// Logrus maps this Level onto the logrus.Level the underlying logger is
// actually configured with. NilLevel has no logrus equivalent, so it maps to
// math.MaxInt32 — a threshold logrus never logs at, which is how logging
// gets disabled outright.
func (l Level) Logrus() logrus.Level {
	switch l {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	default:
		return math.MaxInt32
	}
}
