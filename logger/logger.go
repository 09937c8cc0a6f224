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

// Package logger centralizes structured logging for every component of the
// server: the command, the dispatcher and the HTTP task log through this
// package instead of the standard library's log package.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/edgeserve/logger/level"
)

// Fields carries structured key/value pairs attached to a single log entry,
// e.g. the connection id, the file descriptor, or the remote address.
type Fields map[string]interface{}

// Logger is the minimal structured logging surface used by the rest of the
// repository. It is deliberately smaller than a general-purpose logging
// facade: one sink (logrus, to the file given to New, os.Stderr by
// default), one level, no hooks.
type Logger interface {
	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	WithFields(f Fields) Logger

	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, err error, f Fields)
	Fatal(msg string, err error, f Fields)
}

type logger struct {
	mu  sync.RWMutex
	log *logrus.Logger
	fld Fields
}

// New returns a Logger writing JSON-less text lines to w (os.Stderr when w is
// nil) at the given level.
func New(lvl loglvl.Level, w *os.File) Logger {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{log: l, fld: make(Fields)}
}

func (o *logger) SetLevel(lvl loglvl.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.log.SetLevel(lvl.Logrus())
}

func (o *logger) GetLevel() loglvl.Level {
	o.mu.RLock()
	defer o.mu.RUnlock()

	switch o.log.GetLevel() {
	case logrus.PanicLevel:
		return loglvl.PanicLevel
	case logrus.FatalLevel:
		return loglvl.FatalLevel
	case logrus.ErrorLevel:
		return loglvl.ErrorLevel
	case logrus.WarnLevel:
		return loglvl.WarnLevel
	case logrus.DebugLevel, logrus.TraceLevel:
		return loglvl.DebugLevel
	default:
		return loglvl.InfoLevel
	}
}

func (o *logger) WithFields(f Fields) Logger {
	o.mu.RLock()
	defer o.mu.RUnlock()

	merged := make(Fields, len(o.fld)+len(f))
	for k, v := range o.fld {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}

	return &logger{log: o.log, fld: merged}
}

func (o *logger) entry(f Fields) *logrus.Entry {
	merged := make(logrus.Fields, len(o.fld)+len(f))
	for k, v := range o.fld {
		merged[k] = v
	}
	for k, v := range f {
		merged[k] = v
	}
	return o.log.WithFields(merged)
}

func (o *logger) Debug(msg string, f Fields) {
	o.entry(f).Debug(msg)
}

func (o *logger) Info(msg string, f Fields) {
	o.entry(f).Info(msg)
}

func (o *logger) Warn(msg string, f Fields) {
	o.entry(f).Warn(msg)
}

func (o *logger) Error(msg string, err error, f Fields) {
	e := o.entry(f)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
}

func (o *logger) Fatal(msg string, err error, f Fields) {
	e := o.entry(f)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(msg)
	os.Exit(1)
}
