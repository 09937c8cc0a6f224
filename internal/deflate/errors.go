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

package deflate

// Reason classifies why Inflate stopped before consuming the whole input.
// None of these ever become a Go error value returned up the call chain —
// per the failure semantics, a malformed stream is not an exception, it is
// an early return with the bytes produced so far — but tests and callers
// that want to distinguish "clean end of stream" from "truncated" can
// inspect it.
type Reason uint8

const (
	// ReasonComplete means the stream ended normally: a block with last=1
	// finished.
	ReasonComplete Reason = iota

	// ReasonTruncatedInput means the bit reservoir underflowed — the
	// caller's in slice ran out before a header field, extra bits or a
	// stored-block copy could complete. A dynamic block header that fails
	// to parse for any reason is also reported as ReasonTruncatedInput.
	ReasonTruncatedInput

	// ReasonInvalidBlockType means header read a reserved block type (3).
	ReasonInvalidBlockType

	// ReasonStoredLengthMismatch means the stored block's length and its
	// one's-complement companion disagreed (strict interpretation).
	ReasonStoredLengthMismatch

	// ReasonZeroLengthStored means a stored block declared length 0.
	ReasonZeroLengthStored

	// ReasonOutputExhausted means out did not have room for the next
	// literal or match copy.
	ReasonOutputExhausted

	// ReasonBadDistance means a match's distance reached before the start
	// of the output produced so far.
	ReasonBadDistance

	// ReasonBadHuffmanCode means the bit window matched no entry in a
	// table during a binary search decode, the input ran out before a
	// matched literal/length or distance code was complete, or the decoded
	// length or distance symbol is outside its base table.
	ReasonBadHuffmanCode
)
