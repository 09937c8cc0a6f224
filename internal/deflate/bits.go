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

// bitReader is the bit-reservoir: bits holds up to 31 unconsumed bits,
// LSB-aligned in stream-arrival order (bit 0 is the next bit to consume).
// DEFLATE packs bits into each byte LSB-first, so refill simply ORs each
// input byte in at the current bit offset.
type bitReader struct {
	in     []byte
	pos    int
	bits   uint32
	bitcnt uint
}

func newBitReader(in []byte) *bitReader {
	return &bitReader{in: in}
}

// refill tops up the reservoir from the input while 23 or fewer bits are
// held, so each added byte keeps the invariant 0 ≤ bitcnt ≤ 31.
func (b *bitReader) refill() {
	for b.bitcnt <= 23 && b.pos < len(b.in) {
		b.bits |= uint32(b.in[b.pos]) << b.bitcnt
		b.bitcnt += 8
		b.pos++
	}
}

// get consumes and returns the next n bits (n ≤ 16). ok is false if fewer
// than n bits exist in the reservoir and no more input remains — an
// explicit underflow signal rather than silently returning zero bits.
func (b *bitReader) get(n uint) (v uint32, ok bool) {
	b.refill()
	if b.bitcnt < n {
		return 0, false
	}
	v = b.bits & ((1 << n) - 1)
	b.bits >>= n
	b.bitcnt -= n
	return v, true
}

// peek returns the next n bits without consuming them. avail reports how
// many of those n bits are backed by real input; bits beyond avail read
// as zero because the reservoir has nothing further to offer.
func (b *bitReader) peek(n uint) (v uint32, avail uint) {
	b.refill()
	avail = n
	if b.bitcnt < n {
		avail = b.bitcnt
	}
	v = b.bits & ((1 << n) - 1)
	return v, avail
}

// drop consumes n bits already inspected via peek.
func (b *bitReader) drop(n uint) {
	if n > b.bitcnt {
		n = b.bitcnt
	}
	b.bits >>= n
	b.bitcnt -= n
}

// align discards any partial byte left in the reservoir, so the next
// nextByte call starts exactly at a byte boundary of the input.
func (b *bitReader) align() {
	b.drop(b.bitcnt % 8)
}

// nextByte returns one whole byte, preferring bits already buffered
// before falling back to the input slice directly. Used by stored blocks
// after align.
func (b *bitReader) nextByte() (byte, bool) {
	if b.bitcnt >= 8 {
		v := byte(b.bits & 0xFF)
		b.drop(8)
		return v, true
	}
	if b.bitcnt == 0 && b.pos < len(b.in) {
		v := b.in[b.pos]
		b.pos++
		return v, true
	}
	return 0, false
}

// reverseBits reverses the low n bits of v.
func reverseBits(v uint32, n uint32) uint32 {
	var r uint32
	for i := uint32(0); i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}
