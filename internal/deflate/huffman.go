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

import "sort"

// maxCodeLen is the longest canonical code length RFC 1951 allows in any
// of the three alphabets this package builds tables for.
const maxCodeLen = 15

// A table entry is packed into a single 32-bit word: the canonical code
// value in the top 16 bits, the symbol in the next 12, and the code's bit
// length in the low 4 — long enough for the alphabet's 288 symbols and
// short enough that length never needs more than 4 bits (length ≤ 15).
const (
	packCodeShift = 16
	packSymShift  = 4
	packSymMask   = 0xFFF
	packLenMask   = 0xF
)

func pack(code, sym, length uint32) uint32 {
	return (code << packCodeShift) | ((sym & packSymMask) << packSymShift) | (length & packLenMask)
}

func unpackCode(p uint32) uint32   { return p >> packCodeShift }
func unpackSym(p uint32) uint32    { return (p >> packSymShift) & packSymMask }
func unpackLength(p uint32) uint32 { return p & packLenMask }

// huffTable is a canonical Huffman decode table: packed entries sorted by
// their bit-reversed prefix range, so decode is a binary search rather
// than a bit-by-bit walk.
type huffTable struct {
	packed []uint32
	maxLen uint32
}

// buildTable constructs a canonical Huffman table from per-symbol code
// lengths (0 meaning the symbol is unused). Symbol index is the slice
// index.
func buildTable(lengths []int) *huffTable {
	var count [maxCodeLen + 1]int
	maxLen := 0
	for _, l := range lengths {
		if l > 0 && l <= maxCodeLen {
			count[l]++
			if l > maxLen {
				maxLen = l
			}
		}
	}
	if maxLen == 0 {
		return &huffTable{}
	}

	var nextCode [maxCodeLen + 1]uint32
	var code uint32
	for l := 1; l <= maxCodeLen; l++ {
		code = (code + uint32(count[l-1])) << 1
		nextCode[l] = code
	}

	packed := make([]uint32, 0, len(lengths))
	for sym, l := range lengths {
		if l <= 0 || l > maxCodeLen {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		packed = append(packed, pack(c, uint32(sym), uint32(l)))
	}

	ml := uint32(maxLen)
	sort.Slice(packed, func(i, j int) bool {
		return paddedStart(packed[i], ml) < paddedStart(packed[j], ml)
	})

	return &huffTable{packed: packed, maxLen: ml}
}

// paddedStart extends a length-l code to the table's maxLen bits by
// left-shifting it into the high bits, giving the start of the range of
// maxLen-bit values this code matches as a prefix.
func paddedStart(p uint32, maxLen uint32) uint32 {
	l := unpackLength(p)
	return unpackCode(p) << (maxLen - l)
}

// decode consumes one symbol from br using this table. ok is false if the
// reservoir holds no matching prefix (including the case where a
// matching entry exists but the stream ran out of real bits before its
// full length could be confirmed — treated as underflow, not a guess).
func (t *huffTable) decode(br *bitReader) (sym uint32, ok bool) {
	if t.maxLen == 0 || len(t.packed) == 0 {
		return 0, false
	}

	window, avail := br.peek(uint(t.maxLen))
	v := reverseBits(window, t.maxLen)

	i := sort.Search(len(t.packed), func(i int) bool {
		return paddedStart(t.packed[i], t.maxLen) > v
	})
	if i == 0 {
		return 0, false
	}

	p := t.packed[i-1]
	l := unpackLength(p)
	start := paddedStart(p, t.maxLen)
	size := uint32(1) << (t.maxLen - l)

	if v < start || v-start >= size {
		return 0, false
	}
	if l > uint32(avail) {
		return 0, false
	}

	br.drop(uint(l))
	return unpackSym(p), true
}

// fixedLitTable and fixedDistTable are the static canonical tables RFC
// 1951 §3.2.6 defines for fixed-Huffman blocks; built once since the
// lengths never vary.
var (
	fixedLitTable  = buildFixedLitTable()
	fixedDistTable = buildTable(fixedDistLengths())
)

func buildFixedLitTable() *huffTable {
	lengths := make([]int, 288)
	for i := 0; i <= 143; i++ {
		lengths[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lengths[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lengths[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lengths[i] = 8
	}
	return buildTable(lengths)
}

func fixedDistLengths() []int {
	lengths := make([]int, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}
