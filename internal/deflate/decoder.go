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

// Package deflate is a hand-written RFC 1951 DEFLATE decoder: no zlib or
// gzip wrapper, no dependency on compress/flate. It exists because the
// server's HTTP task needs to accept a Content-Encoding: deflate request
// body without pulling in a general-purpose decompression stack for a
// single, well-understood bitstream format.
package deflate

// state is the block-level state machine driving Inflate.
type state uint8

const (
	stateHeader state = iota
	stateStored
	stateFixed
	stateDynamic
	stateBlock
)

// clOrder is the order code-length alphabet entries are transmitted in a
// dynamic block header, per RFC 1951 §3.2.7.
var clOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

var lengthBase = [29]int{3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258}
var lengthExtra = [29]int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0}

var distBase = [30]int{1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577}
var distExtra = [30]int{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13}

// Inflate decodes a raw RFC 1951 stream in, writing decompressed bytes
// into the caller-allocated out, and returns the number of bytes
// produced. On any malformed input it returns early with the bytes
// decoded so far and a Reason describing why — it never panics and it
// never writes past len(out).
func Inflate(out []byte, in []byte) (n int, reason Reason) {
	br := newBitReader(in)
	st := stateHeader

	var lit, dist *huffTable
	var last bool
	pos := 0

	for {
		switch st {
		case stateHeader:
			lastBit, ok := br.get(1)
			if !ok {
				return pos, ReasonTruncatedInput
			}
			last = lastBit == 1

			typ, ok := br.get(2)
			if !ok {
				return pos, ReasonTruncatedInput
			}

			switch typ {
			case 0:
				st = stateStored
			case 1:
				st = stateFixed
			case 2:
				st = stateDynamic
			default:
				return pos, ReasonInvalidBlockType
			}

		case stateStored:
			br.align()

			lenLo, ok1 := br.nextByte()
			lenHi, ok2 := br.nextByte()
			nlenLo, ok3 := br.nextByte()
			nlenHi, ok4 := br.nextByte()
			if !ok1 || !ok2 || !ok3 || !ok4 {
				return pos, ReasonTruncatedInput
			}

			length := int(lenLo) | int(lenHi)<<8
			nlen := int(nlenLo) | int(nlenHi)<<8

			if length^0xFFFF != nlen {
				return pos, ReasonStoredLengthMismatch
			}
			if length == 0 {
				return pos, ReasonZeroLengthStored
			}

			for i := 0; i < length; i++ {
				b, ok := br.nextByte()
				if !ok {
					return pos, ReasonTruncatedInput
				}
				if pos >= len(out) {
					return pos, ReasonOutputExhausted
				}
				out[pos] = b
				pos++
			}

			st = stateHeader

		case stateFixed:
			lit, dist = fixedLitTable, fixedDistTable
			st = stateBlock

		case stateDynamic:
			var ok bool
			lit, dist, ok = readDynamicTables(br)
			if !ok {
				return pos, ReasonTruncatedInput
			}
			st = stateBlock

		case stateBlock:
			sym, ok := lit.decode(br)
			if !ok {
				return pos, ReasonBadHuffmanCode
			}

			switch {
			case sym < 256:
				if pos >= len(out) {
					return pos, ReasonOutputExhausted
				}
				out[pos] = byte(sym)
				pos++

			case sym == 256:
				if last {
					return pos, ReasonComplete
				}
				st = stateHeader

			default:
				idx := int(sym) - 257
				if idx < 0 || idx >= len(lengthBase) {
					return pos, ReasonBadHuffmanCode
				}
				extra, ok := br.get(uint(lengthExtra[idx]))
				if !ok {
					return pos, ReasonTruncatedInput
				}
				matchLen := lengthBase[idx] + int(extra)

				dsym, ok := dist.decode(br)
				if !ok {
					return pos, ReasonBadHuffmanCode
				}
				if int(dsym) >= len(distBase) {
					return pos, ReasonBadHuffmanCode
				}
				dextra, ok := br.get(uint(distExtra[dsym]))
				if !ok {
					return pos, ReasonTruncatedInput
				}
				distance := distBase[dsym] + int(dextra)

				if distance > pos {
					return pos, ReasonBadDistance
				}

				for i := 0; i < matchLen; i++ {
					if pos >= len(out) {
						return pos, ReasonOutputExhausted
					}
					out[pos] = out[pos-distance]
					pos++
				}
			}
		}
	}
}

// readDynamicTables parses a dynamic-Huffman block header (§3.2.7) and
// builds the literal/length and distance tables it describes.
func readDynamicTables(br *bitReader) (lit, dist *huffTable, ok bool) {
	hlit, ok := br.get(5)
	if !ok {
		return nil, nil, false
	}
	hdist, ok := br.get(5)
	if !ok {
		return nil, nil, false
	}
	hclen, ok := br.get(4)
	if !ok {
		return nil, nil, false
	}

	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4

	var clLengths [19]int
	for i := 0; i < nclen; i++ {
		v, ok := br.get(3)
		if !ok {
			return nil, nil, false
		}
		clLengths[clOrder[i]] = int(v)
	}

	clTable := buildTable(clLengths[:])
	if clTable.maxLen == 0 {
		return nil, nil, false
	}

	total := nlit + ndist
	lengths := make([]int, total)

	i := 0
	var prev int
	for i < total {
		sym, ok := clTable.decode(br)
		if !ok {
			return nil, nil, false
		}

		switch {
		case sym < 16:
			lengths[i] = int(sym)
			prev = int(sym)
			i++

		case sym == 16:
			extra, ok := br.get(2)
			if !ok {
				return nil, nil, false
			}
			repeat := 3 + int(extra)
			if i == 0 || i+repeat > total {
				return nil, nil, false
			}
			for r := 0; r < repeat; r++ {
				lengths[i] = prev
				i++
			}

		case sym == 17:
			extra, ok := br.get(3)
			if !ok {
				return nil, nil, false
			}
			repeat := 3 + int(extra)
			if i+repeat > total {
				return nil, nil, false
			}
			for r := 0; r < repeat; r++ {
				lengths[i] = 0
				i++
			}
			prev = 0

		case sym == 18:
			extra, ok := br.get(7)
			if !ok {
				return nil, nil, false
			}
			repeat := 11 + int(extra)
			if i+repeat > total {
				return nil, nil, false
			}
			for r := 0; r < repeat; r++ {
				lengths[i] = 0
				i++
			}
			prev = 0

		default:
			return nil, nil, false
		}
	}

	lit = buildTable(lengths[:nlit])
	dist = buildTable(lengths[nlit:])
	return lit, dist, true
}
