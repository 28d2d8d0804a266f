// github.com/jingshuai5213/bus - building blocks for medical data interchange
// Copyright (C) 2025  Jing Shuai
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package charset

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// decode converts one run of bytes encoded with c into a string. Bytes the
// codec cannot decode become U+FFFD; decoding never fails.
func (c *codec) decode(b []byte) string {
	switch c.kind {
	case kindASCII:
		var sb strings.Builder
		sb.Grow(len(b))
		for _, x := range b {
			if x < 0x80 {
				sb.WriteByte(x)
			} else {
				sb.WriteRune(utf8.RuneError)
			}
		}
		return sb.String()

	case kindJISX0201:
		// ASCII stays ASCII so that 0x5C keeps working as a value and
		// component delimiter (PS3.5 6.1.2.3); use ToText for display.
		var sb strings.Builder
		sb.Grow(len(b))
		for _, x := range b {
			switch {
			case x < 0x80:
				sb.WriteByte(x)
			case x >= 0xa1 && x <= 0xdf:
				sb.WriteRune(0xff61 + rune(x) - 0xa1)
			default:
				sb.WriteRune(utf8.RuneError)
			}
		}
		return sb.String()

	case kindJISX0208:
		buf := make([]byte, 0, len(b))
		for i := 0; i < len(b); {
			j1 := b[i]
			if j1 < 0x21 || j1 > 0x7e || i+1 >= len(b) {
				buf = append(buf, 0xff) // not decodable
				i++
				continue
			}
			j2 := b[i+1]
			i += 2
			if j2 < 0x21 || j2 > 0x7e {
				buf = append(buf, 0xff)
				continue
			}
			s1, s2 := jisToShiftJIS(j1, j2)
			buf = append(buf, s1, s2)
		}
		return decodeWith(c.enc, buf)

	case kindJISX0212:
		buf := make([]byte, 0, len(b)/2*3+3)
		for i := 0; i < len(b); {
			j1 := b[i]
			if j1 < 0x21 || j1 > 0x7e || i+1 >= len(b) {
				buf = append(buf, 0xff)
				i++
				continue
			}
			j2 := b[i+1]
			i += 2
			if j2 < 0x21 || j2 > 0x7e {
				buf = append(buf, 0xff)
				continue
			}
			buf = append(buf, 0x8f, j1|0x80, j2|0x80)
		}
		return decodeWith(c.enc, buf)

	default:
		return decodeWith(c.enc, b)
	}
}

// decodeWith runs the x/text decoder over b. The x/text decoders substitute
// U+FFFD for bytes they cannot transcode instead of reporting an error.
func decodeWith(enc encoding.Encoding, b []byte) string {
	out, _ := enc.NewDecoder().Bytes(b)
	return string(out)
}

// An encoder is the stateful scratch object used while encoding. Encoders
// wrap x/text transformers, which must not be shared between goroutines;
// encoders are recycled through encoderPools and re-initialised when they
// come back holding a different codec.
type encoder struct {
	c   *codec
	tr  *encoding.Encoder
	buf []byte // intermediate bytes for the converted kinds
}

func newEncoder(c *codec) *encoder {
	e := new(encoder)
	e.init(c)
	return e
}

func (e *encoder) init(c *codec) {
	e.c = c
	e.tr = nil
	if c.enc != nil {
		e.tr = c.enc.NewEncoder()
	}
}

// encoderPools holds scratch encoders for the primary and the first
// extension codec, mirroring the two register slots of the encoding loop.
// Codecs beyond the second get throwaway encoders.
var encoderPools = [2]sync.Pool{
	{New: func() any { return new(encoder) }},
	{New: func() any { return new(encoder) }},
}

func getEncoder(slot int, c *codec) *encoder {
	e := encoderPools[slot].Get().(*encoder)
	if e.c != c {
		e.init(c)
	}
	return e
}

func putEncoder(slot int, e *encoder) {
	encoderPools[slot].Put(e)
}

// encode appends the encoding of src to dst, reporting whether every
// character of src is representable in the codec. On failure dst is
// returned unchanged; nothing is substituted, so that the caller can try
// another codec.
func (e *encoder) encode(dst, src []byte) ([]byte, bool) {
	switch e.c.kind {
	case kindASCII:
		for _, x := range src {
			if x >= 0x80 {
				return dst, false
			}
		}
		return append(dst, src...), true

	case kindJISX0201:
		mark := len(dst)
		for i := 0; i < len(src); {
			r, size := utf8.DecodeRune(src[i:])
			i += size
			switch {
			case r < 0x80:
				dst = append(dst, byte(r))
			case r == 0xa5: // yen sign
				dst = append(dst, 0x5c)
			case r == 0x203e: // overline
				dst = append(dst, 0x7e)
			case r >= 0xff61 && r <= 0xff9f:
				dst = append(dst, byte(r-0xff61+0xa1))
			default:
				return dst[:mark], false
			}
		}
		return dst, true

	case kindJISX0208:
		// Encode through the Shift JIS table, then convert the two-byte
		// forms back to row/cell pairs. Single-byte output (ASCII,
		// halfwidth katakana, yen) is outside JIS X 0208.
		out, ok := e.intermediate(src)
		if !ok {
			return dst, false
		}
		mark := len(dst)
		for i := 0; i < len(out); {
			s1 := out[i]
			if !shiftJISLead(s1) || i+1 >= len(out) {
				return dst[:mark], false
			}
			s2 := out[i+1]
			i += 2
			if s2 < 0x40 || s2 == 0x7f || s2 > 0xfc {
				return dst[:mark], false
			}
			j1, j2 := shiftJISToJIS(s1, s2)
			dst = append(dst, j1, j2)
		}
		return dst, true

	case kindJISX0212:
		// The EUC-JP encoder emits JIS X 0212 as SS3 triplets; everything
		// else (ASCII, SS2 katakana, JIS X 0208 pairs) is outside the set.
		out, ok := e.intermediate(src)
		if !ok {
			return dst, false
		}
		mark := len(dst)
		for i := 0; i < len(out); {
			if out[i] != 0x8f || i+2 >= len(out) {
				return dst[:mark], false
			}
			a, b := out[i+1], out[i+2]
			i += 3
			if a < 0xa1 || a > 0xfe || b < 0xa1 || b > 0xfe {
				return dst[:mark], false
			}
			dst = append(dst, a&0x7f, b&0x7f)
		}
		return dst, true

	case kindEUC:
		// Only ASCII and code points of the 94x94 plane pass; the
		// extension forms of the backing table (UHC, GBK) use out-of-plane
		// bytes and are rejected.
		out, ok := e.intermediate(src)
		if !ok {
			return dst, false
		}
		for i := 0; i < len(out); {
			b := out[i]
			if b < 0x80 {
				i++
				continue
			}
			if b < 0xa1 || b > 0xfe || i+1 >= len(out) {
				return dst, false
			}
			if t := out[i+1]; t < 0xa1 || t > 0xfe {
				return dst, false
			}
			i += 2
		}
		return append(dst, out...), true

	default: // kindTable
		res, _, err := transform.Append(e.tr, dst, src)
		if err != nil {
			return dst, false
		}
		return res, true
	}
}

// intermediate encodes src with the backing x/text encoder into the
// encoder's scratch buffer.
func (e *encoder) intermediate(src []byte) ([]byte, bool) {
	out, _, err := transform.Append(e.tr, e.buf[:0], src)
	e.buf = out[:0]
	if err != nil {
		return nil, false
	}
	return out, true
}

// encodeReplace appends the encoding of src to dst, substituting the
// codec's replacement bytes for characters outside its repertoire. It never
// fails.
func (e *encoder) encodeReplace(dst, src []byte) []byte {
	if res, ok := e.encode(dst, src); ok {
		return res
	}
	var tmp [utf8.UTFMax]byte
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		n := utf8.EncodeRune(tmp[:], r)
		if res, ok := e.encode(dst, tmp[:n]); ok {
			dst = res
		} else {
			dst = append(dst, e.c.repl...)
		}
		i += size
	}
	return dst
}

func shiftJISLead(b byte) bool {
	return b >= 0x81 && b <= 0x9f || b >= 0xe0 && b <= 0xef
}

// shiftJISToJIS converts a two-byte Shift JIS code to the JIS X 0208
// row/cell pair, both offset by 0x21.
func shiftJISToJIS(s1, s2 byte) (byte, byte) {
	if s1 >= 0xe0 {
		s1 -= 0x40
	}
	j1 := 2*(s1-0x81) + 0x21
	switch {
	case s2 >= 0x9f:
		return j1 + 1, s2 - 0x7e
	case s2 > 0x7e:
		return j1, s2 - 0x20
	default:
		return j1, s2 - 0x1f
	}
}

// jisToShiftJIS is the inverse of shiftJISToJIS.
func jisToShiftJIS(j1, j2 byte) (byte, byte) {
	s1 := (j1-0x21)/2 + 0x81
	if s1 > 0x9f {
		s1 += 0x40
	}
	if j1&1 == 0 {
		return s1, j2 + 0x7e
	}
	if j2 >= 0x60 {
		return s1, j2 + 0x20
	}
	return s1, j2 + 0x1f
}
