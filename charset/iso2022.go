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
	"unicode/utf8"
)

// escTarget names the codec an escape sequence selects and the code element
// (register) it selects it into.
type escTarget struct {
	c *codec
	g int
}

// escTargets maps the packed escape sequences of PS3.5 tables 6.1-2 and
// 6.1-3 to their targets. Sequences starting with ESC $ ( and ESC $ ) use
// three bytes, all others two.
var escTargets = map[uint32]escTarget{
	0x2842:   {asciiCodec, 0}, // ESC ( B
	0x284a:   {jisX0201, 0},   // ESC ( J
	0x2949:   {jisX0201, 1},   // ESC ) I
	0x2442:   {jisX0208, 0},   // ESC $ B
	0x242844: {jisX0212, 0},   // ESC $ ( D
	0x242941: {gb2312, 1},     // ESC $ ) A
	0x242943: {ksX1001, 1},    // ESC $ ) C
	0x2d41:   {latin1, 1},     // ESC - A
	0x2d42:   {latin2, 1},     // ESC - B
	0x2d43:   {latin3, 1},     // ESC - C
	0x2d44:   {latin4, 1},     // ESC - D
	0x2d4c:   {cyrillic, 1},   // ESC - L
	0x2d47:   {arabic, 1},     // ESC - G
	0x2d46:   {greek, 1},      // ESC - F
	0x2d48:   {hebrew, 1},     // ESC - H
	0x2d4d:   {latin5, 1},     // ESC - M
	0x2d54:   {thai, 1},       // ESC - T
}

// switchRegister installs t.c into the code element t.g.
//
// When the new pair of codecs shares the G0 escape sequence the G0 element
// is set to the G1 codec as well: the single-byte extension sets contain
// ASCII in their lower half, and treating both elements as one codec lets a
// run cross the high-bit boundary. After ESC ( J the G1 element follows
// JIS X 0201 too unless the G1 codec has an escape sequence of its own;
// single-byte Japanese text commonly uses katakana without an ESC ) I.
func switchRegister(active *[2]*codec, t escTarget) {
	active[t.g] = t.c
	if t.c == jisX0201 && t.g == 0 && active[1].escSeq1 == 0 {
		active[1] = t.c
	}
	if active[0].escSeq0 == active[1].escSeq0 {
		active[0] = active[1]
	}
}

// decodeISO2022 scans b for ISO 2022 escape sequences, decoding each run of
// bytes between them with the codec selected into the register the run's
// high bit picks.
func (cs *CharacterSet) decodeISO2022(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))

	active := [2]*codec{cs.codecs[0], cs.codecs[0]}
	g := 0   // register the next run decodes from
	off := 0 // start of the pending run
	cur := 0
	for cur < len(b) {
		if b[cur] == 0x1b && cur+2 < len(b) {
			if off < cur {
				sb.WriteString(active[g].decode(b[off:cur]))
			}
			esc := cur
			seq := uint32(b[cur+1])<<8 | uint32(b[cur+2])
			cur += 3
			if (seq == 0x2428 || seq == 0x2429) && cur < len(b) {
				seq = seq<<8 | uint32(b[cur])
				cur++
			}
			if t, ok := escTargets[seq]; ok {
				switchRegister(&active, t)
			} else {
				// unknown escape sequence: keep the bytes as data
				sb.WriteString(active[0].decode(b[esc:cur]))
			}
			off = cur
			continue
		}

		// When the registers hold different codecs, the high bit of each
		// byte picks the register it belongs to.
		if active[0] != active[1] && (b[cur] >= 0x80) != (g == 1) {
			if off < cur {
				sb.WriteString(active[g].decode(b[off:cur]))
			}
			off = cur
			g = 1 - g
		}

		if w := active[g].width; w > 0 {
			cur += w
		} else if b[cur] >= 0x80 {
			cur += 2
		} else {
			cur++
		}
	}
	if end := min(cur, len(b)); off < end {
		sb.WriteString(active[g].decode(b[off:end]))
	}
	return sb.String()
}

// encodeISO2022 encodes s, switching character sets with escape sequences
// where the currently selected ones do not suffice. Before each delimiter
// and at the end of the string both registers are restored to the primary
// codec, so delimiters are always encoded in a known character set and the
// buffer ends in the initial state.
func (cs *CharacterSet) encodeISO2022(s, delimiters string) []byte {
	src := []byte(s)

	e0 := getEncoder(0, cs.codecs[0])
	defer putEncoder(0, e0)
	if res, ok := e0.encode(nil, src); ok {
		return res
	}

	encs := make([]*encoder, len(cs.codecs))
	encs[0] = e0
	e1 := getEncoder(1, cs.codecs[1])
	defer putEncoder(1, e1)
	encs[1] = e1

	// cur holds the index of the codec selected into G0 and G1.
	cur := [2]int{0, 0}
	dst := make([]byte, 0, 2*len(src)+8)
	for pos := 0; pos < len(s); {
		next := strings.IndexAny(s[pos:], delimiters)
		if next == 0 {
			_, size := utf8.DecodeRuneInString(s[pos:])
			dst = cs.restoreInitial(dst, &cur)
			dst = append(dst, src[pos:pos+size]...)
			pos += size
			continue
		}
		end := len(s)
		if next > 0 {
			end = pos + next
		}
		dst = cs.encodeComponent(encs, src[pos:end], dst, &cur)
		pos = end
	}
	return cs.restoreInitial(dst, &cur)
}

// encodeComponent encodes one delimiter-free component. A component no
// single codec can represent is retried character by character; characters
// no codec can represent become the replacement bytes of the codec selected
// into G0.
func (cs *CharacterSet) encodeComponent(encs []*encoder, comp, dst []byte, cur *[2]int) []byte {
	if res, ok := cs.encodeUnit(encs, comp, dst, cur); ok {
		return res
	}
	if utf8.RuneCount(comp) > 1 {
		for i := 0; i < len(comp); {
			_, size := utf8.DecodeRune(comp[i:])
			if res, ok := cs.encodeUnit(encs, comp[i:i+size], dst, cur); ok {
				dst = res
			} else {
				dst = append(dst, cs.codecs[cur[0]].repl...)
			}
			i += size
		}
		return dst
	}
	return append(dst, cs.codecs[cur[0]].repl...)
}

// encodeUnit tries to encode unit with the codecs selected into G1 and G0,
// then with every configured codec in reverse order, switching the register
// the successful codec's escape sequence selects.
func (cs *CharacterSet) encodeUnit(encs []*encoder, unit, dst []byte, cur *[2]int) ([]byte, bool) {
	g1 := cs.codecs[cur[1]]
	if g1.escSeq1 != 0 {
		if res, ok := encs[cur[1]].encode(dst, unit); ok {
			return res, true
		}
	}
	if g1.escSeq1 == 0 || g1.escSeq0 != cs.codecs[cur[0]].escSeq0 {
		if res, ok := encs[cur[0]].encode(dst, unit); ok {
			return res, true
		}
	}
	for next := len(cs.codecs) - 1; next >= 0; next-- {
		if encs[next] == nil {
			encs[next] = newEncoder(cs.codecs[next])
		}
		c := cs.codecs[next]
		seq, reg := c.escSeq0, 0
		if c.escSeq1 != 0 {
			seq, reg = c.escSeq1, 1
		}
		if res, ok := encs[next].encode(appendEsc(dst, seq), unit); ok {
			cur[reg] = next
			return res, true
		}
	}
	return dst, false
}

// restoreInitial emits the escape sequences returning both registers to the
// primary codec. A register whose codec has no escape sequence for it is
// reset without emitting anything.
func (cs *CharacterSet) restoreInitial(dst []byte, cur *[2]int) []byte {
	if cur[0] != 0 {
		dst = appendEsc(dst, cs.codecs[0].escSeq0)
		cur[0] = 0
	}
	if cur[1] != 0 {
		dst = appendEsc(dst, cs.codecs[0].escSeq1)
		cur[1] = 0
	}
	return dst
}

// appendEsc appends ESC followed by the bytes packed into seq. seq 0 emits
// nothing.
func appendEsc(dst []byte, seq uint32) []byte {
	if seq == 0 {
		return dst
	}
	dst = append(dst, 0x1b)
	if b := byte(seq >> 16); b != 0 {
		dst = append(dst, b)
	}
	return append(dst, byte(seq>>8), byte(seq))
}
