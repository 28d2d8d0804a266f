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
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

// A codec describes one character encoding usable in a Specific Character
// Set: its repertoire properties, the ISO 2022 escape sequences which select
// it into the G0 and G1 code elements, and the golang.org/x/text backend
// used to convert its bytes.
//
// DICOM PS3.5 sections: 6.1.2, 6.1.2.3.
type codec struct {
	name string

	// containsASCII is set when bytes 0x00-0x7F encode ASCII unchanged.
	containsASCII bool

	// kind selects the conversion strategy, see coding.go.
	kind codecKind

	// enc is the x/text backend; nil for the hand-converted kinds.
	enc encoding.Encoding

	// escSeq0 and escSeq1 are the packed escape sequences selecting this
	// codec into G0 and G1, 0 when the codec cannot be selected there.
	// The bytes following ESC are packed big-endian: 0x2842 is ESC ( B,
	// 0x242943 is ESC $ ) C.
	escSeq0 uint32
	escSeq1 uint32

	// width is the scan step of the ISO 2022 decoder: a byte count, or
	// -1 to advance by two for high-bit bytes and by one otherwise.
	width int

	// repl is emitted for a character the codec cannot represent.
	repl string
}

func (c *codec) String() string {
	return c.name
}

type codecKind uint8

const (
	kindTable    codecKind = iota // x/text encoding used as is
	kindASCII                     // no table needed
	kindJISX0201                  // ASCII plus halfwidth katakana, no table needed
	kindJISX0208                  // 7-bit row/cell pairs, converted through the Shift JIS table
	kindJISX0212                  // 7-bit row/cell pairs, converted through the EUC-JP SS3 form
	kindEUC                       // EUC code points of one 94x94 set, ASCII allowed
)

// The fixed codec set behind the DICOM defined terms (PS3.5 tables 6.1-1 to
// 6.1-4). TIS 620 is backed by the windows-874 table, its common superset.
var (
	asciiCodec = &codec{name: "US-ASCII", containsASCII: true, kind: kindASCII,
		escSeq0: 0x2842, width: 1, repl: "?"}
	latin1 = &codec{name: "ISO-8859-1", containsASCII: true, enc: charmap.ISO8859_1,
		escSeq0: 0x2842, escSeq1: 0x2d41, width: 1, repl: "?"}
	latin2 = &codec{name: "ISO-8859-2", containsASCII: true, enc: charmap.ISO8859_2,
		escSeq0: 0x2842, escSeq1: 0x2d42, width: 1, repl: "?"}
	latin3 = &codec{name: "ISO-8859-3", containsASCII: true, enc: charmap.ISO8859_3,
		escSeq0: 0x2842, escSeq1: 0x2d43, width: 1, repl: "?"}
	latin4 = &codec{name: "ISO-8859-4", containsASCII: true, enc: charmap.ISO8859_4,
		escSeq0: 0x2842, escSeq1: 0x2d44, width: 1, repl: "?"}
	cyrillic = &codec{name: "ISO-8859-5", containsASCII: true, enc: charmap.ISO8859_5,
		escSeq0: 0x2842, escSeq1: 0x2d4c, width: 1, repl: "?"}
	arabic = &codec{name: "ISO-8859-6", containsASCII: true, enc: charmap.ISO8859_6,
		escSeq0: 0x2842, escSeq1: 0x2d47, width: 1, repl: "?"}
	greek = &codec{name: "ISO-8859-7", containsASCII: true, enc: charmap.ISO8859_7,
		escSeq0: 0x2842, escSeq1: 0x2d46, width: 1, repl: "?"}
	hebrew = &codec{name: "ISO-8859-8", containsASCII: true, enc: charmap.ISO8859_8,
		escSeq0: 0x2842, escSeq1: 0x2d48, width: 1, repl: "?"}
	latin5 = &codec{name: "ISO-8859-9", containsASCII: true, enc: charmap.ISO8859_9,
		escSeq0: 0x2842, escSeq1: 0x2d4d, width: 1, repl: "?"}
	jisX0201 = &codec{name: "JIS X 0201", containsASCII: true, kind: kindJISX0201,
		escSeq0: 0x284a, escSeq1: 0x2949, width: 1, repl: "?"}
	thai = &codec{name: "TIS-620", containsASCII: true, enc: charmap.Windows874,
		escSeq0: 0x2842, escSeq1: 0x2d54, width: 1, repl: "?"}
	jisX0208 = &codec{name: "JIS X 0208", kind: kindJISX0208, enc: japanese.ShiftJIS,
		escSeq0: 0x2442, width: 1, repl: "\x21\x29"}
	jisX0212 = &codec{name: "JIS X 0212", kind: kindJISX0212, enc: japanese.EUCJP,
		escSeq0: 0x242844, width: 2, repl: "\x21\x29"}
	ksX1001 = &codec{name: "KS X 1001", kind: kindEUC, enc: korean.EUCKR,
		escSeq0: 0x2842, escSeq1: 0x242943, width: -1, repl: "?"}
	gb2312 = &codec{name: "GB2312", kind: kindEUC, enc: simplifiedchinese.GBK,
		escSeq0: 0x2842, escSeq1: 0x242941, width: -1, repl: "?"}
	utf8Codec = &codec{name: "UTF-8", containsASCII: true, enc: unicode.UTF8,
		width: -1, repl: "?"}
	gb18030 = &codec{name: "GB18030", enc: simplifiedchinese.GB18030,
		width: -1, repl: "?"}
)

// codecForTerm resolves a Specific Character Set defined term. Unknown or
// empty terms resolve to the primary codec of the current default character
// set; resolution never fails.
//
// Dispatch is on the last two decimal digits of the term. Terms sharing a
// key are told apart by full comparison.
func codecForTerm(code string) *codec {
	switch termKey(code) {
	case 0:
		if code == "ISO_IR 100" || code == "ISO 2022 IR 100" {
			return latin1
		}
	case 1:
		if code == "ISO_IR 101" || code == "ISO 2022 IR 101" {
			return latin2
		}
	case 6:
		if code == "ISO 2022 IR 6" {
			return defaultSet.codecs[0]
		}
	case 9:
		if code == "ISO_IR 109" || code == "ISO 2022 IR 109" {
			return latin3
		}
	case 10:
		if code == "ISO_IR 110" || code == "ISO 2022 IR 110" {
			return latin4
		}
	case 13:
		if code == "ISO_IR 13" || code == "ISO 2022 IR 13" {
			return jisX0201
		}
	case 26:
		if code == "ISO_IR 126" || code == "ISO 2022 IR 126" {
			return greek
		}
	case 27:
		if code == "ISO_IR 127" || code == "ISO 2022 IR 127" {
			return arabic
		}
	case 30:
		if code == "GB18030" {
			return gb18030
		}
	case 31:
		if code == "GBK" {
			return gb18030
		}
	case 38:
		if code == "ISO_IR 138" || code == "ISO 2022 IR 138" {
			return hebrew
		}
	case 44:
		if code == "ISO_IR 144" || code == "ISO 2022 IR 144" {
			return cyrillic
		}
	case 48:
		if code == "ISO_IR 148" || code == "ISO 2022 IR 148" {
			return latin5
		}
	case 49:
		if code == "ISO 2022 IR 149" {
			return ksX1001
		}
	case 58:
		if code == "ISO 2022 IR 58" {
			return gb2312
		}
	case 59:
		if code == "ISO 2022 IR 159" {
			return jisX0212
		}
	case 66:
		if code == "ISO_IR 166" || code == "ISO 2022 IR 166" {
			return thai
		}
	case 87:
		if code == "ISO 2022 IR 87" {
			return jisX0208
		}
	case 92:
		if code == "ISO_IR 192" {
			return utf8Codec
		}
	}
	return defaultSet.codecs[0]
}

// termKey derives the dispatch key for codecForTerm from the last two
// characters of a defined term. Terms shorter than two characters have no
// key.
func termKey(code string) int {
	if len(code) < 2 {
		return -1
	}
	return int(code[len(code)-2]&15)*10 + int(code[len(code)-1]&15)
}
