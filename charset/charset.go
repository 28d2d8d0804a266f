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

// Package charset converts between DICOM encoded text and Go strings.
//
// The character encodings of an element value are named by the Specific
// Character Set attribute (0008,0005). A single value selects one character
// set for the whole value. Multiple values enable ISO 2022 code extension:
// escape sequences embedded in the value switch the character sets mapped
// into the G0 (bytes 0x00-0x7F) and G1 (bytes 0x80-0xFF) code elements as
// the value is read.
//
// The package always produces output. Unrecognised terms resolve to the
// default character set, bytes that cannot be decoded become U+FFFD, and
// characters that cannot be encoded become replacement bytes. The one
// operation that can fail is SetDefault.
//
// DICOM PS3.5 sections: 6.1, 6.1.2.3; annexes H, I and J.
package charset

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Delimiters of the string value representations, for use with Encode.
const (
	// PNDelimiters are the characters with structural meaning in a person
	// name: the component and component-group separators and the value
	// separator.
	PNDelimiters = `^=\`

	// ValueDelimiters is for the other multi-valued string value
	// representations, where only the value separator is structural.
	ValueDelimiters = `\`
)

// ErrNoASCII indicates a character set whose primary codec does not encode
// the ASCII repertoire unchanged.
var ErrNoASCII = errors.New("character set does not contain ASCII")

// A CharacterSet converts element values for one setting of Specific
// Character Set. CharacterSet values are immutable and can be shared
// between goroutines without locking.
type CharacterSet struct {
	codecs []*codec
	codes  []string
}

// ASCII is the character set of the default repertoire (ISO-IR 6).
var ASCII = &CharacterSet{codecs: []*codec{asciiCodec}}

// defaultSet is read by every resolution; SetDefault documents the
// expectation that it is configured before concurrent use begins.
var defaultSet = ASCII

// New returns the character set for a Specific Character Set value, one
// defined term per element value. No terms at all select the default
// character set. Unrecognised terms resolve to the default's primary
// codec; New never fails.
func New(codes ...string) *CharacterSet {
	if len(codes) == 0 {
		return Default()
	}
	codes = checkISO2022(codes)
	codecs := make([]*codec, len(codes))
	for i, code := range codes {
		codecs[i] = codecForTerm(code)
	}
	return &CharacterSet{codecs: codecs, codes: slices.Clone(codes)}
}

// checkISO2022 rejects multi-valued Specific Character Sets whose values
// are not all ISO 2022 terms; code extension is meaningless for the others.
// Such values degrade to their first term alone.
func checkISO2022(codes []string) []string {
	if len(codes) < 2 {
		return codes
	}
	for _, code := range codes {
		if code != "" && !strings.HasPrefix(code, "ISO 2022") {
			slog.Warn("invalid Specific Character Set, using first value only",
				slog.String("codes", strings.Join(codes, `\`)),
				slog.String("using", codes[0]))
			return codes[:1]
		}
	}
	return codes
}

// Default returns the character set used when Specific Character Set is
// absent, and for defined terms the package does not recognise.
func Default() *CharacterSet {
	return defaultSet
}

// SetDefault configures the default character set from a single defined
// term. Only character sets containing ASCII can serve as the default,
// since the default must keep the DICOM structural characters readable;
// for any other term SetDefault reports an error and leaves the default
// unchanged. The empty term restores the built-in ASCII default.
//
// SetDefault is meant to be called once at startup. It is not synchronised
// with conversions running in other goroutines.
func SetDefault(code string) error {
	if code == "" {
		defaultSet = ASCII
		return nil
	}
	cs := New(code)
	if !cs.ContainsASCII() {
		return fmt.Errorf("cannot use %q as default: %w", code, ErrNoASCII)
	}
	defaultSet = cs
	return nil
}

// Decode converts the bytes of an element value into a string. Bytes that
// cannot be decoded become U+FFFD; Decode never fails.
func (cs *CharacterSet) Decode(b []byte) string {
	if len(cs.codecs) > 1 {
		return cs.decodeISO2022(b)
	}
	return cs.codecs[0].decode(b)
}

// Encode converts s into element value bytes. delimiters holds the
// characters with structural meaning for the value representation being
// encoded (PNDelimiters for person names); with code extension in use they
// are always emitted in the initial character sets. Characters no
// configured character set can represent are replaced; Encode never fails.
func (cs *CharacterSet) Encode(s, delimiters string) []byte {
	if len(cs.codecs) > 1 {
		return cs.encodeISO2022(s, delimiters)
	}
	e := getEncoder(0, cs.codecs[0])
	defer putEncoder(0, e)
	return e.encodeReplace(nil, []byte(s))
}

// ToText converts a decoded value for display. With the JIS X 0201 romaji
// set as primary character set, code point 0x5C is the yen sign; Decode
// keeps it as a backslash so that delimiter handling works, and ToText
// substitutes the yen sign for presentation.
func (cs *CharacterSet) ToText(s string) string {
	if cs.codecs[0] == jisX0201 {
		return strings.ReplaceAll(s, `\`, "¥")
	}
	return s
}

// Codes returns the defined terms the character set was built from, nil
// for the built-in default.
func (cs *CharacterSet) Codes() []string {
	return slices.Clone(cs.codes)
}

// IsASCII reports whether the primary character set is the default
// repertoire.
func (cs *CharacterSet) IsASCII() bool {
	return cs.codecs[0] == asciiCodec
}

// IsUTF8 reports whether the character set is Unicode in UTF-8.
func (cs *CharacterSet) IsUTF8() bool {
	return cs.codecs[0] == utf8Codec
}

// ContainsASCII reports whether the primary character set encodes the
// ASCII repertoire unchanged.
func (cs *CharacterSet) ContainsASCII() bool {
	return cs.codecs[0].containsASCII
}

// Equal reports whether both character sets resolve to the same codecs.
// The defined terms they were built from are not compared.
func (cs *CharacterSet) Equal(other *CharacterSet) bool {
	if cs == nil || other == nil {
		return cs == other
	}
	if len(cs.codecs) != len(other.codecs) {
		return false
	}
	for i, c := range cs.codecs {
		if other.codecs[i] != c {
			return false
		}
	}
	return true
}

func (cs *CharacterSet) String() string {
	if len(cs.codes) == 0 {
		return cs.codecs[0].name
	}
	return strings.Join(cs.codes, `\`)
}
