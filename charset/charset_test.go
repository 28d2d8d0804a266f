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
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	for _, codes := range [][]string{
		nil,
		{""},
		{"ISO 2022 IR 6"},
		{"ISO_IR 6"},
		{"no such term"},
	} {
		if cs := New(codes...); !cs.Equal(ASCII) {
			t.Errorf("New(%q) = %s, want ASCII", codes, cs)
		}
	}

	cs := New("ISO 2022 IR 13", "ISO 2022 IR 87")
	want := []string{"ISO 2022 IR 13", "ISO 2022 IR 87"}
	if d := cmp.Diff(want, cs.Codes()); d != "" {
		t.Errorf("unexpected codes (-want +got):\n%s", d)
	}
	if ASCII.Codes() != nil {
		t.Errorf("ASCII.Codes() = %q", ASCII.Codes())
	}

	// The Japanese multi-byte profile uses three values.
	cs = New("ISO 2022 IR 6", "ISO 2022 IR 87", "ISO 2022 IR 159")
	if len(cs.Codes()) != 3 {
		t.Errorf("got %s, want all three codes", cs)
	}
}

func TestNewCollapsesInvalidCombination(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	// Code extension is an ISO 2022 mechanism; other codes cannot take
	// part in it and only the first value survives.
	cs := New("ISO_IR 100", "ISO_IR 126")
	if !cs.Equal(New("ISO_IR 100")) {
		t.Errorf("got %s, want ISO_IR 100 only", cs)
	}
	if got := buf.String(); !strings.Contains(got, "using first value only") {
		t.Errorf("expected a warning, log output: %q", got)
	}

	buf.Reset()
	cs = New("ISO 2022 IR 6", "garbage")
	if !cs.Equal(ASCII) {
		t.Errorf("got %s, want ASCII", cs)
	}
	if buf.Len() == 0 {
		t.Error("expected a warning")
	}

	// An empty first value is how conformant data selects the default
	// repertoire; it must not trigger the recovery rule.
	buf.Reset()
	cs = New("", "ISO 2022 IR 149")
	if len(cs.Codes()) != 2 {
		t.Errorf("valid combination collapsed to %s", cs)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected warning: %q", buf.String())
	}
}

func TestSetDefault(t *testing.T) {
	t.Cleanup(func() { SetDefault("") })

	for _, code := range []string{"ISO 2022 IR 87", "ISO 2022 IR 149", "GB18030"} {
		if err := SetDefault(code); !errors.Is(err, ErrNoASCII) {
			t.Errorf("SetDefault(%q) = %v, want ErrNoASCII", code, err)
		}
		if !Default().Equal(ASCII) {
			t.Fatalf("failed SetDefault(%q) changed the default to %s", code, Default())
		}
	}

	if err := SetDefault("ISO_IR 100"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if got := Default().Decode([]byte{0xfc}); got != "ü" {
		t.Errorf("default decoded %q, want %q", got, "ü")
	}

	// Unknown terms resolve to the redirected default.
	if got := New("OSIRIX-SPECIAL").Decode([]byte{0x4d, 0xfc}); got != "Mü" {
		t.Errorf("unknown term decoded %q, want %q", got, "Mü")
	}
	if !New("ISO 2022 IR 6").Equal(New("ISO_IR 100")) {
		t.Error("ISO 2022 IR 6 does not track the default")
	}

	if err := SetDefault(""); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if !Default().IsASCII() {
		t.Errorf("default not restored, got %s", Default())
	}
}

var singleCodecTests = []struct {
	name string
	code string
	text string
	data []byte
}{
	{
		name: "latin-1",
		code: "ISO_IR 100",
		text: "Äneas^Rüdiger",
		data: []byte{0xc4, 'n', 'e', 'a', 's', '^', 'R', 0xfc, 'd', 'i', 'g', 'e', 'r'},
	},
	{
		name: "greek",
		code: "ISO_IR 126",
		text: "Διονυσιος",
		data: []byte{0xc4, 0xe9, 0xef, 0xed, 0xf5, 0xf3, 0xe9, 0xef, 0xf2},
	},
	{
		name: "cyrillic",
		code: "ISO_IR 144",
		text: "Люксембург",
		data: []byte{0xbb, 0xee, 0xda, 0xe1, 0xd5, 0xdc, 0xd1, 0xe3, 0xe0, 0xd3},
	},
	{
		name: "arabic",
		code: "ISO_IR 127",
		text: "قباني",
		data: []byte{0xe2, 0xc8, 0xc7, 0xe6, 0xea},
	},
	{
		name: "hebrew",
		code: "ISO_IR 138",
		text: "שרון",
		data: []byte{0xf9, 0xf8, 0xe5, 0xef},
	},
	{
		name: "thai",
		code: "ISO_IR 166",
		text: "นามสกุล",
		data: []byte{0xb9, 0xd2, 0xc1, 0xca, 0xa1, 0xd8, 0xc5},
	},
	{
		name: "katakana",
		code: "ISO_IR 13",
		text: "ﾔﾏﾀﾞ",
		data: []byte{0xd4, 0xcf, 0xc0, 0xde},
	},
	{
		name: "utf-8",
		code: "ISO_IR 192",
		text: "Wang^XiaoDong=王^小东=",
		data: []byte("Wang^XiaoDong=王^小东="),
	},
	{
		name: "gb18030",
		code: "GB18030",
		text: "王小东",
		data: []byte{0xcd, 0xf5, 0xd0, 0xa1, 0xb6, 0xab},
	},
	{
		name: "gbk",
		code: "GBK",
		text: "王",
		data: []byte{0xcd, 0xf5},
	},
	{
		name: "korean without code extension",
		code: "ISO 2022 IR 149",
		text: "홍길동",
		data: []byte{0xc8, 0xab, 0xb1, 0xe6, 0xb5, 0xbf},
	},
	{
		name: "chinese without code extension",
		code: "ISO 2022 IR 58",
		text: "张小东",
		data: []byte{0xd5, 0xc5, 0xd0, 0xa1, 0xb6, 0xab},
	},
}

func TestSingleCodec(t *testing.T) {
	for _, test := range singleCodecTests {
		t.Run(test.name, func(t *testing.T) {
			cs := New(test.code)
			if d := cmp.Diff(test.data, cs.Encode(test.text, PNDelimiters)); d != "" {
				t.Errorf("unexpected encoding (-want +got):\n%s", d)
			}
			if d := cmp.Diff(test.text, cs.Decode(test.data)); d != "" {
				t.Errorf("unexpected text (-want +got):\n%s", d)
			}
		})
	}
}

func TestEncodeReplacement(t *testing.T) {
	tests := []struct {
		code string
		text string
		want []byte
	}{
		{"", "π", []byte{'?'}},
		{"ISO_IR 100", "Ωφ", []byte{'?', '?'}},
		{"ISO 2022 IR 149", "\U0001d11e홍", []byte{'?', 0xc8, 0xab}},
		// JIS X 0208 replaces with the fullwidth question mark pair.
		{"ISO 2022 IR 87", "あA", []byte{0x24, 0x22, 0x21, 0x29}},
	}
	for _, test := range tests {
		cs := New(test.code)
		got := cs.Encode(test.text, ValueDelimiters)
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("%s: unexpected encoding of %q (-want +got):\n%s",
				cs, test.text, d)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	for _, cs := range []*CharacterSet{ASCII, New("", "ISO 2022 IR 149")} {
		if got := cs.Encode("", PNDelimiters); len(got) != 0 {
			t.Errorf("%s: Encode of empty string = % x", cs, got)
		}
		if got := cs.Decode(nil); got != "" {
			t.Errorf("%s: Decode(nil) = %q", cs, got)
		}
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	cs := New("ISO_IR 192")
	if got := cs.Decode([]byte{0xff, 0xfe}); got != "��" {
		t.Errorf("got %q", got)
	}
}

func TestToText(t *testing.T) {
	// JIS X 0201 renders code point 0x5C as Yen, which matters for
	// display but must not interfere with multi-valued field splitting.
	cs := New("ISO_IR 13")
	if got := cs.ToText(`ﾔﾏﾀﾞ\ﾀﾛｳ`); got != "ﾔﾏﾀﾞ¥ﾀﾛｳ" {
		t.Errorf("got %q", got)
	}
	cs = New("ISO 2022 IR 13", "ISO 2022 IR 87")
	if got := cs.ToText(`A\B`); got != "A¥B" {
		t.Errorf("got %q", got)
	}
	cs = New("ISO_IR 100")
	if got := cs.ToText(`A\B`); got != `A\B` {
		t.Errorf("got %q", got)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		cs       *CharacterSet
		isASCII  bool
		isUTF8   bool
		hasASCII bool
	}{
		{ASCII, true, false, true},
		{New("ISO_IR 192"), false, true, true},
		{New("ISO_IR 100"), false, false, true},
		{New("ISO_IR 13"), false, false, true},
		{New("GB18030"), false, false, false},
		{New("ISO 2022 IR 149"), false, false, false},
		{New("", "ISO 2022 IR 149"), true, false, true},
	}
	for _, test := range tests {
		if got := test.cs.IsASCII(); got != test.isASCII {
			t.Errorf("%s: IsASCII() = %t", test.cs, got)
		}
		if got := test.cs.IsUTF8(); got != test.isUTF8 {
			t.Errorf("%s: IsUTF8() = %t", test.cs, got)
		}
		if got := test.cs.ContainsASCII(); got != test.hasASCII {
			t.Errorf("%s: ContainsASCII() = %t", test.cs, got)
		}
	}
}

func TestEqual(t *testing.T) {
	a := New("ISO 2022 IR 13", "ISO 2022 IR 87")
	b := New("ISO 2022 IR 13", "ISO 2022 IR 87")
	if !a.Equal(b) {
		t.Error("equal sets reported unequal")
	}
	if a.Equal(New("ISO 2022 IR 13")) {
		t.Error("different sets reported equal")
	}
	if a.Equal(nil) {
		t.Error("nil reported equal")
	}
	// Terms naming the same repertoire are interchangeable.
	if !New("ISO_IR 100").Equal(New("ISO 2022 IR 100")) {
		t.Error("ISO_IR 100 and ISO 2022 IR 100 reported unequal")
	}
}

func TestString(t *testing.T) {
	if got := ASCII.String(); got != "US-ASCII" {
		t.Errorf("got %q", got)
	}
	cs := New("ISO 2022 IR 13", "ISO 2022 IR 87")
	if got := cs.String(); got != `ISO 2022 IR 13\ISO 2022 IR 87` {
		t.Errorf("got %q", got)
	}
}
