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

// Package cellref converts between spreadsheet A1-style cell references
// and zero-based column/row indices.
package cellref

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBadRef is returned by [Parse] for strings which are not of the form
// "B5".
var ErrBadRef = errors.New("not a cell reference")

// ColName returns the column name for a zero-based column index:
// 0 is "A", 25 is "Z", 26 is "AA".  Negative indices give "".
func ColName(index int) string {
	if index < 0 {
		return ""
	}
	name := make([]byte, 0, 8)
	for {
		if len(name) > 0 {
			index--
		}
		rem := index % 26
		name = append(name, byte('A'+rem))
		index = (index - rem) / 26
		if index <= 0 {
			break
		}
	}
	for i, j := 0, len(name)-1; i < j; i, j = i+1, j-1 {
		name[i], name[j] = name[j], name[i]
	}
	return string(name)
}

// ColIndex returns the zero-based column index for a column name.  The
// name may be a full cell reference; scanning stops at the first
// character which is not a letter, so ColIndex("AC12") is 28.  If the
// name does not start with a letter the result is -1.
func ColIndex(name string) int {
	index := -1
	for i := 0; i < len(name); i++ {
		c := fold(name[i])
		if c < 'A' || c > 'Z' {
			break
		}
		index = (index+1)*26 + int(c-'A')
	}
	return index
}

// Parse splits a cell reference into a zero-based column and row index,
// so that "B5" gives (1, 4).
func Parse(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) {
		if c := fold(ref[i]); c < 'A' || c > 'Z' {
			break
		}
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("%q: %w", ref, ErrBadRef)
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", ref, err)
	}
	if n < 1 {
		// Row numbers are one-based.
		return 0, 0, fmt.Errorf("%q: %w", ref, ErrBadRef)
	}
	return ColIndex(ref), n - 1, nil
}

func fold(c byte) byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}
