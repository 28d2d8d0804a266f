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

// Dcmtext converts DICOM text element values between their encoded bytes
// and UTF-8, driven by a Specific Character Set (0008,0005) value.
//
// Decoding (the default) reads encoded bytes from a file or stdin and
// prints UTF-8.  With -e the direction is reversed.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jingshuai5213/bus/charset"
)

func main() {
	csArg := flag.String("c", "", `Specific Character Set value, backslash-separated defined terms (e.g. "ISO 2022 IR 13\ISO 2022 IR 87")`)
	encode := flag.Bool("e", false, "encode UTF-8 input instead of decoding")
	hexOut := flag.Bool("x", false, "write the result as a hex dump")
	delims := flag.String("d", charset.PNDelimiters, "delimiters which reset the code extension state when encoding")
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Printf("Usage: %s [options] [input-file]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	in := os.Stdin
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	cs := charset.New(strings.Split(*csArg, `\`)...)

	if *encode {
		text := strings.TrimSuffix(string(data), "\n")
		out := cs.Encode(text, *delims)
		if *hexOut {
			fmt.Print(hex.Dump(out))
			return
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: refusing to write raw bytes to a terminal (use -x or redirect)")
			os.Exit(1)
		}
		if _, err := os.Stdout.Write(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	text := cs.Decode(data)
	if *hexOut {
		fmt.Print(hex.Dump([]byte(text)))
		return
	}
	fmt.Println(text)
}
