// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"errors"
	"fmt"
	"io"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/hsanjuan/go-ndef"
)

// Output handles consistent formatting of messages
type Output struct {
	w       io.Writer
	verbose bool
}

// NewOutput creates a new output handler
func NewOutput(w io.Writer, verbose bool) *Output {
	return &Output{w: w, verbose: verbose}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// ReaderTestHeader prints the appropriate header for reader testing
func (o *Output) ReaderTestHeader(reader detection.DeviceInfo) {
	if o.verbose {
		o.printf("Testing reader: %s (%s, confidence %s)\n", reader.Name, reader.Path, reader.Confidence)
	} else {
		o.printf("Testing %s reader at %s... ", reader.Transport, reader.Path)
	}
}

// TestFailure prints failure indicator for non-verbose mode
func (o *Output) TestFailure() {
	if !o.verbose {
		o.printf("FAIL\n")
	}
}

// TestSuccess prints the chip version and antenna gain
func (o *Output) TestSuccess(version mfrc522.Version, gain mfrc522.RxGain) {
	if o.verbose {
		o.printf("   OK: Chip: %s\n", version)
		o.printf("   OK: Antenna gain: %s\n", gain)
	} else {
		o.printf("OK: (chip %s)\n", version)
	}
}

// CardDetected prints message for a newly detected card
func (o *Output) CardDetected(readerPath string, card *mfrc522.DetectedCard, changed bool) {
	what := "Card detected"
	if changed {
		what = "New card detected"
	}
	o.printf("\nCARD: %s on %s: %s (UID: %s, ATQA: % X)\n",
		what, readerPath, card.UID.Type(), card.UID.Hex(), card.ATQA)
}

// NDEFResults prints NDEF results in a standard format
func (o *Output) NDEFResults(msg *ndef.Message, err error) {
	if err != nil {
		if errors.Is(err, mfrc522.ErrNotNDEF) {
			o.printf(" WARNING: No NDEF data\n")
		} else {
			o.printf(" ERROR: Failed: %v\n", err)
		}
		return
	}

	o.printf(" OK: Found %d record(s)\n", len(msg.Records))
	for i, record := range msg.Records {
		o.printf("      Record %d: %v\n", i, record)
	}
}

// Error prints an error message
func (o *Output) Error(format string, args ...any) {
	o.printf("ERROR: "+format+"\n", args...)
}

// Warning prints a warning message
func (o *Output) Warning(format string, args ...any) {
	o.printf("WARNING: "+format+"\n", args...)
}

// Info prints an info message
func (o *Output) Info(format string, args ...any) {
	o.printf("INFO: "+format+"\n", args...)
}

// OK prints a success message
func (o *Output) OK(format string, args ...any) {
	o.printf("OK: "+format+"\n", args...)
}

// Verbose prints only if verbose mode is enabled
func (o *Output) Verbose(format string, args ...any) {
	if o.verbose {
		o.printf(format+"\n", args...)
	}
}
