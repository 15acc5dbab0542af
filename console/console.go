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

// Package console implements the line protocol a card reader prints on its
// serial console:
//
//	RFID initialized
//	Card UID: 04 A2 3B 1C
//	Card SAK: 08
//	PICC type: MIFARE 1KB
//
// The banner is printed once after the chip is initialized, the three card
// lines for every card that was selected.
package console

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

const (
	// Banner is printed once the reader is ready
	Banner = "RFID initialized"
	// DefaultBaudRate matches the reader firmware
	DefaultBaudRate = 115200
	// DefaultInitTimeout is how long a host waits for the banner
	DefaultInitTimeout = 60 * time.Second

	uidPrefix = "Card UID:"
)

// ErrInitTimeout is returned when the banner does not arrive in time
var ErrInitTimeout = errors.New("reader initialization timed out")

// Writer prints the protocol lines. It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter returns a Writer printing to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Banner announces that the reader is ready
func (w *Writer) Banner() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.w, "%s\r\n", Banner)
	return err
}

// WriteCard prints the UID, SAK and card type of a selected card
func (w *Writer) WriteCard(uid *mfrc522.UID) error {
	if uid == nil {
		return errors.New("nil UID")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.w, "%s %s\r\nCard SAK: %02X\r\nPICC type: %s\r\n",
		uidPrefix, uid.Hex(), uid.SAK, uid.Type())
	return err
}
