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

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/transport"
	"go.bug.st/serial"
)

const openAttempts = 3

// replaced in tests
var (
	openPort  = serial.Open
	openDelay = 500 * time.Millisecond
)

// DevicePath adds the /dev/ prefix to bare device names such as "ttyUSB0"
func DevicePath(device string) string {
	if device == "" || strings.Contains(device, "/") || strings.HasPrefix(strings.ToUpper(device), "COM") {
		return device
	}
	return "/dev/" + device
}

// OpenSerial opens a serial console at baud (8N1). A USB adapter that was
// just plugged in may not be ready yet, so opening is retried a few times.
func OpenSerial(device string, baud int) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	path := DevicePath(device)
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := transport.WithRetry(context.Background(), transport.Policy{
		Name:     "open " + path,
		Attempts: openAttempts,
		Delay:    openDelay,
	}, func() (serial.Port, bool, error) {
		p, openErr := openPort(path, mode)
		return p, openErr != nil, openErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return port, nil
}
