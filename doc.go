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

/*
Package mfrc522 provides a pure Go driver for NXP MFRC522 contactless reader ICs.

The MFRC522 is a 13.56 MHz reader/writer for ISO/IEC 14443 A/MIFARE cards. The
chip is driven entirely through its register set, so the driver talks to it
through a small register-level Transport that can be backed by SPI or I2C.

Features:
  - SPI and I2C transports built on periph.io, with optional hardware reset pin
  - Card detection (REQA/WUPA), full anticollision and select cascade
  - 4, 7 and 10 byte UIDs, SAK decoding to a PICC type
  - HLTA, MIFARE READ and NDEF reading from NFC Forum Type 2 tags
  - Retry logic with configurable backoff for flaky buses

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-mfrc522"
	    "github.com/ZaparooProject/go-mfrc522/transport/spi"
	)

	transport, err := spi.New("/dev/spidev0.0", spi.WithResetPin("GPIO25"))
	if err != nil {
	    log.Fatal(err)
	}

	device, err := mfrc522.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	for {
	    if !device.IsNewCardPresent() {
	        continue
	    }
	    uid, err := device.ReadCardSerial()
	    if err != nil {
	        continue
	    }
	    fmt.Printf("Card UID: %s\n", uid.Hex())
	    _ = device.HaltA()
	}

Error Handling:

Card level failures map to sentinel errors that can be inspected:

	if errors.Is(err, mfrc522.ErrTimeout) {
	    // No card answered
	}

Thread Safety:

Device operations are not thread-safe. If you need concurrent access,
implement appropriate synchronization in your application.
*/
package mfrc522
