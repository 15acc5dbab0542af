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

package spi

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// versionRead is VersionReg (0x37) shifted left with the read flag set
const versionRead = 0x80 | (0x37<<1)&0x7E

func readVersion(path string) (byte, error) {
	if _, err := host.Init(); err != nil {
		return 0, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	port, err := spireg.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = port.Close() }()

	conn, err := port.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return 0, fmt.Errorf("configure %s: %w", path, err)
	}
	r := make([]byte, 2)
	if err := conn.Tx([]byte{versionRead, 0x00}, r); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return r[1], nil
}
