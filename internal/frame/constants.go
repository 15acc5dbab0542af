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

// Package frame provides ISO/IEC 14443-3 Type A framing helpers shared by the
// MFRC522 driver and the virtual chip used in tests
package frame

// PICC command bytes
const (
	ReqA        = 0x26 // REQuest command, Type A (7 bit frame)
	WupA        = 0x52 // Wake-UP command, Type A (7 bit frame)
	CascadeTag  = 0x88 // Cascade Tag, used during anticollision
	SelCL1      = 0x93 // Anticollision/Select, Cascade Level 1
	SelCL2      = 0x95 // Anticollision/Select, Cascade Level 2
	SelCL3      = 0x97 // Anticollision/Select, Cascade Level 3
	HltA        = 0x50 // HaLT command, Type A
	MifareRead  = 0x30 // Reads one 16 byte block (or 4 Ultralight pages)
	MifareWrite = 0xA0
	UltralightW = 0xA2
	MifareAck   = 0x0A // 4 bit ACK returned by MIFARE tags
)

// Select NVB (number of valid bits) values
const (
	NVBAnticoll = 0x20 // Only SEL and NVB sent, all UID bits requested
	NVBSelect   = 0x70 // SEL, NVB, 4 UID bytes and BCC sent
)

// SAK bits
const (
	SAKCascadeBit = 0x04 // UID not complete
	SAKISO14443_4 = 0x20
)

// Frame sizes
const (
	CRCLength      = 2
	UIDChunkLength = 4  // UID bytes (or CT + 3 bytes) per cascade level
	SelectLength   = 9  // SEL NVB uid0..3 BCC CRC_A
	BlockLength    = 16 // Data returned by a MIFARE READ
	MaxUIDLength   = 10
)
