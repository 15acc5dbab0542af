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

package frame

// crcAPreset is the CRC_A initial value defined by ISO/IEC 14443-3
const crcAPreset = 0x6363

// CRCA computes the ISO/IEC 14443-3 CRC_A over data and returns it in
// transmission order (LSB first).
func CRCA(data []byte) [2]byte {
	crc := uint16(crcAPreset)
	for _, b := range data {
		ch := b ^ byte(crc&0x00FF)
		ch ^= ch << 4
		crc = (crc >> 8) ^ (uint16(ch) << 8) ^ (uint16(ch) << 3) ^ (uint16(ch) >> 4)
	}
	return [2]byte{byte(crc), byte(crc >> 8)}
}

// AppendCRCA returns data followed by its CRC_A.
func AppendCRCA(data []byte) []byte {
	crc := CRCA(data)
	out := make([]byte, 0, len(data)+CRCLength)
	out = append(out, data...)
	return append(out, crc[0], crc[1])
}

// CheckCRCA reports whether the last two bytes of data are a valid CRC_A of
// the bytes before them.
func CheckCRCA(data []byte) bool {
	if len(data) < CRCLength {
		return false
	}
	n := len(data) - CRCLength
	crc := CRCA(data[:n])
	return data[n] == crc[0] && data[n+1] == crc[1]
}

// BCC returns the block check character (XOR) of a UID chunk.
func BCC(chunk []byte) byte {
	var bcc byte
	for _, b := range chunk {
		bcc ^= b
	}
	return bcc
}
