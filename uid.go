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

package mfrc522

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// UID is the unique identifier of a selected card
type UID struct {
	// Bytes holds 4, 7 or 10 UID bytes
	Bytes []byte
	// SAK returned by the final select
	SAK byte
}

// String returns the UID as upper-case hex without separators, e.g. "04A23B1C"
func (u *UID) String() string {
	if u == nil {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString(u.Bytes))
}

// Hex returns the UID as space separated upper-case hex, e.g. "04 A2 3B 1C"
func (u *UID) Hex() string {
	if u == nil {
		return ""
	}
	var sb strings.Builder
	for i, b := range u.Bytes {
		if i > 0 {
			_ = sb.WriteByte(' ')
		}
		_, _ = fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Size returns the UID length in bytes
func (u *UID) Size() int {
	return len(u.Bytes)
}

// Type decodes the SAK
func (u *UID) Type() PICCType {
	return PICCTypeFromSAK(u.SAK)
}

// Equal reports whether two UIDs have the same bytes
func (u *UID) Equal(other *UID) bool {
	if u == nil || other == nil {
		return u == other
	}
	return bytes.Equal(u.Bytes, other.Bytes)
}

// PICCType is the card family derived from the SAK
type PICCType int

const (
	PICCTypeUnknown PICCType = iota
	PICCTypeISO14443_4
	PICCTypeISO18092
	PICCTypeMifareMini
	PICCTypeMifare1K
	PICCTypeMifare4K
	PICCTypeMifareUL
	PICCTypeMifarePlus
	PICCTypeMifareDESFire
	PICCTypeTNP3XXX
	PICCTypeNotComplete
)

// PICCTypeFromSAK maps a SAK to a PICC type (NXP AN10833)
func PICCTypeFromSAK(sak byte) PICCType {
	// Bit 8 has no meaning
	switch sak & 0x7F {
	case 0x04:
		return PICCTypeNotComplete
	case 0x09:
		return PICCTypeMifareMini
	case 0x08:
		return PICCTypeMifare1K
	case 0x18:
		return PICCTypeMifare4K
	case 0x00:
		return PICCTypeMifareUL
	case 0x10, 0x11:
		return PICCTypeMifarePlus
	case 0x01:
		return PICCTypeTNP3XXX
	case 0x20:
		return PICCTypeISO14443_4
	case 0x40:
		return PICCTypeISO18092
	default:
		return PICCTypeUnknown
	}
}

func (t PICCType) String() string {
	switch t {
	case PICCTypeISO14443_4:
		return "PICC compliant with ISO/IEC 14443-4"
	case PICCTypeISO18092:
		return "PICC compliant with ISO/IEC 18092 (NFC)"
	case PICCTypeMifareMini:
		return "MIFARE Mini, 320 bytes"
	case PICCTypeMifare1K:
		return "MIFARE 1KB"
	case PICCTypeMifare4K:
		return "MIFARE 4KB"
	case PICCTypeMifareUL:
		return "MIFARE Ultralight or Ultralight C"
	case PICCTypeMifarePlus:
		return "MIFARE Plus"
	case PICCTypeMifareDESFire:
		return "MIFARE DESFire"
	case PICCTypeTNP3XXX:
		return "MIFARE TNP3XXX"
	case PICCTypeNotComplete:
		return "SAK indicates UID is not complete."
	default:
		return "Unknown type"
	}
}

// Version is the content of VersionReg
type Version byte

const (
	VersionFM17522     Version = 0x88 // Fudan Semiconductor clone
	VersionFM17522E    Version = 0x89
	VersionV1          Version = 0x91
	VersionV2          Version = 0x92
	VersionFM17522_1   Version = 0xB2
	VersionCounterfeit Version = 0x12
)

// Valid reports whether the value can come from a chip; 0x00 and 0xFF mean
// nothing answered on the bus
func (v Version) Valid() bool {
	return v != 0x00 && v != 0xFF
}

func (v Version) String() string {
	switch v {
	case VersionFM17522:
		return "FM17522 (0x88)"
	case VersionFM17522E:
		return "FM17522E (0x89)"
	case VersionV1:
		return "v1.0 (0x91)"
	case VersionV2:
		return "v2.0 (0x92)"
	case VersionFM17522_1:
		return "FM17522_1 (0xB2)"
	case VersionCounterfeit:
		return "counterfeit chip (0x12)"
	default:
		return fmt.Sprintf("unknown (0x%02X)", byte(v))
	}
}
