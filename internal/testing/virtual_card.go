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

// Package testing provides a virtual MFRC522 chip and virtual ISO 14443A
// cards for exercising the driver without hardware
package testing

import (
	"encoding/hex"
	"strings"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// Test UIDs
var (
	TestMIFARE1KUID = []byte{0xDE, 0xAD, 0xBE, 0xEF}
	TestNTAG213UID  = []byte{0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	TestTripleUID   = []byte{0x08, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
)

// cardState is the ISO 14443-3 PICC state
type cardState int

const (
	stateIdle cardState = iota
	stateReady
	stateActive
	stateHalt
)

// VirtualCard simulates an ISO 14443A card in the field
type VirtualCard struct {
	UID    []byte
	Memory []byte // page based memory for Type 2 cards, nil for MIFARE Classic
	ATQA   [2]byte
	SAK    byte
	state  cardState
	level  int // cascade level reached during anticollision, 1 based
}

// NewVirtualCard creates a card with the given UID and final SAK
func NewVirtualCard(uid []byte, atqa [2]byte, sak byte) *VirtualCard {
	return &VirtualCard{
		UID:  append([]byte(nil), uid...),
		ATQA: atqa,
		SAK:  sak,
	}
}

// NewVirtualMIFARE1K creates a MIFARE Classic 1K card
func NewVirtualMIFARE1K(uid []byte) *VirtualCard {
	if uid == nil {
		uid = TestMIFARE1KUID
	}
	return NewVirtualCard(uid, [2]byte{0x04, 0x00}, 0x08)
}

// NewVirtualNTAG213 creates an NTAG213 card with an empty NDEF message
func NewVirtualNTAG213(uid []byte) *VirtualCard {
	if uid == nil {
		uid = TestNTAG213UID
	}
	card := NewVirtualCard(uid, [2]byte{0x44, 0x00}, 0x00)
	card.Memory = make([]byte, 45*4)
	// Capability container: NDEF magic, version 1.0, 144 byte data area, read/write
	copy(card.Memory[3*4:], []byte{0xE1, 0x10, 0x12, 0x00})
	card.SetNDEF(nil)
	return card
}

// SetNDEF stores msg in an NDEF TLV at page 4 followed by a terminator TLV
func (c *VirtualCard) SetNDEF(msg []byte) {
	data := c.Memory[4*4:]
	for i := range data {
		data[i] = 0
	}
	tlv := []byte{0x03}
	if len(msg) < 0xFF {
		tlv = append(tlv, byte(len(msg)))
	} else {
		tlv = append(tlv, 0xFF, byte(len(msg)>>8), byte(len(msg)))
	}
	tlv = append(tlv, msg...)
	tlv = append(tlv, 0xFE)
	copy(data, tlv)
}

// UIDString returns the UID as upper-case hex
func (c *VirtualCard) UIDString() string {
	return strings.ToUpper(hex.EncodeToString(c.UID))
}

// IsHalted reports whether the card is in HALT state
func (c *VirtualCard) IsHalted() bool {
	return c.state == stateHalt
}

// levels returns the number of cascade levels the UID needs
func (c *VirtualCard) levels() int {
	switch len(c.UID) {
	case 7:
		return 2
	case 10:
		return 3
	default:
		return 1
	}
}

// chunk returns the four UID bytes sent at a cascade level followed by BCC
func (c *VirtualCard) chunk(level int) [5]byte {
	var out [5]byte
	last := level == c.levels()
	var part []byte
	switch {
	case last:
		start := 3 * (level - 1)
		part = c.UID[start : start+4]
	default:
		start := 3 * (level - 1)
		part = append([]byte{frame.CascadeTag}, c.UID[start:start+3]...)
	}
	copy(out[:], part)
	out[4] = frame.BCC(part)
	return out
}

// sak returns the SAK answered at a cascade level
func (c *VirtualCard) sak(level int) byte {
	if level < c.levels() {
		return frame.SAKCascadeBit
	}
	return c.SAK
}

// readPages returns 16 bytes starting at page, wrapping around the memory
func (c *VirtualCard) readPages(page byte) []byte {
	out := make([]byte, frame.BlockLength)
	n := len(c.Memory)
	for i := range out {
		out[i] = c.Memory[(int(page)*4+i)%n]
	}
	return out
}
