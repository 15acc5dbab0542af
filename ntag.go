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
	"context"
	"fmt"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
	"github.com/hsanjuan/go-ndef"
)

// NFC Forum Type 2 layout
const (
	ccPage          = 3    // capability container
	firstDataPage   = 4    // first page of the data area
	pageSize        = 4    // bytes per page
	pagesPerRead    = 4    // a READ returns 16 bytes
	ccMagic         = 0xE1 // NDEF magic number in CC byte 0
	tlvNull         = 0x00
	tlvNDEF         = 0x03
	tlvTerminator   = 0xFE
	tlvLongLength   = 0xFF
	maxNDEFDataArea = 0xFF * 8
)

// READ addresses one byte; pages past 0xFF need SECTOR_SELECT
const lastReadablePage = 0xFF

// ReadBlock sends MIFARE READ for addr and returns 16 bytes. On Ultralight
// and NTAG cards addr is a page number and four pages are returned.
func (d *Device) ReadBlock(ctx context.Context, addr byte) ([]byte, error) {
	cmd, err := d.appendCRC(ctx, []byte{frame.MifareRead, addr})
	if err != nil {
		return nil, err
	}

	data, _, err := d.Transceive(ctx, cmd, 0, 0, true)
	if err != nil {
		return nil, fmt.Errorf("read block %d: %w", addr, err)
	}
	if len(data) != frame.BlockLength+frame.CRCLength {
		return nil, fmt.Errorf("%w: read block %d returned %d bytes", ErrProtocol, addr, len(data))
	}
	return data[:frame.BlockLength], nil
}

// ReadNDEF reads the NDEF message of a selected NFC Forum Type 2 card
// (MIFARE Ultralight, NTAG21x)
func (d *Device) ReadNDEF(ctx context.Context) (*ndef.Message, error) {
	header, err := d.ReadBlock(ctx, ccPage)
	if err != nil {
		return nil, err
	}
	cc := header[:pageSize]
	if cc[0] != ccMagic {
		return nil, fmt.Errorf("%w: capability container 0x%02X", ErrNotNDEF, cc[0])
	}
	dataArea := int(cc[2]) * 8
	if dataArea == 0 || dataArea > maxNDEFDataArea {
		return nil, fmt.Errorf("%w: data area of %d bytes", ErrNotNDEF, dataArea)
	}

	var data []byte
	for page := firstDataPage; len(data) < dataArea && page <= lastReadablePage; page += pagesPerRead {
		block, err := d.ReadBlock(ctx, byte(page))
		if err != nil {
			return nil, err
		}
		data = append(data, block...)
		if payload, done := extractNDEFPayload(data); done {
			return parseNDEF(payload)
		}
	}

	payload, done := extractNDEFPayload(data)
	if !done {
		return nil, fmt.Errorf("%w: NDEF TLV ends past the readable pages", ErrNotNDEF)
	}
	return parseNDEF(payload)
}

func parseNDEF(payload []byte) (*ndef.Message, error) {
	if payload == nil {
		return nil, ErrNotNDEF
	}
	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotNDEF, err)
	}
	return msg, nil
}

// extractNDEFPayload walks the TLV blocks in data and returns the value of the
// first NDEF TLV. done is false when data ends before the TLV does, so more
// pages need to be read.
func extractNDEFPayload(data []byte) (payload []byte, done bool) {
	i := 0
	for i < len(data) {
		tag := data[i]
		switch tag {
		case tlvNull:
			i++
			continue
		case tlvTerminator:
			return nil, true
		}

		if i+1 >= len(data) {
			return nil, false
		}
		length := int(data[i+1])
		header := 2
		if data[i+1] == tlvLongLength {
			if i+3 >= len(data) {
				return nil, false
			}
			length = int(data[i+2])<<8 | int(data[i+3])
			header = 4
		}

		start := i + header
		end := start + length
		if end > len(data) {
			return nil, false
		}
		if tag == tlvNDEF {
			return data[start:end], true
		}
		i = end
	}
	return nil, false
}
