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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUID_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uid      *UID
		name     string
		wantStr  string
		wantHex  string
		wantSize int
	}{
		{
			name:     "single size",
			uid:      &UID{Bytes: []byte{0x04, 0xA2, 0x3B, 0x1C}, SAK: 0x08},
			wantStr:  "04A23B1C",
			wantHex:  "04 A2 3B 1C",
			wantSize: 4,
		},
		{
			name:     "double size",
			uid:      &UID{Bytes: []byte{0x04, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}},
			wantStr:  "04112233445566",
			wantHex:  "04 11 22 33 44 55 66",
			wantSize: 7,
		},
		{name: "nil", uid: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantStr, tt.uid.String())
			assert.Equal(t, tt.wantHex, tt.uid.Hex())
			if tt.uid != nil {
				assert.Equal(t, tt.wantSize, tt.uid.Size())
			}
		})
	}
}

func TestUID_Equal(t *testing.T) {
	t.Parallel()

	a := &UID{Bytes: []byte{1, 2, 3, 4}, SAK: 0x08}
	b := &UID{Bytes: []byte{1, 2, 3, 4}, SAK: 0x00}
	c := &UID{Bytes: []byte{1, 2, 3, 5}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
	assert.True(t, (*UID)(nil).Equal(nil))
}

func TestPICCTypeFromSAK(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
		sak  byte
	}{
		{name: "MIFARE 1K", sak: 0x08, want: "MIFARE 1KB"},
		{name: "MIFARE 1K bit 8 ignored", sak: 0x88, want: "MIFARE 1KB"},
		{name: "MIFARE 4K", sak: 0x18, want: "MIFARE 4KB"},
		{name: "MIFARE Mini", sak: 0x09, want: "MIFARE Mini, 320 bytes"},
		{name: "Ultralight", sak: 0x00, want: "MIFARE Ultralight or Ultralight C"},
		{name: "Plus", sak: 0x11, want: "MIFARE Plus"},
		{name: "TNP3XXX", sak: 0x01, want: "MIFARE TNP3XXX"},
		{name: "ISO 14443-4", sak: 0x20, want: "PICC compliant with ISO/IEC 14443-4"},
		{name: "ISO 18092", sak: 0x40, want: "PICC compliant with ISO/IEC 18092 (NFC)"},
		{name: "incomplete", sak: 0x04, want: "SAK indicates UID is not complete."},
		{name: "unknown", sak: 0x28, want: "Unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PICCTypeFromSAK(tt.sak).String())
			assert.Equal(t, tt.want, (&UID{SAK: tt.sak}).Type().String())
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	assert.True(t, VersionV2.Valid())
	assert.True(t, VersionCounterfeit.Valid())
	assert.False(t, Version(0x00).Valid())
	assert.False(t, Version(0xFF).Valid())

	assert.Equal(t, "v2.0 (0x92)", VersionV2.String())
	assert.Equal(t, "FM17522 (0x88)", VersionFM17522.String())
	assert.Equal(t, "unknown (0x42)", Version(0x42).String())
}

func TestRxGain_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "18 dB", RxGainMin.String())
	assert.Equal(t, "33 dB", RxGainAvg.String())
	assert.Equal(t, "48 dB", RxGainMax.String())
	assert.Equal(t, "23 dB", RxGain23dB2.String())
}
