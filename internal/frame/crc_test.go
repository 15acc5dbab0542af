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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRCA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want [2]byte
	}{
		{name: "HLTA", data: []byte{0x50, 0x00}, want: [2]byte{0x57, 0xCD}},
		{name: "READ block 0", data: []byte{0x30, 0x00}, want: [2]byte{0x02, 0xA8}},
		{name: "RATS", data: []byte{0xE0, 0x50}, want: [2]byte{0xBC, 0xA5}},
		{name: "two zero bytes", data: []byte{0x00, 0x00}, want: [2]byte{0xA0, 0x1E}},
		{name: "empty", data: nil, want: [2]byte{0x63, 0x63}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CRCA(tt.data))
		})
	}
}

func TestAppendAndCheckCRCA(t *testing.T) {
	t.Parallel()

	frm := AppendCRCA([]byte{HltA, 0x00})
	assert.Equal(t, []byte{0x50, 0x00, 0x57, 0xCD}, frm)
	assert.True(t, CheckCRCA(frm))

	frm[1] = 0x01
	assert.False(t, CheckCRCA(frm))
	assert.False(t, CheckCRCA([]byte{0x57}))
}

func TestBCC(t *testing.T) {
	t.Parallel()

	assert.Equal(t, byte(0x00), BCC(nil))
	assert.Equal(t, byte(0x04^0xA2^0x3B^0x1C), BCC([]byte{0x04, 0xA2, 0x3B, 0x1C}))
	assert.Equal(t, byte(0x88^0x04^0x11^0x22), BCC([]byte{CascadeTag, 0x04, 0x11, 0x22}))
}
