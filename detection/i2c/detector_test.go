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

package i2c

import (
	"testing"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/stretchr/testify/assert"
)

func TestAddresses(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []uint8{0x28}, addresses(detection.Passive))
	assert.Equal(t, []uint8{0x28}, addresses(detection.Safe))

	full := addresses(detection.Full)
	assert.Len(t, full, 8)
	assert.Equal(t, uint8(0x28), full[0])
	assert.Equal(t, uint8(0x2F), full[7])
}

func TestDetectorRegistered(t *testing.T) {
	t.Parallel()

	var found bool
	for _, d := range detection.Detectors() {
		if d.Transport() == "i2c" {
			found = true
		}
	}
	assert.True(t, found)
}
