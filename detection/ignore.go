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

package detection

import (
	"path/filepath"
	"strings"
)

// IsPathIgnored reports whether devicePath matches an entry of ignorePaths.
// Entries may be glob patterns ("/dev/spidev1.*"). An I2C bus entry such as
// "/dev/i2c-1" also covers every address on that bus ("/dev/i2c-1:0x28").
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}

	device := normalizedPath(devicePath)
	bus, _, _ := strings.Cut(device, ":")
	for _, entry := range ignorePaths {
		if entry == "" {
			continue
		}
		pattern := normalizedPath(entry)
		if pattern == device || pattern == bus {
			return true
		}
		// Malformed patterns never match
		if ok, _ := filepath.Match(pattern, device); ok {
			return true
		}
	}
	return false
}

// normalizedPath cleans relative components and lower-cases the path;
// device node names never differ only by case
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
