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

// Package i2c detects MFRC522 readers on Linux I2C buses
package i2c

import (
	"context"
	"runtime"

	"github.com/ZaparooProject/go-mfrc522/detection"
)

const (
	// DefaultAddress is the usual MFRC522 I2C address
	DefaultAddress = 0x28
	// LastAddress is the highest address the ADR pins can select
	LastAddress = 0x2F

	// versionReg is the MFRC522 VersionReg address
	versionReg = 0x37
)

// knownVersions are VersionReg values of genuine chips and common clones
var knownVersions = map[byte]string{
	0x88: "FM17522",
	0x89: "FM17522E",
	0x91: "v1.0",
	0x92: "v2.0",
	0xB2: "FM17522_1",
	0x12: "counterfeit",
}

type detector struct{}

// New creates the I2C detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return "i2c"
}

func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	// I2C detection is platform-specific
	if runtime.GOOS != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	return detectLinux(ctx, opts)
}

// addresses returns the addresses probed in a mode
func addresses(mode detection.Mode) []uint8 {
	if mode != detection.Full {
		return []uint8{DefaultAddress}
	}
	out := make([]uint8, 0, LastAddress-DefaultAddress+1)
	for addr := uint8(DefaultAddress); addr <= LastAddress; addr++ {
		out = append(out, addr)
	}
	return out
}
