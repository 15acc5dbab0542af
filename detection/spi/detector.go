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

// Package spi detects MFRC522 readers on spidev device nodes
package spi

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"golang.org/x/sys/unix"
)

// DefaultPattern matches the Linux spidev nodes
const DefaultPattern = "/dev/spidev*"

// probeFunc reads the version register through the port at path
type probeFunc func(path string) (byte, error)

type detector struct {
	probe   probeFunc
	access  func(path string) error
	pattern string
}

// New creates the SPI detector
func New() detection.Detector {
	return &detector{
		pattern: DefaultPattern,
		access: func(path string) error {
			return unix.Access(path, unix.R_OK|unix.W_OK)
		},
		probe: readVersion,
	}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return "spi"
}

// Detect lists spidev nodes. Without a chip select scan there is no way to
// tell what is wired to a node, so only Full mode reads the version register.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	matches, err := filepath.Glob(d.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for SPI devices: %w", err)
	}
	sort.Strings(matches)

	var devices []detection.DeviceInfo
	for _, path := range matches {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}
		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}

		device := detection.DeviceInfo{
			Transport:  "spi",
			Path:       path,
			Name:       "MFRC522 on " + filepath.Base(path),
			Confidence: detection.Low,
			Metadata:   map[string]string{},
		}
		if opts.Mode != detection.Passive {
			if err := d.access(path); err != nil {
				continue
			}
			device.Confidence = detection.Medium
		}
		if opts.Mode == detection.Full {
			version, err := d.probe(path)
			if err != nil || !knownVersion(version) {
				continue
			}
			device.Confidence = detection.High
			device.Metadata["version"] = fmt.Sprintf("0x%02X", version)
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func knownVersion(v byte) bool {
	switch v {
	case 0x88, 0x89, 0x91, 0x92, 0xB2, 0x12:
		return true
	default:
		return false
	}
}
