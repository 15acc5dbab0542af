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

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
)

// transportOptions are the bus settings given on the command line
type transportOptions struct {
	resetPin string
	i2cAddr  uint16
}

// transportKind guesses the bus from a device path
func transportKind(path string) (string, error) {
	pathLower := strings.ToLower(path)
	switch {
	case path == "":
		return "", errors.New("empty device path")
	case strings.Contains(pathLower, "i2c"):
		return "i2c", nil
	case strings.Contains(pathLower, "spi"):
		return "spi", nil
	default:
		return "", fmt.Errorf("cannot tell the bus of %s, expected an spidev or i2c device", path)
	}
}

// newTransportFactory creates transports for device paths
func newTransportFactory(opts transportOptions) mfrc522.TransportFactory {
	return func(path string) (mfrc522.Transport, error) {
		kind, err := transportKind(path)
		if err != nil {
			return nil, err
		}
		return openTransport(kind, path, opts.i2cAddr, opts.resetPin)
	}
}

// newDetectedTransportFactory creates transports for detected devices
func newDetectedTransportFactory(opts transportOptions) mfrc522.TransportFromDeviceFactory {
	return func(device detection.DeviceInfo) (mfrc522.Transport, error) {
		addr := opts.i2cAddr
		if raw, ok := device.Metadata["address"]; ok {
			parsed, err := strconv.ParseUint(raw, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid detected address %q: %w", raw, err)
			}
			addr = uint16(parsed)
		}
		return openTransport(strings.ToLower(device.Transport), device.BusPath(), addr, opts.resetPin)
	}
}

func openTransport(kind, path string, addr uint16, resetPin string) (mfrc522.Transport, error) {
	switch kind {
	case "i2c":
		opts := []i2c.Option{i2c.WithAddress(addr)}
		if resetPin != "" {
			opts = append(opts, i2c.WithResetPin(resetPin))
		}
		transport, err := i2c.New(path, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case "spi":
		var opts []spi.Option
		if resetPin != "" {
			opts = append(opts, spi.WithResetPin(resetPin))
		}
		transport, err := spi.New(path, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", kind)
	}
}
