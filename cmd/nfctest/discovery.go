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
	"context"
	"fmt"
	"strconv"
	"strings"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
)

// Discovery handles reader discovery and transport creation
type Discovery struct {
	config *Config
	output *Output
}

// NewDiscovery creates a new discovery handler
func NewDiscovery(config *Config, output *Output) *Discovery {
	return &Discovery{
		config: config,
		output: output,
	}
}

// DiscoverReaders returns the reader given with -device, or all detected
// readers
func (d *Discovery) DiscoverReaders(ctx context.Context) ([]detection.DeviceInfo, error) {
	if d.config.DevicePath != "" {
		return []detection.DeviceInfo{manualReader(d.config.DevicePath)}, nil
	}

	d.output.Verbose("Discovering readers...")

	opts := detection.DefaultOptions()
	opts.Timeout = d.config.ConnectTimeout
	opts.Mode = detection.Full

	readers, err := detection.DetectAllContext(ctx, &opts)
	if err != nil {
		return nil, fmt.Errorf("reader discovery failed: %w", err)
	}

	d.output.Verbose("   Found %d reader(s)", len(readers))

	return readers, nil
}

func manualReader(path string) detection.DeviceInfo {
	transport := TransportSPI
	if strings.Contains(strings.ToLower(path), "i2c") {
		transport = TransportI2C
	}
	return detection.DeviceInfo{
		Transport:  transport,
		Path:       path,
		Name:       "MFRC522 on " + path,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
}

// CreateTransport creates the appropriate transport for a device
func (*Discovery) CreateTransport(reader detection.DeviceInfo) (mfrc522.Transport, error) {
	switch reader.Transport {
	case TransportI2C:
		var opts []i2c.Option
		if raw, ok := reader.Metadata["address"]; ok {
			addr, err := strconv.ParseUint(raw, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid I2C address %q: %w", raw, err)
			}
			opts = append(opts, i2c.WithAddress(uint16(addr)))
		}
		transport, err := i2c.New(reader.BusPath(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	case TransportSPI:
		transport, err := spi.New(reader.BusPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", reader.Transport)
	}
}
