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

import "time"

// Transport names used by the detectors
const (
	TransportI2C = "i2c"
	TransportSPI = "spi"
)

// Config holds application configuration
type Config struct {
	DevicePath         string
	ConnectTimeout     time.Duration
	PollInterval       time.Duration
	CardRemovalTimeout time.Duration
	StressReads        int
	Quick              bool
	Verbose            bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout:     10 * time.Second,
		PollInterval:       50 * time.Millisecond,
		CardRemovalTimeout: 300 * time.Millisecond,
		StressReads:        10,
	}
}
