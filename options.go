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
	"fmt"
	"time"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithRetryConfig wraps the transport with retry logic using config
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		d.SetRetryConfig(config)
		return nil
	}
}

// WithTimeout sets how long a card command may take before ErrTimeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		return d.SetTimeout(timeout)
	}
}

// WithMaxRetries sets the maximum number of attempts for register I/O
func WithMaxRetries(maxAttempts int) Option {
	return func(device *Device) error {
		config := device.retryConfig()
		config.MaxAttempts = maxAttempts
		device.SetRetryConfig(config)
		return nil
	}
}

// WithRetryBackoff sets the initial backoff duration for retries
func WithRetryBackoff(initialBackoff time.Duration) Option {
	return func(device *Device) error {
		config := device.retryConfig()
		config.InitialBackoff = initialBackoff
		device.SetRetryConfig(config)
		return nil
	}
}

// WithAntennaGain sets the receiver gain applied during Init
func WithAntennaGain(gain RxGain) Option {
	return func(d *Device) error {
		if byte(gain)&^rxGainMask != 0 {
			return fmt.Errorf("%w: antenna gain 0x%02X", ErrInvalidParameter, byte(gain))
		}
		d.config.AntennaGain = gain
		d.config.SetAntennaGain = true
		return nil
	}
}
