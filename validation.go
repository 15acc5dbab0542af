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
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// ErrValidationFailed is returned when repeated reads do not agree
var ErrValidationFailed = errors.New("data validation failed")

// ValidationConfig holds configuration for read verification
type ValidationConfig struct {
	// RetryDelay specifies delay between retry attempts
	RetryDelay time.Duration

	// ReadRetries specifies max number of read retries on validation failure
	ReadRetries int

	// EnableReadVerification reads every block twice and compares the results
	EnableReadVerification bool
}

// DefaultValidationConfig returns default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		EnableReadVerification: true,
		ReadRetries:            3,
		RetryDelay:             10 * time.Millisecond,
	}
}

// ValidateUID checks the length and cascade structure of a UID
func ValidateUID(uid []byte) error {
	switch len(uid) {
	case 4, 7, 10:
	default:
		return fmt.Errorf("%w: UID of %d bytes", ErrInvalidParameter, len(uid))
	}
	// 0x88 is reserved for the cascade tag
	if uid[0] == frame.CascadeTag {
		return fmt.Errorf("%w: UID starts with the cascade tag", ErrInvalidParameter)
	}
	if len(uid) == 10 && uid[3] == frame.CascadeTag {
		return fmt.Errorf("%w: triple size UID with cascade tag at byte 3", ErrInvalidParameter)
	}
	return nil
}

// ReadBlockValidated reads a block until two consecutive reads return the
// same data. Weak coupling at the edge of the field can corrupt single reads
// without a CRC error.
func (d *Device) ReadBlockValidated(ctx context.Context, addr byte, config *ValidationConfig) ([]byte, error) {
	if config == nil {
		config = DefaultValidationConfig()
	}
	if !config.EnableReadVerification {
		return d.ReadBlock(ctx, addr)
	}

	var (
		last    []byte
		lastErr error
	)
	for attempt := 0; attempt <= config.ReadRetries; attempt++ {
		if attempt > 0 && config.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.RetryDelay):
			}
		}

		data, err := d.ReadBlock(ctx, addr)
		if err != nil {
			lastErr = err
			last = nil
			continue
		}
		if last != nil && bytes.Equal(last, data) {
			return data, nil
		}
		last = data
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: block %d: %w", ErrValidationFailed, addr, lastErr)
	}
	return nil, fmt.Errorf("%w: block %d reads did not match", ErrValidationFailed, addr)
}
