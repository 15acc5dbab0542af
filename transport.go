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
	"context"
	"fmt"
)

// Transport defines the register level interface to an MFRC522 chip.
// This can be implemented by SPI or I2C backends.
type Transport interface {
	// WriteRegister writes one or more bytes to a register. Multiple values
	// are only meaningful for FIFODataReg.
	WriteRegister(reg Register, values ...byte) error

	// ReadRegister reads a single register
	ReadRegister(reg Register) (byte, error)

	// ReadRegisterN reads the same register n times, used to drain the FIFO
	ReadRegisterN(reg Register, n int) ([]byte, error)

	// Reset pulses the hardware reset line, ErrNoResetPin when none is wired
	Reset() error

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport with retry capabilities
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

func (t *TransportWithRetry) retry(op string, fn func() error) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		if err := fn(); err != nil {
			return &TransportError{
				Op:        op,
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		return nil
	})
}

// WriteRegister writes a register with retry logic
func (t *TransportWithRetry) WriteRegister(reg Register, values ...byte) error {
	return t.retry("WriteRegister", func() error {
		return t.transport.WriteRegister(reg, values...)
	})
}

// ReadRegister reads a register with retry logic
func (t *TransportWithRetry) ReadRegister(reg Register) (byte, error) {
	var value byte
	err := t.retry("ReadRegister", func() error {
		var err error
		value, err = t.transport.ReadRegister(reg)
		return err
	})
	return value, err
}

// ReadRegisterN reads a register n times with retry logic
func (t *TransportWithRetry) ReadRegisterN(reg Register, n int) ([]byte, error) {
	var values []byte
	err := t.retry("ReadRegisterN", func() error {
		var err error
		values, err = t.transport.ReadRegisterN(reg, n)
		return err
	})
	return values, err
}

// Reset forwards to the underlying transport without retrying
func (t *TransportWithRetry) Reset() error {
	return t.transport.Reset()
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
