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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "transport timeout retryable", err: ErrTransportTimeout, want: true},
		{name: "transport read retryable", err: ErrTransportRead, want: true},
		{name: "transport write retryable", err: ErrTransportWrite, want: true},
		{name: "communication failed retryable", err: ErrCommunicationFailed, want: true},
		{name: "wrapped transport read retryable", err: fmt.Errorf("spi: %w", ErrTransportRead), want: true},
		{name: "card timeout not retryable", err: ErrTimeout, want: false},
		{name: "collision not retryable", err: ErrCollision, want: false},
		{name: "transport closed not retryable", err: ErrTransportClosed, want: false},
		{name: "invalid parameter not retryable", err: ErrInvalidParameter, want: false},
		{
			name: "permanent transport error",
			err:  NewTransportError("read", "/dev/spidev0.0", ErrTransportRead, ErrorTypePermanent),
			want: false,
		},
		{
			name: "transient transport error",
			err:  NewTransportError("read", "/dev/spidev0.0", errors.New("bus busy"), ErrorTypeTransient),
			want: true,
		},
		{name: "plain error text is not enough", err: errors.New("outer: " + ErrTransportTimeout.Error()), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{name: "timeout sentinel", err: ErrTransportTimeout, want: ErrorTypeTimeout},
		{name: "timeout error", err: NewTimeoutError("tx", "i2c-1"), want: ErrorTypeTimeout},
		{name: "retryable sentinel", err: ErrTransportWrite, want: ErrorTypeTransient},
		{name: "other error", err: ErrCRCWrong, want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestErrorType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "permanent", ErrorTypePermanent.String())
	assert.Equal(t, "transient", ErrorTypeTransient.String())
	assert.Equal(t, "timeout", ErrorTypeTimeout.String())
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	err := NewTransportError("write register", "/dev/spidev0.0", ErrTransportWrite, ErrorTypeTransient)
	assert.Equal(t, "write register on /dev/spidev0.0: transport write failed", err.Error())
	assert.True(t, err.Retryable)
	require.ErrorIs(t, err, ErrTransportWrite)

	noPort := &TransportError{Op: "reset", Err: ErrNoResetPin}
	assert.Equal(t, "reset: no reset pin configured", noPort.Error())

	var te *TransportError
	wrapped := fmt.Errorf("init: %w", err)
	require.ErrorAs(t, wrapped, &te)
	assert.Equal(t, "/dev/spidev0.0", te.Port)
}
